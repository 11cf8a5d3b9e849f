package bot

import (
	"context"
	"sync"

	archiveUsecases "github.com/orris-inc/archy/internal/application/archive/usecases"
	searchUsecases "github.com/orris-inc/archy/internal/application/search/usecases"
)

type mockChat struct {
	mu        sync.Mutex
	sent      []string
	roleNames []string
	roleErr   error
	roleCalls int
}

func (m *mockChat) SendMessage(ctx context.Context, channelID, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, content)
	return nil
}

func (m *mockChat) RoleNames(ctx context.Context, guildID string, roleIDs []string) ([]string, error) {
	m.roleCalls++
	return m.roleNames, m.roleErr
}

type mockSessions struct {
	ExecuteFunc func(ctx context.Context, cmd searchUsecases.SessionInputCommand) (bool, error)
}

func (m *mockSessions) Execute(ctx context.Context, cmd searchUsecases.SessionInputCommand) (bool, error) {
	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(ctx, cmd)
	}
	return false, nil
}

type mockClosure struct {
	pending  map[string]bool
	consumed int
}

func (m *mockClosure) Consume(ctx context.Context, channelID, userID string) (bool, error) {
	m.consumed++
	key := channelID + ":" + userID
	ok := m.pending[key]
	delete(m.pending, key)
	return ok, nil
}

type mockLimiter struct {
	AllowFunc func(ctx context.Context, userID string) (bool, error)
}

func (m *mockLimiter) AllowCommand(ctx context.Context, userID string) (bool, error) {
	return m.AllowFunc(ctx, userID)
}

type mockArchive struct {
	calls []archiveUsecases.ArchiveTicketCommand
}

func (m *mockArchive) Execute(ctx context.Context, cmd archiveUsecases.ArchiveTicketCommand) (*archiveUsecases.ArchiveTicketResult, error) {
	m.calls = append(m.calls, cmd)
	return &archiveUsecases.ArchiveTicketResult{Outcome: archiveUsecases.OutcomeCompleted}, nil
}

type mockSummary struct {
	ExecuteFunc func(ctx context.Context, cmd archiveUsecases.SummarizeChannelCommand) (*archiveUsecases.SummarizeChannelResult, error)
	calls       int
}

func (m *mockSummary) Execute(ctx context.Context, cmd archiveUsecases.SummarizeChannelCommand) (*archiveUsecases.SummarizeChannelResult, error) {
	m.calls++
	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(ctx, cmd)
	}
	return &archiveUsecases.SummarizeChannelResult{}, nil
}

type mockRetag struct {
	calls int
}

func (m *mockRetag) Execute(ctx context.Context, cmd archiveUsecases.RetagChannelCommand) (*archiveUsecases.RetagChannelResult, error) {
	m.calls++
	return &archiveUsecases.RetagChannelResult{}, nil
}

type mockSearch struct {
	calls []searchUsecases.StartSearchCommand
}

func (m *mockSearch) Execute(ctx context.Context, cmd searchUsecases.StartSearchCommand) (*searchUsecases.StartSearchResult, error) {
	m.calls = append(m.calls, cmd)
	return &searchUsecases.StartSearchResult{}, nil
}
