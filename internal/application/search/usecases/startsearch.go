package usecases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/orris-inc/archy/internal/domain/search"
	"github.com/orris-inc/archy/internal/shared/logger"
)

type StartSearchCommand struct {
	UserID    string
	ChannelID string
	GuildID   string
	Query     string
}

type StartSearchResult struct {
	Candidates     []search.Candidate
	SessionStarted bool
}

// StartSearchUseCase runs a search and, when anything matched, opens a
// selection session for the user.
type StartSearchUseCase struct {
	searcher   TicketSearcher
	sessions   search.SessionStore
	notifier   Notifier
	sessionTTL time.Duration
	logger     logger.Interface
}

func NewStartSearchUseCase(
	searcher TicketSearcher,
	sessions search.SessionStore,
	notifier Notifier,
	sessionTTL time.Duration,
	logger logger.Interface,
) *StartSearchUseCase {
	return &StartSearchUseCase{
		searcher:   searcher,
		sessions:   sessions,
		notifier:   notifier,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

func (uc *StartSearchUseCase) Execute(ctx context.Context, cmd StartSearchCommand) (*StartSearchResult, error) {
	query := strings.TrimSpace(cmd.Query)
	if query == "" {
		return &StartSearchResult{}, uc.notifier.SendMessage(ctx, cmd.ChannelID, noticeEmptyQuery)
	}

	found, err := uc.searcher.Execute(ctx, SearchTicketsQuery{Query: query, Limit: search.MaxCandidates})
	if err != nil {
		return nil, err
	}
	if len(found.Candidates) == 0 {
		return &StartSearchResult{}, uc.notifier.SendMessage(ctx, cmd.ChannelID, noticeNoResults)
	}

	session, err := search.NewSession(cmd.UserID, cmd.ChannelID, cmd.GuildID, query, found.Candidates)
	if err != nil {
		return nil, err
	}

	if err := uc.notifier.SendMessage(ctx, cmd.ChannelID, FormatResults(query, session.Results)); err != nil {
		return nil, err
	}
	if err := uc.sessions.Set(ctx, session, uc.sessionTTL); err != nil {
		return nil, fmt.Errorf("failed to store search session: %w", err)
	}

	uc.logger.Infow("search session started", "user_id", cmd.UserID, "results", len(session.Results))
	return &StartSearchResult{Candidates: session.Results, SessionStarted: true}, nil
}

// FormatResults renders the numbered candidate list prompt.
func FormatResults(query string, results []search.Candidate) string {
	lines := make([]string, 0, len(results))
	for i, c := range results {
		date := ""
		if !c.CreatedAt.IsZero() {
			date = fmt.Sprintf(" (%s)", c.CreatedAt.Format("2006-01-02"))
		}
		summary := ""
		if c.Summary != "" {
			summary = " - " + c.Summary
		}
		lines = append(lines, fmt.Sprintf(noticeResultLine, i+1, c.Label(), date, summary))
	}
	return fmt.Sprintf(noticeResultsHeader, query, strings.Join(lines, "\n"), len(results))
}
