package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/orris-inc/archy/internal/domain/archive"
	"github.com/orris-inc/archy/internal/domain/search"
)

type sentMessage struct {
	ChannelID string
	Content   string
}

type mockNotifier struct {
	messages []sentMessage
}

func (m *mockNotifier) SendMessage(ctx context.Context, channelID, content string) error {
	m.messages = append(m.messages, sentMessage{ChannelID: channelID, Content: content})
	return nil
}

func (m *mockNotifier) contents() []string {
	out := make([]string, 0, len(m.messages))
	for _, s := range m.messages {
		out = append(out, s.Content)
	}
	return out
}

// memorySessionStore round-trips sessions through JSON like the Redis store.
type memorySessionStore struct {
	data map[string][]byte
	ttls map[string]time.Duration
}

func newMemorySessionStore() *memorySessionStore {
	return &memorySessionStore{data: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (s *memorySessionStore) Set(ctx context.Context, session *search.Session, ttl time.Duration) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}
	s.data[session.UserID] = raw
	s.ttls[session.UserID] = ttl
	return nil
}

func (s *memorySessionStore) Get(ctx context.Context, userID string) (*search.Session, error) {
	raw, ok := s.data[userID]
	if !ok {
		return nil, nil
	}
	var session search.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("%w: %v", search.ErrCorruptSession, err)
	}
	return &session, nil
}

func (s *memorySessionStore) Delete(ctx context.Context, userID string) error {
	delete(s.data, userID)
	return nil
}

func (s *memorySessionStore) Exists(ctx context.Context, userID string) (bool, error) {
	_, ok := s.data[userID]
	return ok, nil
}

type mockIndex struct {
	QueryFunc func(ctx context.Context, text string, topK int) ([]search.Match, error)
}

func (m *mockIndex) Upsert(ctx context.Context, metadataID uint, document string) error {
	return nil
}

func (m *mockIndex) Query(ctx context.Context, text string, topK int) ([]search.Match, error) {
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, text, topK)
	}
	return nil, nil
}

type mockMetadataRepository struct {
	tickets              map[uint]*archive.TicketMetadata
	SearchByKeywordsFunc func(ctx context.Context, keywords []string, limit int) ([]*archive.TicketMetadata, error)
}

func (m *mockMetadataRepository) Create(ctx context.Context, t *archive.TicketMetadata) error {
	return nil
}

func (m *mockMetadataRepository) Update(ctx context.Context, t *archive.TicketMetadata) error {
	return nil
}

func (m *mockMetadataRepository) GetByID(ctx context.Context, id uint) (*archive.TicketMetadata, error) {
	return m.tickets[id], nil
}

func (m *mockMetadataRepository) GetByChannelID(ctx context.Context, channelID string) (*archive.TicketMetadata, error) {
	for _, t := range m.tickets {
		if t.ChannelID() == channelID {
			return t, nil
		}
	}
	return nil, nil
}

func (m *mockMetadataRepository) GetByIDs(ctx context.Context, ids []uint) ([]*archive.TicketMetadata, error) {
	out := make([]*archive.TicketMetadata, 0, len(ids))
	for _, id := range ids {
		if t, ok := m.tickets[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockMetadataRepository) SearchByKeywords(ctx context.Context, keywords []string, limit int) ([]*archive.TicketMetadata, error) {
	if m.SearchByKeywordsFunc != nil {
		return m.SearchByKeywordsFunc(ctx, keywords, limit)
	}
	return nil, nil
}

type mockMessageRepository struct {
	ListByMetadataIDFunc func(ctx context.Context, metadataID uint, textOnly bool) ([]*archive.TicketMessage, error)
}

func (m *mockMessageRepository) CreateBatch(ctx context.Context, msgs []*archive.TicketMessage) error {
	return nil
}

func (m *mockMessageRepository) ListByMetadataID(ctx context.Context, metadataID uint, textOnly bool) ([]*archive.TicketMessage, error) {
	if m.ListByMetadataIDFunc != nil {
		return m.ListByMetadataIDFunc(ctx, metadataID, textOnly)
	}
	return nil, nil
}

func (m *mockMessageRepository) CountByMetadataID(ctx context.Context, metadataID uint) (int64, error) {
	return 0, nil
}

type mockFileRepository struct {
	files []*archive.TicketFile
}

func (m *mockFileRepository) Create(ctx context.Context, f *archive.TicketFile) error {
	return nil
}

func (m *mockFileRepository) ListByMetadataID(ctx context.Context, metadataID uint) ([]*archive.TicketFile, error) {
	return m.files, nil
}

type mockSummarizer struct {
	SummarizeFunc func(ctx context.Context, log []archive.LogEntry) (string, error)
	calls         int
}

func (m *mockSummarizer) Summarize(ctx context.Context, log []archive.LogEntry) (string, error) {
	m.calls++
	if m.SummarizeFunc != nil {
		return m.SummarizeFunc(ctx, log)
	}
	return "Roof leak fixed.", nil
}

type mockThreadPoster struct {
	StartThreadFunc func(ctx context.Context, channelID, messageID, name string) (string, error)
	threadNames     []string
	files           []string
}

func (m *mockThreadPoster) StartThreadFromMessage(ctx context.Context, channelID, messageID, name string) (string, error) {
	m.threadNames = append(m.threadNames, name)
	if m.StartThreadFunc != nil {
		return m.StartThreadFunc(ctx, channelID, messageID, name)
	}
	return "thread-1", nil
}

func (m *mockThreadPoster) SendFile(ctx context.Context, channelID, filename, contentType string, data []byte) error {
	m.files = append(m.files, channelID+"/"+filename)
	return nil
}

type mockRestorer struct {
	commands []RestoreTicketCommand
}

func (m *mockRestorer) Execute(ctx context.Context, cmd RestoreTicketCommand) (*RestoreTicketResult, error) {
	m.commands = append(m.commands, cmd)
	return &RestoreTicketResult{Completed: true}, nil
}

type mockSearchMetrics struct {
	sources []string
}

func (m *mockSearchMetrics) IncSearch(source string) {
	m.sources = append(m.sources, source)
}
