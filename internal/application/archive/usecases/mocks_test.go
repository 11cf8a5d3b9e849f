package usecases

import (
	"context"
	"sync"
	"time"

	"github.com/orris-inc/archy/internal/domain/archive"
)

type mockNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (m *mockNotifier) SendMessage(ctx context.Context, channelID, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, content)
	return nil
}

func (m *mockNotifier) sent() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.messages...)
}

type mockChannelResolver struct {
	GetChannelFunc func(ctx context.Context, channelID string) (*archive.Channel, error)
}

func (m *mockChannelResolver) GetChannel(ctx context.Context, channelID string) (*archive.Channel, error) {
	if m.GetChannelFunc != nil {
		return m.GetChannelFunc(ctx, channelID)
	}
	return &archive.Channel{ID: channelID, GuildID: "guild-1", Name: "ticket-0042", Type: archive.ChannelTypeGuildText}, nil
}

type mockDownloader struct {
	DownloadAttachmentFunc func(ctx context.Context, url string) ([]byte, string, error)
	calls                  []string
}

func (m *mockDownloader) DownloadAttachment(ctx context.Context, url string) ([]byte, string, error) {
	m.calls = append(m.calls, url)
	if m.DownloadAttachmentFunc != nil {
		return m.DownloadAttachmentFunc(ctx, url)
	}
	return []byte("data"), "", nil
}

type mockFetcher struct {
	FetchAllFunc   func(ctx context.Context, channelID string) []archive.ChatMessage
	FetchSinceFunc func(ctx context.Context, channelID string, since time.Time) []archive.ChatMessage
	allCalls       int
	sinceCalls     int
}

func (m *mockFetcher) FetchAll(ctx context.Context, channelID string) []archive.ChatMessage {
	m.allCalls++
	if m.FetchAllFunc != nil {
		return m.FetchAllFunc(ctx, channelID)
	}
	return []archive.ChatMessage{}
}

func (m *mockFetcher) FetchSince(ctx context.Context, channelID string, since time.Time) []archive.ChatMessage {
	m.sinceCalls++
	if m.FetchSinceFunc != nil {
		return m.FetchSinceFunc(ctx, channelID, since)
	}
	return []archive.ChatMessage{}
}

type mockExtractor struct {
	ExtractFunc func(ctx context.Context, log []archive.LogEntry) (archive.ExtractedMetadata, map[string]any)
	calls       int
}

func (m *mockExtractor) Extract(ctx context.Context, log []archive.LogEntry) (archive.ExtractedMetadata, map[string]any) {
	m.calls++
	if m.ExtractFunc != nil {
		return m.ExtractFunc(ctx, log)
	}
	raw := map[string]any{"sale_id": "S-100", "staff": []any{"Dana"}, "quoted": 1200.0, "tags": []any{"roof"}}
	return archive.SanitizeMetadata(raw), raw
}

type mockAssistant struct {
	SummarizeFunc    func(ctx context.Context, log []archive.LogEntry) (string, error)
	GenerateTagsFunc func(ctx context.Context, log []archive.LogEntry) (string, []string, error)
	summarizeCalls   int
	tagCalls         int
}

func (m *mockAssistant) Summarize(ctx context.Context, log []archive.LogEntry) (string, error) {
	m.summarizeCalls++
	if m.SummarizeFunc != nil {
		return m.SummarizeFunc(ctx, log)
	}
	return "Leaking roof repaired.", nil
}

func (m *mockAssistant) GenerateTags(ctx context.Context, log []archive.LogEntry) (string, []string, error) {
	m.tagCalls++
	if m.GenerateTagsFunc != nil {
		return m.GenerateTagsFunc(ctx, log)
	}
	return "roof, leak", []string{"roof", "leak"}, nil
}

type mockAuthorizer struct {
	CanArchiveFunc func(ctx context.Context, roleNames []string) (bool, error)
}

func (m *mockAuthorizer) CanArchive(ctx context.Context, roleNames []string) (bool, error) {
	if m.CanArchiveFunc != nil {
		return m.CanArchiveFunc(ctx, roleNames)
	}
	return true, nil
}

// memoryMetadataRepository keeps metadata keyed by channel so repeated archives
// observe earlier writes.
type memoryMetadataRepository struct {
	mu          sync.Mutex
	byChannel   map[string]*archive.TicketMetadata
	nextID      uint
	createCalls int
	updateCalls int
	CreateFunc  func(ctx context.Context, m *archive.TicketMetadata) error
}

func newMemoryMetadataRepository() *memoryMetadataRepository {
	return &memoryMetadataRepository{byChannel: make(map[string]*archive.TicketMetadata), nextID: 1}
}

func (r *memoryMetadataRepository) Create(ctx context.Context, m *archive.TicketMetadata) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createCalls++
	if r.CreateFunc != nil {
		if err := r.CreateFunc(ctx, m); err != nil {
			return err
		}
	}
	if err := m.SetID(r.nextID); err != nil {
		return err
	}
	r.nextID++
	r.byChannel[m.ChannelID()] = m
	return nil
}

func (r *memoryMetadataRepository) Update(ctx context.Context, m *archive.TicketMetadata) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updateCalls++
	r.byChannel[m.ChannelID()] = m
	return nil
}

func (r *memoryMetadataRepository) GetByID(ctx context.Context, id uint) (*archive.TicketMetadata, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.byChannel {
		if m.ID() == id {
			return m, nil
		}
	}
	return nil, nil
}

func (r *memoryMetadataRepository) GetByChannelID(ctx context.Context, channelID string) (*archive.TicketMetadata, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byChannel[channelID], nil
}

func (r *memoryMetadataRepository) GetByIDs(ctx context.Context, ids []uint) ([]*archive.TicketMetadata, error) {
	out := make([]*archive.TicketMetadata, 0, len(ids))
	for _, id := range ids {
		m, _ := r.GetByID(ctx, id)
		if m != nil {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memoryMetadataRepository) SearchByKeywords(ctx context.Context, keywords []string, limit int) ([]*archive.TicketMetadata, error) {
	return nil, nil
}

type mockMessageRepository struct {
	CreateBatchFunc       func(ctx context.Context, msgs []*archive.TicketMessage) error
	ListByMetadataIDFunc  func(ctx context.Context, metadataID uint, textOnly bool) ([]*archive.TicketMessage, error)
	CountByMetadataIDFunc func(ctx context.Context, metadataID uint) (int64, error)
	batches               [][]*archive.TicketMessage
}

func (m *mockMessageRepository) CreateBatch(ctx context.Context, msgs []*archive.TicketMessage) error {
	if m.CreateBatchFunc != nil {
		if err := m.CreateBatchFunc(ctx, msgs); err != nil {
			return err
		}
	}
	m.batches = append(m.batches, msgs)
	return nil
}

func (m *mockMessageRepository) ListByMetadataID(ctx context.Context, metadataID uint, textOnly bool) ([]*archive.TicketMessage, error) {
	if m.ListByMetadataIDFunc != nil {
		return m.ListByMetadataIDFunc(ctx, metadataID, textOnly)
	}
	var out []*archive.TicketMessage
	for _, row := range m.stored() {
		if row.MetadataID() == metadataID && !(textOnly && row.MediaOnly()) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *mockMessageRepository) CountByMetadataID(ctx context.Context, metadataID uint) (int64, error) {
	if m.CountByMetadataIDFunc != nil {
		return m.CountByMetadataIDFunc(ctx, metadataID)
	}
	return 0, nil
}

func (m *mockMessageRepository) stored() []*archive.TicketMessage {
	var out []*archive.TicketMessage
	for _, b := range m.batches {
		out = append(out, b...)
	}
	return out
}

type mockFileRepository struct {
	CreateFunc           func(ctx context.Context, f *archive.TicketFile) error
	ListByMetadataIDFunc func(ctx context.Context, metadataID uint) ([]*archive.TicketFile, error)
	created              []*archive.TicketFile
}

func (m *mockFileRepository) Create(ctx context.Context, f *archive.TicketFile) error {
	if m.CreateFunc != nil {
		if err := m.CreateFunc(ctx, f); err != nil {
			return err
		}
	}
	m.created = append(m.created, f)
	return nil
}

func (m *mockFileRepository) ListByMetadataID(ctx context.Context, metadataID uint) ([]*archive.TicketFile, error) {
	if m.ListByMetadataIDFunc != nil {
		return m.ListByMetadataIDFunc(ctx, metadataID)
	}
	return nil, nil
}

type mockTxManager struct{}

func (m *mockTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockIndexer struct {
	UpsertFunc func(ctx context.Context, metadataID uint, document string) error
	upserts    []uint
}

func (m *mockIndexer) Upsert(ctx context.Context, metadataID uint, document string) error {
	m.upserts = append(m.upserts, metadataID)
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, metadataID, document)
	}
	return nil
}

type mockPublisher struct {
	events []archive.TicketArchivedEvent
}

func (m *mockPublisher) PublishTicketArchived(ctx context.Context, event archive.TicketArchivedEvent) error {
	m.events = append(m.events, event)
	return nil
}

type mockClosure struct {
	keys []string
}

func (m *mockClosure) Set(ctx context.Context, channelID, userID string) error {
	m.keys = append(m.keys, channelID+":"+userID)
	return nil
}

type mockMetrics struct {
	outcomes []string
	files    map[string]int
}

func (m *mockMetrics) ObserveArchive(outcome string, duration time.Duration, messages int) {
	m.outcomes = append(m.outcomes, outcome)
}

func (m *mockMetrics) IncFiles(result string) {
	if m.files == nil {
		m.files = make(map[string]int)
	}
	m.files[result]++
}
