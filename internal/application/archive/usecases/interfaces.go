package usecases

import (
	"context"
	"time"

	"github.com/orris-inc/archy/internal/domain/archive"
)

// Notifier posts a user-visible notice to a channel.
type Notifier interface {
	SendMessage(ctx context.Context, channelID, content string) error
}

// ChannelResolver looks a channel up on the chat platform.
type ChannelResolver interface {
	GetChannel(ctx context.Context, channelID string) (*archive.Channel, error)
}

// AttachmentDownloader fetches an attachment's bytes and served content type.
type AttachmentDownloader interface {
	DownloadAttachment(ctx context.Context, url string) ([]byte, string, error)
}

// MessageFetcher is satisfied by *fetcher.Fetcher.
type MessageFetcher interface {
	FetchAll(ctx context.Context, channelID string) []archive.ChatMessage
	FetchSince(ctx context.Context, channelID string, since time.Time) []archive.ChatMessage
}

// MetadataExtractor is satisfied by *extractor.Extractor.
type MetadataExtractor interface {
	Extract(ctx context.Context, log []archive.LogEntry) (archive.ExtractedMetadata, map[string]any)
}

// TicketAssistant is satisfied by *ai.Assistant.
type TicketAssistant interface {
	Summarize(ctx context.Context, log []archive.LogEntry) (string, error)
	GenerateTags(ctx context.Context, log []archive.LogEntry) (string, []string, error)
}

// ArchiveAuthorizer decides whether any of the caller's roles may archive.
type ArchiveAuthorizer interface {
	CanArchive(ctx context.Context, roleNames []string) (bool, error)
}

// TransactionRunner is satisfied by *db.TransactionManager.
type TransactionRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// TicketIndexer maintains the semantic search index.
type TicketIndexer interface {
	Upsert(ctx context.Context, metadataID uint, document string) error
}

type ArchiveEventPublisher interface {
	PublishTicketArchived(ctx context.Context, event archive.TicketArchivedEvent) error
}

// ClosureIntentRecorder remembers that a user was offered to close a channel.
type ClosureIntentRecorder interface {
	Set(ctx context.Context, channelID, userID string) error
}

type ArchiveMetrics interface {
	ObserveArchive(outcome string, duration time.Duration, messages int)
	IncFiles(result string)
}

type ArchiveTicketExecutor interface {
	Execute(ctx context.Context, cmd ArchiveTicketCommand) (*ArchiveTicketResult, error)
}
