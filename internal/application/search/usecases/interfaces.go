package usecases

import (
	"context"

	"github.com/orris-inc/archy/internal/domain/archive"
)

type Notifier interface {
	SendMessage(ctx context.Context, channelID, content string) error
}

// ThreadPoster opens a thread under a message and uploads files into channels.
type ThreadPoster interface {
	StartThreadFromMessage(ctx context.Context, channelID, messageID, name string) (string, error)
	SendFile(ctx context.Context, channelID, filename, contentType string, data []byte) error
}

type Summarizer interface {
	Summarize(ctx context.Context, log []archive.LogEntry) (string, error)
}

type SearchMetrics interface {
	IncSearch(source string)
}

type TicketSearcher interface {
	Execute(ctx context.Context, query SearchTicketsQuery) (*SearchTicketsResult, error)
}

type TicketRestorer interface {
	Execute(ctx context.Context, cmd RestoreTicketCommand) (*RestoreTicketResult, error)
}
