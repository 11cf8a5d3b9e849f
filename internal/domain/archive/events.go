package archive

import "time"

// TicketArchivedEvent is published after an archive run completes.
type TicketArchivedEvent struct {
	MetadataID   uint      `json:"metadata_id"`
	ChannelID    string    `json:"channel_id"`
	Title        string    `json:"title"`
	ArchivedBy   string    `json:"archived_by"`
	MessageCount int       `json:"message_count"`
	FileCount    int       `json:"file_count"`
	FailedChunks int       `json:"failed_chunks"`
	Incremental  bool      `json:"incremental"`
	ArchivedAt   time.Time `json:"archived_at"`
}
