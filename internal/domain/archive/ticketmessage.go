package archive

import (
	"fmt"
	"strings"
	"time"
)

const noTextPlaceholder = "[no text content]"

// TicketMessage is one archived chat message. Rows are append-only.
type TicketMessage struct {
	id         uint
	metadataID uint
	externalID string
	author     string
	content    string
	timestamp  time.Time
	mediaOnly  bool
}

func NewTicketMessage(metadataID uint, externalID, author, content string, timestamp time.Time, mediaOnly bool) (*TicketMessage, error) {
	if metadataID == 0 {
		return nil, fmt.Errorf("metadata ID is required")
	}
	if timestamp.IsZero() {
		return nil, fmt.Errorf("timestamp is required")
	}
	if !IsValidTextMessage(author, content) {
		return nil, fmt.Errorf("rejected: not a valid text message")
	}
	return &TicketMessage{
		metadataID: metadataID,
		externalID: externalID,
		author:     author,
		content:    content,
		timestamp:  timestamp.UTC(),
		mediaOnly:  mediaOnly,
	}, nil
}

// NewTicketMessageFromChat persists any chat message at full fidelity. Messages
// without text are stored with a rendered attachment line and flagged media-only.
func NewTicketMessageFromChat(metadataID uint, msg ChatMessage) (*TicketMessage, error) {
	author := msg.Author.Username
	if strings.TrimSpace(author) == "" {
		author = "unknown"
	}
	content, mediaOnly := renderContent(msg)
	return NewTicketMessage(metadataID, msg.ID, author, content, msg.CreatedAt, mediaOnly)
}

func renderContent(msg ChatMessage) (string, bool) {
	if strings.TrimSpace(msg.Content) != "" {
		return msg.Content, false
	}
	if len(msg.Attachments) == 0 {
		return noTextPlaceholder, true
	}
	lines := make([]string, 0, len(msg.Attachments))
	for _, a := range msg.Attachments {
		lines = append(lines, "[attachment] "+a.Filename)
	}
	return strings.Join(lines, "\n"), true
}

func ReconstructTicketMessage(id, metadataID uint, externalID, author, content string, timestamp time.Time, mediaOnly bool) *TicketMessage {
	return &TicketMessage{
		id:         id,
		metadataID: metadataID,
		externalID: externalID,
		author:     author,
		content:    content,
		timestamp:  timestamp,
		mediaOnly:  mediaOnly,
	}
}

func (m *TicketMessage) ID() uint {
	return m.id
}

func (m *TicketMessage) MetadataID() uint {
	return m.metadataID
}

func (m *TicketMessage) ExternalID() string {
	return m.externalID
}

func (m *TicketMessage) Author() string {
	return m.author
}

func (m *TicketMessage) Content() string {
	return m.content
}

func (m *TicketMessage) Timestamp() time.Time {
	return m.timestamp
}

func (m *TicketMessage) MediaOnly() bool {
	return m.mediaOnly
}

// LogEntry converts the stored row back into summariser input.
func (m *TicketMessage) LogEntry() LogEntry {
	return LogEntry{Author: m.author, Content: m.content}
}
