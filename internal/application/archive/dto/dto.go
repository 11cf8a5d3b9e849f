package dto

import (
	"time"

	"github.com/orris-inc/archy/internal/domain/archive"
	"github.com/orris-inc/archy/internal/shared/mapper"
)

type TicketDTO struct {
	ID             uint       `json:"id"`
	ChannelID      string     `json:"channel_id"`
	ChannelName    string     `json:"channel_name"`
	Title          string     `json:"title"`
	CreatedBy      string     `json:"created_by"`
	Summary        string     `json:"summary"`
	Tags           []string   `json:"tags"`
	SaleID         string     `json:"sale_id"`
	Staff          []string   `json:"staff"`
	QuotedRevenue  *float64   `json:"quoted_revenue"`
	PropertyName   string     `json:"property_name"`
	MessageCount   int64      `json:"message_count"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	LastArchivedAt *time.Time `json:"last_archived_at"`
}

type MessageDTO struct {
	ID         uint      `json:"id" yaml:"-"`
	ExternalID string    `json:"external_id,omitempty" yaml:"external_id,omitempty"`
	Author     string    `json:"author" yaml:"author"`
	Content    string    `json:"content" yaml:"content"`
	MediaOnly  bool      `json:"media_only" yaml:"media_only,omitempty"`
	Timestamp  time.Time `json:"timestamp" yaml:"timestamp"`
}

type FileDTO struct {
	ID          uint      `json:"id" yaml:"-"`
	Filename    string    `json:"filename" yaml:"filename"`
	ContentType string    `json:"content_type" yaml:"content_type"`
	Size        int       `json:"size" yaml:"size"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
}

// TranscriptDTO is the exported form of a ticket with its full log.
type TranscriptDTO struct {
	ChannelID    string       `json:"channel_id" yaml:"channel_id"`
	Title        string       `json:"title" yaml:"title"`
	PropertyName string       `json:"property_name" yaml:"property_name"`
	SaleID       string       `json:"sale_id" yaml:"sale_id"`
	Staff        []string     `json:"staff" yaml:"staff"`
	Tags         []string     `json:"tags" yaml:"tags"`
	Summary      string       `json:"summary" yaml:"summary"`
	Messages     []MessageDTO `json:"messages" yaml:"messages"`
	Files        []FileDTO    `json:"files" yaml:"files"`
}

func ToTicketDTO(m *archive.TicketMetadata, messageCount int64) *TicketDTO {
	if m == nil {
		return nil
	}
	return &TicketDTO{
		ID:             m.ID(),
		ChannelID:      m.ChannelID(),
		ChannelName:    m.ChannelName(),
		Title:          m.Title(),
		CreatedBy:      m.CreatedBy(),
		Summary:        m.Summary(),
		Tags:           m.Tags(),
		SaleID:         m.SaleID(),
		Staff:          m.Staff(),
		QuotedRevenue:  m.QuotedRevenue(),
		PropertyName:   m.PropertyName(),
		MessageCount:   messageCount,
		CreatedAt:      m.CreatedAt(),
		UpdatedAt:      m.UpdatedAt(),
		LastArchivedAt: m.LastArchivedAt(),
	}
}

func ToMessageDTO(m *archive.TicketMessage) MessageDTO {
	return MessageDTO{
		ID:         m.ID(),
		ExternalID: m.ExternalID(),
		Author:     m.Author(),
		Content:    m.Content(),
		MediaOnly:  m.MediaOnly(),
		Timestamp:  m.Timestamp(),
	}
}

func ToMessageDTOs(msgs []*archive.TicketMessage) []MessageDTO {
	return mapper.MapSlice(msgs, ToMessageDTO)
}

func ToFileDTO(f *archive.TicketFile) FileDTO {
	return FileDTO{
		ID:          f.ID(),
		Filename:    f.Filename(),
		ContentType: f.ContentType(),
		Size:        f.Size(),
		CreatedAt:   f.CreatedAt(),
	}
}

func ToFileDTOs(files []*archive.TicketFile) []FileDTO {
	return mapper.MapSlice(files, ToFileDTO)
}

func ToTranscriptDTO(m *archive.TicketMetadata, msgs []*archive.TicketMessage, files []*archive.TicketFile) *TranscriptDTO {
	return &TranscriptDTO{
		ChannelID:    m.ChannelID(),
		Title:        m.ThreadTitle(),
		PropertyName: m.PropertyName(),
		SaleID:       m.SaleID(),
		Staff:        m.Staff(),
		Tags:         m.Tags(),
		Summary:      m.Summary(),
		Messages:     ToMessageDTOs(msgs),
		Files:        ToFileDTOs(files),
	}
}
