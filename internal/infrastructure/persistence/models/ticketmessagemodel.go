package models

import "time"

// TicketMessageModel is one archived chat message. ExternalID is the chat
// platform's message id; (metadata_id, external_id) is unique so re-archiving
// a channel does not duplicate rows.
type TicketMessageModel struct {
	ID         uint      `gorm:"primaryKey"`
	MetadataID uint      `gorm:"not null;index:idx_ticket_messages_order,priority:1;uniqueIndex:uk_ticket_messages_external,priority:1"`
	ExternalID *string   `gorm:"size:32;uniqueIndex:uk_ticket_messages_external,priority:2"`
	Author     string    `gorm:"size:255;not null"`
	Content    string    `gorm:"type:text;not null"`
	MediaOnly  bool      `gorm:"not null;default:false"`
	Timestamp  time.Time `gorm:"not null;index:idx_ticket_messages_order,priority:2"`
	CreatedAt  time.Time `gorm:"not null"`
}

func (TicketMessageModel) TableName() string {
	return "ticket_messages"
}

type TicketFileModel struct {
	ID          uint      `gorm:"primaryKey"`
	MetadataID  uint      `gorm:"not null;uniqueIndex:uk_ticket_files_external,priority:1"`
	ExternalID  *string   `gorm:"size:32;uniqueIndex:uk_ticket_files_external,priority:2"`
	Filename    string    `gorm:"size:255;not null"`
	ContentType string    `gorm:"size:255;not null"`
	Data        []byte    `gorm:"not null"`
	Size        int       `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`
}

func (TicketFileModel) TableName() string {
	return "ticket_files"
}
