package models

import (
	"time"

	"gorm.io/datatypes"
)

type TicketMetadataModel struct {
	ID             uint                        `gorm:"primaryKey"`
	ChannelID      string                      `gorm:"uniqueIndex;size:32;not null"`
	ChannelName    string                      `gorm:"size:255;not null;default:''"`
	TicketTitle    string                      `gorm:"size:255;not null"`
	CreatedBy      string                      `gorm:"size:255;not null"`
	Summary        string                      `gorm:"type:text;not null;default:''"`
	Tags           datatypes.JSONSlice[string] `gorm:"not null"`
	SaleID         string                      `gorm:"size:255;not null"`
	Staff          datatypes.JSONSlice[string] `gorm:"not null"`
	QuotedRevenue  *float64
	PropertyName   string `gorm:"size:255;not null;default:''"`
	LastArchivedAt *time.Time
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

func (TicketMetadataModel) TableName() string {
	return "ticket_metadata"
}
