package archive

import "context"

// TicketMetadataRepository persists ticket metadata. Lookups return nil, nil when absent.
type TicketMetadataRepository interface {
	Create(ctx context.Context, m *TicketMetadata) error
	Update(ctx context.Context, m *TicketMetadata) error
	GetByID(ctx context.Context, id uint) (*TicketMetadata, error)
	GetByChannelID(ctx context.Context, channelID string) (*TicketMetadata, error)
	GetByIDs(ctx context.Context, ids []uint) ([]*TicketMetadata, error)
	// SearchByKeywords matches every keyword against property name, summary and
	// tags, newest first.
	SearchByKeywords(ctx context.Context, keywords []string, limit int) ([]*TicketMetadata, error)
}

type TicketMessageRepository interface {
	CreateBatch(ctx context.Context, msgs []*TicketMessage) error
	// ListByMetadataID returns messages oldest first. textOnly drops media-only rows.
	ListByMetadataID(ctx context.Context, metadataID uint, textOnly bool) ([]*TicketMessage, error)
	CountByMetadataID(ctx context.Context, metadataID uint) (int64, error)
}

type TicketFileRepository interface {
	Create(ctx context.Context, f *TicketFile) error
	ListByMetadataID(ctx context.Context, metadataID uint) ([]*TicketFile, error)
}
