package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/orris-inc/archy/internal/domain/archive"
	"github.com/orris-inc/archy/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/archy/internal/infrastructure/persistence/models"
	"github.com/orris-inc/archy/internal/shared/db"
)

const messageBatchSize = 100

type TicketMessageRepository struct {
	db     *gorm.DB
	mapper mappers.TicketMessageMapper
}

func NewTicketMessageRepository(db *gorm.DB) *TicketMessageRepository {
	return &TicketMessageRepository{
		db:     db,
		mapper: mappers.NewTicketMessageMapper(),
	}
}

// CreateBatch skips messages already stored for the same ticket and external
// id. Generated ids are not copied back since skipped rows would misalign them.
func (r *TicketMessageRepository) CreateBatch(ctx context.Context, msgs []*archive.TicketMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	list := make([]*models.TicketMessageModel, 0, len(msgs))
	for _, m := range msgs {
		list = append(list, r.mapper.ToModel(m))
	}

	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(list, messageBatchSize).Error; err != nil {
		return fmt.Errorf("failed to create ticket messages: %w", err)
	}
	return nil
}

func (r *TicketMessageRepository) ListByMetadataID(ctx context.Context, metadataID uint, textOnly bool) ([]*archive.TicketMessage, error) {
	tx := db.GetTxFromContext(ctx, r.db).Where("metadata_id = ?", metadataID)
	if textOnly {
		tx = tx.Where("media_only = ?", false)
	}

	var list []models.TicketMessageModel
	if err := tx.Order("timestamp ASC, id ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list ticket messages: %w", err)
	}
	return r.mapper.ToDomainList(list), nil
}

func (r *TicketMessageRepository) CountByMetadataID(ctx context.Context, metadataID uint) (int64, error) {
	var count int64
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Model(&models.TicketMessageModel{}).Where("metadata_id = ?", metadataID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count ticket messages: %w", err)
	}
	return count, nil
}

type TicketFileRepository struct {
	db     *gorm.DB
	mapper mappers.TicketMessageMapper
}

func NewTicketFileRepository(db *gorm.DB) *TicketFileRepository {
	return &TicketFileRepository{
		db:     db,
		mapper: mappers.NewTicketMessageMapper(),
	}
}

// Create is a no-op for an attachment already stored for the same ticket.
func (r *TicketFileRepository) Create(ctx context.Context, f *archive.TicketFile) error {
	model := r.mapper.FileToModel(f)
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create ticket file: %w", err)
	}
	if model.ID != 0 {
		f.SetID(model.ID)
	}
	return nil
}

func (r *TicketFileRepository) ListByMetadataID(ctx context.Context, metadataID uint) ([]*archive.TicketFile, error) {
	var list []models.TicketFileModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Where("metadata_id = ?", metadataID).Order("id ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list ticket files: %w", err)
	}
	return r.mapper.FileToDomainList(list), nil
}
