package repository

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"gorm.io/gorm"

	"github.com/orris-inc/archy/internal/domain/archive"
	"github.com/orris-inc/archy/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/archy/internal/infrastructure/persistence/models"
	"github.com/orris-inc/archy/internal/shared/db"
	"github.com/orris-inc/archy/internal/shared/errors"
)

// searchDocumentSQL must match the expression of the GIN index created by the
// initial migration.
const searchDocumentSQL = "coalesce(property_name, '') || ' ' || coalesce(summary, '') || ' ' || coalesce(tags::text, '')"

type TicketMetadataRepository struct {
	db     *gorm.DB
	mapper mappers.TicketMetadataMapper
}

func NewTicketMetadataRepository(db *gorm.DB) *TicketMetadataRepository {
	return &TicketMetadataRepository{
		db:     db,
		mapper: mappers.NewTicketMetadataMapper(),
	}
}

func (r *TicketMetadataRepository) Create(ctx context.Context, m *archive.TicketMetadata) error {
	model := r.mapper.ToModel(m)
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Create(model).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return errors.NewConflictError("ticket metadata already exists", m.ChannelID())
		}
		return fmt.Errorf("failed to create ticket metadata: %w", err)
	}

	return m.SetID(model.ID)
}

// Update writes every column, so cleared values such as a removed quote are persisted.
func (r *TicketMetadataRepository) Update(ctx context.Context, m *archive.TicketMetadata) error {
	model := r.mapper.ToModel(m)
	tx := db.GetTxFromContext(ctx, r.db)

	result := tx.
		Model(&models.TicketMetadataModel{ID: model.ID}).
		Select("*").
		Omit("id", "created_at").
		Updates(model)
	if result.Error != nil {
		return fmt.Errorf("failed to update ticket metadata: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("ticket metadata not found", fmt.Sprint(model.ID))
	}
	return nil
}

func (r *TicketMetadataRepository) GetByID(ctx context.Context, id uint) (*archive.TicketMetadata, error) {
	var model models.TicketMetadataModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.First(&model, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get ticket metadata: %w", err)
	}
	return r.mapper.ToDomain(&model)
}

func (r *TicketMetadataRepository) GetByChannelID(ctx context.Context, channelID string) (*archive.TicketMetadata, error) {
	var model models.TicketMetadataModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Where("channel_id = ?", channelID).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get ticket metadata by channel: %w", err)
	}
	return r.mapper.ToDomain(&model)
}

// GetByIDs returns the rows that exist, in no particular order.
func (r *TicketMetadataRepository) GetByIDs(ctx context.Context, ids []uint) ([]*archive.TicketMetadata, error) {
	if len(ids) == 0 {
		return []*archive.TicketMetadata{}, nil
	}
	var list []models.TicketMetadataModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to get ticket metadata by ids: %w", err)
	}
	return r.mapper.ToDomainList(list)
}

// SearchByKeywords requires every keyword to match. Postgres uses full-text
// search; other dialects fall back to case-insensitive substring matching.
func (r *TicketMetadataRepository) SearchByKeywords(ctx context.Context, keywords []string, limit int) ([]*archive.TicketMetadata, error) {
	terms := searchTerms(keywords)
	if len(terms) == 0 {
		return []*archive.TicketMetadata{}, nil
	}

	tx := db.GetTxFromContext(ctx, r.db)
	if r.db.Dialector.Name() == "postgres" {
		tx = tx.Where("to_tsvector('english', "+searchDocumentSQL+") @@ to_tsquery('english', ?)", strings.Join(terms, " & "))
	} else {
		for _, term := range terms {
			tx = tx.Where("lower(coalesce(property_name, '') || ' ' || coalesce(summary, '') || ' ' || coalesce(tags, '')) LIKE ?", "%"+term+"%")
		}
	}

	var list []models.TicketMetadataModel
	if err := tx.Order("id DESC").Limit(limit).Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to search ticket metadata: %w", err)
	}
	return r.mapper.ToDomainList(list)
}

// searchTerms lowercases keywords and strips everything but letters and
// digits, so user input cannot inject tsquery operators.
func searchTerms(keywords []string) []string {
	terms := make([]string, 0, len(keywords))
	for _, k := range keywords {
		term := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return unicode.ToLower(r)
			}
			return -1
		}, k)
		if term != "" {
			terms = append(terms, term)
		}
	}
	return terms
}
