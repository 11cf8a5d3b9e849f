package mappers

import (
	"fmt"

	"github.com/orris-inc/archy/internal/domain/archive"
	"github.com/orris-inc/archy/internal/infrastructure/persistence/models"
	"github.com/orris-inc/archy/internal/shared/mapper"
)

// TicketMetadataMapper handles the conversion between TicketMetadata and its persistence model.
type TicketMetadataMapper interface {
	ToModel(m *archive.TicketMetadata) *models.TicketMetadataModel
	ToDomain(model *models.TicketMetadataModel) (*archive.TicketMetadata, error)
	ToDomainList(list []models.TicketMetadataModel) ([]*archive.TicketMetadata, error)
}

type TicketMetadataMapperImpl struct{}

func NewTicketMetadataMapper() TicketMetadataMapper {
	return &TicketMetadataMapperImpl{}
}

func (m *TicketMetadataMapperImpl) ToModel(t *archive.TicketMetadata) *models.TicketMetadataModel {
	return &models.TicketMetadataModel{
		ID:             t.ID(),
		ChannelID:      t.ChannelID(),
		ChannelName:    t.ChannelName(),
		TicketTitle:    t.Title(),
		CreatedBy:      t.CreatedBy(),
		Summary:        t.Summary(),
		Tags:           t.Tags(),
		SaleID:         t.SaleID(),
		Staff:          t.Staff(),
		QuotedRevenue:  t.QuotedRevenue(),
		PropertyName:   t.PropertyName(),
		LastArchivedAt: t.LastArchivedAt(),
		CreatedAt:      t.CreatedAt(),
		UpdatedAt:      t.UpdatedAt(),
	}
}

func (m *TicketMetadataMapperImpl) ToDomain(model *models.TicketMetadataModel) (*archive.TicketMetadata, error) {
	if model == nil {
		return nil, nil
	}
	t, err := archive.ReconstructTicketMetadata(
		model.ID,
		model.ChannelID,
		archive.ArchiveDetails{
			ChannelName:   model.ChannelName,
			Title:         model.TicketTitle,
			CreatedBy:     model.CreatedBy,
			Summary:       model.Summary,
			Tags:          model.Tags,
			SaleID:        model.SaleID,
			Staff:         model.Staff,
			QuotedRevenue: model.QuotedRevenue,
			PropertyName:  model.PropertyName,
		},
		model.CreatedAt,
		model.UpdatedAt,
		model.LastArchivedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct ticket metadata %d: %w", model.ID, err)
	}
	return t, nil
}

func (m *TicketMetadataMapperImpl) ToDomainList(list []models.TicketMetadataModel) ([]*archive.TicketMetadata, error) {
	return mapper.MapSliceWithError(list, func(model models.TicketMetadataModel) (*archive.TicketMetadata, error) {
		return m.ToDomain(&model)
	})
}
