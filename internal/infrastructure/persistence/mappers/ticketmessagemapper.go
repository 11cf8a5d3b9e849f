package mappers

import (
	"github.com/orris-inc/archy/internal/domain/archive"
	"github.com/orris-inc/archy/internal/infrastructure/persistence/models"
	"github.com/orris-inc/archy/internal/shared/mapper"
)

type TicketMessageMapper interface {
	ToModel(m *archive.TicketMessage) *models.TicketMessageModel
	ToDomainList(list []models.TicketMessageModel) []*archive.TicketMessage
	FileToModel(f *archive.TicketFile) *models.TicketFileModel
	FileToDomainList(list []models.TicketFileModel) []*archive.TicketFile
}

type TicketMessageMapperImpl struct{}

func NewTicketMessageMapper() TicketMessageMapper {
	return &TicketMessageMapperImpl{}
}

func (m *TicketMessageMapperImpl) ToModel(msg *archive.TicketMessage) *models.TicketMessageModel {
	return &models.TicketMessageModel{
		ID:         msg.ID(),
		MetadataID: msg.MetadataID(),
		ExternalID: nullable(msg.ExternalID()),
		Author:     msg.Author(),
		Content:    msg.Content(),
		MediaOnly:  msg.MediaOnly(),
		Timestamp:  msg.Timestamp(),
	}
}

func (m *TicketMessageMapperImpl) ToDomainList(list []models.TicketMessageModel) []*archive.TicketMessage {
	return mapper.MapSlice(list, func(model models.TicketMessageModel) *archive.TicketMessage {
		return archive.ReconstructTicketMessage(
			model.ID,
			model.MetadataID,
			deref(model.ExternalID),
			model.Author,
			model.Content,
			model.Timestamp,
			model.MediaOnly,
		)
	})
}

func (m *TicketMessageMapperImpl) FileToModel(f *archive.TicketFile) *models.TicketFileModel {
	return &models.TicketFileModel{
		ID:          f.ID(),
		MetadataID:  f.MetadataID(),
		ExternalID:  nullable(f.ExternalID()),
		Filename:    f.Filename(),
		ContentType: f.ContentType(),
		Data:        f.Data(),
		Size:        f.Size(),
		CreatedAt:   f.CreatedAt(),
	}
}

func (m *TicketMessageMapperImpl) FileToDomainList(list []models.TicketFileModel) []*archive.TicketFile {
	return mapper.MapSlice(list, func(model models.TicketFileModel) *archive.TicketFile {
		return archive.ReconstructTicketFile(
			model.ID,
			model.MetadataID,
			deref(model.ExternalID),
			model.Filename,
			model.ContentType,
			model.Data,
			model.CreatedAt,
		)
	})
}

// nullable stores an empty external id as NULL so the unique index ignores it.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
