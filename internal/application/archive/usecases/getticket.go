package usecases

import (
	"context"
	"fmt"

	"github.com/orris-inc/archy/internal/application/archive/dto"
	"github.com/orris-inc/archy/internal/domain/archive"
	"github.com/orris-inc/archy/internal/shared/errors"
	"github.com/orris-inc/archy/internal/shared/logger"
)

type GetTicketQuery struct {
	ChannelID string
}

type GetTicketUseCase struct {
	metadataRepo archive.TicketMetadataRepository
	messageRepo  archive.TicketMessageRepository
	logger       logger.Interface
}

func NewGetTicketUseCase(
	metadataRepo archive.TicketMetadataRepository,
	messageRepo archive.TicketMessageRepository,
	logger logger.Interface,
) *GetTicketUseCase {
	return &GetTicketUseCase{
		metadataRepo: metadataRepo,
		messageRepo:  messageRepo,
		logger:       logger,
	}
}

func (uc *GetTicketUseCase) Execute(ctx context.Context, query GetTicketQuery) (*dto.TicketDTO, error) {
	meta, err := loadTicket(ctx, uc.metadataRepo, query.ChannelID)
	if err != nil {
		uc.logger.Warnw("failed to load ticket", "channel_id", query.ChannelID, "error", err)
		return nil, err
	}

	count, err := uc.messageRepo.CountByMetadataID(ctx, meta.ID())
	if err != nil {
		uc.logger.Errorw("failed to count ticket messages", "metadata_id", meta.ID(), "error", err)
		return nil, fmt.Errorf("failed to count messages: %w", err)
	}

	return dto.ToTicketDTO(meta, count), nil
}

func loadTicket(ctx context.Context, repo archive.TicketMetadataRepository, channelID string) (*archive.TicketMetadata, error) {
	if channelID == "" {
		return nil, errors.NewValidationError("channel id is required")
	}
	meta, err := repo.GetByChannelID(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ticket: %w", err)
	}
	if meta == nil {
		return nil, errors.NewNotFoundError("ticket not found", channelID)
	}
	return meta, nil
}
