package usecases

import (
	"context"
	"fmt"

	"github.com/orris-inc/archy/internal/application/archive/dto"
	"github.com/orris-inc/archy/internal/domain/archive"
	"github.com/orris-inc/archy/internal/shared/logger"
)

type ListTicketMessagesQuery struct {
	ChannelID string
	TextOnly  bool
}

type ListTicketMessagesResult struct {
	Messages []dto.MessageDTO
	Total    int
}

type ListTicketMessagesUseCase struct {
	metadataRepo archive.TicketMetadataRepository
	messageRepo  archive.TicketMessageRepository
	logger       logger.Interface
}

func NewListTicketMessagesUseCase(
	metadataRepo archive.TicketMetadataRepository,
	messageRepo archive.TicketMessageRepository,
	logger logger.Interface,
) *ListTicketMessagesUseCase {
	return &ListTicketMessagesUseCase{
		metadataRepo: metadataRepo,
		messageRepo:  messageRepo,
		logger:       logger,
	}
}

func (uc *ListTicketMessagesUseCase) Execute(ctx context.Context, query ListTicketMessagesQuery) (*ListTicketMessagesResult, error) {
	meta, err := loadTicket(ctx, uc.metadataRepo, query.ChannelID)
	if err != nil {
		return nil, err
	}

	msgs, err := uc.messageRepo.ListByMetadataID(ctx, meta.ID(), query.TextOnly)
	if err != nil {
		uc.logger.Errorw("failed to list ticket messages", "metadata_id", meta.ID(), "error", err)
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	return &ListTicketMessagesResult{
		Messages: dto.ToMessageDTOs(msgs),
		Total:    len(msgs),
	}, nil
}
