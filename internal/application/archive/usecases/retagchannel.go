package usecases

import (
	"context"
	"fmt"

	"github.com/orris-inc/archy/internal/domain/archive"
	"github.com/orris-inc/archy/internal/shared/logger"
)

type RetagChannelCommand struct {
	ChannelID string
}

type RetagChannelResult struct {
	Tags []string
	// Stored is true when an archived ticket for the channel received the new tags.
	Stored bool
}

// RetagChannelUseCase posts freshly generated tags for a live channel and,
// when the channel was archived before, replaces the stored tags.
type RetagChannelUseCase struct {
	fetcher      MessageFetcher
	assistant    TicketAssistant
	notifier     Notifier
	metadataRepo archive.TicketMetadataRepository
	indexer      TicketIndexer
	logger       logger.Interface
}

func NewRetagChannelUseCase(
	fetcher MessageFetcher,
	assistant TicketAssistant,
	notifier Notifier,
	metadataRepo archive.TicketMetadataRepository,
	indexer TicketIndexer,
	logger logger.Interface,
) *RetagChannelUseCase {
	return &RetagChannelUseCase{
		fetcher:      fetcher,
		assistant:    assistant,
		notifier:     notifier,
		metadataRepo: metadataRepo,
		indexer:      indexer,
		logger:       logger,
	}
}

func (uc *RetagChannelUseCase) Execute(ctx context.Context, cmd RetagChannelCommand) (*RetagChannelResult, error) {
	uc.logger.Infow("executing retag channel use case", "channel_id", cmd.ChannelID)

	msgs := uc.fetcher.FetchAll(ctx, cmd.ChannelID)
	if len(msgs) == 0 {
		return &RetagChannelResult{}, uc.notifier.SendMessage(ctx, cmd.ChannelID, noticeTagsFetchFailed)
	}

	raw, tags, err := uc.assistant.GenerateTags(ctx, archive.TextLog(msgs))
	if err != nil {
		uc.logger.Warnw("failed to generate tags", "channel_id", cmd.ChannelID, "error", err)
		return &RetagChannelResult{}, uc.notifier.SendMessage(ctx, cmd.ChannelID, noticeTagsFailed)
	}

	if err := uc.notifier.SendMessage(ctx, cmd.ChannelID, fmt.Sprintf(noticeTags, raw)); err != nil {
		return nil, err
	}

	result := &RetagChannelResult{Tags: tags}
	if len(tags) == 0 {
		return result, nil
	}

	meta, err := uc.metadataRepo.GetByChannelID(ctx, cmd.ChannelID)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return result, nil
	}

	meta.Retag(tags)
	if err := uc.metadataRepo.Update(ctx, meta); err != nil {
		return nil, err
	}
	result.Stored = true
	uc.logger.Infow("stored regenerated tags", "metadata_id", meta.ID(), "tags", tags)

	if uc.indexer != nil {
		if err := uc.indexer.Upsert(ctx, meta.ID(), meta.Document()); err != nil {
			uc.logger.Warnw("failed to reindex ticket", "metadata_id", meta.ID(), "error", err)
		}
	}
	return result, nil
}
