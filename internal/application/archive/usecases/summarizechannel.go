package usecases

import (
	"context"
	"fmt"

	"github.com/orris-inc/archy/internal/application/ai"
	"github.com/orris-inc/archy/internal/domain/archive"
	"github.com/orris-inc/archy/internal/shared/logger"
)

type SummarizeChannelCommand struct {
	ChannelID string
}

type SummarizeChannelResult struct {
	Summary   string
	Truncated bool
}

// SummarizeChannelUseCase posts an AI summary of a live channel's text messages.
type SummarizeChannelUseCase struct {
	fetcher   MessageFetcher
	assistant TicketAssistant
	notifier  Notifier
	logger    logger.Interface
}

func NewSummarizeChannelUseCase(
	fetcher MessageFetcher,
	assistant TicketAssistant,
	notifier Notifier,
	logger logger.Interface,
) *SummarizeChannelUseCase {
	return &SummarizeChannelUseCase{
		fetcher:   fetcher,
		assistant: assistant,
		notifier:  notifier,
		logger:    logger,
	}
}

func (uc *SummarizeChannelUseCase) Execute(ctx context.Context, cmd SummarizeChannelCommand) (*SummarizeChannelResult, error) {
	uc.logger.Infow("executing summarize channel use case", "channel_id", cmd.ChannelID)

	msgs := uc.fetcher.FetchAll(ctx, cmd.ChannelID)
	if len(msgs) == 0 {
		return &SummarizeChannelResult{}, uc.notifier.SendMessage(ctx, cmd.ChannelID, noticeSummaryFetchFailed)
	}

	summary, truncated, err := SummarizeLog(ctx, uc.assistant, uc.notifier, cmd.ChannelID, archive.TextLog(msgs))
	if err != nil {
		uc.logger.Warnw("failed to summarize channel", "channel_id", cmd.ChannelID, "error", err)
		return &SummarizeChannelResult{}, nil
	}

	if err := uc.notifier.SendMessage(ctx, cmd.ChannelID, fmt.Sprintf(noticeSummary, summary)); err != nil {
		return nil, err
	}
	return &SummarizeChannelResult{Summary: summary, Truncated: truncated}, nil
}

// SummarizeLog applies the summary size cap and posts the user-facing notices
// for an empty log, a truncated log and a provider failure. The returned error
// has already been reported to the channel.
func SummarizeLog(
	ctx context.Context,
	assistant TicketAssistant,
	notifier Notifier,
	channelID string,
	log []archive.LogEntry,
) (string, bool, error) {
	if len(log) == 0 {
		_ = notifier.SendMessage(ctx, channelID, noticeNothingToSummarize)
		return "", false, ai.ErrEmptyLog
	}

	log, truncated := ai.LimitForSummary(log)
	if truncated {
		_ = notifier.SendMessage(ctx, channelID, fmt.Sprintf(noticeLogTooLarge, ai.MaxSummaryMessages))
	}

	summary, err := assistant.Summarize(ctx, log)
	if err != nil {
		_ = notifier.SendMessage(ctx, channelID, noticeSummaryFailed)
		return "", truncated, err
	}
	return summary, truncated, nil
}
