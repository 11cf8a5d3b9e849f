package usecases

import (
	"context"
	"fmt"

	"github.com/orris-inc/archy/internal/application/ai"
	"github.com/orris-inc/archy/internal/domain/archive"
	"github.com/orris-inc/archy/internal/shared/logger"
)

type RestoreTicketCommand struct {
	MetadataID uint
	ChannelID  string
	// MessageID is the message the restore thread is started from.
	MessageID       string
	IsDirectMessage bool
}

type RestoreTicketResult struct {
	ThreadID     string
	MessagesSent int
	FilesSent    int
	Completed    bool
}

// RestoreTicketUseCase replays an archived ticket, media included, into a new
// thread under the requesting message.
type RestoreTicketUseCase struct {
	metadataRepo archive.TicketMetadataRepository
	messageRepo  archive.TicketMessageRepository
	fileRepo     archive.TicketFileRepository
	summarizer   Summarizer
	threads      ThreadPoster
	notifier     Notifier
	logger       logger.Interface
}

func NewRestoreTicketUseCase(
	metadataRepo archive.TicketMetadataRepository,
	messageRepo archive.TicketMessageRepository,
	fileRepo archive.TicketFileRepository,
	summarizer Summarizer,
	threads ThreadPoster,
	notifier Notifier,
	logger logger.Interface,
) *RestoreTicketUseCase {
	return &RestoreTicketUseCase{
		metadataRepo: metadataRepo,
		messageRepo:  messageRepo,
		fileRepo:     fileRepo,
		summarizer:   summarizer,
		threads:      threads,
		notifier:     notifier,
		logger:       logger,
	}
}

// Execute reports failures to the requesting channel and returns a nil error
// for them.
func (uc *RestoreTicketUseCase) Execute(ctx context.Context, cmd RestoreTicketCommand) (*RestoreTicketResult, error) {
	uc.logger.Infow("executing restore ticket use case", "metadata_id", cmd.MetadataID, "channel_id", cmd.ChannelID)

	result := &RestoreTicketResult{}
	if err := uc.run(ctx, cmd, result); err != nil {
		uc.logger.Errorw("restore failed", "metadata_id", cmd.MetadataID, "error", err)
		return result, uc.notifier.SendMessage(ctx, cmd.ChannelID, fmt.Sprintf(noticeRestoreFailed, err))
	}
	return result, nil
}

func (uc *RestoreTicketUseCase) run(ctx context.Context, cmd RestoreTicketCommand, result *RestoreTicketResult) error {
	if cmd.IsDirectMessage {
		return uc.notifier.SendMessage(ctx, cmd.ChannelID, noticeRestoreDM)
	}

	meta, err := uc.metadataRepo.GetByID(ctx, cmd.MetadataID)
	if err != nil {
		return err
	}
	if meta == nil {
		return uc.notifier.SendMessage(ctx, cmd.ChannelID, fmt.Sprintf(noticeTicketNotFound, cmd.MetadataID))
	}

	msgs, err := uc.messageRepo.ListByMetadataID(ctx, meta.ID(), false)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return uc.notifier.SendMessage(ctx, cmd.ChannelID, noticeNoTicketMessages)
	}

	summary, err := uc.summarize(ctx, msgs)
	if err != nil {
		return err
	}

	threadID, err := uc.threads.StartThreadFromMessage(ctx, cmd.ChannelID, cmd.MessageID, fmt.Sprintf(noticeRestoreThreadName, meta.ThreadTitle()))
	if err != nil {
		return err
	}
	result.ThreadID = threadID

	if err := uc.notifier.SendMessage(ctx, threadID, fmt.Sprintf(noticeRestoreHeader, meta.ThreadTitle(), summary)); err != nil {
		return err
	}
	for _, m := range msgs {
		if err := uc.notifier.SendMessage(ctx, threadID, fmt.Sprintf(noticeRestoreLine, m.Author(), m.Content())); err != nil {
			return err
		}
		result.MessagesSent++
	}

	files, err := uc.fileRepo.ListByMetadataID(ctx, meta.ID())
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := uc.threads.SendFile(ctx, threadID, f.Filename(), f.ContentType(), f.Data()); err != nil {
			return err
		}
		result.FilesSent++
	}

	if err := uc.notifier.SendMessage(ctx, threadID, noticeRestoreComplete); err != nil {
		return err
	}
	result.Completed = true
	uc.logger.Infow("ticket restored", "metadata_id", meta.ID(), "thread_id", threadID, "messages", result.MessagesSent, "files", result.FilesSent)
	return nil
}

// summarize covers the text messages only; a ticket holding only media gets an
// empty summary.
func (uc *RestoreTicketUseCase) summarize(ctx context.Context, msgs []*archive.TicketMessage) (string, error) {
	log := make([]archive.LogEntry, 0, len(msgs))
	for _, m := range msgs {
		if !m.MediaOnly() {
			log = append(log, m.LogEntry())
		}
	}
	if len(log) == 0 {
		return "", nil
	}
	log, _ = ai.LimitForSummary(log)
	return uc.summarizer.Summarize(ctx, log)
}
