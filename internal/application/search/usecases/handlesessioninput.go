package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/orris-inc/archy/internal/application/ai"
	"github.com/orris-inc/archy/internal/domain/archive"
	"github.com/orris-inc/archy/internal/domain/search"
	"github.com/orris-inc/archy/internal/shared/logger"
)

type SessionInputCommand struct {
	UserID          string
	ChannelID       string
	GuildID         string
	MessageID       string
	Content         string
	IsDirectMessage bool
}

// HandleSessionInputUseCase advances a user's live search session with their
// next message. Messages from users without a session are not handled.
type HandleSessionInputUseCase struct {
	sessions    search.SessionStore
	messageRepo archive.TicketMessageRepository
	summarizer  Summarizer
	restorer    TicketRestorer
	notifier    Notifier
	sessionTTL  time.Duration
	logger      logger.Interface
}

func NewHandleSessionInputUseCase(
	sessions search.SessionStore,
	messageRepo archive.TicketMessageRepository,
	summarizer Summarizer,
	restorer TicketRestorer,
	notifier Notifier,
	sessionTTL time.Duration,
	logger logger.Interface,
) *HandleSessionInputUseCase {
	return &HandleSessionInputUseCase{
		sessions:    sessions,
		messageRepo: messageRepo,
		summarizer:  summarizer,
		restorer:    restorer,
		notifier:    notifier,
		sessionTTL:  sessionTTL,
		logger:      logger,
	}
}

// Execute reports whether the message was consumed by a session.
func (uc *HandleSessionInputUseCase) Execute(ctx context.Context, cmd SessionInputCommand) (bool, error) {
	session, err := uc.sessions.Get(ctx, cmd.UserID)
	if errors.Is(err, search.ErrCorruptSession) {
		uc.logger.Warnw("discarding undecodable search session", "user_id", cmd.UserID, "error", err)
		return false, uc.sessions.Delete(ctx, cmd.UserID)
	}
	if err != nil {
		return false, fmt.Errorf("failed to load search session: %w", err)
	}
	if session == nil {
		return false, nil
	}
	if err := session.Validate(); err != nil {
		uc.logger.Warnw("discarding corrupt search session", "user_id", cmd.UserID, "error", err)
		return false, uc.sessions.Delete(ctx, cmd.UserID)
	}

	switch session.Step {
	case search.StepAwaitingSelection:
		return true, uc.selectCandidate(ctx, cmd, session)
	case search.StepAwaitingAction:
		return true, uc.runAction(ctx, cmd, session)
	}
	return false, nil
}

func (uc *HandleSessionInputUseCase) selectCandidate(ctx context.Context, cmd SessionInputCommand, session *search.Session) error {
	chosen, err := session.Select(cmd.Content)
	if err != nil {
		var invalid *search.ErrInvalidSelection
		if errors.As(err, &invalid) {
			return uc.notifier.SendMessage(ctx, cmd.ChannelID, invalid.Error())
		}
		return err
	}

	if err := uc.sessions.Set(ctx, session, uc.sessionTTL); err != nil {
		return fmt.Errorf("failed to store search session: %w", err)
	}
	uc.logger.Infow("search candidate selected", "user_id", cmd.UserID, "metadata_id", chosen.MetadataID)
	name := chosen.NameOr(chosen.ChannelID)
	if name == "" {
		name = "untitled"
	}
	return uc.notifier.SendMessage(ctx, cmd.ChannelID, fmt.Sprintf(noticeSelected, name))
}

func (uc *HandleSessionInputUseCase) runAction(ctx context.Context, cmd SessionInputCommand, session *search.Session) error {
	selected := session.Selected

	switch search.ParseAction(cmd.Content) {
	case search.ActionSummary:
		err := uc.summarize(ctx, cmd.ChannelID, selected)
		if derr := uc.sessions.Delete(ctx, cmd.UserID); derr != nil {
			uc.logger.Warnw("failed to delete search session", "user_id", cmd.UserID, "error", derr)
		}
		return err
	case search.ActionRestore:
		_, err := uc.restorer.Execute(ctx, RestoreTicketCommand{
			MetadataID:      selected.MetadataID,
			ChannelID:       cmd.ChannelID,
			MessageID:       cmd.MessageID,
			IsDirectMessage: cmd.IsDirectMessage || cmd.GuildID == "",
		})
		if derr := uc.sessions.Delete(ctx, cmd.UserID); derr != nil {
			uc.logger.Warnw("failed to delete search session", "user_id", cmd.UserID, "error", derr)
		}
		return err
	default:
		return uc.notifier.SendMessage(ctx, cmd.ChannelID, noticeChooseAction)
	}
}

func (uc *HandleSessionInputUseCase) summarize(ctx context.Context, channelID string, selected *search.Candidate) error {
	msgs, err := uc.messageRepo.ListByMetadataID(ctx, selected.MetadataID, true)
	if err != nil {
		return fmt.Errorf("failed to load ticket messages: %w", err)
	}
	log := make([]archive.LogEntry, 0, len(msgs))
	for _, m := range msgs {
		log = append(log, m.LogEntry())
	}
	if len(log) == 0 {
		return uc.notifier.SendMessage(ctx, channelID, noticeNoSummaryInput)
	}

	log, _ = ai.LimitForSummary(log)
	summary, err := uc.summarizer.Summarize(ctx, log)
	if err != nil {
		uc.logger.Warnw("failed to summarize stored ticket", "metadata_id", selected.MetadataID, "error", err)
		return uc.notifier.SendMessage(ctx, channelID, noticeSummaryFailed)
	}
	return uc.notifier.SendMessage(ctx, channelID, fmt.Sprintf(noticeTicketSummary, selected.NameOr("ticket"), summary))
}
