// Package bot turns inbound chat messages into use case calls.
package bot

import (
	"context"
	"fmt"

	archiveUsecases "github.com/orris-inc/archy/internal/application/archive/usecases"
	searchUsecases "github.com/orris-inc/archy/internal/application/search/usecases"
	"github.com/orris-inc/archy/internal/domain/archive"
	"github.com/orris-inc/archy/internal/infrastructure/discord"
	"github.com/orris-inc/archy/internal/interfaces/bot/command"
	"github.com/orris-inc/archy/internal/shared/logger"
	"github.com/orris-inc/archy/internal/shared/utils/logutil"
	"github.com/orris-inc/archy/internal/shared/version"
)

// ChatClient is satisfied by *discord.Client.
type ChatClient interface {
	SendMessage(ctx context.Context, channelID, content string) error
	RoleNames(ctx context.Context, guildID string, roleIDs []string) ([]string, error)
}

type SessionInputHandler interface {
	Execute(ctx context.Context, cmd searchUsecases.SessionInputCommand) (bool, error)
}

// ClosureIntents is satisfied by *cache.ClosureIntentStore.
type ClosureIntents interface {
	Consume(ctx context.Context, channelID, userID string) (bool, error)
}

// CommandLimiter is satisfied by *ratelimit.CommandLimiter.
type CommandLimiter interface {
	AllowCommand(ctx context.Context, userID string) (bool, error)
}

type SummaryExecutor interface {
	Execute(ctx context.Context, cmd archiveUsecases.SummarizeChannelCommand) (*archiveUsecases.SummarizeChannelResult, error)
}

type RetagExecutor interface {
	Execute(ctx context.Context, cmd archiveUsecases.RetagChannelCommand) (*archiveUsecases.RetagChannelResult, error)
}

type SearchStarter interface {
	Execute(ctx context.Context, cmd searchUsecases.StartSearchCommand) (*searchUsecases.StartSearchResult, error)
}

// RouterDependencies groups the router's collaborators. Limiter may be nil.
type RouterDependencies struct {
	Chat        ChatClient
	Sessions    SessionInputHandler
	Closure     ClosureIntents
	Limiter     CommandLimiter
	Archive     archiveUsecases.ArchiveTicketExecutor
	Summary     SummaryExecutor
	Retag       RetagExecutor
	Search      SearchStarter
	Diagnostics *Diagnostics
}

// Router implements discord.Handler.
type Router struct {
	deps   RouterDependencies
	logger logger.Interface
}

var _ discord.Handler = (*Router)(nil)

func NewRouter(deps RouterDependencies, logger logger.Interface) *Router {
	return &Router{deps: deps, logger: logger}
}

// HandleMessage runs the session intercept, then the closure intercept, then
// command dispatch. Failures are reported to the channel, so the returned
// error only covers the failure notice itself.
func (r *Router) HandleMessage(ctx context.Context, msg *discord.Message) error {
	if msg.Author.Bot {
		return nil
	}

	if handled, err := r.deps.Sessions.Execute(ctx, searchUsecases.SessionInputCommand{
		UserID:          msg.Author.ID,
		ChannelID:       msg.ChannelID,
		GuildID:         msg.GuildID,
		MessageID:       msg.ID,
		Content:         msg.Content,
		IsDirectMessage: msg.IsDirect(),
	}); handled {
		if err != nil {
			return r.fail(ctx, msg, err)
		}
		return nil
	} else if err != nil {
		r.logger.Warnw("search session lookup failed", "user_id", msg.Author.ID, "error", err)
	}

	if done, err := r.handleClosure(ctx, msg); done || err != nil {
		return err
	}

	cmd := command.Parse(msg.Content)
	if _, ok := cmd.(command.None); ok {
		return nil
	}

	r.logger.Infow("dispatching command",
		"command", command.Name(cmd),
		"content", logutil.TruncateForLog(msg.Content, 64),
		"user_id", msg.Author.ID,
		"channel_id", msg.ChannelID,
	)
	if err := r.dispatch(ctx, msg, cmd); err != nil {
		return r.fail(ctx, msg, err)
	}
	return nil
}

// handleClosure answers a pending close offer. Anything that is neither yes
// nor no drops the offer and falls through to normal processing.
func (r *Router) handleClosure(ctx context.Context, msg *discord.Message) (bool, error) {
	if r.deps.Closure == nil || msg.IsDirect() {
		return false, nil
	}

	pending, err := r.deps.Closure.Consume(ctx, msg.ChannelID, msg.Author.ID)
	if err != nil {
		r.logger.Warnw("failed to check closure intent", "channel_id", msg.ChannelID, "error", err)
		return false, nil
	}
	if !pending {
		return false, nil
	}

	switch {
	case archive.IsAffirmative(msg.Content):
		r.logger.Infow("ticket closure confirmed", "channel_id", msg.ChannelID, "user_id", msg.Author.ID)
		return true, r.deps.Chat.SendMessage(ctx, msg.ChannelID, noticeClosureOK)
	case archive.IsNegative(msg.Content):
		return true, r.deps.Chat.SendMessage(ctx, msg.ChannelID, noticeClosureKeep)
	default:
		return false, nil
	}
}

func (r *Router) dispatch(ctx context.Context, msg *discord.Message, cmd command.Command) error {
	switch c := cmd.(type) {
	case command.Ping:
		return r.deps.Chat.SendMessage(ctx, msg.ChannelID, noticePong)
	case command.Info:
		return r.deps.Chat.SendMessage(ctx, msg.ChannelID, fmt.Sprintf(noticeInfoTemplate, version.String()))
	case command.Thanks:
		return r.deps.Chat.SendMessage(ctx, msg.ChannelID, noticeThanks)
	case command.Ghostbusters:
		return r.deps.Chat.SendMessage(ctx, msg.ChannelID, r.deps.Diagnostics.Report())
	case command.Summary:
		_, err := r.deps.Summary.Execute(ctx, archiveUsecases.SummarizeChannelCommand{ChannelID: msg.ChannelID})
		return err
	case command.Retag:
		_, err := r.deps.Retag.Execute(ctx, archiveUsecases.RetagChannelCommand{ChannelID: msg.ChannelID})
		return err
	case command.Archive:
		if ok, err := r.allow(ctx, msg); !ok || err != nil {
			return err
		}
		return r.archive(ctx, msg, c.Speed)
	case command.Search:
		if ok, err := r.allow(ctx, msg); !ok || err != nil {
			return err
		}
		_, err := r.deps.Search.Execute(ctx, searchUsecases.StartSearchCommand{
			UserID:    msg.Author.ID,
			ChannelID: msg.ChannelID,
			GuildID:   msg.GuildID,
			Query:     c.Query,
		})
		return err
	default:
		return r.deps.Chat.SendMessage(ctx, msg.ChannelID, noticeUnknown)
	}
}

func (r *Router) archive(ctx context.Context, msg *discord.Message, speed bool) error {
	var roleNames []string
	if !msg.IsDirect() {
		names, err := r.deps.Chat.RoleNames(ctx, msg.GuildID, msg.RoleIDs())
		if err != nil {
			return fmt.Errorf("failed to resolve roles: %w", err)
		}
		roleNames = names
	}

	_, err := r.deps.Archive.Execute(ctx, archiveUsecases.ArchiveTicketCommand{
		ChannelID:       msg.ChannelID,
		GuildID:         msg.GuildID,
		UserID:          msg.Author.ID,
		Username:        msg.Author.Username,
		RoleNames:       roleNames,
		IsDirectMessage: msg.IsDirect(),
		SpeedMode:       speed,
	})
	return err
}

// allow fails open when the limiter itself is unavailable.
func (r *Router) allow(ctx context.Context, msg *discord.Message) (bool, error) {
	if r.deps.Limiter == nil {
		return true, nil
	}
	ok, err := r.deps.Limiter.AllowCommand(ctx, msg.Author.ID)
	if err != nil {
		r.logger.Warnw("rate limiter unavailable", "user_id", msg.Author.ID, "error", err)
		return true, nil
	}
	if !ok {
		return false, r.deps.Chat.SendMessage(ctx, msg.ChannelID, noticeRateLimited)
	}
	return true, nil
}

func (r *Router) fail(ctx context.Context, msg *discord.Message, err error) error {
	r.logger.Errorw("command failed", "channel_id", msg.ChannelID, "user_id", msg.Author.ID, "error", err)
	return r.deps.Chat.SendMessage(ctx, msg.ChannelID, fmt.Sprintf(noticeFailed, err))
}
