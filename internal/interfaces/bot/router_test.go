package bot

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	archiveUsecases "github.com/orris-inc/archy/internal/application/archive/usecases"
	searchUsecases "github.com/orris-inc/archy/internal/application/search/usecases"
	"github.com/orris-inc/archy/internal/infrastructure/discord"
	"github.com/orris-inc/archy/internal/shared/logger"
)

type routerFixture struct {
	chat     *mockChat
	sessions *mockSessions
	closure  *mockClosure
	archive  *mockArchive
	summary  *mockSummary
	retag    *mockRetag
	search   *mockSearch
	router   *Router
}

func newRouterFixture(limiter CommandLimiter) *routerFixture {
	f := &routerFixture{
		chat:     &mockChat{roleNames: []string{"Manager"}},
		sessions: &mockSessions{},
		closure:  &mockClosure{pending: map[string]bool{}},
		archive:  &mockArchive{},
		summary:  &mockSummary{},
		retag:    &mockRetag{},
		search:   &mockSearch{},
	}
	f.router = NewRouter(RouterDependencies{
		Chat:        f.chat,
		Sessions:    f.sessions,
		Closure:     f.closure,
		Limiter:     limiter,
		Archive:     f.archive,
		Summary:     f.summary,
		Retag:       f.retag,
		Search:      f.search,
		Diagnostics: NewDiagnostics(time.Now().Add(-time.Minute)),
	}, logger.NewNopLogger())
	return f
}

func guildMessage(content string) *discord.Message {
	return &discord.Message{
		ID:        "m1",
		ChannelID: "c1",
		GuildID:   "g1",
		Author:    discord.User{ID: "u1", Username: "alice"},
		Member:    &discord.Member{Roles: []string{"r1"}},
		Content:   content,
	}
}

func TestRouter_IgnoresBots(t *testing.T) {
	f := newRouterFixture(nil)
	msg := guildMessage("!ping")
	msg.Author.Bot = true

	require.NoError(t, f.router.HandleMessage(context.Background(), msg))
	assert.Empty(t, f.chat.sent)
}

func TestRouter_SimpleCommands(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"!ping", noticePong},
		{"!THANKS", noticeThanks},
		{"!frobnicate", noticeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			f := newRouterFixture(nil)
			require.NoError(t, f.router.HandleMessage(context.Background(), guildMessage(tt.text)))
			assert.Equal(t, []string{tt.want}, f.chat.sent)
		})
	}
}

func TestRouter_InfoAndGhostbusters(t *testing.T) {
	f := newRouterFixture(nil)
	require.NoError(t, f.router.HandleMessage(context.Background(), guildMessage("!info")))
	require.NoError(t, f.router.HandleMessage(context.Background(), guildMessage("!ghostbusters")))

	require.Len(t, f.chat.sent, 2)
	assert.Contains(t, f.chat.sent[0], "**ArchyBot Info:**")
	assert.Contains(t, f.chat.sent[0], "!search")
	assert.Contains(t, f.chat.sent[1], "PID:")
	assert.Contains(t, f.chat.sent[1], "Goroutines:")
}

func TestRouter_PlainChatIgnored(t *testing.T) {
	f := newRouterFixture(nil)
	require.NoError(t, f.router.HandleMessage(context.Background(), guildMessage("just chatting")))
	assert.Empty(t, f.chat.sent)
}

func TestRouter_SessionInterceptsFirst(t *testing.T) {
	f := newRouterFixture(nil)
	var got searchUsecases.SessionInputCommand
	f.sessions.ExecuteFunc = func(ctx context.Context, cmd searchUsecases.SessionInputCommand) (bool, error) {
		got = cmd
		return true, nil
	}

	require.NoError(t, f.router.HandleMessage(context.Background(), guildMessage("!ping")))
	assert.Empty(t, f.chat.sent)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "m1", got.MessageID)
	assert.Zero(t, f.closure.consumed)
}

func TestRouter_SessionErrorReported(t *testing.T) {
	f := newRouterFixture(nil)
	f.sessions.ExecuteFunc = func(ctx context.Context, cmd searchUsecases.SessionInputCommand) (bool, error) {
		return true, errors.New("thread creation denied")
	}

	require.NoError(t, f.router.HandleMessage(context.Background(), guildMessage("restore")))
	assert.Equal(t, []string{"❌ Command failed: thread creation denied"}, f.chat.sent)
}

func TestRouter_SessionStoreDownFallsThrough(t *testing.T) {
	f := newRouterFixture(nil)
	f.sessions.ExecuteFunc = func(ctx context.Context, cmd searchUsecases.SessionInputCommand) (bool, error) {
		return false, errors.New("redis down")
	}

	require.NoError(t, f.router.HandleMessage(context.Background(), guildMessage("!ping")))
	assert.Equal(t, []string{noticePong}, f.chat.sent)
}

func TestRouter_ClosureIntent(t *testing.T) {
	tests := []struct {
		name     string
		reply    string
		wantSent []string
	}{
		{"affirmative", "Yes please!", []string{noticeClosureOK}},
		{"negative", "not now", []string{noticeClosureKeep}},
		{"anything else is processed normally", "!ping", []string{noticePong}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRouterFixture(nil)
			f.closure.pending["c1:u1"] = true

			require.NoError(t, f.router.HandleMessage(context.Background(), guildMessage(tt.reply)))
			assert.Equal(t, tt.wantSent, f.chat.sent)
			assert.Empty(t, f.closure.pending)
		})
	}
}

func TestRouter_ClosureOnlyForPendingUser(t *testing.T) {
	f := newRouterFixture(nil)
	f.closure.pending["c1:someone-else"] = true

	require.NoError(t, f.router.HandleMessage(context.Background(), guildMessage("yes")))
	assert.Empty(t, f.chat.sent)
	assert.True(t, f.closure.pending["c1:someone-else"])
}

func TestRouter_ArchiveResolvesRoles(t *testing.T) {
	f := newRouterFixture(nil)

	require.NoError(t, f.router.HandleMessage(context.Background(), guildMessage("!archive speed")))
	require.Len(t, f.archive.calls, 1)
	cmd := f.archive.calls[0]
	assert.Equal(t, archiveUsecases.ArchiveTicketCommand{
		ChannelID: "c1",
		GuildID:   "g1",
		UserID:    "u1",
		Username:  "alice",
		RoleNames: []string{"Manager"},
		SpeedMode: true,
	}, cmd)
}

func TestRouter_ArchiveInDirectMessageSkipsRoles(t *testing.T) {
	f := newRouterFixture(nil)
	msg := guildMessage("!archive")
	msg.GuildID = ""
	msg.Member = nil

	require.NoError(t, f.router.HandleMessage(context.Background(), msg))
	require.Len(t, f.archive.calls, 1)
	assert.True(t, f.archive.calls[0].IsDirectMessage)
	assert.Zero(t, f.chat.roleCalls)
}

func TestRouter_RoleLookupFailure(t *testing.T) {
	f := newRouterFixture(nil)
	f.chat.roleErr = errors.New("403 missing access")

	require.NoError(t, f.router.HandleMessage(context.Background(), guildMessage("!archive")))
	assert.Empty(t, f.archive.calls)
	require.Len(t, f.chat.sent, 1)
	assert.True(t, strings.HasPrefix(f.chat.sent[0], "❌ Command failed: failed to resolve roles"))
}

func TestRouter_RateLimited(t *testing.T) {
	limiter := &mockLimiter{AllowFunc: func(ctx context.Context, userID string) (bool, error) {
		return false, nil
	}}
	f := newRouterFixture(limiter)

	require.NoError(t, f.router.HandleMessage(context.Background(), guildMessage("!search roof")))
	require.NoError(t, f.router.HandleMessage(context.Background(), guildMessage("!archive")))
	assert.Empty(t, f.search.calls)
	assert.Empty(t, f.archive.calls)
	assert.Equal(t, []string{noticeRateLimited, noticeRateLimited}, f.chat.sent)
}

func TestRouter_RateLimiterErrorFailsOpen(t *testing.T) {
	limiter := &mockLimiter{AllowFunc: func(ctx context.Context, userID string) (bool, error) {
		return false, errors.New("redis down")
	}}
	f := newRouterFixture(limiter)

	require.NoError(t, f.router.HandleMessage(context.Background(), guildMessage("!search leaking roof")))
	require.Len(t, f.search.calls, 1)
	assert.Equal(t, "leaking roof", f.search.calls[0].Query)
}

func TestRouter_SummaryAndRetag(t *testing.T) {
	f := newRouterFixture(nil)
	require.NoError(t, f.router.HandleMessage(context.Background(), guildMessage("!summary")))
	require.NoError(t, f.router.HandleMessage(context.Background(), guildMessage("!retag")))
	assert.Equal(t, 1, f.summary.calls)
	assert.Equal(t, 1, f.retag.calls)
}

func TestRouter_HandlerErrorReported(t *testing.T) {
	f := newRouterFixture(nil)
	f.summary.ExecuteFunc = func(ctx context.Context, cmd archiveUsecases.SummarizeChannelCommand) (*archiveUsecases.SummarizeChannelResult, error) {
		return nil, errors.New("boom")
	}

	require.NoError(t, f.router.HandleMessage(context.Background(), guildMessage("!summary")))
	assert.Equal(t, []string{"❌ Command failed: boom"}, f.chat.sent)
}
