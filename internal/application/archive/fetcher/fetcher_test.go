package fetcher

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/archy/internal/domain/archive"
	"github.com/orris-inc/archy/internal/shared/logger"
)

var base = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

// fakeChannel serves a history of n messages (id i+1 at base+i minutes) newest first.
type fakeChannel struct {
	history []archive.ChatMessage
	calls   int
	failAt  int
}

func newFakeChannel(n int) *fakeChannel {
	h := make([]archive.ChatMessage, n)
	for i := range h {
		h[i] = archive.ChatMessage{
			ID:        fmt.Sprint(i + 1),
			Author:    archive.Author{Username: "alice"},
			Content:   fmt.Sprintf("message %d", i+1),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
	}
	return &fakeChannel{history: h, failAt: -1}
}

func (c *fakeChannel) FetchPage(_ context.Context, _ string, before string, limit int) ([]archive.ChatMessage, error) {
	c.calls++
	if c.failAt == c.calls {
		return nil, errors.New("503 service unavailable")
	}
	end := len(c.history)
	if before != "" {
		for i, m := range c.history {
			if m.ID == before {
				end = i
				break
			}
		}
	}
	start := end - limit
	if start < 0 {
		start = 0
	}
	page := make([]archive.ChatMessage, 0, end-start)
	for i := end - 1; i >= start; i-- {
		page = append(page, c.history[i])
	}
	return page, nil
}

func TestFetchAllPagesBackwardAndSortsAscending(t *testing.T) {
	ch := newFakeChannel(250)
	f := New(ch, logger.NewNopLogger())

	msgs := f.FetchAll(context.Background(), "c1")

	require.Len(t, msgs, 250)
	assert.Equal(t, "1", msgs[0].ID)
	assert.Equal(t, "250", msgs[249].ID)
	assert.Equal(t, 4, ch.calls)
}

func TestFetchSinceStopsAtLowWaterMark(t *testing.T) {
	ch := newFakeChannel(250)
	f := New(ch, logger.NewNopLogger())

	// messages 241..250 are strictly newer than message 240
	msgs := f.FetchSince(context.Background(), "c1", base.Add(239*time.Minute))

	require.Len(t, msgs, 10)
	assert.Equal(t, "241", msgs[0].ID)
	assert.Equal(t, 1, ch.calls)
}

func TestFetchSinceNewerThanEverything(t *testing.T) {
	ch := newFakeChannel(30)
	msgs := New(ch, logger.NewNopLogger()).FetchSince(context.Background(), "c1", base.Add(time.Hour))

	assert.Empty(t, msgs)
	assert.NotNil(t, msgs)
}

func TestFetchErrorYieldsEmpty(t *testing.T) {
	ch := newFakeChannel(250)
	ch.failAt = 2

	msgs := New(ch, logger.NewNopLogger()).FetchAll(context.Background(), "c1")
	assert.Empty(t, msgs)
}

func TestFetchStopsAtPageCeiling(t *testing.T) {
	ch := newFakeChannel(500)
	f := New(ch, logger.NewNopLogger())
	f.maxPages = 2

	msgs := f.FetchAll(context.Background(), "c1")

	require.Len(t, msgs, 200)
	assert.Equal(t, "301", msgs[0].ID)
	assert.Equal(t, 2, ch.calls)
}
