// Package fetcher pages backward through a channel's history.
package fetcher

import (
	"context"
	"time"

	"github.com/orris-inc/archy/internal/domain/archive"
	"github.com/orris-inc/archy/internal/shared/logger"
)

const (
	// PageSize is the largest page the chat platform serves.
	PageSize = 100
	// MaxPages bounds a single fetch; reaching it returns what was gathered.
	MaxPages = 100
)

// PageSource returns up to limit messages older than before (newest first).
// An empty before starts from the latest message.
type PageSource interface {
	FetchPage(ctx context.Context, channelID, before string, limit int) ([]archive.ChatMessage, error)
}

type Fetcher struct {
	source   PageSource
	logger   logger.Interface
	maxPages int
}

func New(source PageSource, log logger.Interface) *Fetcher {
	return &Fetcher{source: source, logger: log, maxPages: MaxPages}
}

// FetchAll returns the whole retained history oldest first. Errors are logged
// and yield an empty result.
func (f *Fetcher) FetchAll(ctx context.Context, channelID string) []archive.ChatMessage {
	return f.fetch(ctx, channelID, nil)
}

// FetchSince returns messages strictly newer than since, oldest first, and stops
// paging at the first message at or before it.
func (f *Fetcher) FetchSince(ctx context.Context, channelID string, since time.Time) []archive.ChatMessage {
	return f.fetch(ctx, channelID, &since)
}

func (f *Fetcher) fetch(ctx context.Context, channelID string, since *time.Time) []archive.ChatMessage {
	var (
		all    []archive.ChatMessage
		before string
		pages  int
	)

	for {
		page, err := f.source.FetchPage(ctx, channelID, before, PageSize)
		if err != nil {
			f.logger.Errorw("failed to fetch message page",
				"channel_id", channelID,
				"before", before,
				"pages", pages,
				"error", err,
			)
			return []archive.ChatMessage{}
		}
		if len(page) == 0 {
			break
		}

		done := false
		for _, msg := range page {
			if since != nil && !msg.CreatedAt.After(*since) {
				done = true
				break
			}
			all = append(all, msg)
		}

		before = page[len(page)-1].ID
		pages++
		if done {
			break
		}
		if pages >= f.maxPages {
			f.logger.Warnw("message fetch reached page ceiling, returning partial history",
				"channel_id", channelID,
				"pages", pages,
				"messages", len(all),
			)
			break
		}
	}

	if all == nil {
		return []archive.ChatMessage{}
	}
	archive.SortChronologically(all)
	return all
}
