package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/orris-inc/archy/internal/application/archive/dto"
	"github.com/orris-inc/archy/internal/domain/archive"
	apperrors "github.com/orris-inc/archy/internal/shared/errors"
	"github.com/orris-inc/archy/internal/shared/logger"
	"github.com/orris-inc/archy/internal/shared/services/markdown"
)

func seededTicket(t *testing.T) (*memoryMetadataRepository, *mockMessageRepository, *mockFileRepository) {
	t.Helper()
	repo := newMemoryMetadataRepository()
	meta, err := archive.NewTicketMetadata("chan-1", archive.ArchiveDetails{
		Title:        "ticket-0042",
		Summary:      "Roof leak <b>fixed</b>.",
		Tags:         []string{"roof"},
		SaleID:       "S-100",
		PropertyName: "Maple",
	})
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), meta))

	msgs := []*archive.TicketMessage{
		archive.ReconstructTicketMessage(1, meta.ID(), "1000", "alice", "Leak in unit 4", baseTime, false),
		archive.ReconstructTicketMessage(2, meta.ID(), "1001", "alice", "[attachment] leak.png", baseTime.Add(time.Minute), true),
	}
	msgRepo := &mockMessageRepository{
		ListByMetadataIDFunc: func(ctx context.Context, metadataID uint, textOnly bool) ([]*archive.TicketMessage, error) {
			if textOnly {
				return msgs[:1], nil
			}
			return msgs, nil
		},
		CountByMetadataIDFunc: func(ctx context.Context, metadataID uint) (int64, error) {
			return int64(len(msgs)), nil
		},
	}
	fileRepo := &mockFileRepository{
		ListByMetadataIDFunc: func(ctx context.Context, metadataID uint) ([]*archive.TicketFile, error) {
			return []*archive.TicketFile{
				archive.ReconstructTicketFile(5, metadataID, "a1", "leak.png", "image/png", []byte("png"), baseTime),
			}, nil
		},
	}
	return repo, msgRepo, fileRepo
}

func TestGetTicketUseCase_Execute(t *testing.T) {
	repo, msgRepo, _ := seededTicket(t)
	uc := NewGetTicketUseCase(repo, msgRepo, logger.NewNopLogger())

	ticket, err := uc.Execute(context.Background(), GetTicketQuery{ChannelID: "chan-1"})
	require.NoError(t, err)
	assert.Equal(t, "ticket-0042", ticket.Title)
	assert.Equal(t, int64(2), ticket.MessageCount)

	_, err = uc.Execute(context.Background(), GetTicketQuery{ChannelID: "missing"})
	assert.True(t, apperrors.IsNotFoundError(err))

	_, err = uc.Execute(context.Background(), GetTicketQuery{})
	assert.True(t, apperrors.IsValidationError(err))
}

func TestListTicketMessagesUseCase_Execute(t *testing.T) {
	repo, msgRepo, _ := seededTicket(t)
	uc := NewListTicketMessagesUseCase(repo, msgRepo, logger.NewNopLogger())

	all, err := uc.Execute(context.Background(), ListTicketMessagesQuery{ChannelID: "chan-1"})
	require.NoError(t, err)
	assert.Equal(t, 2, all.Total)

	text, err := uc.Execute(context.Background(), ListTicketMessagesQuery{ChannelID: "chan-1", TextOnly: true})
	require.NoError(t, err)
	require.Len(t, text.Messages, 1)
	assert.Equal(t, "Leak in unit 4", text.Messages[0].Content)
}

func TestExportTranscriptUseCase_Execute(t *testing.T) {
	repo, msgRepo, fileRepo := seededTicket(t)
	uc := NewExportTranscriptUseCase(repo, msgRepo, fileRepo, markdown.NewRenderer(), logger.NewNopLogger())
	ctx := context.Background()

	t.Run("json", func(t *testing.T) {
		out, err := uc.Execute(ctx, ExportTranscriptQuery{ChannelID: "chan-1", Format: TranscriptJSON})
		require.NoError(t, err)
		assert.Equal(t, "ticket-chan-1.json", out.Filename)

		var decoded dto.TranscriptDTO
		require.NoError(t, json.Unmarshal(out.Body, &decoded))
		assert.Len(t, decoded.Messages, 2)
		assert.Len(t, decoded.Files, 1)
	})

	t.Run("yaml", func(t *testing.T) {
		out, err := uc.Execute(ctx, ExportTranscriptQuery{ChannelID: "chan-1", Format: TranscriptYAML})
		require.NoError(t, err)

		var decoded map[string]any
		require.NoError(t, yaml.Unmarshal(out.Body, &decoded))
		assert.Equal(t, "S-100", decoded["sale_id"])
		assert.Contains(t, out.ContentType, "yaml")
	})

	t.Run("html is sanitized", func(t *testing.T) {
		out, err := uc.Execute(ctx, ExportTranscriptQuery{ChannelID: "chan-1"})
		require.NoError(t, err)
		page := string(out.Body)
		assert.True(t, strings.HasPrefix(out.ContentType, "text/html"))
		assert.Contains(t, page, "Leak in unit 4")
		assert.NotContains(t, page, "<script")
	})
}

func TestParseTranscriptFormat(t *testing.T) {
	f, err := ParseTranscriptFormat("")
	require.NoError(t, err)
	assert.Equal(t, TranscriptHTML, f)

	f, err = ParseTranscriptFormat(" YAML ")
	require.NoError(t, err)
	assert.Equal(t, TranscriptYAML, f)

	_, err = ParseTranscriptFormat("pdf")
	assert.True(t, apperrors.IsValidationError(err))
}

func TestSummarizeChannelUseCase_Execute(t *testing.T) {
	t.Run("posts summary", func(t *testing.T) {
		fetcher := &mockFetcher{FetchAllFunc: func(ctx context.Context, channelID string) []archive.ChatMessage {
			return chatMessages(3)
		}}
		notifier := &mockNotifier{}
		uc := NewSummarizeChannelUseCase(fetcher, &mockAssistant{}, notifier, logger.NewNopLogger())

		result, err := uc.Execute(context.Background(), SummarizeChannelCommand{ChannelID: "chan-1"})
		require.NoError(t, err)
		assert.False(t, result.Truncated)
		assert.Equal(t, []string{"📄 Summary:\nLeaking roof repaired."}, notifier.sent())
	})

	t.Run("large log is truncated", func(t *testing.T) {
		fetcher := &mockFetcher{FetchAllFunc: func(ctx context.Context, channelID string) []archive.ChatMessage {
			return chatMessages(200)
		}}
		assistant := &mockAssistant{SummarizeFunc: func(ctx context.Context, log []archive.LogEntry) (string, error) {
			assert.Len(t, log, 150)
			return "ok", nil
		}}
		notifier := &mockNotifier{}
		uc := NewSummarizeChannelUseCase(fetcher, assistant, notifier, logger.NewNopLogger())

		result, err := uc.Execute(context.Background(), SummarizeChannelCommand{ChannelID: "chan-1"})
		require.NoError(t, err)
		assert.True(t, result.Truncated)
		assert.Equal(t, "⚠️ Ticket log is very large. Summarizing the last 150 messages only.", notifier.sent()[0])
	})

	t.Run("empty fetch", func(t *testing.T) {
		notifier := &mockNotifier{}
		uc := NewSummarizeChannelUseCase(&mockFetcher{}, &mockAssistant{}, notifier, logger.NewNopLogger())

		_, err := uc.Execute(context.Background(), SummarizeChannelCommand{ChannelID: "chan-1"})
		require.NoError(t, err)
		assert.Equal(t, []string{noticeSummaryFetchFailed}, notifier.sent())
	})

	t.Run("provider failure", func(t *testing.T) {
		fetcher := &mockFetcher{FetchAllFunc: func(ctx context.Context, channelID string) []archive.ChatMessage {
			return chatMessages(3)
		}}
		assistant := &mockAssistant{SummarizeFunc: func(ctx context.Context, log []archive.LogEntry) (string, error) {
			return "", errors.New("rate limited")
		}}
		notifier := &mockNotifier{}
		uc := NewSummarizeChannelUseCase(fetcher, assistant, notifier, logger.NewNopLogger())

		_, err := uc.Execute(context.Background(), SummarizeChannelCommand{ChannelID: "chan-1"})
		require.NoError(t, err)
		assert.Equal(t, []string{noticeSummaryFailed}, notifier.sent())
	})
}

func TestRetagChannelUseCase_Execute(t *testing.T) {
	repo, _, _ := seededTicket(t)
	fetcher := &mockFetcher{FetchAllFunc: func(ctx context.Context, channelID string) []archive.ChatMessage {
		return chatMessages(3)
	}}
	indexer := &mockIndexer{}
	notifier := &mockNotifier{}
	uc := NewRetagChannelUseCase(fetcher, &mockAssistant{}, notifier, repo, indexer, logger.NewNopLogger())

	result, err := uc.Execute(context.Background(), RetagChannelCommand{ChannelID: "chan-1"})
	require.NoError(t, err)
	assert.True(t, result.Stored)
	assert.Equal(t, []string{"🏷️ Tags:\nroof, leak"}, notifier.sent())

	meta, _ := repo.GetByChannelID(context.Background(), "chan-1")
	assert.Equal(t, []string{"roof", "leak"}, meta.Tags())
	assert.Equal(t, []uint{meta.ID()}, indexer.upserts)

	other, err := uc.Execute(context.Background(), RetagChannelCommand{ChannelID: "chan-2"})
	require.NoError(t, err)
	assert.False(t, other.Stored)
}
