package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/orris-inc/archy/internal/application/archive/dto"
	"github.com/orris-inc/archy/internal/domain/archive"
	"github.com/orris-inc/archy/internal/shared/errors"
	"github.com/orris-inc/archy/internal/shared/logger"
	"github.com/orris-inc/archy/internal/shared/services/markdown"
)

type TranscriptFormat string

const (
	TranscriptHTML TranscriptFormat = "html"
	TranscriptYAML TranscriptFormat = "yaml"
	TranscriptJSON TranscriptFormat = "json"
)

// ParseTranscriptFormat defaults to HTML when empty.
func ParseTranscriptFormat(s string) (TranscriptFormat, error) {
	switch f := TranscriptFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return TranscriptHTML, nil
	case TranscriptHTML, TranscriptYAML, TranscriptJSON:
		return f, nil
	default:
		return "", errors.NewValidationError("unsupported transcript format", s)
	}
}

func (f TranscriptFormat) ContentType() string {
	switch f {
	case TranscriptYAML:
		return "application/yaml; charset=utf-8"
	case TranscriptJSON:
		return "application/json; charset=utf-8"
	default:
		return "text/html; charset=utf-8"
	}
}

type ExportTranscriptQuery struct {
	ChannelID string
	Format    TranscriptFormat
}

type ExportTranscriptResult struct {
	Body        []byte
	ContentType string
	Filename    string
}

type ExportTranscriptUseCase struct {
	metadataRepo archive.TicketMetadataRepository
	messageRepo  archive.TicketMessageRepository
	fileRepo     archive.TicketFileRepository
	renderer     markdown.Renderer
	logger       logger.Interface
}

func NewExportTranscriptUseCase(
	metadataRepo archive.TicketMetadataRepository,
	messageRepo archive.TicketMessageRepository,
	fileRepo archive.TicketFileRepository,
	renderer markdown.Renderer,
	logger logger.Interface,
) *ExportTranscriptUseCase {
	return &ExportTranscriptUseCase{
		metadataRepo: metadataRepo,
		messageRepo:  messageRepo,
		fileRepo:     fileRepo,
		renderer:     renderer,
		logger:       logger,
	}
}

func (uc *ExportTranscriptUseCase) Execute(ctx context.Context, query ExportTranscriptQuery) (*ExportTranscriptResult, error) {
	uc.logger.Infow("executing export transcript use case", "channel_id", query.ChannelID, "format", query.Format)

	meta, err := loadTicket(ctx, uc.metadataRepo, query.ChannelID)
	if err != nil {
		return nil, err
	}
	msgs, err := uc.messageRepo.ListByMetadataID(ctx, meta.ID(), false)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	files, err := uc.fileRepo.ListByMetadataID(ctx, meta.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	transcript := dto.ToTranscriptDTO(meta, msgs, files)

	format := query.Format
	if format == "" {
		format = TranscriptHTML
	}

	var body []byte
	switch format {
	case TranscriptJSON:
		body, err = json.MarshalIndent(transcript, "", "  ")
	case TranscriptYAML:
		body, err = yaml.Marshal(transcript)
	case TranscriptHTML:
		var page string
		page, err = uc.renderer.Document(transcript.Title, transcriptMarkdown(transcript))
		body = []byte(page)
	default:
		return nil, errors.NewValidationError("unsupported transcript format", string(format))
	}
	if err != nil {
		uc.logger.Errorw("failed to encode transcript", "channel_id", query.ChannelID, "format", format, "error", err)
		return nil, fmt.Errorf("failed to encode transcript: %w", err)
	}

	return &ExportTranscriptResult{
		Body:        body,
		ContentType: format.ContentType(),
		Filename:    fmt.Sprintf("ticket-%s.%s", meta.ChannelID(), format),
	}, nil
}

func transcriptMarkdown(t *dto.TranscriptDTO) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", t.Title)
	if t.PropertyName != "" {
		fmt.Fprintf(&b, "- **Property:** %s\n", t.PropertyName)
	}
	fmt.Fprintf(&b, "- **Sale ID:** %s\n", t.SaleID)
	if len(t.Staff) > 0 {
		fmt.Fprintf(&b, "- **Staff:** %s\n", strings.Join(t.Staff, ", "))
	}
	if len(t.Tags) > 0 {
		fmt.Fprintf(&b, "- **Tags:** %s\n", strings.Join(t.Tags, ", "))
	}
	if t.Summary != "" {
		fmt.Fprintf(&b, "\n## Summary\n\n%s\n", t.Summary)
	}

	b.WriteString("\n## Conversation\n\n")
	for _, m := range t.Messages {
		fmt.Fprintf(&b, "**%s** _%s_\n%s\n\n", m.Author, m.Timestamp.UTC().Format("2006-01-02 15:04"), m.Content)
	}

	if len(t.Files) > 0 {
		b.WriteString("## Files\n\n")
		for _, f := range t.Files {
			fmt.Fprintf(&b, "- %s (%s, %d bytes)\n", f.Filename, f.ContentType, f.Size)
		}
	}
	return b.String()
}
