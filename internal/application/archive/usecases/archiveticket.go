package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/orris-inc/archy/internal/domain/archive"
	"github.com/orris-inc/archy/internal/shared/errors"
	"github.com/orris-inc/archy/internal/shared/logger"
)

const (
	DefaultChunkSize      = 50
	DefaultTextCharBudget = 8000 * 4
)

type ArchiveOutcome string

const (
	OutcomeCompleted ArchiveOutcome = "completed"
	OutcomeRejected  ArchiveOutcome = "rejected"
	OutcomeEmpty     ArchiveOutcome = "empty"
	OutcomeAborted   ArchiveOutcome = "aborted"
	OutcomeFailed    ArchiveOutcome = "failed"
)

type ArchiveTicketCommand struct {
	ChannelID       string
	GuildID         string
	UserID          string
	Username        string
	RoleNames       []string
	IsDirectMessage bool
	SpeedMode       bool
}

type ArchiveTicketResult struct {
	Outcome          ArchiveOutcome
	MetadataID       uint
	Created          bool
	Incremental      bool
	MessagesFetched  int
	MessagesArchived int
	FilesArchived    int
	FilesSkipped     int
	FailedChunks     int
}

type ArchiveSettings struct {
	ChunkSize      int
	TextCharBudget int
}

// ArchiveTicketDependencies groups the collaborators of the archive pipeline.
// Indexer, Publisher, Closure and Metrics are optional.
type ArchiveTicketDependencies struct {
	Channels     ChannelResolver
	Notifier     Notifier
	Downloader   AttachmentDownloader
	Fetcher      MessageFetcher
	Extractor    MetadataExtractor
	Assistant    TicketAssistant
	Authorizer   ArchiveAuthorizer
	MetadataRepo archive.TicketMetadataRepository
	MessageRepo  archive.TicketMessageRepository
	FileRepo     archive.TicketFileRepository
	TxManager    TransactionRunner
	Indexer      TicketIndexer
	Publisher    ArchiveEventPublisher
	Closure      ClosureIntentRecorder
	Metrics      ArchiveMetrics
}

// ArchiveTicketUseCase copies a ticket channel into durable storage in
// sequential chunks. Chunk 0 derives and upserts the metadata row; every chunk
// stores all of its messages and attachments.
type ArchiveTicketUseCase struct {
	deps     ArchiveTicketDependencies
	settings ArchiveSettings
	logger   logger.Interface
}

func NewArchiveTicketUseCase(
	deps ArchiveTicketDependencies,
	settings ArchiveSettings,
	logger logger.Interface,
) *ArchiveTicketUseCase {
	if settings.ChunkSize <= 0 {
		settings.ChunkSize = DefaultChunkSize
	}
	if settings.TextCharBudget <= 0 {
		settings.TextCharBudget = DefaultTextCharBudget
	}
	return &ArchiveTicketUseCase{
		deps:     deps,
		settings: settings,
		logger:   logger,
	}
}

// Execute reports every outcome to the channel itself, including unexpected
// failures, so the returned error is always nil.
func (uc *ArchiveTicketUseCase) Execute(ctx context.Context, cmd ArchiveTicketCommand) (*ArchiveTicketResult, error) {
	uc.logger.Infow("executing archive ticket use case",
		"channel_id", cmd.ChannelID,
		"user_id", cmd.UserID,
		"speed_mode", cmd.SpeedMode,
	)
	started := time.Now()

	result := &ArchiveTicketResult{}
	if err := uc.run(ctx, cmd, result); err != nil {
		uc.logger.Errorw("archive failed", "channel_id", cmd.ChannelID, "error", err)
		uc.notify(ctx, cmd.ChannelID, fmt.Sprintf(noticeArchiveFailed, err))
		result.Outcome = OutcomeFailed
	}

	if uc.deps.Metrics != nil {
		uc.deps.Metrics.ObserveArchive(string(result.Outcome), time.Since(started), result.MessagesArchived)
	}

	uc.logger.Infow("archive finished",
		"channel_id", cmd.ChannelID,
		"outcome", result.Outcome,
		"metadata_id", result.MetadataID,
		"messages", result.MessagesArchived,
		"files", result.FilesArchived,
		"failed_chunks", result.FailedChunks,
	)
	return result, nil
}

func (uc *ArchiveTicketUseCase) run(ctx context.Context, cmd ArchiveTicketCommand, result *ArchiveTicketResult) error {
	channel, ok, err := uc.checkPreconditions(ctx, cmd)
	if err != nil {
		return err
	}
	if !ok {
		result.Outcome = OutcomeRejected
		return nil
	}

	existing, err := uc.deps.MetadataRepo.GetByChannelID(ctx, channel.ID)
	if err != nil {
		return err
	}

	msgs, incremental := uc.collectMessages(ctx, channel.ID, existing)
	result.Incremental = incremental
	result.MessagesFetched = len(msgs)
	if len(msgs) == 0 {
		uc.notify(ctx, channel.ID, noticeNoMessages)
		result.Outcome = OutcomeEmpty
		return nil
	}

	if cmd.SpeedMode {
		uc.notify(ctx, channel.ID, noticeSpeedMode)
	}

	var (
		meta      *archive.TicketMetadata
		watermark time.Time
		intact    = true
		total     = len(msgs)
	)

	for start := 0; start < total; start += uc.settings.ChunkSize {
		end := min(start+uc.settings.ChunkSize, total)
		chunk := msgs[start:end]

		if start == 0 {
			log := uc.detailsLog(ctx, existing, incremental, chunk)
			details, valid := uc.deriveDetails(ctx, cmd, channel, log)
			if !valid {
				uc.notify(ctx, channel.ID, noticeMetadataAborted)
				result.Outcome = OutcomeAborted
				return nil
			}

			meta, err = uc.upsertMetadata(ctx, channel.ID, existing, details)
			if err != nil {
				return err
			}
			result.MetadataID = meta.ID()
			result.Created = existing == nil
		}

		if err := uc.persistMessages(ctx, meta.ID(), chunk); err != nil {
			uc.logger.Errorw("failed to archive message chunk",
				"channel_id", channel.ID,
				"metadata_id", meta.ID(),
				"from", start+1,
				"to", end,
				"error", err,
			)
			uc.notify(ctx, channel.ID, fmt.Sprintf(noticeChunkFailed, start+1, end, err))
			result.FailedChunks++
			intact = false
		} else {
			result.MessagesArchived += len(chunk)
			if intact {
				watermark = chunk[len(chunk)-1].CreatedAt
			}
			uc.persistFiles(ctx, channel.ID, meta.ID(), chunk, result)
		}

		uc.notify(ctx, channel.ID, fmt.Sprintf(noticeProgress, end, total))
	}

	uc.finish(ctx, cmd, meta, watermark, result)

	uc.notify(ctx, channel.ID, noticeComplete)
	uc.notify(ctx, channel.ID, noticeClosurePrompt)
	if uc.deps.Closure != nil {
		if err := uc.deps.Closure.Set(ctx, channel.ID, cmd.UserID); err != nil {
			uc.logger.Warnw("failed to record closure intent", "channel_id", channel.ID, "error", err)
		}
	}

	result.Outcome = OutcomeCompleted
	return nil
}

// checkPreconditions resolves the channel and applies the role and thread
// checks in order. A failed check is reported and returns ok=false.
func (uc *ArchiveTicketUseCase) checkPreconditions(ctx context.Context, cmd ArchiveTicketCommand) (*archive.Channel, bool, error) {
	channel, err := uc.deps.Channels.GetChannel(ctx, cmd.ChannelID)
	if err != nil || channel == nil {
		uc.logger.Infow("archive rejected, channel not resolvable", "channel_id", cmd.ChannelID, "error", err)
		uc.notify(ctx, cmd.ChannelID, noticeChannelGone)
		return nil, false, nil
	}

	if !cmd.IsDirectMessage && cmd.GuildID != "" {
		allowed, err := uc.deps.Authorizer.CanArchive(ctx, cmd.RoleNames)
		if err != nil {
			return nil, false, fmt.Errorf("failed to check archive permission: %w", err)
		}
		if !allowed {
			uc.logger.Infow("archive rejected, missing role", "channel_id", channel.ID, "user_id", cmd.UserID)
			uc.notify(ctx, channel.ID, noticeNoPermission)
			return nil, false, nil
		}
	}

	if channel.IsThread() {
		uc.notify(ctx, channel.ID, noticeThread)
		return nil, false, nil
	}

	return channel, true, nil
}

// collectMessages fetches incrementally from the low-water mark when one exists,
// falling back to the full history when that yields nothing.
func (uc *ArchiveTicketUseCase) collectMessages(ctx context.Context, channelID string, existing *archive.TicketMetadata) ([]archive.ChatMessage, bool) {
	if existing != nil && existing.LastArchivedAt() != nil {
		msgs := uc.deps.Fetcher.FetchSince(ctx, channelID, *existing.LastArchivedAt())
		if len(msgs) > 0 {
			return msgs, true
		}
		uc.logger.Infow("incremental fetch empty, falling back to full history",
			"channel_id", channelID,
			"last_archived_at", existing.LastArchivedAt(),
		)
	}
	return uc.deps.Fetcher.FetchAll(ctx, channelID), false
}

// detailsLog is the text-only log chunk 0 derives metadata from, truncated to
// the budget. An incremental run only fetched the tail of the conversation, so
// the stored text messages come first.
func (uc *ArchiveTicketUseCase) detailsLog(
	ctx context.Context,
	existing *archive.TicketMetadata,
	incremental bool,
	chunk []archive.ChatMessage,
) []archive.LogEntry {
	tail := archive.TextLog(chunk)
	if !incremental || existing == nil {
		return archive.TruncateLog(tail, uc.settings.TextCharBudget)
	}

	stored, err := uc.deps.MessageRepo.ListByMetadataID(ctx, existing.ID(), true)
	if err != nil {
		uc.logger.Warnw("failed to load stored messages, deriving metadata from new messages only",
			"metadata_id", existing.ID(),
			"error", err,
		)
		return archive.TruncateLog(tail, uc.settings.TextCharBudget)
	}

	log := make([]archive.LogEntry, 0, len(stored)+len(tail))
	for _, m := range stored {
		log = append(log, m.LogEntry())
	}
	log = append(log, tail...)
	return archive.TruncateLog(log, uc.settings.TextCharBudget)
}

// deriveDetails runs summary, tags and extraction over the log. valid is false
// when the extraction fails the schema gate.
func (uc *ArchiveTicketUseCase) deriveDetails(
	ctx context.Context,
	cmd ArchiveTicketCommand,
	channel *archive.Channel,
	log []archive.LogEntry,
) (archive.ArchiveDetails, bool) {
	summary := uc.summarize(ctx, channel.ID, log)
	tags := uc.generateTags(ctx, channel.ID, log)
	propertyName := archive.PropertyName(log)

	extracted, raw := uc.deps.Extractor.Extract(ctx, log)
	archive.NormalizeQuoted(raw)
	if check := archive.ValidateSchema(raw); !check.Valid {
		uc.logger.Errorw("metadata validation failed",
			"channel_id", channel.ID,
			"issues", check.Issues,
		)
		return archive.ArchiveDetails{}, false
	}

	if len(tags) == 0 {
		tags = extracted.Tags
	}

	title := channel.Name
	if title == "" {
		title = fmt.Sprintf("ticket-%d", time.Now().UnixMilli())
	}
	createdBy := cmd.Username
	if createdBy == "" {
		createdBy = archive.UnknownCreator
	}

	return archive.ArchiveDetails{
		ChannelName:   channel.Name,
		Title:         title,
		CreatedBy:     createdBy,
		Summary:       summary,
		Tags:          tags,
		SaleID:        extracted.SaleID,
		Staff:         extracted.Staff,
		QuotedRevenue: extracted.Quoted,
		PropertyName:  propertyName,
	}, true
}

// summarize degrades to an empty summary; the summary itself is not posted during an archive.
func (uc *ArchiveTicketUseCase) summarize(ctx context.Context, channelID string, log []archive.LogEntry) string {
	if len(log) == 0 {
		uc.notify(ctx, channelID, noticeNothingToSummarize)
		return ""
	}
	summary, err := uc.deps.Assistant.Summarize(ctx, log)
	if err != nil {
		uc.logger.Warnw("failed to generate summary", "channel_id", channelID, "error", err)
		uc.notify(ctx, channelID, noticeSummaryFailed)
		return ""
	}
	return summary
}

func (uc *ArchiveTicketUseCase) generateTags(ctx context.Context, channelID string, log []archive.LogEntry) []string {
	_, tags, err := uc.deps.Assistant.GenerateTags(ctx, log)
	if err != nil {
		uc.logger.Warnw("failed to generate tags", "channel_id", channelID, "error", err)
		uc.notify(ctx, channelID, noticeTagsFailed)
		return nil
	}
	return tags
}

func (uc *ArchiveTicketUseCase) upsertMetadata(
	ctx context.Context,
	channelID string,
	existing *archive.TicketMetadata,
	details archive.ArchiveDetails,
) (*archive.TicketMetadata, error) {
	if existing != nil {
		if err := uc.update(ctx, existing, details); err != nil {
			return nil, err
		}
		return existing, nil
	}

	meta, err := archive.NewTicketMetadata(channelID, details)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	if err := uc.deps.MetadataRepo.Create(ctx, meta); err != nil {
		if !errors.IsConflictError(err) {
			return nil, err
		}
		// Another archive of this channel inserted first; update that row instead.
		current, gerr := uc.deps.MetadataRepo.GetByChannelID(ctx, channelID)
		if gerr != nil || current == nil {
			return nil, err
		}
		if err := uc.update(ctx, current, details); err != nil {
			return nil, err
		}
		return current, nil
	}

	uc.notify(ctx, channelID, noticeMetadataInserted)
	return meta, nil
}

func (uc *ArchiveTicketUseCase) update(ctx context.Context, meta *archive.TicketMetadata, details archive.ArchiveDetails) error {
	if err := meta.ApplyArchive(details); err != nil {
		return errors.NewValidationError(err.Error())
	}
	if err := uc.deps.MetadataRepo.Update(ctx, meta); err != nil {
		return err
	}
	uc.notify(ctx, meta.ChannelID(), noticeMetadataUpdated)
	return nil
}

// persistMessages stores the whole chunk in one transaction, so a failing row
// rolls back the chunk.
func (uc *ArchiveTicketUseCase) persistMessages(ctx context.Context, metadataID uint, chunk []archive.ChatMessage) error {
	rows := make([]*archive.TicketMessage, 0, len(chunk))
	for _, msg := range chunk {
		row, err := archive.NewTicketMessageFromChat(metadataID, msg)
		if err != nil {
			return fmt.Errorf("message %s: %w", msg.ID, err)
		}
		rows = append(rows, row)
	}

	return uc.deps.TxManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		return uc.deps.MessageRepo.CreateBatch(txCtx, rows)
	})
}

// persistFiles stores every attachment of the chunk. Each failure is reported
// and skipped.
func (uc *ArchiveTicketUseCase) persistFiles(
	ctx context.Context,
	channelID string,
	metadataID uint,
	chunk []archive.ChatMessage,
	result *ArchiveTicketResult,
) {
	for _, msg := range chunk {
		for _, att := range msg.Attachments {
			if err := uc.persistFile(ctx, metadataID, att); err != nil {
				uc.logger.Warnw("failed to archive attachment",
					"channel_id", channelID,
					"metadata_id", metadataID,
					"attachment_id", att.ID,
					"filename", att.Filename,
					"error", err,
				)
				uc.notify(ctx, channelID, fmt.Sprintf(noticeMediaFailed, att.Filename, err))
				result.FilesSkipped++
				uc.countFile("skipped")
				continue
			}
			result.FilesArchived++
			uc.countFile("archived")
		}
	}
}

func (uc *ArchiveTicketUseCase) persistFile(ctx context.Context, metadataID uint, att archive.Attachment) error {
	// Reject known-bad types before spending a download on them.
	if att.ContentType != "" && !archive.IsAllowedContentType(att.ContentType) {
		return fmt.Errorf("%w: %s", archive.ErrContentTypeNotAllowed, att.ContentType)
	}

	data, served, err := uc.deps.Downloader.DownloadAttachment(ctx, att.URL)
	if err != nil {
		return err
	}

	contentType := att.ContentType
	if contentType == "" {
		contentType = served
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	file, err := archive.NewTicketFile(metadataID, att.ID, att.Filename, contentType, data)
	if err != nil {
		return err
	}
	return uc.deps.FileRepo.Create(ctx, file)
}

// finish advances the low-water mark through the last chunk stored without a
// gap, then refreshes the search index and publishes the archive event.
func (uc *ArchiveTicketUseCase) finish(
	ctx context.Context,
	cmd ArchiveTicketCommand,
	meta *archive.TicketMetadata,
	watermark time.Time,
	result *ArchiveTicketResult,
) {
	if !watermark.IsZero() {
		meta.MarkArchived(watermark)
		if err := uc.deps.MetadataRepo.Update(ctx, meta); err != nil {
			uc.logger.Warnw("failed to advance archive low-water mark", "metadata_id", meta.ID(), "error", err)
		}
	}

	if uc.deps.Indexer != nil {
		if err := uc.deps.Indexer.Upsert(ctx, meta.ID(), meta.Document()); err != nil {
			uc.logger.Warnw("failed to index ticket", "metadata_id", meta.ID(), "error", err)
		}
	}

	if uc.deps.Publisher != nil {
		event := archive.TicketArchivedEvent{
			MetadataID:   meta.ID(),
			ChannelID:    meta.ChannelID(),
			Title:        meta.Title(),
			ArchivedBy:   cmd.Username,
			MessageCount: result.MessagesArchived,
			FileCount:    result.FilesArchived,
			FailedChunks: result.FailedChunks,
			Incremental:  result.Incremental,
			ArchivedAt:   time.Now().UTC(),
		}
		if err := uc.deps.Publisher.PublishTicketArchived(ctx, event); err != nil {
			uc.logger.Warnw("failed to publish archive event", "metadata_id", meta.ID(), "error", err)
		}
	}
}

func (uc *ArchiveTicketUseCase) countFile(result string) {
	if uc.deps.Metrics != nil {
		uc.deps.Metrics.IncFiles(result)
	}
}

func (uc *ArchiveTicketUseCase) notify(ctx context.Context, channelID, content string) {
	if err := uc.deps.Notifier.SendMessage(ctx, channelID, content); err != nil {
		uc.logger.Warnw("failed to send notice", "channel_id", channelID, "error", err)
	}
}
