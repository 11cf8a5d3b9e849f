package usecases

const (
	noticeChannelGone      = "❌ Cannot archive: this channel no longer exists."
	noticeNoPermission     = "🔐 You do not have permission to archive this ticket."
	noticeThread           = "❌ Archive is not supported in threads. Please run this command in a main channel."
	noticeNoMessages       = "❌ No messages found to archive."
	noticeSpeedMode        = "⚡ Speed archive mode activated!"
	noticeMetadataAborted  = "❌ Archive aborted due to metadata error. See server logs."
	noticeMetadataUpdated  = "📌 Updated existing ticket metadata."
	noticeMetadataInserted = "📌 Inserted new ticket metadata."
	noticeComplete         = "✅ Archive complete."
	noticeClosurePrompt    = "If you'd like, I can close this ticket for you. Just let me know if that's what you want!"
	noticeArchiveFailed    = "❌ Archive failed: %v"
	noticeChunkFailed      = "⚠️ Failed to archive messages %d-%d: %v"
	noticeMediaFailed      = "⚠️ Failed to archive media: %s — %v"
	noticeProgress         = "📦 Archived %d/%d messages..."

	noticeNothingToSummarize = "❌ No messages to summarize."
	noticeSummaryFailed      = "❌ Failed to generate summary."
	noticeTagsFailed         = "❌ Failed to generate tags."
	noticeLogTooLarge        = "⚠️ Ticket log is very large. Summarizing the last %d messages only."
	noticeSummaryFetchFailed = "❌ Unable to fetch messages for summary. Please check bot permissions."
	noticeTagsFetchFailed    = "❌ Unable to fetch messages for tagging. Please check bot permissions."
	noticeSummary            = "📄 Summary:\n%s"
	noticeTags               = "🏷️ Tags:\n%s"
)
