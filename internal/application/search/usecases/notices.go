package usecases

const (
	noticeEmptyQuery     = "❌ Please provide search keywords."
	noticeNoResults      = "No matching tickets found."
	noticeResultsHeader  = "**Search results for:** `%s`\n%s\n\nReply with the result number (1-%d) to select a ticket."
	noticeResultLine     = "`%d` • **%s**%s%s"
	noticeSelected       = "Selected: **%s**.\nReply `summary` for a summary, or `restore` for the full log (with media) in a new thread."
	noticeChooseAction   = "Please reply with either `summary` or `restore`."
	noticeTicketSummary  = "📄 Summary for **%s**:\n%s"
	noticeNoSummaryInput = "❌ No messages to summarize."
	noticeSummaryFailed  = "❌ Failed to generate summary."

	noticeRestoreDM         = "❌ Log restore is only available in server channels, not in direct messages. Try !summary or use ad hoc search here."
	noticeTicketNotFound    = "❌ No ticket found with ID %d"
	noticeNoTicketMessages  = "❌ No messages found in this ticket."
	noticeRestoreThreadName = "Restored: %s"
	noticeRestoreHeader     = "📄 Restored ticket log for **%s**:\n%s"
	noticeRestoreLine       = "**%s**: %s"
	noticeRestoreComplete   = "✅ Log restore complete."
	noticeRestoreFailed     = "❌ Restore failed: %v"
)
