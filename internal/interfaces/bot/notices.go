package bot

const (
	noticePong         = "🏓 Pong!"
	noticeThanks       = "Thank you! If you need more help, just ask."
	noticeUnknown      = "Unknown command. Please try again or use !info for help."
	noticeFailed       = "❌ Command failed: %v"
	noticeRateLimited  = "⏳ You're sending commands too fast. Please wait a moment."
	noticeClosureOK    = "🔒 Okay, this ticket can be closed now. A moderator can delete the channel when ready."
	noticeClosureKeep  = "👍 No problem, the ticket stays open."
	noticeInfoTemplate = `**ArchyBot Info:**
- Version: %s
- Developed by SCMG RepairHub Team
- Commands available: !ping, !summary, !retag, !archive, !ghostbusters, !info, !search, !thanks
- For support, contact admin.`
)
