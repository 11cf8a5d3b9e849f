package archive

import (
	"sort"
	"strings"
	"time"
)

// ChannelType mirrors the chat platform's channel kinds that matter to archiving.
type ChannelType int

const (
	ChannelTypeGuildText      ChannelType = 0
	ChannelTypeDM             ChannelType = 1
	ChannelTypeGroupDM        ChannelType = 3
	ChannelTypeAnnouncement   ChannelType = 5
	ChannelTypeAnnounceThread ChannelType = 10
	ChannelTypePublicThread   ChannelType = 11
	ChannelTypePrivateThread  ChannelType = 12
)

type Channel struct {
	ID       string
	GuildID  string
	Name     string
	Type     ChannelType
	ParentID string
}

func (c Channel) IsThread() bool {
	switch c.Type {
	case ChannelTypeAnnounceThread, ChannelTypePublicThread, ChannelTypePrivateThread:
		return true
	}
	return false
}

func (c Channel) IsDirect() bool {
	return c.Type == ChannelTypeDM || c.Type == ChannelTypeGroupDM
}

type Author struct {
	ID       string
	Username string
	Bot      bool
}

type Attachment struct {
	ID          string
	Filename    string
	ContentType string
	URL         string
	Size        int
}

// ChatMessage is a message as read from the chat platform, before persistence.
type ChatMessage struct {
	ID          string
	ChannelID   string
	GuildID     string
	Author      Author
	Content     string
	CreatedAt   time.Time
	Attachments []Attachment
}

// LogEntry is the author/content pair sent to the completion provider.
type LogEntry struct {
	Author  string `json:"author"`
	Content string `json:"content"`
}

// SortChronologically orders messages oldest first; equal timestamps keep id order.
func SortChronologically(msgs []ChatMessage) {
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].CreatedAt.Equal(msgs[j].CreatedAt) {
			return snowflakeLess(msgs[i].ID, msgs[j].ID)
		}
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})
}

// snowflakeLess compares numeric ids as strings without parsing.
func snowflakeLess(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

// TextLog keeps the AI-eligible messages as log entries.
func TextLog(msgs []ChatMessage) []LogEntry {
	log := make([]LogEntry, 0, len(msgs))
	for _, m := range msgs {
		if !IsAIEligible(m) {
			continue
		}
		log = append(log, LogEntry{Author: m.Author.Username, Content: m.Content})
	}
	return log
}

// TruncateLog greedily keeps whole entries while the rendered "author: content\n"
// size stays within budget characters.
func TruncateLog(log []LogEntry, budget int) []LogEntry {
	total := 0
	for i, e := range log {
		size := len([]rune(e.Author)) + len([]rune(e.Content)) + 3
		if total+size > budget {
			return log[:i]
		}
		total += size
	}
	return log
}

// PropertyName is the first word of the first entry shorter than 100 characters,
// or UnknownProperty.
func PropertyName(log []LogEntry) string {
	for _, e := range log {
		if e.Content == "" || len([]rune(e.Content)) >= 100 {
			continue
		}
		if first, _, _ := strings.Cut(e.Content, " "); first != "" {
			return first
		}
		break
	}
	return UnknownProperty
}
