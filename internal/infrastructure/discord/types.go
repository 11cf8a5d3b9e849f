package discord

import (
	"time"

	"github.com/orris-inc/archy/internal/domain/archive"
)

// Gateway intents requested on IDENTIFY.
const (
	IntentGuilds         = 1 << 0
	IntentGuildMessages  = 1 << 9
	IntentDirectMessages = 1 << 12
	IntentMessageContent = 1 << 15

	DefaultIntents = IntentGuilds | IntentGuildMessages | IntentDirectMessages | IntentMessageContent
)

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Bot      bool   `json:"bot"`
}

type Member struct {
	Roles []string `json:"roles"`
}

type Attachment struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	URL         string `json:"url"`
	Size        int    `json:"size"`
}

// Message is a message object as sent by the REST API and the MESSAGE_CREATE
// dispatch. Member and GuildID are only present on gateway events.
type Message struct {
	ID          string       `json:"id"`
	ChannelID   string       `json:"channel_id"`
	GuildID     string       `json:"guild_id,omitempty"`
	Author      User         `json:"author"`
	Member      *Member      `json:"member,omitempty"`
	Content     string       `json:"content"`
	Timestamp   time.Time    `json:"timestamp"`
	Attachments []Attachment `json:"attachments"`
}

// IsDirect reports whether the message arrived outside a guild.
func (m *Message) IsDirect() bool {
	return m.GuildID == ""
}

func (m *Message) RoleIDs() []string {
	if m.Member == nil {
		return nil
	}
	return m.Member.Roles
}

type Channel struct {
	ID       string `json:"id"`
	Type     int    `json:"type"`
	GuildID  string `json:"guild_id,omitempty"`
	Name     string `json:"name"`
	ParentID string `json:"parent_id,omitempty"`
}

type Role struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (c Channel) toDomain() *archive.Channel {
	return &archive.Channel{
		ID:       c.ID,
		GuildID:  c.GuildID,
		Name:     c.Name,
		Type:     archive.ChannelType(c.Type),
		ParentID: c.ParentID,
	}
}

// ToChatMessage converts a platform message into the archive's view of it.
func (m *Message) ToChatMessage() archive.ChatMessage {
	attachments := make([]archive.Attachment, 0, len(m.Attachments))
	for _, a := range m.Attachments {
		attachments = append(attachments, archive.Attachment{
			ID:          a.ID,
			Filename:    a.Filename,
			ContentType: a.ContentType,
			URL:         a.URL,
			Size:        a.Size,
		})
	}
	return archive.ChatMessage{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		GuildID:   m.GuildID,
		Author: archive.Author{
			ID:       m.Author.ID,
			Username: m.Author.Username,
			Bot:      m.Author.Bot,
		},
		Content:     m.Content,
		CreatedAt:   m.Timestamp,
		Attachments: attachments,
	}
}
