// Package discord talks to the chat platform: REST calls for channels,
// messages and files, and the gateway connection that delivers new messages.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"github.com/orris-inc/archy/internal/domain/archive"
	sharedConfig "github.com/orris-inc/archy/internal/shared/config"
	"github.com/orris-inc/archy/internal/shared/logger"
)

const (
	maxThreadNameLength = 100
	// maxAttachmentBytes bounds a single download; larger payloads are cut and rejected.
	maxAttachmentBytes = 100 << 20
	roleCacheSize      = 256
)

// Client is a REST client for the bot user.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	limiter    *rate.Limiter
	roles      *expirable.LRU[string, map[string]string]
	logger     logger.Interface
}

func NewClient(cfg sharedConfig.DiscordConfig, log logger.Interface) *Client {
	ttl := time.Duration(cfg.RoleCacheTTL) * time.Second
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    strings.TrimSuffix(cfg.APIBaseURL, "/"),
		token:      cfg.BotToken,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), cfg.RequestBurst),
		roles:      expirable.NewLRU[string, map[string]string](roleCacheSize, nil, ttl),
		logger:     log,
	}
}

// GetChannel resolves a channel; a deleted channel yields a 404 APIError.
func (c *Client) GetChannel(ctx context.Context, channelID string) (*archive.Channel, error) {
	var ch Channel
	if err := c.doJSON(ctx, http.MethodGet, "/channels/"+url.PathEscape(channelID), nil, &ch); err != nil {
		return nil, fmt.Errorf("failed to get channel %s: %w", channelID, err)
	}
	return ch.toDomain(), nil
}

// GetMessages returns up to limit messages older than before, newest first.
func (c *Client) GetMessages(ctx context.Context, channelID, before string, limit int) ([]Message, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	if before != "" {
		q.Set("before", before)
	}

	var msgs []Message
	path := "/channels/" + url.PathEscape(channelID) + "/messages?" + q.Encode()
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &msgs); err != nil {
		return nil, fmt.Errorf("failed to get messages for channel %s: %w", channelID, err)
	}
	return msgs, nil
}

// FetchPage serves the message fetcher.
func (c *Client) FetchPage(ctx context.Context, channelID, before string, limit int) ([]archive.ChatMessage, error) {
	msgs, err := c.GetMessages(ctx, channelID, before, limit)
	if err != nil {
		return nil, err
	}
	out := make([]archive.ChatMessage, 0, len(msgs))
	for i := range msgs {
		out = append(out, msgs[i].ToChatMessage())
	}
	return out, nil
}

// SendMessage posts content, split into several messages when it exceeds the length limit.
func (c *Client) SendMessage(ctx context.Context, channelID, content string) error {
	for _, part := range SplitMessage(content, MaxMessageLength) {
		if strings.TrimSpace(part) == "" {
			continue
		}
		body := map[string]any{
			"content":          part,
			"allowed_mentions": map[string]any{"parse": []string{}},
		}
		if err := c.doJSON(ctx, http.MethodPost, "/channels/"+url.PathEscape(channelID)+"/messages", body, nil); err != nil {
			return fmt.Errorf("failed to send message to channel %s: %w", channelID, err)
		}
	}
	return nil
}

// StartThreadFromMessage opens a public thread anchored on messageID and returns its id.
func (c *Client) StartThreadFromMessage(ctx context.Context, channelID, messageID, name string) (string, error) {
	if utf8.RuneCountInString(name) > maxThreadNameLength {
		name = string([]rune(name)[:maxThreadNameLength])
	}
	body := map[string]any{
		"name":                  name,
		"auto_archive_duration": 1440,
	}

	var thread Channel
	path := "/channels/" + url.PathEscape(channelID) + "/messages/" + url.PathEscape(messageID) + "/threads"
	if err := c.doJSON(ctx, http.MethodPost, path, body, &thread); err != nil {
		return "", fmt.Errorf("failed to start thread: %w", err)
	}
	return thread.ID, nil
}

// SendFile uploads data as a single attachment.
func (c *Client) SendFile(ctx context.Context, channelID, filename, contentType string, data []byte) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	payload, err := json.Marshal(map[string]any{
		"attachments": []map[string]any{{"id": 0, "filename": filename}},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal file payload: %w", err)
	}
	if err := w.WriteField("payload_json", string(payload)); err != nil {
		return fmt.Errorf("failed to write payload: %w", err)
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files[0]"; filename=%q`, filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	if err != nil {
		return fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("failed to write file part: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close multipart body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/channels/"+url.PathEscape(channelID)+"/messages", &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("failed to upload %s: %w", filename, err)
	}
	return nil
}

// DownloadAttachment fetches a CDN attachment. The bot token is not sent to the CDN.
func (c *Client) DownloadAttachment(ctx context.Context, attachmentURL string) ([]byte, string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, attachmentURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download attachment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", &APIError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAttachmentBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read attachment: %w", err)
	}
	if len(data) > maxAttachmentBytes {
		return nil, "", fmt.Errorf("attachment exceeds %d bytes", maxAttachmentBytes)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// GetGuildRoles returns the guild's role names keyed by id, cached per guild.
func (c *Client) GetGuildRoles(ctx context.Context, guildID string) (map[string]string, error) {
	if names, ok := c.roles.Get(guildID); ok {
		return names, nil
	}

	var roles []Role
	if err := c.doJSON(ctx, http.MethodGet, "/guilds/"+url.PathEscape(guildID)+"/roles", nil, &roles); err != nil {
		return nil, fmt.Errorf("failed to get roles for guild %s: %w", guildID, err)
	}

	names := make(map[string]string, len(roles))
	for _, r := range roles {
		names[r.ID] = r.Name
	}
	c.roles.Add(guildID, names)
	return names, nil
}

// RoleNames maps a member's role ids to names; unknown ids are dropped.
func (c *Client) RoleNames(ctx context.Context, guildID string, roleIDs []string) ([]string, error) {
	if guildID == "" || len(roleIDs) == 0 {
		return nil, nil
	}
	all, err := c.GetGuildRoles(ctx, guildID)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(roleIDs))
	for _, id := range roleIDs {
		if name, ok := all[id]; ok {
			names = append(names, name)
		}
	}
	return names, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+c.token)
	req.Header.Set("User-Agent", "DiscordBot (https://github.com/orris-inc/archy, 1.0)")
	return req, nil
}

type errorBody struct {
	Code       int     `json:"code"`
	Message    string  `json:"message"`
	RetryAfter float64 `json:"retry_after"`
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: resp.Status}
		var eb errorBody
		if err := json.NewDecoder(resp.Body).Decode(&eb); err == nil {
			apiErr.Code = eb.Code
			if eb.Message != "" {
				apiErr.Message = eb.Message
			}
			apiErr.RetryAfter = eb.RetryAfter
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			c.logger.Warnw("rate limited by discord",
				"method", req.Method,
				"path", req.URL.Path,
				"retry_after", apiErr.RetryAfter,
			)
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
