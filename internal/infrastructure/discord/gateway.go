package discord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/orris-inc/archy/internal/shared/goroutine"
	"github.com/orris-inc/archy/internal/shared/logger"
)

const (
	opDispatch       = 0
	opHeartbeat      = 1
	opIdentify       = 2
	opResume         = 6
	opReconnect      = 7
	opInvalidSession = 9
	opHello          = 10
	opHeartbeatAck   = 11

	gatewayReadLimit = 1 << 20
)

var (
	errReconnectRequested = errors.New("gateway requested reconnect")
	errInvalidSession     = errors.New("gateway invalidated the session")
	errHeartbeatTimeout   = errors.New("heartbeat not acknowledged")
)

// closeCodes the gateway sends when reconnecting cannot help.
var fatalCloseCodes = map[int]string{
	4004: "authentication failed",
	4010: "invalid shard",
	4011: "sharding required",
	4012: "invalid API version",
	4013: "invalid intents",
	4014: "disallowed intents",
}

// MessageSink receives every MESSAGE_CREATE dispatch.
type MessageSink interface {
	Submit(ctx context.Context, msg *Message)
}

type gatewayPayload struct {
	Op int             `json:"op"`
	D  json.RawMessage `json:"d"`
	S  *int64          `json:"s,omitempty"`
	T  string          `json:"t,omitempty"`
}

type outboundPayload struct {
	Op int `json:"op"`
	D  any `json:"d"`
}

type helloData struct {
	HeartbeatInterval int64 `json:"heartbeat_interval"`
}

type readyData struct {
	SessionID        string `json:"session_id"`
	ResumeGatewayURL string `json:"resume_gateway_url"`
	User             User   `json:"user"`
}

// Gateway keeps a websocket session open and reconnects with backoff,
// resuming the previous session when the platform allows it.
type Gateway struct {
	url     string
	token   string
	intents int
	sink    MessageSink
	logger  logger.Interface
	dialer  *websocket.Dialer

	minBackoff time.Duration
	maxBackoff time.Duration

	mu        sync.Mutex
	sessionID string
	resumeURL string
	seq       int64
	botUserID string
}

func NewGateway(gatewayURL, token string, intents int, sink MessageSink, log logger.Interface) *Gateway {
	return &Gateway{
		url:        gatewayURL,
		token:      token,
		intents:    intents,
		sink:       sink,
		logger:     log,
		dialer:     &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		minBackoff: time.Second,
		maxBackoff: time.Minute,
	}
}

// BotUserID is known after the first READY.
func (g *Gateway) BotUserID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.botUserID
}

// Run blocks until ctx is done or the gateway closes with a fatal code.
func (g *Gateway) Run(ctx context.Context) error {
	backoff := g.minBackoff
	for {
		ready, err := g.runSession(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		var closeErr *websocket.CloseError
		if errors.As(err, &closeErr) {
			if reason, fatal := fatalCloseCodes[closeErr.Code]; fatal {
				g.logger.Errorw("gateway closed with fatal code", "code", closeErr.Code, "reason", reason)
				return fmt.Errorf("gateway closed: %s: %w", reason, err)
			}
			if closeErr.Code == 4007 || closeErr.Code == 4009 {
				g.clearSession()
			}
		}

		if ready {
			backoff = g.minBackoff
		}
		g.logger.Warnw("gateway session ended, reconnecting", "error", err, "backoff", backoff)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		if !ready {
			backoff *= 2
			if backoff > g.maxBackoff {
				backoff = g.maxBackoff
			}
		}
	}
}

// runSession reports whether the session reached READY or RESUMED before it ended.
func (g *Gateway) runSession(ctx context.Context) (bool, error) {
	sessCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	conn, resp, err := g.dialer.DialContext(sessCtx, g.connectURL(), nil)
	if err != nil {
		if resp != nil {
			return false, fmt.Errorf("websocket dial failed: status=%d, err=%w", resp.StatusCode, err)
		}
		return false, fmt.Errorf("websocket dial: %w", err)
	}
	defer conn.Close()
	conn.SetReadLimit(gatewayReadLimit)

	// Unblock the read loop on cancellation.
	go func() {
		<-sessCtx.Done()
		_ = conn.Close()
	}()

	var writeMu sync.Mutex
	send := func(op int, d any) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		return conn.WriteJSON(outboundPayload{Op: op, D: d})
	}

	var hello gatewayPayload
	if err := conn.ReadJSON(&hello); err != nil {
		return false, fmt.Errorf("read hello: %w", err)
	}
	if hello.Op != opHello {
		return false, fmt.Errorf("expected hello, got op %d", hello.Op)
	}
	var hd helloData
	if err := json.Unmarshal(hello.D, &hd); err != nil || hd.HeartbeatInterval <= 0 {
		return false, fmt.Errorf("invalid hello payload: %s", string(hello.D))
	}

	if err := g.identifyOrResume(send); err != nil {
		return false, err
	}

	var acked atomic.Bool
	acked.Store(true)
	heartbeatErr := make(chan error, 1)
	goroutine.SafeGo(g.logger, "discord-heartbeat", func() {
		heartbeatErr <- g.heartbeat(sessCtx, time.Duration(hd.HeartbeatInterval)*time.Millisecond, &acked, send)
		cancel()
	})

	ready := false
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case hbErr := <-heartbeatErr:
				if hbErr != nil {
					return ready, hbErr
				}
			default:
			}
			return ready, err
		}

		var p gatewayPayload
		if err := json.Unmarshal(data, &p); err != nil {
			g.logger.Warnw("failed to decode gateway payload", "error", err)
			continue
		}
		if p.S != nil {
			g.mu.Lock()
			g.seq = *p.S
			g.mu.Unlock()
		}

		switch p.Op {
		case opDispatch:
			if g.handleDispatch(sessCtx, p) {
				ready = true
			}
		case opHeartbeat:
			if err := send(opHeartbeat, g.currentSeq()); err != nil {
				return ready, fmt.Errorf("send heartbeat: %w", err)
			}
		case opHeartbeatAck:
			acked.Store(true)
		case opReconnect:
			return ready, errReconnectRequested
		case opInvalidSession:
			var resumable bool
			_ = json.Unmarshal(p.D, &resumable)
			if !resumable {
				g.clearSession()
			}
			return ready, errInvalidSession
		}
	}
}

func (g *Gateway) identifyOrResume(send func(int, any) error) error {
	g.mu.Lock()
	sessionID, seq := g.sessionID, g.seq
	g.mu.Unlock()

	if sessionID != "" {
		return send(opResume, map[string]any{
			"token":      g.token,
			"session_id": sessionID,
			"seq":        seq,
		})
	}
	return send(opIdentify, map[string]any{
		"token":   g.token,
		"intents": g.intents,
		"properties": map[string]string{
			"os":      "linux",
			"browser": "archy",
			"device":  "archy",
		},
	})
}

func (g *Gateway) heartbeat(ctx context.Context, interval time.Duration, acked *atomic.Bool, send func(int, any) error) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if !acked.Swap(false) {
				return errHeartbeatTimeout
			}
			if err := send(opHeartbeat, g.currentSeq()); err != nil {
				return fmt.Errorf("send heartbeat: %w", err)
			}
		}
	}
}

// handleDispatch reports whether the event completed the handshake.
func (g *Gateway) handleDispatch(ctx context.Context, p gatewayPayload) bool {
	switch p.T {
	case "READY":
		var rd readyData
		if err := json.Unmarshal(p.D, &rd); err != nil {
			g.logger.Warnw("failed to decode READY", "error", err)
			return false
		}
		g.mu.Lock()
		g.sessionID = rd.SessionID
		g.resumeURL = rd.ResumeGatewayURL
		g.botUserID = rd.User.ID
		g.mu.Unlock()
		g.logger.Infow("gateway ready", "session_id", rd.SessionID, "bot_user", rd.User.Username)
		return true
	case "RESUMED":
		g.logger.Infow("gateway session resumed")
		return true
	case "MESSAGE_CREATE":
		var msg Message
		if err := json.Unmarshal(p.D, &msg); err != nil {
			g.logger.Warnw("failed to decode MESSAGE_CREATE", "error", err)
			return false
		}
		g.sink.Submit(ctx, &msg)
	}
	return false
}

func (g *Gateway) currentSeq() any {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.seq == 0 {
		return nil
	}
	return g.seq
}

func (g *Gateway) clearSession() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sessionID = ""
	g.resumeURL = ""
	g.seq = 0
}

// connectURL prefers the resume URL, carrying over the version and encoding query.
func (g *Gateway) connectURL() string {
	g.mu.Lock()
	resumeURL, sessionID := g.resumeURL, g.sessionID
	g.mu.Unlock()

	if sessionID == "" || resumeURL == "" {
		return g.url
	}
	base, err := url.Parse(g.url)
	if err != nil || base.RawQuery == "" || strings.Contains(resumeURL, "?") {
		return resumeURL
	}
	return strings.TrimSuffix(resumeURL, "/") + "/?" + base.RawQuery
}
