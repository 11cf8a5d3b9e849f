// Package search holds the per-user search session state machine.
package search

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// MaxCandidates bounds the result list shown to a user.
const MaxCandidates = 5

type Step string

const (
	StepAwaitingSelection Step = "awaiting_selection"
	StepAwaitingAction    Step = "awaiting_action"
)

func (s Step) IsValid() bool {
	return s == StepAwaitingSelection || s == StepAwaitingAction
}

type Source string

const (
	SourceSemantic Source = "semantic"
	SourceKeyword  Source = "keyword"
)

// Candidate is one ranked ticket offered to the user.
type Candidate struct {
	MetadataID   uint      `json:"metadata_id"`
	ChannelID    string    `json:"channel_id"`
	Title        string    `json:"title"`
	PropertyName string    `json:"property_name"`
	Summary      string    `json:"summary"`
	CreatedAt    time.Time `json:"created_at"`
	Score        float64   `json:"score"`
	Source       Source    `json:"source"`
}

// Label follows the property name, then title, then channel id.
func (c Candidate) Label() string {
	switch {
	case c.PropertyName != "":
		return c.PropertyName
	case c.Title != "":
		return c.Title
	case c.ChannelID != "":
		return c.ChannelID
	default:
		return "(untitled)"
	}
}

// Action is what the user asked for once a candidate is selected.
type Action int

const (
	ActionNone Action = iota
	ActionSummary
	ActionRestore
)

// ParseAction case-folds the reply; anything unrecognised is ActionNone.
func ParseAction(input string) Action {
	switch cases.Fold().String(strings.TrimSpace(input)) {
	case "summary":
		return ActionSummary
	case "restore", "full log", "details":
		return ActionRestore
	default:
		return ActionNone
	}
}

// Session is the state between a search command and the user's follow-up replies.
// It is serialized as JSON into the session store.
type Session struct {
	UserID    string      `json:"user_id"`
	Step      Step        `json:"step"`
	Query     string      `json:"query"`
	Results   []Candidate `json:"results"`
	Selected  *Candidate  `json:"selected,omitempty"`
	ChannelID string      `json:"channel_id"`
	GuildID   string      `json:"guild_id,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewSession starts a session in awaiting_selection. A session without results is an error.
func NewSession(userID, channelID, guildID, query string, results []Candidate) (*Session, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("session requires at least one candidate")
	}
	if len(results) > MaxCandidates {
		results = results[:MaxCandidates]
	}
	fixed := make([]Candidate, len(results))
	copy(fixed, results)

	return &Session{
		UserID:    userID,
		Step:      StepAwaitingSelection,
		Query:     query,
		Results:   fixed,
		ChannelID: channelID,
		GuildID:   guildID,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Validate rejects sessions read back from the store in an impossible state.
func (s *Session) Validate() error {
	if !s.Step.IsValid() {
		return fmt.Errorf("invalid session step %q", s.Step)
	}
	if len(s.Results) == 0 {
		return fmt.Errorf("session has no results")
	}
	if s.Step == StepAwaitingAction && s.Selected == nil {
		return fmt.Errorf("session awaiting action without a selection")
	}
	return nil
}

// ErrInvalidSelection reports a reply that is not an integer in [1, n].
type ErrInvalidSelection struct {
	Max int
}

func (e *ErrInvalidSelection) Error() string {
	return fmt.Sprintf("Please reply with a number between 1 and %d.", e.Max)
}

// Select records the 1-based choice and moves to awaiting_action. On error the
// session is unchanged.
func (s *Session) Select(input string) (*Candidate, error) {
	if s.Step != StepAwaitingSelection {
		return nil, fmt.Errorf("session is not awaiting a selection")
	}
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n < 1 || n > len(s.Results) {
		return nil, &ErrInvalidSelection{Max: len(s.Results)}
	}
	chosen := s.Results[n-1]
	s.Selected = &chosen
	s.Step = StepAwaitingAction
	return &chosen, nil
}

// NameOr follows the property name, then title, then fallback.
func (c Candidate) NameOr(fallback string) string {
	switch {
	case c.PropertyName != "":
		return c.PropertyName
	case c.Title != "":
		return c.Title
	default:
		return fallback
	}
}
