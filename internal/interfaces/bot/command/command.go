// Package command parses chat text into the bot's closed set of commands.
package command

import (
	"strings"

	"golang.org/x/text/cases"
)

// Prefix marks a message as a command.
const Prefix = "!"

// Command is one of Ping, Info, Archive, Summary, Retag, Search, Ghostbusters,
// Thanks, Unknown or None.
type Command interface {
	isCommand()
}

type (
	Ping    struct{}
	Info    struct{}
	Summary struct{}
	Retag   struct{}
	Thanks  struct{}

	Ghostbusters struct{}

	Archive struct {
		// Speed suppresses the intermediate summary and tag notices.
		Speed bool
	}

	Search struct {
		Query string
	}

	// Unknown is a prefixed message whose first token is not a command.
	Unknown struct {
		Raw string
	}

	// None is ordinary chat.
	None struct{}
)

func (Ping) isCommand()         {}
func (Info) isCommand()         {}
func (Summary) isCommand()      {}
func (Retag) isCommand()        {}
func (Thanks) isCommand()       {}
func (Ghostbusters) isCommand() {}
func (Archive) isCommand()      {}
func (Search) isCommand()       {}
func (Unknown) isCommand()      {}
func (None) isCommand()         {}

// Parse matches the first token case-insensitively.
func Parse(text string) Command {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, Prefix) {
		return None{}
	}

	fields := strings.Fields(text)
	token, rest := fields[0], strings.Join(fields[1:], " ")
	// Casers carry state and must not be shared across goroutines.
	fold := cases.Fold()

	switch fold.String(token) {
	case "!ping":
		return Ping{}
	case "!info":
		return Info{}
	case "!archive":
		return Archive{Speed: strings.Contains(fold.String(rest), "speed")}
	case "!summary":
		return Summary{}
	case "!retag":
		return Retag{}
	case "!search":
		return Search{Query: rest}
	case "!ghostbusters":
		return Ghostbusters{}
	case "!thanks":
		return Thanks{}
	default:
		return Unknown{Raw: text}
	}
}

// Name returns the canonical command word, or "" for None.
func Name(c Command) string {
	switch c.(type) {
	case Ping:
		return "ping"
	case Info:
		return "info"
	case Archive:
		return "archive"
	case Summary:
		return "summary"
	case Retag:
		return "retag"
	case Search:
		return "search"
	case Ghostbusters:
		return "ghostbusters"
	case Thanks:
		return "thanks"
	case Unknown:
		return "unknown"
	default:
		return ""
	}
}
