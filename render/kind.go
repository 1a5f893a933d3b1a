// Package render turns stored payloads into safe display surfaces: sandboxed
// HTML documents for the viewer and plain text for the terminal.
package render

import (
	"strings"

	"meshbrowse/daemon"
)

// Kind is the closed set of ways a payload can be displayed.
type Kind int

const (
	KindHTML Kind = iota
	KindText
	KindImage
	KindBinary
)

func (k Kind) String() string {
	switch k {
	case KindHTML:
		return "html"
	case KindText:
		return "text"
	case KindImage:
		return "image"
	default:
		return "binary"
	}
}

// Classify maps a MIME type to a Kind. text/html is checked before the
// general text/ prefix; anything unrecognised is binary.
func Classify(mime string) Kind {
	m := strings.ToLower(strings.TrimSpace(mime))
	switch {
	case strings.HasPrefix(m, "text/html"):
		return KindHTML
	case strings.HasPrefix(m, "text/"):
		return KindText
	case strings.HasPrefix(m, "image/"):
		return KindImage
	default:
		return KindBinary
	}
}

// SourceLabel names where content came from for display.
func SourceLabel(src daemon.Source) string {
	if src == daemon.SourceCache {
		return "Local Cache"
	}
	return "Network Peer"
}
