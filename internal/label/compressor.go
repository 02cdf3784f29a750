// pattern: Functional Core

package label

import (
	"fmt"
	"unicode/utf8"
)

// DefaultWidth is the width of tmux's status-left field the labels are
// sized for.
const DefaultWidth = 25

// MinWidth is the smallest budget for which Compress stays well defined.
const MinWidth = 5

// Compressor fits a (type, name) pair into a fixed display budget.
type Compressor struct {
	width int
}

// NewCompressor returns a Compressor for the given width budget.
func NewCompressor(width int) (*Compressor, error) {
	if width < MinWidth {
		return nil, fmt.Errorf("label width must be >= %d (got %d)", MinWidth, width)
	}
	return &Compressor{width: width}, nil
}

// Compress returns a label of at most Width runes for sessionType and
// sessionName. The first rule that fits wins:
//
//  1. name alone is at least Width: drop the type and use the abbreviated
//     name, else its last segment, else the tail of that segment.
//  2. "type|name"
//  3. "ty|name"
//  4. "type|abbrev" then "ty|abbrev"
//  5. the tail of name
func (c *Compressor) Compress(sessionType, sessionName string) string {
	w := c.width
	nameLen := utf8.RuneCountInString(sessionName)
	typeLen := utf8.RuneCountInString(sessionType)

	if nameLen >= w {
		shortened := Abbreviate(sessionName)
		if utf8.RuneCountInString(shortened) <= w {
			return shortened
		}
		last := LastSegment(sessionName)
		if utf8.RuneCountInString(last) <= w {
			return last
		}
		return tail(last, w-4)
	}

	if typeLen+nameLen+1 <= w {
		return sessionType + "|" + sessionName
	}
	if nameLen+3 <= w {
		return head(sessionType, 2) + "|" + sessionName
	}

	shortened := Abbreviate(sessionName)
	shortLen := utf8.RuneCountInString(shortened)
	if typeLen+shortLen+1 <= w {
		return sessionType + "|" + shortened
	}
	if shortLen+3 <= w {
		return head(sessionType, 2) + "|" + shortened
	}

	return tail(sessionName, w-4)
}

func head(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func tail(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}
