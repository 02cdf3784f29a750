// pattern: Functional Core

package tmux

import "strings"

// Session is a live tmux session as reported by list-sessions.
type Session struct {
	Name string
}

// Names returns the session names in listing order.
func Names(sessions []Session) []string {
	names := make([]string, 0, len(sessions))
	for _, s := range sessions {
		names = append(names, s.Name)
	}
	return names
}

// SessionName returns name with the characters tmux refuses in session
// names ('.' and ':') replaced by '_'. The length is unchanged.
func SessionName(name string) string {
	return strings.Map(func(r rune) rune {
		if r == '.' || r == ':' {
			return '_'
		}
		return r
	}, name)
}

// exactTarget builds a target that matches only the session with this exact name.
func exactTarget(name string) string {
	return "=" + name
}
