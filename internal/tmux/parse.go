// pattern: Functional Core

package tmux

import (
	"bufio"
	"strings"
)

// ParseListSessions parses tmux list-sessions output into a slice of Session objects.
// The output format is: "name: N windows (created DATE) [(attached)]".
// The name is everything before the first ':'; lines without one are not
// sessions and are skipped.
func ParseListSessions(output string) []Session {
	var sessions []Session

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}

		session, ok := parseSessionLine(line)
		if ok {
			sessions = append(sessions, session)
		}
	}

	return sessions
}

// parseSessionLine parses a single line from tmux list-sessions output.
// Only the name is kept; the window count and flags are not used.
func parseSessionLine(line string) (Session, bool) {
	name, _, found := strings.Cut(line, ":")
	if !found || name == "" {
		return Session{}, false
	}
	return Session{Name: name}, true
}
