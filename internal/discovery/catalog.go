// pattern: Functional Core

package discovery

import (
	"sort"
	"strings"
)

// Separator joins a category and sub-path into a selectable line.
const Separator = ":"

// SessionCategory prefixes lines that name live tmux sessions.
const SessionCategory = "session"

// Key identifies a project within the catalog.
type Key struct {
	Category string
	SubPath  string
}

// String returns the selectable "category:sub-path" form of the key.
func (k Key) String() string {
	return k.Category + Separator + k.SubPath
}

// Catalog maps category -> sub-path -> project root.
type Catalog struct {
	entries map[string]map[string]string
	count   int
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{entries: make(map[string]map[string]string)}
}

// Insert records path under key. A repeated key overwrites the earlier path.
func (c *Catalog) Insert(key Key, path string) {
	sub, ok := c.entries[key.Category]
	if !ok {
		sub = make(map[string]string)
		c.entries[key.Category] = sub
	}
	if _, exists := sub[key.SubPath]; !exists {
		c.count++
	}
	sub[key.SubPath] = path
}

// Lookup returns the project root recorded for key.
func (c *Catalog) Lookup(key Key) (string, bool) {
	sub, ok := c.entries[key.Category]
	if !ok {
		return "", false
	}
	path, ok := sub[key.SubPath]
	return path, ok
}

// Len returns the number of distinct keys.
func (c *Catalog) Len() int {
	return c.count
}

// Lines returns one "category:sub-path" line per key, sorted.
func (c *Catalog) Lines() []string {
	lines := make([]string, 0, c.count)
	for category, sub := range c.entries {
		for subPath := range sub {
			lines = append(lines, Key{Category: category, SubPath: subPath}.String())
		}
	}
	sort.Strings(lines)
	return lines
}

// SanitizeCategory replaces characters that would break the line format
// or tmux target parsing.
func SanitizeCategory(raw string) string {
	return strings.NewReplacer(".", "_", Separator, "_").Replace(raw)
}

// MergeSessions appends one "session:<name>" line per live session to base.
func MergeSessions(base []string, sessions []string) []string {
	merged := make([]string, 0, len(base)+len(sessions))
	merged = append(merged, base...)
	for _, name := range sessions {
		merged = append(merged, SessionCategory+Separator+name)
	}
	return merged
}

// ParseLine splits a selected line at the first separator. ok is false
// when the line has no separator, i.e. it is free text typed into the picker.
func ParseLine(line string) (key Key, ok bool) {
	category, subPath, found := strings.Cut(line, Separator)
	if !found {
		return Key{Category: line}, false
	}
	return Key{Category: category, SubPath: subPath}, true
}
