// pattern: Functional Core

package label

import "strings"

// Abbreviate shortens every intermediate segment of a slash-separated path
// to its first character while keeping the final segment intact, so
// "nvim/lua/plugins/extra" becomes "n/l/p/extra". Segments starting with a
// dot keep the dot and one more character (".config" becomes ".c").
// Leading and repeated slashes are preserved as empty segments.
func Abbreviate(path string) string {
	segments := strings.Split(path, "/")
	if len(segments) == 1 {
		return path
	}

	last := len(segments) - 1
	var b strings.Builder
	b.Grow(len(path))
	for i, segment := range segments {
		if i > 0 {
			b.WriteByte('/')
		}
		if i == last {
			b.WriteString(segment)
			continue
		}
		b.WriteString(shortSegment(segment))
	}
	return b.String()
}

// LastSegment returns the text after the final slash, or path itself.
func LastSegment(path string) string {
	if idx := strings.LastIndexByte(path, '/'); idx >= 0 {
		return path[idx+1:]
	}
	return path
}

func shortSegment(segment string) string {
	runes := []rune(segment)
	switch {
	case len(runes) == 0:
		return ""
	case runes[0] == '.' && len(runes) > 1:
		return string(runes[:2])
	default:
		return string(runes[:1])
	}
}
