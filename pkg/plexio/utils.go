package plexio

import (
	"strings"
)

const upperhex = "0123456789ABCDEF"

// escapeComponent percent-encodes s for use as a single URL path segment.
// Only ASCII letters, digits and "-_.!~*'()" are kept as they are, which is stricter than url.PathEscape
// (that one keeps ":", "@", "&", "=" etc.), so that Stremio IDs like "tt0944947:1:1" are sent as "tt0944947%3A1%3A1".
func escapeComponent(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if shouldKeep(c) {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(upperhex[c>>4])
		sb.WriteByte(upperhex[c&15])
	}
	return sb.String()
}

func shouldKeep(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
