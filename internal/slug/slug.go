// Package slug derives URL-safe identifiers from post titles.
package slug

import "strings"

// Make lowercases the title and collapses every run of characters outside
// [a-z0-9] into a single hyphen, trimming leading and trailing hyphens.
// The transform is deterministic and idempotent; slugs are computed once at
// post creation and never recomputed afterwards.
func Make(title string) string {
	lower := strings.ToLower(title)

	var b strings.Builder
	b.Grow(len(lower))
	pendingSep := false
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}
