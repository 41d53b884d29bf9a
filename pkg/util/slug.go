package util

import (
	"regexp"
	"strings"

	"github.com/gosimple/slug"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeSlug turns free text into a URL-safe slug: Spanish-aware transliteration,
// lowercase, every run of other characters collapsed to one hyphen, no hyphen at
// either end. Applying it to its own output is a no-op.
func NormalizeSlug(s string) string {
	out := slug.MakeLang(s, "es")
	out = nonAlphanumeric.ReplaceAllString(strings.ToLower(out), "-")
	return strings.Trim(out, "-")
}
