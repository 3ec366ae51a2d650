package util

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	combiningMarks = regexp.MustCompile(`[\x{0300}-\x{036F}]`)
	camelWord      = regexp.MustCompile(`([A-Z]*)([A-Z]{1})([a-z]+)`)
	trailingUpper  = regexp.MustCompile(`([A-Z]+)$`)
	whitespace     = regexp.MustCompile(`\s+`)
	nonWord        = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)
	hyphenRuns     = regexp.MustCompile(`--+`)
)

// GenerateSlug turns a free form header such as "Unit Price (€)" or
// "createdAt" into a lowercase hyphenated key: "unit-price", "created-at".
// Accents are folded, camel case is split and punctuation is dropped.
func GenerateSlug(title string) string {
	slug := combiningMarks.ReplaceAllString(norm.NFKD.String(title), "")
	slug = camelWord.ReplaceAllString(slug, " $1 $2$3")
	slug = trailingUpper.ReplaceAllString(slug, " $1")
	slug = whitespace.ReplaceAllString(strings.ToLower(strings.TrimSpace(slug)), "-")
	slug = nonWord.ReplaceAllString(slug, "")
	slug = hyphenRuns.ReplaceAllString(strings.ReplaceAll(slug, "_", "-"), "-")
	return strings.Trim(slug, "-")
}
