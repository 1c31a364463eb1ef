package utils

import (
	"regexp"
	"strings"
)

var slugStrip = regexp.MustCompile(`[^a-z0-9-]`)

// Slugify joins the title's space-separated words with '-', lowercases the result
// and drops every character outside [a-z0-9-].
func Slugify(title string) string {
	slug := strings.ToLower(strings.Join(strings.Split(title, " "), "-"))
	return slugStrip.ReplaceAllString(slug, "")
}
