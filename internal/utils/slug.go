package utils

import (
	"regexp"
	"strings"
)

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a display name into a URL slug ("Hair Transplant (FUE)" ->
// "hair-transplant-fue")
func Slugify(name string) string {
	s := slugStrip.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}
