package urlsync

import (
	"net/url"
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases and trims s, collapses every run of characters outside
// [a-z0-9] into a single hyphen and strips leading and trailing hyphens.
// Slugify(Slugify(s)) == Slugify(s) for every s.
func Slugify(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Decode percent-decodes s, returning s unchanged when it is not valid
// percent-encoding. A literal '+' is kept.
func Decode(s string) string {
	if d, err := url.PathUnescape(s); err == nil {
		return d
	}
	return s
}

// NameKeys returns the normalised lookup keys for a display name: the
// lowercase raw text, the lowercase decoded text and the slug. Duplicates
// and empty keys are dropped.
func NameKeys(name string) []string {
	candidates := []string{
		strings.ToLower(strings.TrimSpace(name)),
		strings.ToLower(strings.TrimSpace(Decode(name))),
		Slugify(Decode(name)),
	}
	keys := make([]string, 0, len(candidates))
	for _, k := range candidates {
		if k == "" {
			continue
		}
		dup := false
		for _, have := range keys {
			if have == k {
				dup = true
				break
			}
		}
		if !dup {
			keys = append(keys, k)
		}
	}
	return keys
}
