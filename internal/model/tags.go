package model

import "strings"

// NormalizeTags trims every label, drops empty ones and removes
// case-insensitive duplicates, keeping the first spelling seen. The result is
// never nil.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// ParseTags splits comma-separated user input into normalized tags.
func ParseTags(s string) []string {
	return NormalizeTags(strings.Split(s, ","))
}

// HasTag reports whether tags contains tag, ignoring case.
func HasTag(tags []string, tag string) bool {
	tag = strings.TrimSpace(tag)
	for _, t := range tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
