package models

import (
	"sort"
	"strings"
	"unicode"
)

// SectionPrefix converts a section name into the seat id prefix the seat
// generator uses, e.g. "VIP CENTRAL" -> "vip-central-".
func SectionPrefix(name string) string {
	fields := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return unicode.IsSpace(r) || r == '-' || r == '_'
	})
	if len(fields) == 0 {
		return ""
	}
	return strings.Join(fields, "-") + "-"
}

// NormalizePrefix makes sure a prefix given on the command line ends with a dash.
func NormalizePrefix(prefix string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" || strings.HasSuffix(prefix, "-") {
		return prefix
	}
	return prefix + "-"
}

// MatchesPrefix reports whether a seat id belongs to the section identified by
// prefix. The id must start with prefix, and no longer known prefix that
// extends it may also match: with "vip-" and "vip-central-" both known,
// "vip-central-A-1" belongs to "vip-central-" only.
func MatchesPrefix(id, prefix string, known []string) bool {
	if !strings.HasPrefix(id, prefix) {
		return false
	}
	for _, k := range known {
		if len(k) > len(prefix) && strings.HasPrefix(k, prefix) && strings.HasPrefix(id, k) {
			return false
		}
	}
	return true
}

// PrefixOf returns the section prefix of a seat id: the longest known prefix
// that matches, or, when none does, everything before the row and column
// segments ("vip-central-A-1" -> "vip-central-").
func PrefixOf(id string, known []string) string {
	best := ""
	for _, k := range known {
		if strings.HasPrefix(id, k) && len(k) > len(best) {
			best = k
		}
	}
	if best != "" {
		return best
	}

	parts := strings.Split(id, "-")
	if len(parts) < 3 {
		return ""
	}
	return strings.Join(parts[:len(parts)-2], "-") + "-"
}

// KnownPrefixes merges section prefixes taken from a layout with the ones
// implied by seat ids, without duplicates, in sorted order.
func KnownPrefixes(layoutPrefixes []string, ids []string) []string {
	seen := make(map[string]bool)
	var known []string
	add := func(p string) {
		if p != "" && !seen[p] {
			seen[p] = true
			known = append(known, p)
		}
	}
	for _, p := range layoutPrefixes {
		add(p)
	}
	for _, id := range ids {
		add(PrefixOf(id, nil))
	}
	sort.Strings(known)
	return known
}
