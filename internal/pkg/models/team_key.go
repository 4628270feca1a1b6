package models

import (
	"strings"
	"unicode"
)

// TeamKey normalizes a team name so the odds site and the ratings site agree:
// case, punctuation and repeated whitespace are ignored.
// "St. Louis Blues" and "st louis  blues" share a key.
func TeamKey(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ""
	}
	name = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		if r == '-' || r == '/' || r == '\\' {
			return ' '
		}
		return -1
	}, name)
	return strings.Join(strings.Fields(name), " ")
}

// Lookup finds a team by exact name, then by TeamKey.
func (t RatingTable) Lookup(name string) (TeamRating, bool) {
	if r, ok := t[name]; ok {
		return r, true
	}
	key := TeamKey(name)
	if key == "" {
		return TeamRating{}, false
	}
	for n, r := range t {
		if TeamKey(n) == key {
			return r, true
		}
	}
	return TeamRating{}, false
}
