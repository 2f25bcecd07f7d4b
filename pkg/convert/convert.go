// Package convert provides tolerant parsing for values coming out of BGG
// payloads, where numbers arrive as attribute strings and may be empty,
// "N/A" or missing entirely.
package convert

import (
	"strconv"
	"strings"
)

// ToInt parses an integer-ish string. Returns 0 and false when the value
// is empty or not a number.
func ToInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	// BGG occasionally reports integers as "12.0"
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f), true
	}
	return 0, false
}

// ToFloat parses a float-ish string. Returns 0 and false when the value
// is empty, "N/A" or not a number.
func ToFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "n/a") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ToBool normalizes boolean-ish values coming from BGG ("0"/"1", "yes"/"no").
func ToBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
