package handlers

import (
	"strings"
	"time"
)

// parseDateParam parses a YYYY-MM-DD form value, nil when empty or
// malformed (a bad widget value must not zero the dataset).
func parseDateParam(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil
	}
	return &t
}

// cleanSelection drops empty entries from a multiselect submission so
// an all-blank selection behaves like "select all".
func cleanSelection(values []string) []string {
	var out []string
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}
