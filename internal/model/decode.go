package model

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Helpers used by the UnmarshalJSON boundary adapters. Backend responses are
// not uniform across endpoints: ids arrive as numbers or strings, references
// as ids, names or nested objects, timestamps in several layouts.

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

// firstTime returns the first non-empty timestamp among the candidates.
func firstTime(candidates ...*string) time.Time {
	for _, c := range candidates {
		if c == nil {
			continue
		}
		if t := parseTime(*c); !t.IsZero() {
			return t
		}
	}
	return time.Time{}
}

// reference decodes a field that may be an id, a name or an object with
// id/name/username keys.
func reference(raw json.RawMessage) (id int64, name string) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, ""
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		id, _ = n.Int64()
		return id, ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			return v, ""
		}
		return 0, s
	}
	var obj struct {
		ID       json.Number `json:"id"`
		Name     string      `json:"name"`
		Username string      `json:"username"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		id, _ = obj.ID.Int64()
		if obj.Name != "" {
			return id, obj.Name
		}
		return id, obj.Username
	}
	return 0, ""
}

func firstDecimal(candidates ...*decimal.Decimal) decimal.Decimal {
	for _, c := range candidates {
		if c != nil {
			return *c
		}
	}
	return decimal.Zero
}

func firstInt(candidates ...*int) int {
	for _, c := range candidates {
		if c != nil {
			return *c
		}
	}
	return 0
}

func firstString(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return ""
}
