package validate

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"time"
)

var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseInstant converts a raw JSON value into a point in time. Strings are accepted in
// RFC 3339 or ISO date forms (zone-less values are UTC) and numbers as epoch
// milliseconds. Anything else reports ok=false; it never panics.
func ParseInstant(raw json.RawMessage) (time.Time, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return time.Time{}, false
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return parseInstantString(text)
	}

	var millis float64
	if err := json.Unmarshal(raw, &millis); err == nil {
		if math.IsNaN(millis) || math.IsInf(millis, 0) || math.Abs(millis) > 8.64e15 {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(millis)).UTC(), true
	}

	return time.Time{}, false
}

func parseInstantString(text string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}

	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
