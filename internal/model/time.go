package model

import (
	"bytes"
	"fmt"
	"time"
)

// TimeLayout is the layout every exported date is written with.
// It is ISO-8601 with second precision and a numeric offset ("Z" for UTC).
const TimeLayout = "2006-01-02T15:04:05Z07:00"

// timeParseLayouts are the layouts accepted when decoding CareLink
// responses. The API mixes fractional seconds, offsets and zone-less
// local timestamps depending on the endpoint and the device family.
var timeParseLayouts = []string{
	time.RFC3339Nano,
	TimeLayout,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Time is a timestamp that serializes with TimeLayout.
type Time struct {
	time.Time
}

// NewTime wraps t. The result is truncated to whole seconds because that is
// the precision of the exported format.
func NewTime(t time.Time) *Time {
	return &Time{Time: t.Truncate(time.Second)}
}

// MarshalJSON writes the time with TimeLayout.
func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Format(TimeLayout) + `"`), nil
}

// UnmarshalJSON accepts any of the layouts used by CareLink.
func (t *Time) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("invalid timestamp %s", data)
	}
	s := string(data[1 : len(data)-1])
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := ParseTime(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// ParseTime parses s with the first matching CareLink layout.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range timeParseLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format: %q", s)
}
