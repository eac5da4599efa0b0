package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Accepted wire layouts. Zone-less values are read in local time.
const (
	layoutNoZone      = "2006-01-02T15:04:05.999999999"
	layoutSpaceNoZone = "2006-01-02 15:04:05.999999999"
)

// Timestamp is an ISO-8601 instant as emitted by the device backend.
type Timestamp struct {
	time.Time
}

// ParseTimestamp parses s using RFC3339 first, then the zone-less layouts.
func ParseTimestamp(s string) (Timestamp, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return Timestamp{Time: t}, nil
	}
	for _, layout := range []string{layoutNoZone, layoutSpaceNoZone} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("invalid timestamp %q, expected ISO-8601", s)
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return fmt.Errorf("timestamp is null")
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}
