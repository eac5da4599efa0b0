package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// HistoryRecord is one archived sample. ID is assigned by the device and is
// unique and monotonically increasing.
type HistoryRecord struct {
	ID        int64     `json:"id"`
	Timestamp Timestamp `json:"timestamp"`
	Snapshot
}

// ErrMissingTimestamp is returned when a decoded record has no timestamp.
var ErrMissingTimestamp = errors.New("history record has no timestamp")

// UnmarshalJSON decodes r and rejects records whose timestamp is absent.
func (r *HistoryRecord) UnmarshalJSON(b []byte) error {
	type plain HistoryRecord
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	if p.Timestamp.IsZero() {
		return fmt.Errorf("%w (id %d)", ErrMissingTimestamp, p.ID)
	}
	*r = HistoryRecord(p)
	return nil
}

// SortByTimestamp returns a copy of records ordered by timestamp ascending.
// Records sharing an instant keep ID order. The input is left untouched.
func SortByTimestamp(records []HistoryRecord) []HistoryRecord {
	out := make([]HistoryRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := out[i].Timestamp.Time, out[j].Timestamp.Time
		if ti.Equal(tj) {
			return out[i].ID < out[j].ID
		}
		return ti.Before(tj)
	})
	return out
}
