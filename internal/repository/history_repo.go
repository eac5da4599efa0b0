package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"workshop_monitor/internal/models"
)

// Bounds for List.
const (
	MinHistoryLimit = 1
	MaxHistoryLimit = 1000
)

// ErrLimitOutOfRange is returned by List for a limit outside [MinHistoryLimit, MaxHistoryLimit].
var ErrLimitOutOfRange = errors.New("history limit out of range")

type HistorySQLite struct {
	db *sql.DB
}

func NewHistorySQLite(db *sql.DB) *HistorySQLite { return &HistorySQLite{db: db} }

const (
	insertHistorySQL = `
		INSERT INTO device_history (recorded_at, temperature, humidity, smoke_level, fan_on, fan_speed, warning_on)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	listHistorySQL = `
		SELECT id, recorded_at, temperature, humidity, smoke_level, fan_on, fan_speed, warning_on
		FROM device_history ORDER BY id DESC LIMIT ?
	`
)

// Append archives rec and returns the assigned id. rec.ID is ignored; a zero
// timestamp is replaced with the current time.
func (r *HistorySQLite) Append(ctx context.Context, rec models.HistoryRecord) (int64, error) {
	ts := rec.Timestamp.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	res, err := r.db.ExecContext(ctx, insertHistorySQL,
		formatTime(ts),
		rec.Temperature,
		rec.Humidity,
		rec.SmokeLevel,
		rec.FanOn,
		rec.FanSpeed,
		rec.WarningOn,
	)
	if err != nil {
		return 0, fmt.Errorf("append history: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("append history: last insert id: %w", err)
	}
	return id, nil
}

// List returns up to limit records, newest first.
func (r *HistorySQLite) List(ctx context.Context, limit int) ([]models.HistoryRecord, error) {
	if limit < MinHistoryLimit || limit > MaxHistoryLimit {
		return nil, fmt.Errorf("%w: %d", ErrLimitOutOfRange, limit)
	}

	rows, err := r.db.QueryContext(ctx, listHistorySQL, limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	out := make([]models.HistoryRecord, 0, limit)
	for rows.Next() {
		var rec models.HistoryRecord
		var recordedAt string
		if err := rows.Scan(
			&rec.ID,
			&recordedAt,
			&rec.Temperature,
			&rec.Humidity,
			&rec.SmokeLevel,
			&rec.FanOn,
			&rec.FanSpeed,
			&rec.WarningOn,
		); err != nil {
			return nil, fmt.Errorf("list history: scan: %w", err)
		}
		ts, err := parseTime(recordedAt)
		if err != nil {
			return nil, fmt.Errorf("list history: record %d: %w", rec.ID, err)
		}
		rec.Timestamp = models.Timestamp{Time: ts}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return out, nil
}
