package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"workshop_monitor/internal/models"
)

type StateSQLite struct {
	db *sql.DB
}

func NewStateSQLite(db *sql.DB) *StateSQLite {
	return &StateSQLite{db: db}
}

const (
	deviceStateRowID = 1

	upsertStateSQL = `
		INSERT INTO device_state (id, temperature, humidity, smoke_level, fan_on, fan_speed, warning_on, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			temperature=excluded.temperature,
			humidity=excluded.humidity,
			smoke_level=excluded.smoke_level,
			fan_on=excluded.fan_on,
			fan_speed=excluded.fan_speed,
			warning_on=excluded.warning_on,
			updated_at=excluded.updated_at
	`

	selectStateSQL = `
		SELECT id, temperature, humidity, smoke_level, fan_on, fan_speed, warning_on, updated_at
		FROM device_state WHERE id=?
	`
)

// formatTime renders t as stored in TEXT columns: UTC, RFC3339 with nanoseconds.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	ts, err := models.ParseTimestamp(s)
	if err != nil {
		return time.Time{}, err
	}
	return ts.UTC(), nil
}

// Save updates or inserts the device_state row (id always 1).
func (r *StateSQLite) Save(ctx context.Context, s models.DeviceState) error {
	ts := s.UpdatedAt
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err := r.db.ExecContext(ctx, upsertStateSQL,
		deviceStateRowID,
		s.Temperature,
		s.Humidity,
		s.SmokeLevel,
		s.FanOn,
		s.FanSpeed,
		s.WarningOn,
		formatTime(ts),
	)
	if err != nil {
		return fmt.Errorf("save device state: %w", err)
	}
	return nil
}

// Load fetches the device_state row. A zero DeviceState means nothing was saved yet.
func (r *StateSQLite) Load(ctx context.Context) (models.DeviceState, error) {
	row := r.db.QueryRowContext(ctx, selectStateSQL, deviceStateRowID)

	var s models.DeviceState
	var updatedAt string
	if err := row.Scan(
		&s.ID,
		&s.Temperature,
		&s.Humidity,
		&s.SmokeLevel,
		&s.FanOn,
		&s.FanSpeed,
		&s.WarningOn,
		&updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DeviceState{}, nil
		}
		return models.DeviceState{}, fmt.Errorf("load device state: %w", err)
	}

	ts, err := parseTime(updatedAt)
	if err != nil {
		return models.DeviceState{}, fmt.Errorf("load device state: updated_at: %w", err)
	}
	s.UpdatedAt = ts
	return s, nil
}
