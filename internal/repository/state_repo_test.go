package repository_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"workshop_monitor/internal/models"
	"workshop_monitor/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
)

var stateCols = []string{"id", "temperature", "humidity", "smoke_level", "fan_on", "fan_speed", "warning_on", "updated_at"}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestStateSQLite_Save_WritesUTCTimestamp(t *testing.T) {
	db, mock := newMock(t)
	repo := repository.NewStateSQLite(db)

	tokyo := time.FixedZone("JST", 9*3600)
	st := models.DeviceState{
		Snapshot: models.Snapshot{
			Temperature: 29.5, Humidity: 41, SmokeLevel: 60,
			FanOn: true, FanSpeed: 0.45, WarningOn: false,
		},
		UpdatedAt: time.Date(2025, 3, 1, 18, 0, 0, 0, tokyo),
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO device_state")).
		WithArgs(1, 29.5, 41.0, 60.0, true, 0.45, false, "2025-03-01T09:00:00Z").
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Save(context.Background(), st); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStateSQLite_Save_ZeroTimeBecomesNow(t *testing.T) {
	db, mock := newMock(t)
	repo := repository.NewStateSQLite(db)

	isRecentUTC := sqlmockArgumentFunc(func(v driver.Value) bool {
		s, ok := v.(string)
		if !ok {
			return false
		}
		tm, err := time.Parse(time.RFC3339Nano, s)
		if err != nil || tm.Location() != time.UTC {
			return false
		}
		return time.Since(tm) < 5*time.Second
	})

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO device_state")).
		WithArgs(1, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), isRecentUTC).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Save(context.Background(), models.DeviceState{}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStateSQLite_Save_ExecErrorIsPropagated(t *testing.T) {
	db, mock := newMock(t)
	repo := repository.NewStateSQLite(db)

	dbDown := errors.New("db down")
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO device_state")).WillReturnError(dbDown)

	err := repo.Save(context.Background(), models.DeviceState{UpdatedAt: time.Now()})
	if !errors.Is(err, dbDown) {
		t.Fatalf("Save() error = %v, want wrapped %v", err, dbDown)
	}
}

func TestStateSQLite_Load_NoRowsReturnsZeroValue(t *testing.T) {
	db, mock := newMock(t)
	repo := repository.NewStateSQLite(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, temperature, humidity")).
		WithArgs(1).
		WillReturnError(sql.ErrNoRows)

	got, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if got.ID != 0 {
		t.Fatalf("Load() expected zero state, got: %+v", got)
	}
}

func TestStateSQLite_Load_HappyPath(t *testing.T) {
	db, mock := newMock(t)
	repo := repository.NewStateSQLite(db)

	rows := sqlmock.NewRows(stateCols).
		AddRow(1, 22.5, 45.0, 12.0, false, 0.0, false, "2025-03-01T09:00:00.5Z")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, temperature, humidity")).
		WithArgs(1).
		WillReturnRows(rows)

	got, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if got.ID != 1 || got.Temperature != 22.5 || got.Humidity != 45 || got.SmokeLevel != 12 || got.FanOn {
		t.Fatalf("Load() unexpected fields: %+v", got)
	}
	want := time.Date(2025, 3, 1, 9, 0, 0, 5e8, time.UTC)
	if !got.UpdatedAt.Equal(want) || got.UpdatedAt.Location() != time.UTC {
		t.Fatalf("UpdatedAt=%v, want %v UTC", got.UpdatedAt, want)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStateSQLite_Load_BadTimestamp(t *testing.T) {
	db, mock := newMock(t)
	repo := repository.NewStateSQLite(db)

	rows := sqlmock.NewRows(stateCols).AddRow(1, 22.5, 45.0, 12.0, false, 0.0, false, "yesterday")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, temperature, humidity")).WithArgs(1).WillReturnRows(rows)

	if _, err := repo.Load(context.Background()); err == nil {
		t.Fatalf("Load() expected error for bad updated_at")
	}
}

type sqlmockArgumentFunc func(v driver.Value) bool

func (f sqlmockArgumentFunc) Match(v driver.Value) bool {
	return f(v)
}
