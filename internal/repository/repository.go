package repository

import (
	"context"
	"database/sql"

	"workshop_monitor/internal/models"
)

// StateRepo stores the single current-state row of the simulated device.
type StateRepo interface {
	Save(ctx context.Context, s models.DeviceState) error
	Load(ctx context.Context) (models.DeviceState, error)
}

// HistoryRepo is the append-only sample archive served as /history.
type HistoryRepo interface {
	Append(ctx context.Context, rec models.HistoryRecord) (int64, error)
	List(ctx context.Context, limit int) ([]models.HistoryRecord, error)
}

type Repository struct {
	StateRepo   StateRepo
	HistoryRepo HistoryRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		StateRepo:   NewStateSQLite(db),
		HistoryRepo: NewHistorySQLite(db),
	}
}
