package service

import (
	"context"

	"workshop_monitor/internal/models"
	"workshop_monitor/internal/repository"
)

// Baseline readings of a device that has not ticked yet.
const (
	AmbientC         = 22.0
	AmbientHumidity  = 45.0
	BaselineSmokePPM = 5.0
)

type DeviceStateService struct {
	stateRepo   repository.StateRepo
	historyRepo repository.HistoryRepo
}

func NewDeviceStateService(stateRepo repository.StateRepo, historyRepo repository.HistoryRepo) *DeviceStateService {
	return &DeviceStateService{stateRepo: stateRepo, historyRepo: historyRepo}
}

// Status returns the latest persisted reading.
// If no state is persisted yet, returns the baseline snapshot.
func (s *DeviceStateService) Status(ctx context.Context) (models.Snapshot, error) {
	st, err := s.stateRepo.Load(ctx)
	if err != nil {
		return models.Snapshot{}, err
	}
	if st.ID == 0 {
		return baselineSnapshot(), nil
	}
	return st.Snapshot, nil
}

// History returns up to limit archived samples, newest first.
func (s *DeviceStateService) History(ctx context.Context, limit int) ([]models.HistoryRecord, error) {
	return s.historyRepo.List(ctx, limit)
}

func baselineSnapshot() models.Snapshot {
	return models.Snapshot{
		Temperature: AmbientC,
		Humidity:    AmbientHumidity,
		SmokeLevel:  BaselineSmokePPM,
	}
}
