package service

import (
	"context"
	"time"

	"workshop_monitor/internal/models"
	"workshop_monitor/internal/repository"
	"workshop_monitor/internal/view"
)

// Device exposes the simulated device's telemetry as the backend API serves it.
type Device interface {
	Status(ctx context.Context) (models.Snapshot, error)
	History(ctx context.Context, limit int) ([]models.HistoryRecord, error)
}

// Simulator runs the background loop that evolves the device readings.
// Stop via context cancellation in main() for graceful shutdown.
type Simulator interface {
	Run(ctx context.Context, tick time.Duration)
}

// Dashboard exposes the derived dashboard views and out-of-band refreshes.
type Dashboard interface {
	Dashboard() view.Dashboard
	Status() StatusView
	History() HistoryView
	Table(page, size int) (view.Page, error)
	Refresh(target string) error
}

// Service aggregates the sub-services. A process fills only the ones it
// serves: the device simulator sets Device and Simulator, the dashboard
// server sets Dashboard.
type Service struct {
	Device
	Simulator
	Dashboard
}

// NewDeviceService wires the repository layer into the device-side services.
func NewDeviceService(repos *repository.Repository, opts SimulatorOptions) *Service {
	return &Service{
		Device:    NewDeviceStateService(repos.StateRepo, repos.HistoryRepo),
		Simulator: NewSimulatorService(repos.StateRepo, repos.HistoryRepo, opts),
	}
}

// NewDashboardService wires a polling engine and a projector into the
// dashboard-side service.
func NewDashboardService(src FrameSource, projector *view.Projector) *Service {
	return &Service{
		Dashboard: NewDashboardViewService(src, projector),
	}
}
