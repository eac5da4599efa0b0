package service

import (
	"errors"
	"fmt"
	"strings"

	"workshop_monitor/internal/engine"
	"workshop_monitor/internal/models"
	"workshop_monitor/internal/view"
)

// Refresh targets.
const (
	RefreshStatus  = "status"
	RefreshHistory = "history"
	RefreshAll     = "all"
)

var (
	// ErrUnknownStream is returned by Refresh for a target other than status, history or all.
	ErrUnknownStream = errors.New("unknown stream")
	// ErrNotPolling is returned by Refresh once the engine has stopped.
	ErrNotPolling = errors.New("engine is not polling")
)

// FrameSource is the slice of *engine.Engine the dashboard reads from.
type FrameSource interface {
	Frame() engine.Frame
	Active() bool
	RefreshStatus() <-chan struct{}
	RefreshHistory() <-chan struct{}
}

// StatusView is the status stream with its latest-value card.
type StatusView struct {
	Stream     view.StreamPanel  `json:"stream"`
	Snapshot   *models.Snapshot  `json:"snapshot"`
	LatestCard *view.LatestCard  `json:"latest_card"`
	System     view.SystemStatus `json:"system_status"`
}

// HistoryView is the history stream with its downsampled chart.
type HistoryView struct {
	Stream      view.StreamPanel `json:"stream"`
	ChartSeries view.ChartSeries `json:"chart_series"`
	RecordCount int              `json:"record_count"`
}

// DashboardViewService serves projected views of the engine's current frame.
type DashboardViewService struct {
	src       FrameSource
	projector *view.Projector
}

// NewDashboardViewService creates a DashboardViewService reading frames from src.
func NewDashboardViewService(src FrameSource, projector *view.Projector) *DashboardViewService {
	return &DashboardViewService{src: src, projector: projector}
}

// Dashboard projects the current frame.
func (s *DashboardViewService) Dashboard() view.Dashboard {
	return s.projector.Project(s.src.Frame())
}

// Status returns the status stream panel with its latest-value card.
func (s *DashboardViewService) Status() StatusView {
	d := s.Dashboard()
	return StatusView{
		Stream:     d.Status,
		Snapshot:   d.Snapshot,
		LatestCard: d.LatestCard,
		System:     d.SystemStatus,
	}
}

// History returns the history stream panel with its downsampled chart.
func (s *DashboardViewService) History() HistoryView {
	d := s.Dashboard()
	return HistoryView{
		Stream:      d.History,
		ChartSeries: d.ChartSeries,
		RecordCount: len(d.TableRows),
	}
}

// Table returns one page of the full, ascending history table.
func (s *DashboardViewService) Table(page, size int) (view.Page, error) {
	return view.Paginate(s.Dashboard().TableRows, page, size)
}

// Refresh dispatches the named stream(s) now without waiting for the result.
func (s *DashboardViewService) Refresh(target string) error {
	target = strings.ToLower(strings.TrimSpace(target))
	switch target {
	case "", RefreshAll, RefreshStatus, RefreshHistory:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStream, target)
	}
	if !s.src.Active() {
		return ErrNotPolling
	}
	if target != RefreshHistory {
		s.src.RefreshStatus()
	}
	if target != RefreshStatus {
		s.src.RefreshHistory()
	}
	return nil
}
