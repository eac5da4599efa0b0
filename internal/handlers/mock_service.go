package handlers

import (
	"context"
	"sync"

	"workshop_monitor/internal/models"
	"workshop_monitor/internal/service"
	"workshop_monitor/internal/view"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockDashboard struct {
	mu        sync.Mutex
	dashboard view.Dashboard
	status    service.StatusView
	history   service.HistoryView
	page      view.Page
	tableErr  error
	refresh   error

	lastPage, lastSize int
	lastRefresh        string
	dashboardCalls     int
}

func (m *mockDashboard) Dashboard() view.Dashboard {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dashboardCalls++
	return m.dashboard
}

func (m *mockDashboard) setDashboard(d view.Dashboard) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dashboard = d
}

func (m *mockDashboard) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dashboardCalls
}
func (m *mockDashboard) Status() service.StatusView   { return m.status }
func (m *mockDashboard) History() service.HistoryView { return m.history }
func (m *mockDashboard) Table(page, size int) (view.Page, error) {
	m.lastPage, m.lastSize = page, size
	return m.page, m.tableErr
}
func (m *mockDashboard) Refresh(target string) error {
	m.lastRefresh = target
	return m.refresh
}

type mockDevice struct {
	status    models.Snapshot
	statusErr error
	history   []models.HistoryRecord
	histErr   error
	lastLimit int
}

func (m *mockDevice) Status(ctx context.Context) (models.Snapshot, error) {
	return m.status, m.statusErr
}
func (m *mockDevice) History(ctx context.Context, limit int) ([]models.HistoryRecord, error) {
	m.lastLimit = limit
	return m.history, m.histErr
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func newDeviceRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitDeviceRoutes()
}
