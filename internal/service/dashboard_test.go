package service

import (
	"errors"
	"testing"
	"time"

	"workshop_monitor/internal/engine"
	"workshop_monitor/internal/models"
	"workshop_monitor/internal/stream"
	"workshop_monitor/internal/view"
)

type frameSourceStub struct {
	frame        engine.Frame
	active       bool
	statusCalls  int
	historyCalls int
}

func (f *frameSourceStub) Frame() engine.Frame { return f.frame }
func (f *frameSourceStub) Active() bool        { return f.active }

func (f *frameSourceStub) RefreshStatus() <-chan struct{} {
	f.statusCalls++
	return closed()
}

func (f *frameSourceStub) RefreshHistory() <-chan struct{} {
	f.historyCalls++
	return closed()
}

func closed() <-chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}

func loadedFrame(t *testing.T, records int) engine.Frame {
	t.Helper()
	status := stream.New[models.Snapshot]()
	status.Dispatch(1)
	status.ResolveSuccess(1, models.Snapshot{Temperature: 22.5, Humidity: 45, SmokeLevel: 12})

	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	recs := make([]models.HistoryRecord, records)
	for i := range recs {
		// newest first, as the device returns them
		n := records - i
		recs[i] = models.HistoryRecord{
			ID:        int64(n),
			Timestamp: models.Timestamp{Time: base.Add(time.Duration(n) * time.Minute)},
			Snapshot:  models.Snapshot{Temperature: float64(20 + n%5)},
		}
	}
	history := stream.New[[]models.HistoryRecord]()
	history.Dispatch(1)
	history.ResolveSuccess(1, recs)

	return engine.Frame{
		Status:          status.View(),
		History:         history.View(),
		Active:          true,
		StatusInterval:  3 * time.Second,
		HistoryInterval: 30 * time.Second,
		HistoryLimit:    25,
	}
}

func TestDashboardViewService_StatusAndHistory(t *testing.T) {
	src := &frameSourceStub{frame: loadedFrame(t, 12), active: true}
	svc := NewDashboardViewService(src, view.NewProjector(view.Options{Location: time.UTC}))

	st := svc.Status()
	if st.Stream.Display != stream.DisplayContent || st.Snapshot == nil || st.Snapshot.Temperature != 22.5 {
		t.Fatalf("unexpected status view: %+v", st)
	}
	if st.LatestCard == nil || st.System.Connection != view.ConnectionOK {
		t.Fatalf("missing card or bad connection: %+v", st)
	}

	h := svc.History()
	if h.RecordCount != 12 || h.ChartSeries.TotalRecords != 12 {
		t.Fatalf("unexpected history view: %+v", h)
	}
	if first := h.ChartSeries.Points[0]; first.ID != 1 {
		t.Fatalf("chart must be ascending, first id=%d", first.ID)
	}
}

func TestDashboardViewService_Table(t *testing.T) {
	src := &frameSourceStub{frame: loadedFrame(t, 12), active: true}
	svc := NewDashboardViewService(src, view.NewProjector(view.Options{Location: time.UTC}))

	p, err := svc.Table(2, 5)
	if err != nil {
		t.Fatalf("Table: %v", err)
	}
	if p.Total != 12 || p.TotalPages != 3 || len(p.Rows) != 5 || p.Rows[0].ID != 6 {
		t.Fatalf("unexpected page: %+v", p)
	}

	if _, err := svc.Table(0, 5); !errors.Is(err, view.ErrInvalidPage) {
		t.Fatalf("err=%v, want ErrInvalidPage", err)
	}
}

func TestDashboardViewService_Refresh(t *testing.T) {
	cases := []struct {
		target            string
		wantStatus, wantH int
	}{
		{"status", 1, 0},
		{"history", 0, 1},
		{"all", 1, 1},
		{"", 1, 1},
		{" History ", 0, 1},
	}
	for _, tc := range cases {
		t.Run(tc.target, func(t *testing.T) {
			src := &frameSourceStub{active: true}
			svc := NewDashboardViewService(src, view.NewProjector(view.Options{}))
			if err := svc.Refresh(tc.target); err != nil {
				t.Fatalf("Refresh: %v", err)
			}
			if src.statusCalls != tc.wantStatus || src.historyCalls != tc.wantH {
				t.Fatalf("calls status=%d history=%d", src.statusCalls, src.historyCalls)
			}
		})
	}
}

func TestDashboardViewService_RefreshErrors(t *testing.T) {
	src := &frameSourceStub{active: true}
	svc := NewDashboardViewService(src, view.NewProjector(view.Options{}))
	if err := svc.Refresh("alarms"); !errors.Is(err, ErrUnknownStream) {
		t.Fatalf("err=%v, want ErrUnknownStream", err)
	}

	src.active = false
	if err := svc.Refresh("status"); !errors.Is(err, ErrNotPolling) {
		t.Fatalf("err=%v, want ErrNotPolling", err)
	}
	if src.statusCalls != 0 {
		t.Fatalf("inactive engine must not be dispatched")
	}
}
