package telemetry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"workshop_monitor/internal/models"
)

func newBackend(t *testing.T, h http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewHTTPClient(Options{BaseURL: srv.URL + "/"})
}

func TestGetStatus_DecodesSnapshot(t *testing.T) {
	c := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/status" {
			t.Errorf("path=%s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"temperature":22.5,"humidity":45,"smoke_level":10,"fan_on":true,"fan_speed":0.5}`))
	})

	st, err := c.GetStatus(context.Background())
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if st.Temperature != 22.5 || st.Humidity != 45 || st.SmokeLevel != 10 || !st.FanOn || st.FanSpeed != 0.5 || st.WarningOn {
		t.Fatalf("unexpected snapshot: %+v", st)
	}
}

func TestGetHistory_SendsLimitAndKeepsOrder(t *testing.T) {
	var gotLimit string
	c := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		gotLimit = r.URL.Query().Get("limit")
		_, _ = w.Write([]byte(`[
			{"id":3,"timestamp":"2025-03-01T10:02:00Z","temperature":21,"humidity":40,"smoke_level":5,"fan_on":false,"fan_speed":0},
			{"id":1,"timestamp":"2025-03-01T10:00:00Z","temperature":20,"humidity":41,"smoke_level":6,"fan_on":false,"fan_speed":0}
		]`))
	})

	recs, err := c.GetHistory(context.Background(), 25)
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if gotLimit != "25" {
		t.Fatalf("limit=%q", gotLimit)
	}
	if len(recs) != 2 || recs[0].ID != 3 || recs[1].ID != 1 {
		t.Fatalf("unexpected records: %+v", recs)
	}
}

func TestGetHistory_EmptyArrayIsNotNil(t *testing.T) {
	c := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	})
	recs, err := c.GetHistory(context.Background(), 5)
	if err != nil || recs == nil || len(recs) != 0 {
		t.Fatalf("recs=%v err=%v", recs, err)
	}
}

func TestGetHistory_InvalidLimit(t *testing.T) {
	c := NewHTTPClient(Options{BaseURL: "http://127.0.0.1:1"})
	_, err := c.GetHistory(context.Background(), 0)
	if !errors.Is(err, ErrInvalidLimit) {
		t.Fatalf("err=%v, want ErrInvalidLimit", err)
	}
	if IsTransport(err) {
		t.Fatalf("invalid limit must not be a transport error")
	}
}

func TestTransportErrors(t *testing.T) {
	cases := []struct {
		name     string
		handler  http.HandlerFunc
		wantCode int
	}{
		{"non_success_status", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "down", http.StatusServiceUnavailable)
		}, http.StatusServiceUnavailable},
		{"malformed_json", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"temperature":`))
		}, http.StatusOK},
		{"wrong_shape", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[1,2,3]`))
		}, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newBackend(t, tc.handler)
			_, err := c.GetStatus(context.Background())
			var te *TransportError
			if !errors.As(err, &te) {
				t.Fatalf("err=%v, want *TransportError", err)
			}
			if te.Op != OpStatus || te.StatusCode != tc.wantCode {
				t.Fatalf("unexpected error: %+v", te)
			}
			if !strings.HasPrefix(te.Error(), "failed to fetch status") {
				t.Fatalf("message=%q", te.Error())
			}
		})
	}
}

func TestTransportError_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewHTTPClient(Options{BaseURL: url})
	_, err := c.GetHistory(context.Background(), 10)
	var te *TransportError
	if !errors.As(err, &te) || te.StatusCode != 0 || te.Err == nil {
		t.Fatalf("err=%v", err)
	}
}

func TestHistoryMalformedTimestampIsTransportError(t *testing.T) {
	c := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1,"timestamp":"soon"}]`))
	})
	_, err := c.GetHistory(context.Background(), 1)
	if !IsTransport(err) {
		t.Fatalf("err=%v", err)
	}
}

func TestHistoryMissingTimestampIsTransportError(t *testing.T) {
	c := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":2,"timestamp":"2025-03-01T10:00:00Z","temperature":21},{"id":1,"temperature":20}]`))
	})
	recs, err := c.GetHistory(context.Background(), 2)
	var te *TransportError
	if !errors.As(err, &te) || te.Op != OpHistory {
		t.Fatalf("err=%v", err)
	}
	if !errors.Is(err, models.ErrMissingTimestamp) {
		t.Fatalf("err=%v, want missing timestamp cause", err)
	}
	if recs != nil {
		t.Fatalf("records returned alongside error: %v", recs)
	}
}
