// Package telemetry fetches status snapshots and history from the device backend.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"workshop_monitor/internal/models"

	"github.com/go-resty/resty/v2"
)

const (
	statusPath  = "/status"
	historyPath = "/history"

	// DefaultHistoryLimit is the number of records requested per history fetch.
	DefaultHistoryLimit = 25
)

// Client is the fetch collaborator used by the polling engine.
type Client interface {
	GetStatus(ctx context.Context) (models.Snapshot, error)
	GetHistory(ctx context.Context, limit int) ([]models.HistoryRecord, error)
}

// Options configures an HTTPClient.
type Options struct {
	BaseURL string
	// Timeout bounds a single request; zero leaves requests unbounded.
	Timeout time.Duration
}

// HTTPClient talks to the device backend over HTTP.
type HTTPClient struct {
	rc *resty.Client
}

// NewHTTPClient builds a client for the backend at opts.BaseURL.
func NewHTTPClient(opts Options) *HTTPClient {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetHeader("Accept", "application/json")
	if opts.Timeout > 0 {
		rc.SetTimeout(opts.Timeout)
	}
	return &HTTPClient{rc: rc}
}

// GetStatus fetches the current snapshot.
func (c *HTTPClient) GetStatus(ctx context.Context) (models.Snapshot, error) {
	var out models.Snapshot
	if err := c.getJSON(ctx, OpStatus, statusPath, nil, &out); err != nil {
		return models.Snapshot{}, err
	}
	return out, nil
}

// GetHistory fetches up to limit records in the order the backend returns them.
func (c *HTTPClient) GetHistory(ctx context.Context, limit int) ([]models.HistoryRecord, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLimit, limit)
	}
	var out []models.HistoryRecord
	query := map[string]string{"limit": strconv.Itoa(limit)}
	if err := c.getJSON(ctx, OpHistory, historyPath, query, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.HistoryRecord{}
	}
	return out, nil
}

func (c *HTTPClient) getJSON(ctx context.Context, op, path string, query map[string]string, dst any) error {
	req := c.rc.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	resp, err := req.Get(path)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	if !resp.IsSuccess() {
		return &TransportError{Op: op, StatusCode: resp.StatusCode()}
	}
	if err := json.Unmarshal(resp.Body(), dst); err != nil {
		return &TransportError{Op: op, StatusCode: resp.StatusCode(), Err: fmt.Errorf("decode body: %w", err)}
	}
	return nil
}
