// Package view derives render-ready data from the engine's stream frames.
// Every output is recomputed from the frame on each call.
package view

import (
	"fmt"
	"time"

	"workshop_monitor/internal/engine"
	"workshop_monitor/internal/models"
	"workshop_monitor/internal/series"
	"workshop_monitor/internal/stream"
	"workshop_monitor/internal/threshold"
)

// LatestSource selects which stream backs the latest-value card.
type LatestSource string

const (
	LatestFromStatus  LatestSource = "status"
	LatestFromHistory LatestSource = "history"
)

// Connection health shown in the system panel.
const (
	ConnectionOK       = "ok"
	ConnectionDegraded = "degraded"
	ConnectionDown     = "down"
	ConnectionPending  = "pending"
)

// Options tunes the projection.
type Options struct {
	LatestSource   LatestSource
	MaxChartPoints int
	Classifier     threshold.Classifier
	// Location renders labels in this zone; nil keeps each timestamp's own zone.
	Location *time.Location
}

func (o Options) withDefaults() Options {
	if o.LatestSource == "" {
		o.LatestSource = LatestFromStatus
	}
	if o.MaxChartPoints == 0 {
		o.MaxChartPoints = series.MaxChartPoints
	}
	return o
}

// MetricReading is one formatted, classified value.
type MetricReading struct {
	Metric    models.Metric  `json:"metric"`
	Value     float64        `json:"value"`
	Formatted string         `json:"formatted"`
	Unit      string         `json:"unit"`
	Tier      threshold.Tier `json:"tier"`
}

// LatestCard is the latest-value display.
type LatestCard struct {
	Source      LatestSource    `json:"source"`
	Readings    []MetricReading `json:"readings"`
	FanOn       bool            `json:"fan_on"`
	FanLabel    string          `json:"fan_label"`
	FanSpeedPct string          `json:"fan_speed_pct"`
	WarningOn   bool            `json:"warning_on"`
	// At is set when the card comes from a history record.
	At *time.Time `json:"at,omitempty"`
}

// ChartPoint is one downsampled chart sample.
type ChartPoint struct {
	ID          int64     `json:"id"`
	At          time.Time `json:"at"`
	Time        string    `json:"time"`
	FullDate    string    `json:"full_date"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	SmokeLevel  float64   `json:"smoke_level"`
}

// ChartSeries is the downsampled history with its caption counts.
type ChartSeries struct {
	Points          []ChartPoint `json:"points"`
	DisplayedPoints int          `json:"displayed_points"`
	TotalRecords    int          `json:"total_records"`
}

// TableRow is one formatted history row.
type TableRow struct {
	ID          int64                            `json:"id"`
	At          time.Time                        `json:"at"`
	Timestamp   string                           `json:"timestamp"`
	Temperature string                           `json:"temperature"`
	Humidity    string                           `json:"humidity"`
	SmokeLevel  string                           `json:"smoke_level"`
	Fan         string                           `json:"fan"`
	FanSpeedPct string                           `json:"fan_speed_pct"`
	WarningOn   bool                             `json:"warning_on"`
	Tiers       map[models.Metric]threshold.Tier `json:"tiers"`
}

// StreamPanel is what the presentation layer needs to pick one of the
// loading, error and content states for a stream.
type StreamPanel struct {
	Phase   stream.Phase   `json:"phase"`
	Display stream.Display `json:"display"`
	Error   string         `json:"error,omitempty"`
	Banner  string         `json:"banner,omitempty"`
	Pending bool           `json:"pending"`

	// RequestSeq and UpdatedAt change whenever the stream dispatches or
	// applies a response.
	RequestSeq uint64    `json:"request_seq"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SystemStatus summarizes connection health and cadence.
type SystemStatus struct {
	Connection     string `json:"connection"`
	UpdateEvery    string `json:"update_every"`
	HistoryEvery   string `json:"history_every"`
	RecordCount    int    `json:"record_count"`
	Polling        bool   `json:"polling"`
	DiscardedStale uint64 `json:"discarded_stale"`
}

// Dashboard is the complete projection.
type Dashboard struct {
	Status       StreamPanel       `json:"status"`
	History      StreamPanel       `json:"history"`
	Snapshot     *models.Snapshot  `json:"snapshot"`
	LatestCard   *LatestCard       `json:"latest_card"`
	ChartSeries  ChartSeries       `json:"chart_series"`
	TableRows    []TableRow        `json:"table_rows"`
	SystemStatus SystemStatus      `json:"system_status"`
	GeneratedAt  time.Time         `json:"generated_at"`
	Thresholds   map[string]string `json:"thresholds"`
}

// Projector turns frames into dashboards.
type Projector struct {
	opts Options
}

// NewProjector returns a Projector with defaults filled in.
func NewProjector(opts Options) *Projector {
	return &Projector{opts: opts.withDefaults()}
}

// Options returns the effective options.
func (p *Projector) Options() Options { return p.opts }

// Project builds the dashboard for f.
func (p *Projector) Project(f engine.Frame) Dashboard {
	sorted := sortedHistory(f.History)

	d := Dashboard{
		Status:      panelOf(f.Status),
		History:     panelOf(f.History),
		Snapshot:    f.Status.Data,
		LatestCard:  p.LatestCard(f.Status, sorted),
		ChartSeries: p.Chart(sorted),
		TableRows:   p.Table(sorted),
		GeneratedAt: time.Now(),
		Thresholds:  p.thresholdLegend(),
	}
	d.SystemStatus = SystemStatus{
		Connection:     connectionOf(f.Status),
		UpdateEvery:    f.StatusInterval.String(),
		HistoryEvery:   f.HistoryInterval.String(),
		RecordCount:    len(sorted),
		Polling:        f.Active,
		DiscardedStale: f.Stats.StatusStale + f.Stats.HistoryStale,
	}
	return d
}

// LatestCard builds the latest-value card from the configured source, or
// returns nil when that source has no data. sorted must be ascending.
func (p *Projector) LatestCard(status stream.View[models.Snapshot], sorted []models.HistoryRecord) *LatestCard {
	switch p.opts.LatestSource {
	case LatestFromHistory:
		if len(sorted) == 0 {
			return nil
		}
		last := sorted[len(sorted)-1]
		card := p.card(last.Snapshot, LatestFromHistory)
		at := inZone(last.Timestamp.Time, p.opts.Location)
		card.At = &at
		return card
	default:
		if status.Data == nil {
			return nil
		}
		return p.card(*status.Data, LatestFromStatus)
	}
}

func (p *Projector) card(s models.Snapshot, src LatestSource) *LatestCard {
	readings := make([]MetricReading, 0, len(models.Metrics))
	for _, m := range models.Metrics {
		v := s.Value(m)
		readings = append(readings, MetricReading{
			Metric:    m,
			Value:     v,
			Formatted: formatValue(v),
			Unit:      m.Unit(),
			Tier:      p.opts.Classifier.Classify(m, v),
		})
	}
	return &LatestCard{
		Source:      src,
		Readings:    readings,
		FanOn:       s.FanOn,
		FanLabel:    fanLabel(s.FanOn),
		FanSpeedPct: fanSpeedPercent(s.FanSpeed),
		WarningOn:   s.WarningOn,
	}
}

// Chart downsamples sorted history into labelled chart points.
func (p *Projector) Chart(sorted []models.HistoryRecord) ChartSeries {
	picked := series.Downsample(sorted, p.opts.MaxChartPoints)
	points := make([]ChartPoint, 0, len(picked))
	for _, r := range picked {
		at := inZone(r.Timestamp.Time, p.opts.Location)
		points = append(points, ChartPoint{
			ID:          r.ID,
			At:          at,
			Time:        at.Format(TimeLabelLayout),
			FullDate:    at.Format(FullDateLayout),
			Temperature: r.Temperature,
			Humidity:    r.Humidity,
			SmokeLevel:  r.SmokeLevel,
		})
	}
	return ChartSeries{
		Points:          points,
		DisplayedPoints: len(points),
		TotalRecords:    len(sorted),
	}
}

// Table formats every sorted history record as a row.
func (p *Projector) Table(sorted []models.HistoryRecord) []TableRow {
	rows := make([]TableRow, 0, len(sorted))
	for _, r := range sorted {
		at := inZone(r.Timestamp.Time, p.opts.Location)
		tiers := make(map[models.Metric]threshold.Tier, len(models.Metrics))
		for _, m := range models.Metrics {
			tiers[m] = p.opts.Classifier.Classify(m, r.Value(m))
		}
		rows = append(rows, TableRow{
			ID:          r.ID,
			At:          at,
			Timestamp:   at.Format(FullDateLayout),
			Temperature: formatValue(r.Temperature),
			Humidity:    formatValue(r.Humidity),
			SmokeLevel:  formatValue(r.SmokeLevel),
			Fan:         fanLabel(r.FanOn),
			FanSpeedPct: fanSpeedPercent(r.FanSpeed),
			WarningOn:   r.WarningOn,
			Tiers:       tiers,
		})
	}
	return rows
}

func (p *Projector) thresholdLegend() map[string]string {
	legend := make(map[string]string, len(models.Metrics))
	for _, m := range models.Metrics {
		b, ok := p.opts.Classifier.Band(m)
		if !ok {
			continue
		}
		if b.Kind == threshold.Severity {
			legend[string(m)] = fmt.Sprintf("normal <%g, warning <%g, critical ≥%g %s", b.Lower, b.Upper, b.Upper, m.Unit())
		} else {
			legend[string(m)] = fmt.Sprintf("low <%g, normal %g–%g, high >%g %s", b.Lower, b.Lower, b.Upper, b.Upper, m.Unit())
		}
	}
	return legend
}

func sortedHistory(v stream.View[[]models.HistoryRecord]) []models.HistoryRecord {
	if v.Data == nil {
		return nil
	}
	return models.SortByTimestamp(*v.Data)
}

func panelOf[T any](v stream.View[T]) StreamPanel {
	return StreamPanel{
		Phase:      v.Phase,
		Display:    v.Display,
		Error:      v.Error,
		Banner:     v.Banner(),
		Pending:    v.Pending,
		RequestSeq: v.LastRequestSeq,
		UpdatedAt:  v.UpdatedAt,
	}
}

func connectionOf(v stream.View[models.Snapshot]) string {
	switch {
	case v.Display == stream.DisplayError:
		return ConnectionDown
	case v.Data == nil:
		return ConnectionPending
	case v.Error != "":
		return ConnectionDegraded
	default:
		return ConnectionOK
	}
}
