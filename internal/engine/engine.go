// Package engine drives the status and history streams on independent
// polling cadences and keeps their lifecycle state.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"workshop_monitor/internal/logger"
	"workshop_monitor/internal/models"
	"workshop_monitor/internal/stream"
	"workshop_monitor/internal/telemetry"
)

// HistoryRatio is the fixed number of status periods per history period.
const HistoryRatio = 10

// Defaults used when Config fields are zero.
const (
	DefaultStatusInterval = 3 * time.Second
	DefaultHistoryLimit   = telemetry.DefaultHistoryLimit
)

// Stream names used in logs and statistics.
const (
	StreamStatus  = "status"
	StreamHistory = "history"
)

// ErrAlreadyStarted is returned by Start on an engine that was started before.
var ErrAlreadyStarted = errors.New("engine already started")

// Config holds the polling parameters.
type Config struct {
	StatusInterval time.Duration
	HistoryLimit   int
}

func (c Config) withDefaults() Config {
	if c.StatusInterval <= 0 {
		c.StatusInterval = DefaultStatusInterval
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = DefaultHistoryLimit
	}
	return c
}

// HistoryInterval is StatusInterval scaled by HistoryRatio.
func (c Config) HistoryInterval() time.Duration {
	return c.StatusInterval * HistoryRatio
}

// Stats counts responses that were dropped instead of applied.
type Stats struct {
	StatusStale       uint64 `json:"status_stale"`
	HistoryStale      uint64 `json:"history_stale"`
	LifecycleDiscards uint64 `json:"lifecycle_discards"`
}

// Frame is a consistent copy of both streams.
type Frame struct {
	Status          stream.View[models.Snapshot]        `json:"status"`
	History         stream.View[[]models.HistoryRecord] `json:"history"`
	Active          bool                                `json:"active"`
	StatusInterval  time.Duration                       `json:"status_interval"`
	HistoryInterval time.Duration                       `json:"history_interval"`
	HistoryLimit    int                                 `json:"history_limit"`
	Stats           Stats                               `json:"stats"`
}

// Engine owns the two streams. All state mutation is serialized by mu, so
// the streams behave as if driven by a single actor; fetches run on their
// own goroutines and only touch state after re-acquiring mu.
type Engine struct {
	client telemetry.Client
	cfg    Config
	log    *logger.Logger

	lifeMu sync.Mutex // serializes Start and Stop

	mu                sync.Mutex
	active            bool
	started           bool
	ctx               context.Context
	cancel            context.CancelFunc
	status            *stream.State[models.Snapshot]
	history           *stream.State[[]models.HistoryRecord]
	lifecycleDiscards uint64

	statusTask  *RepeatingTask
	historyTask *RepeatingTask
}

// New builds a stopped engine.
func New(client telemetry.Client, cfg Config, log *logger.Logger) *Engine {
	e := &Engine{
		client:  client,
		cfg:     cfg.withDefaults(),
		log:     logger.OrNop(log).Named("engine"),
		ctx:     context.Background(),
		status:  stream.New[models.Snapshot](),
		history: stream.New[[]models.HistoryRecord](),
	}
	e.statusTask = NewRepeatingTask(e.cfg.StatusInterval, func(context.Context) { e.RefreshStatus() })
	e.historyTask = NewRepeatingTask(e.cfg.HistoryInterval(), func(context.Context) { e.RefreshHistory() })
	return e
}

// Config returns the effective configuration.
func (e *Engine) Config() Config { return e.cfg }

// Start dispatches both streams immediately and then keeps polling them on
// their own intervals until Stop is called or ctx is canceled. An engine can
// be started once.
func (e *Engine) Start(ctx context.Context) error {
	e.lifeMu.Lock()
	defer e.lifeMu.Unlock()

	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return ErrAlreadyStarted
	}
	e.started = true
	e.active = true
	e.ctx, e.cancel = context.WithCancel(ctx)
	runCtx := e.ctx
	e.mu.Unlock()

	// a canceled parent tears the engine down like Stop
	context.AfterFunc(runCtx, func() {
		e.mu.Lock()
		e.active = false
		e.mu.Unlock()
	})

	e.RefreshStatus()
	e.RefreshHistory()

	e.statusTask.Start(runCtx)
	e.historyTask.Start(runCtx)

	e.log.Infow("engine_started",
		"status_interval", e.cfg.StatusInterval,
		"history_interval", e.cfg.HistoryInterval(),
		"history_limit", e.cfg.HistoryLimit,
	)
	return nil
}

// Stop cancels both timers and makes every in-flight fetch a no-op when it
// settles. It is idempotent and safe to call before Start.
func (e *Engine) Stop() {
	e.lifeMu.Lock()
	defer e.lifeMu.Unlock()

	e.mu.Lock()
	wasActive := e.active
	e.active = false
	cancel := e.cancel
	e.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	e.statusTask.Stop()
	e.historyTask.Stop()

	if wasActive {
		e.log.Infow("engine_stopped")
	}
}

// Active reports whether the engine is polling.
func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// RefreshStatus dispatches a status fetch now. The returned channel is
// closed once the response has been applied or discarded.
func (e *Engine) RefreshStatus() <-chan struct{} {
	return poll(e, StreamStatus, e.status, e.client.GetStatus)
}

// RefreshHistory dispatches a history fetch now. The returned channel is
// closed once the response has been applied or discarded.
func (e *Engine) RefreshHistory() <-chan struct{} {
	limit := e.cfg.HistoryLimit
	return poll(e, StreamHistory, e.history, func(ctx context.Context) ([]models.HistoryRecord, error) {
		return e.client.GetHistory(ctx, limit)
	})
}

// Frame returns a consistent copy of both streams.
func (e *Engine) Frame() Frame {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Frame{
		Status:          e.status.View(),
		History:         e.history.View(),
		Active:          e.active,
		StatusInterval:  e.cfg.StatusInterval,
		HistoryInterval: e.cfg.HistoryInterval(),
		HistoryLimit:    e.cfg.HistoryLimit,
		Stats: Stats{
			StatusStale:       e.status.Discarded(),
			HistoryStale:      e.history.Discarded(),
			LifecycleDiscards: e.lifecycleDiscards,
		},
	}
}

func poll[T any](e *Engine, name string, st *stream.State[T], fetch func(ctx context.Context) (T, error)) <-chan struct{} {
	done := make(chan struct{})

	e.mu.Lock()
	if !e.active {
		e.mu.Unlock()
		close(done)
		return done
	}
	seq := st.LastRequestSeq() + 1
	st.Dispatch(seq)
	ctx := e.ctx
	e.mu.Unlock()

	go func() {
		defer close(done)
		v, err := fetch(ctx)

		e.mu.Lock()
		defer e.mu.Unlock()
		if !e.active || ctx.Err() != nil {
			e.lifecycleDiscards++
			e.log.Debugw("lifecycle_response_discarded", "stream", name, "seq", seq)
			return
		}

		var applied bool
		if err != nil {
			applied = st.ResolveFailure(seq, err.Error())
		} else {
			applied = st.ResolveSuccess(seq, v)
		}
		switch {
		case !applied:
			e.log.Debugw("stale_response_discarded", "stream", name, "seq", seq, "latest_seq", st.LastRequestSeq())
		case err != nil:
			e.log.Warnw("fetch_failed", "stream", name, "seq", seq, "phase", st.Phase(), "err", err)
		}
	}()
	return done
}
