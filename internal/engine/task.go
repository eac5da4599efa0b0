package engine

import (
	"context"
	"sync"
	"time"
)

// RepeatingTask runs a unit of work on a fixed interval until stopped.
// The work runs on the task's own goroutine, so it must not block for long;
// the engine's work only dispatches and hands the fetch to another goroutine.
type RepeatingTask struct {
	interval time.Duration
	work     func(ctx context.Context)

	mu      sync.Mutex
	cancel  context.CancelFunc
	running bool
	wg      sync.WaitGroup
}

// NewRepeatingTask returns a stopped task.
func NewRepeatingTask(interval time.Duration, work func(ctx context.Context)) *RepeatingTask {
	return &RepeatingTask{interval: interval, work: work}
}

// Start begins ticking. The first run happens one interval after Start.
// Starting a running task is a no-op.
func (t *RepeatingTask) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.running = true

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				t.work(ctx)
			}
		}
	}()
}

// Stop cancels the ticker and waits for the loop to exit. It is idempotent.
func (t *RepeatingTask) Stop() {
	t.mu.Lock()
	cancel := t.cancel
	t.cancel = nil
	t.running = false
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	t.wg.Wait()
}
