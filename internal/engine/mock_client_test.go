package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"workshop_monitor/internal/models"
)

type statusReply struct {
	snap models.Snapshot
	err  error
}

type historyReply struct {
	recs []models.HistoryRecord
	err  error
}

type statusCall struct {
	reply chan statusReply
}

type historyCall struct {
	limit int
	reply chan historyReply
}

// fakeClient hands every call to the test, which answers it whenever it
// likes. Calls ignore their context to model a request that hangs.
type fakeClient struct {
	statusCalls  chan statusCall
	historyCalls chan historyCall
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		statusCalls:  make(chan statusCall, 64),
		historyCalls: make(chan historyCall, 64),
	}
}

func (f *fakeClient) GetStatus(ctx context.Context) (models.Snapshot, error) {
	c := statusCall{reply: make(chan statusReply, 1)}
	f.statusCalls <- c
	r := <-c.reply
	return r.snap, r.err
}

func (f *fakeClient) GetHistory(ctx context.Context, limit int) ([]models.HistoryRecord, error) {
	c := historyCall{limit: limit, reply: make(chan historyReply, 1)}
	f.historyCalls <- c
	r := <-c.reply
	return r.recs, r.err
}

func (f *fakeClient) nextStatus(t *testing.T) statusCall {
	t.Helper()
	select {
	case c := <-f.statusCalls:
		return c
	case <-time.After(time.Second):
		t.Fatalf("no status fetch dispatched")
		return statusCall{}
	}
}

func (f *fakeClient) nextHistory(t *testing.T) historyCall {
	t.Helper()
	select {
	case c := <-f.historyCalls:
		return c
	case <-time.After(time.Second):
		t.Fatalf("no history fetch dispatched")
		return historyCall{}
	}
}

var errBackendDown = errors.New("failed to fetch status: http 503")

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("fetch did not settle")
	}
}
