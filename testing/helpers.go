package testing

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/rx"
)

// WaitFor polls a condition until it returns true or timeout is reached.
// Returns true if the condition was met, false if timeout occurred.
func WaitFor(t *testing.T, timeout time.Duration, condition func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return condition()
}

// WaitForState waits until the subscription reaches the expected state or timeout occurs.
func WaitForState(t *testing.T, d rx.Disposable, expected rx.State, timeout time.Duration) bool {
	t.Helper()
	return WaitFor(t, timeout, func() bool {
		return d.State() == expected
	})
}

// RequireState fails the test immediately if the subscription is not in the expected state.
func RequireState(t *testing.T, d rx.Disposable, expected rx.State) {
	t.Helper()
	if got := d.State(); got != expected {
		t.Fatalf("expected state %s, got %s", expected, got)
	}
}

// Collect subscribes to p with unbounded demand and waits for it to
// terminate, failing the test on timeout.
func Collect[T any](t *testing.T, p rx.Publisher[T], timeout time.Duration) ([]T, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	items, err := rx.FromPublisher(p).CollectList(ctx)
	if ctx.Err() != nil {
		t.Fatalf("publisher did not terminate within %s", timeout)
	}
	return items, err
}

// LogEntry is one capitan event emitted by a Log stage.
type LogEntry struct {
	Signal   capitan.Signal
	Category string
	Value    string
	Request  int
	Error    string
}

// LogCapture records the log events of a single category.
type LogCapture struct {
	mu      sync.Mutex
	entries []LogEntry
}

// CaptureLog hooks every rx log signal and records the events tagged with
// category. Use a category unique to the test; hooks are process-wide.
func CaptureLog(category string) *LogCapture {
	c := &LogCapture{}
	for _, sig := range []capitan.Signal{
		rx.LogSubscribe, rx.LogRequest, rx.LogNext,
		rx.LogError, rx.LogComplete, rx.LogCancel,
	} {
		capitan.Hook(sig, func(_ context.Context, e *capitan.Event) {
			cat, _ := rx.KeyCategory.From(e)
			if cat != category {
				return
			}
			entry := LogEntry{Signal: sig, Category: cat}
			entry.Value, _ = rx.KeyValue.From(e)
			entry.Request, _ = rx.KeyRequest.From(e)
			entry.Error, _ = rx.KeyError.From(e)
			c.mu.Lock()
			c.entries = append(c.entries, entry)
			c.mu.Unlock()
		})
	}
	return c
}

// Entries returns a copy of the captured entries in arrival order.
func (c *LogCapture) Entries() []LogEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]LogEntry(nil), c.entries...)
}

// Count returns the number of captured entries for sig.
func (c *LogCapture) Count(sig capitan.Signal) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.entries {
		if e.Signal == sig {
			n++
		}
	}
	return n
}
