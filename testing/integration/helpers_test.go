package integration

import (
	"testing"
	"time"

	"github.com/zoobzio/clockz"
	rxtest "github.com/zoobzio/rx/testing"
)

// stepClock advances clock by step, flushes pending timer sends and waits
// for the condition, once per expected firing.
func stepClock(t *testing.T, clock *clockz.FakeClock, step time.Duration, steps int, condition func(i int) bool) {
	t.Helper()
	for i := 1; i <= steps; i++ {
		clock.Advance(step)
		clock.BlockUntilReady()
		if !rxtest.WaitFor(t, time.Second, func() bool { return condition(i) }) {
			t.Fatalf("condition not met after step %d", i)
		}
	}
}
