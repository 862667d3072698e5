package testing

import (
	"errors"
	"testing"
	"time"

	"github.com/zoobzio/rx"
)

func TestScript_Values(t *testing.T) {
	v, err := CreateWithDemand[string](rx.Of("a", "b", "c"), 1).Script([]byte(`
- expect: subscription
- next: a
- request: 2
- next: [b, c]
- complete: true
`))
	if err != nil {
		t.Fatalf("Script failed: %v", err)
	}
	v.Verify(t)
}

func TestScript_VirtualTime(t *testing.T) {
	v, err := WithVirtualTime(func(vs *rx.VirtualScheduler) rx.Publisher[int64] {
		return rx.Interval(time.Hour, rx.WithScheduler(vs))
	}).Script([]byte(`
- no_event: 59m
- await: 1m
- next: 0
- await: 2h
- count: 2
- cancel: true
`))
	if err != nil {
		t.Fatalf("Script failed: %v", err)
	}
	v.Verify(t)
}

func TestScript_Error(t *testing.T) {
	failing := rx.Map(rx.Of(1, 2), func(v int) (int, error) {
		if v == 2 {
			return 0, errors.New("disk full")
		}
		return v, nil
	})
	v, err := Create[int](failing).Script([]byte(`
- next: 1
- error: disk
`))
	if err != nil {
		t.Fatalf("Script failed: %v", err)
	}
	v.Verify(t)
}

func TestScript_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		script string
	}{
		{name: "not yaml list", script: `next: 1`},
		{name: "two actions", script: "- next: 1\n  complete: true"},
		{name: "no action", script: "- {}"},
		{name: "bad duration", script: "- await: soon"},
		{name: "bad value", script: "- next: [x]"},
		{name: "unknown expectation", script: "- expect: nothing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Create[int](rx.Of(1)).Script([]byte(tt.script))
			if !errors.Is(err, ErrInvalidScript) {
				t.Errorf("expected ErrInvalidScript, got %v", err)
			}
		})
	}
}
