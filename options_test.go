package rx

import (
	"testing"

	"github.com/zoobzio/clockz"
)

func TestBuildConfig_Defaults(t *testing.T) {
	cfg := buildConfig(nil)
	if cfg.scheduler != DefaultScheduler {
		t.Error("expected DefaultScheduler")
	}
	if cfg.clock != clockz.RealClock {
		t.Error("expected clockz.RealClock")
	}
}

func TestWithScheduler(t *testing.T) {
	vs := NewVirtualScheduler()
	cfg := buildConfig([]Option{WithScheduler(vs)})
	if cfg.scheduler != vs {
		t.Error("expected virtual scheduler")
	}

	cfg = buildConfig([]Option{WithScheduler(nil)})
	if cfg.scheduler != DefaultScheduler {
		t.Error("expected nil scheduler to fall back to DefaultScheduler")
	}
}

func TestWithClock(t *testing.T) {
	clock := clockz.NewFakeClock()
	cfg := buildConfig([]Option{WithClock(clock)})
	if cfg.clock != clock {
		t.Error("expected fake clock")
	}
}
