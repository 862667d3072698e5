package rx

import "github.com/zoobzio/clockz"

// config holds settings shared by timed sources and instrumented stages.
type config struct {
	scheduler Scheduler
	clock     clockz.Clock
}

// Option configures a timed source (Interval, Timer) or an instrumented
// stage (Metrics).
type Option func(*config)

// WithScheduler sets the scheduler timed sources emit on.
// Use a VirtualScheduler for deterministic tests.
func WithScheduler(s Scheduler) Option {
	return func(c *config) {
		c.scheduler = s
	}
}

// WithClock sets the clock used to measure durations.
// Use this with clockz.FakeClock for deterministic timing tests.
func WithClock(clock clockz.Clock) Option {
	return func(c *config) {
		c.clock = clock
	}
}

func buildConfig(opts []Option) *config {
	cfg := &config{
		scheduler: DefaultScheduler,
		clock:     clockz.RealClock,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.scheduler == nil {
		cfg.scheduler = DefaultScheduler
	}
	if cfg.clock == nil {
		cfg.clock = clockz.RealClock
	}
	return cfg
}
