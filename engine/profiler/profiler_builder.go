package profiler

import (
	"time"

	"go.uber.org/zap"
)

// ProfilerBuilderOption is a functional option applied to a Profiler during construction via NewProfiler.
type ProfilerBuilderOption func(*Profiler)

// WithLogger sets the logger reports are written to.
//
// Parameters:
//   - log: the logger; nil keeps the no-op default
//
// Returns:
//   - ProfilerBuilderOption: a function that applies the logger option to a Profiler
func WithLogger(log *zap.Logger) ProfilerBuilderOption {
	return func(p *Profiler) {
		if log != nil {
			p.log = log
		}
	}
}

// WithInterval sets how often the profiler reports.
//
// Parameters:
//   - d: the report interval; non-positive values keep the one second default
//
// Returns:
//   - ProfilerBuilderOption: a function that applies the interval option to a Profiler
func WithInterval(d time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		if d > 0 {
			p.updateInterval = d
		}
	}
}

// WithCounter adds a value sampled on every report.
//
// Parameters:
//   - name: the log field name
//   - value: returns the current value
//
// Returns:
//   - ProfilerBuilderOption: a function that applies the counter option to a Profiler
func WithCounter(name string, value func() int) ProfilerBuilderOption {
	return func(p *Profiler) {
		if value != nil {
			p.counters = append(p.counters, Counter{Name: name, Value: value})
		}
	}
}

// WithTimeSource replaces time.Now.
func WithTimeSource(now func() time.Time) ProfilerBuilderOption {
	return func(p *Profiler) {
		if now != nil {
			p.now = now
		}
	}
}
