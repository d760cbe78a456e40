package engine

import (
	"github.com/Carmen-Shannon/oxy-ecs/engine/clock"
	"github.com/Carmen-Shannon/oxy-ecs/engine/ecs"
	"github.com/Carmen-Shannon/oxy-ecs/engine/profiler"
	"github.com/Carmen-Shannon/oxy-ecs/engine/system"
	"github.com/Carmen-Shannon/oxy-ecs/engine/window"
	"go.uber.org/zap"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithLogger sets the engine logger. Default collaborators log through named children of it.
//
// Parameters:
//   - log: the logger; nil keeps the no-op default
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLogger(log *zap.Logger) EngineBuilderOption {
	return func(e *engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithDebug puts the default context and manager in debug mode, which re-raises recovered
// system panics.
func WithDebug(debug bool) EngineBuilderOption {
	return func(e *engine) {
		e.debug = debug
	}
}

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled.Store(enabled)
	}
}

// WithProfiler replaces the default profiler, for example to add counters.
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithClock sets the clock. The default manager reads its deltas from it.
//
// Parameters:
//   - c: the clock
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithClock(c *clock.Clock) EngineBuilderOption {
	return func(e *engine) {
		e.clock = c
	}
}

// WithContext sets the entity context.
func WithContext(ctx *ecs.Context) EngineBuilderOption {
	return func(e *engine) {
		e.context = ctx
	}
}

// WithManager sets the system manager. It should be built with the same clock.
func WithManager(m *system.Manager) EngineBuilderOption {
	return func(e *engine) {
		e.manager = m
	}
}

// WithWindow sets the window whose events drive the loop.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithResizeCallback sets the function called when the window framebuffer is resized.
//
// Parameters:
//   - callback: function receiving the new size in pixels
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithResizeCallback(callback func(width, height int)) EngineBuilderOption {
	return func(e *engine) {
		e.onResize = callback
	}
}

// WithFrameCallback sets the function called at the start of every frame.
func WithFrameCallback(callback func(delta float64)) EngineBuilderOption {
	return func(e *engine) {
		e.onFrame = callback
	}
}
