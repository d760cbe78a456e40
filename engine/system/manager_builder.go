package system

import "go.uber.org/zap"

// ManagerBuilderOption is a functional option for configuring a Manager.
type ManagerBuilderOption func(*Manager)

// WithLogger sets the logger used for registration warnings and recovered panics.
//
// Parameters:
//   - log: the logger; nil keeps the no-op default
//
// Returns:
//   - ManagerBuilderOption: option function to apply
func WithLogger(log *zap.Logger) ManagerBuilderOption {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// WithDebug re-raises recovered system panics after logging them and treats a missing clock as fatal.
func WithDebug(debug bool) ManagerBuilderOption {
	return func(m *Manager) {
		m.debug = debug
	}
}

// WithClock sets the source of the deltas passed to tick and frame hooks.
func WithClock(c Clock) ManagerBuilderOption {
	return func(m *Manager) {
		m.clock = c
	}
}

// WithPlayerMode sets the initial run mode.
func WithPlayerMode(mode PlayerMode) ManagerBuilderOption {
	return func(m *Manager) {
		m.mode = mode
	}
}
