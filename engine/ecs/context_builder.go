package ecs

import "go.uber.org/zap"

// ContextBuilderOption is a functional option for configuring a Context.
type ContextBuilderOption func(*Context)

// WithLogger sets the logger used for configuration warnings.
//
// Parameters:
//   - log: the logger; nil keeps the no-op default
//
// Returns:
//   - ContextBuilderOption: option function to apply
func WithLogger(log *zap.Logger) ContextBuilderOption {
	return func(c *Context) {
		if log != nil {
			c.log = log
		}
	}
}

// WithRegistry shares a component registry between contexts.
//
// Parameters:
//   - r: the registry
//
// Returns:
//   - ContextBuilderOption: option function to apply
func WithRegistry(r *Registry) ContextBuilderOption {
	return func(c *Context) {
		c.registry = r
	}
}

// WithDebug enables debug checks.
func WithDebug(debug bool) ContextBuilderOption {
	return func(c *Context) {
		c.debug = debug
	}
}
