package draw_call

import "go.uber.org/zap"

// CollectorBuilderOption is a functional option for configuring a Collector.
type CollectorBuilderOption func(*Collector)

// WithLogger sets the collector's logger.
//
// Parameters:
//   - log: the logger; nil keeps the no-op default
//
// Returns:
//   - CollectorBuilderOption: option function to apply
func WithLogger(log *zap.Logger) CollectorBuilderOption {
	return func(c *Collector) {
		if log != nil {
			c.log = log
		}
	}
}

// WithPool shares a draw-call pool between collectors.
func WithPool(p *Pool) CollectorBuilderOption {
	return func(c *Collector) {
		if p != nil {
			c.pool = p
		}
	}
}
