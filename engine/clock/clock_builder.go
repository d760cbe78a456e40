package clock

// ClockBuilderOption is a functional option for configuring a Clock.
type ClockBuilderOption func(*Clock)

// WithFixedDeltaTime sets the fixed step length in seconds. Non-positive values are ignored.
//
// Parameters:
//   - seconds: the step length
//
// Returns:
//   - ClockBuilderOption: option function to apply
func WithFixedDeltaTime(seconds float64) ClockBuilderOption {
	return func(c *Clock) {
		if seconds > 0 {
			c.fixedDeltaTime = seconds
		}
	}
}

// WithMaxFixedSubSteps sets how many fixed steps one update may run. Values below 1 are ignored.
func WithMaxFixedSubSteps(n int) ClockBuilderOption {
	return func(c *Clock) {
		if n > 0 {
			c.maxFixedSubSteps = n
		}
	}
}

// WithTimeScale sets the initial time scale.
func WithTimeScale(scale float64) ClockBuilderOption {
	return func(c *Clock) {
		c.timeScale = max(scale, 0)
	}
}

// WithFrameRate caps produced frames per second; 0 leaves frames uncapped.
func WithFrameRate(fps float64) ClockBuilderOption {
	return func(c *Clock) {
		if fps > 0 {
			c.frameInterval = 1 / fps
		} else {
			c.frameInterval = 0
		}
	}
}
