package clock

import (
	"math"
	"time"
)

// stepEpsilon absorbs rounding so a backlog of exactly n steps yields n.
const stepEpsilon = 1e-9

// Clock turns wall time into fixed steps and render frames. It is advanced by Update once per
// main-loop iteration and is not safe for concurrent use.
type Clock struct {
	fixedDeltaTime   float64
	maxFixedSubSteps int
	timeScale        float64
	frameInterval    float64

	started       bool
	last          time.Time
	unscaled      float64
	unscaledDelta float64
	scaled        float64
	scaledDelta   float64
	fixedTime     float64
	frameTime     float64
	frames        uint64
	ticks         uint64
	dropped       uint64
}

// New creates a clock with a 1/50 s fixed step, three sub-steps per update and no frame cap.
//
// Parameters:
//   - options: variadic list of ClockBuilderOption functions
//
// Returns:
//   - *Clock: the new clock
func New(options ...ClockBuilderOption) *Clock {
	c := &Clock{
		fixedDeltaTime:   1.0 / 50.0,
		maxFixedSubSteps: 3,
		timeScale:        1,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Update advances the clock to now.
//
// The unscaled delta accumulates into a fixed-step backlog; up to MaxFixedSubSteps whole steps
// are consumed and returned as tickCount, and a larger backlog is dropped. frame is false only
// while a frame-rate cap is set and its interval has not elapsed.
//
// Parameters:
//   - now: the current wall time
//
// Returns:
//   - int: the number of fixed steps to run
//   - bool: whether a render frame should be produced
func (c *Clock) Update(now time.Time) (tickCount int, frame bool) {
	if !c.started {
		c.started = true
		c.last = now
		c.frames++
		return 0, true
	}
	delta := now.Sub(c.last).Seconds()
	if delta < 0 {
		delta = 0
	}
	c.last = now
	return c.Advance(delta)
}

// Advance is Update with an explicit unscaled delta in seconds.
func (c *Clock) Advance(delta float64) (tickCount int, frame bool) {
	c.unscaledDelta = delta
	c.unscaled += delta
	c.scaledDelta = delta * c.timeScale
	c.scaled += c.scaledDelta

	c.fixedTime += delta
	steps := int(math.Floor(c.fixedTime/c.fixedDeltaTime + stepEpsilon))
	if steps > c.maxFixedSubSteps {
		c.dropped += uint64(steps - c.maxFixedSubSteps)
		steps = c.maxFixedSubSteps
		c.fixedTime = 0
	} else {
		c.fixedTime = max(c.fixedTime-float64(steps)*c.fixedDeltaTime, 0)
	}
	c.ticks += uint64(steps)

	frame = true
	if c.frameInterval > 0 {
		c.frameTime += delta
		if c.frameTime < c.frameInterval {
			frame = false
		} else {
			c.frameTime = math.Mod(c.frameTime, c.frameInterval)
		}
	}
	if frame {
		c.frames++
	}
	return steps, frame
}

// UntilNext returns the wall time left, counted from the last update, before the next fixed
// step or capped frame is due. It is zero when nothing would be gained by waiting: before the
// first update, without a frame cap, or when a step is already due.
func (c *Clock) UntilNext() time.Duration {
	if !c.started || c.frameInterval <= 0 {
		return 0
	}
	wait := min(c.fixedDeltaTime-c.fixedTime, c.frameInterval-c.frameTime)
	if wait <= 0 {
		return 0
	}
	return time.Duration(wait * float64(time.Second))
}

// Time returns the scaled time since the first update, in seconds.
func (c *Clock) Time() float64 { return c.scaled }

// DeltaTime returns the scaled duration of the last update, in seconds.
func (c *Clock) DeltaTime() float64 { return c.scaledDelta }

// UnscaledTime returns the wall time since the first update, in seconds.
func (c *Clock) UnscaledTime() float64 { return c.unscaled }

// UnscaledDeltaTime returns the wall duration of the last update, in seconds.
func (c *Clock) UnscaledDeltaTime() float64 { return c.unscaledDelta }

// FixedDeltaTime returns the scaled length of one fixed step.
func (c *Clock) FixedDeltaTime() float64 { return c.fixedDeltaTime * c.timeScale }

// TickInterval returns the unscaled length of one fixed step.
func (c *Clock) TickInterval() float64 { return c.fixedDeltaTime }

// FixedTime returns the unconsumed fixed-step backlog, in seconds.
func (c *Clock) FixedTime() float64 { return c.fixedTime }

// FrameCount returns the number of frames produced.
func (c *Clock) FrameCount() uint64 { return c.frames }

// TickCount returns the number of fixed steps produced.
func (c *Clock) TickCount() uint64 { return c.ticks }

// DroppedTicks returns the number of steps discarded because the backlog exceeded the sub-step budget.
func (c *Clock) DroppedTicks() uint64 { return c.dropped }

func (c *Clock) TimeScale() float64 { return c.timeScale }

// SetTimeScale scales hook deltas. Negative values are clamped to zero.
func (c *Clock) SetTimeScale(scale float64) {
	c.timeScale = max(scale, 0)
}
