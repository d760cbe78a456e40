package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFirstUpdateIsAFrameWithoutTicks(t *testing.T) {
	c := New()
	ticks, frame := c.Update(time.Now())
	assert.Zero(t, ticks)
	assert.True(t, frame)
	assert.Equal(t, uint64(1), c.FrameCount())
}

func TestAdvanceProducesWholeSteps(t *testing.T) {
	c := New(WithFixedDeltaTime(0.02))

	tests := []struct {
		delta float64
		want  int
	}{
		{0.01, 0},
		{0.01, 1},
		{0.05, 2},
		{0.01, 1},
	}
	for _, tt := range tests {
		ticks, frame := c.Advance(tt.delta)
		assert.Equal(t, tt.want, ticks)
		assert.True(t, frame)
	}
	assert.Equal(t, uint64(4), c.TickCount())
	assert.InDelta(t, 0.0, c.FixedTime(), 1e-9)
}

func TestAdvanceDropsBacklogBeyondSubSteps(t *testing.T) {
	c := New(WithFixedDeltaTime(0.02), WithMaxFixedSubSteps(3))

	ticks, _ := c.Advance(0.2)
	assert.Equal(t, 3, ticks)
	assert.Equal(t, uint64(7), c.DroppedTicks())
	assert.Zero(t, c.FixedTime())

	ticks, _ = c.Advance(0.02)
	assert.Equal(t, 1, ticks)
}

func TestTimeScaleAffectsHookDeltasOnly(t *testing.T) {
	c := New(WithFixedDeltaTime(0.02), WithTimeScale(0.5))

	ticks, _ := c.Advance(0.04)
	assert.Equal(t, 2, ticks, "steps follow wall time")
	assert.InDelta(t, 0.02, c.DeltaTime(), 1e-9)
	assert.InDelta(t, 0.04, c.UnscaledDeltaTime(), 1e-9)
	assert.InDelta(t, 0.01, c.FixedDeltaTime(), 1e-9)
	assert.InDelta(t, 0.02, c.TickInterval(), 1e-9)

	c.SetTimeScale(-1)
	assert.Zero(t, c.TimeScale())
}

func TestFrameRateCap(t *testing.T) {
	c := New(WithFrameRate(10))

	_, frame := c.Advance(0.05)
	assert.False(t, frame)
	_, frame = c.Advance(0.06)
	assert.True(t, frame)
	_, frame = c.Advance(0.05)
	assert.False(t, frame)
	assert.Equal(t, uint64(1), c.FrameCount())
}

func TestUpdateUsesWallTime(t *testing.T) {
	c := New(WithFixedDeltaTime(0.02))
	start := time.Unix(100, 0)
	c.Update(start)

	ticks, _ := c.Update(start.Add(40 * time.Millisecond))
	assert.Equal(t, 2, ticks)
	assert.InDelta(t, 0.04, c.Time(), 1e-9)

	ticks, _ = c.Update(start)
	assert.Zero(t, ticks, "time going backwards is treated as no time")
	assert.InDelta(t, 0.04, c.UnscaledTime(), 1e-9)
}

func TestUntilNext(t *testing.T) {
	assert.Zero(t, New(WithFrameRate(10)).UntilNext(), "nothing is due before the first update")
	assert.Zero(t, New().UntilNext(), "an uncapped clock never waits")

	c := New(WithFixedDeltaTime(0.02), WithFrameRate(10))
	c.Update(time.Unix(0, 0))
	assert.InDelta(t, float64(20*time.Millisecond), float64(c.UntilNext()), float64(time.Microsecond),
		"the next fixed step comes first")

	_, frame := c.Update(time.Unix(0, 0).Add(15 * time.Millisecond))
	assert.False(t, frame)
	assert.InDelta(t, float64(5*time.Millisecond), float64(c.UntilNext()), float64(time.Microsecond))

	c = New(WithFixedDeltaTime(0.5), WithFrameRate(10))
	c.Update(time.Unix(0, 0))
	c.Update(time.Unix(0, 0).Add(40 * time.Millisecond))
	assert.InDelta(t, float64(60*time.Millisecond), float64(c.UntilNext()), float64(time.Microsecond),
		"a frame deadline earlier than the step wins")
}
