package system

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-ecs/engine/ecs"
)

type fixedClock struct{}

func (fixedClock) FixedDeltaTime() float64 { return 0.02 }
func (fixedClock) DeltaTime() float64      { return 0.016 }

type journal struct {
	entries []string
}

func (j *journal) add(format string, args ...any) {
	j.entries = append(j.entries, fmt.Sprintf(format, args...))
}

// stepper records its tick, frame and cleanup hooks with its order.
type stepper struct {
	BaseSystem
	log *journal
}

func (s *stepper) OnTick(float64)         { s.log.add("tick %d", s.Order()) }
func (s *stepper) OnTickCleanup(float64)  { s.log.add("tickCleanup %d", s.Order()) }
func (s *stepper) OnFrame(float64)        { s.log.add("frame %d", s.Order()) }
func (s *stepper) OnFrameCleanup(float64) { s.log.add("frameCleanup %d", s.Order()) }

type stepperA struct{ stepper }
type stepperB struct{ stepper }
type stepperC struct{ stepper }

type marker struct{ ecs.BaseComponent }

// watcher is a reactive system over every entity carrying a marker.
type watcher struct {
	BaseSystem
	log     *journal
	marker  *ecs.ComponentType
	mode    PlayerMode
	panicOn string
}

func (w *watcher) Matchers() []*ecs.Matcher { return []*ecs.Matcher{ecs.AllOf(w.marker)} }
func (w *watcher) OnAwake(config any)       { w.log.add("awake %v", config) }
func (w *watcher) OnEnable()                { w.log.add("enable") }
func (w *watcher) OnStart()                 { w.log.add("start") }
func (w *watcher) OnDisable()               { w.log.add("disable") }
func (w *watcher) OnDestroy()               { w.log.add("destroy") }

func (w *watcher) OnTick(float64) {
	if w.panicOn == "tick" {
		panic("boom")
	}
	w.log.add("tick")
}

func (w *watcher) OnEntityAdded(e *ecs.Entity, _ *ecs.Group)   { w.log.add("added %s", e.Name()) }
func (w *watcher) OnEntityRemoved(e *ecs.Entity, _ *ecs.Group) { w.log.add("removed %s", e.Name()) }

func (w *watcher) ExecuteMode() PlayerMode {
	if w.mode == 0 {
		return PlayerModeAll
	}
	return w.mode
}

func newWorld(t *testing.T) (*ecs.Context, *ecs.ComponentType) {
	t.Helper()
	ctx := ecs.NewContext()
	mt := ctx.Registry().Register("Marker", func() ecs.Component { return &marker{} })
	return ctx, mt
}

func spawn(t *testing.T, ctx *ecs.Context, mt *ecs.ComponentType, name string) *ecs.Entity {
	t.Helper()
	e := ctx.CreateEntity(ecs.WithName(name))
	_, err := e.AddComponent(mt, nil)
	require.NoError(t, err)
	return e
}

func TestUpdateRunsInOrderAndCleansUpInReverse(t *testing.T) {
	ctx := ecs.NewContext()
	log := &journal{}
	m := NewManager(WithClock(fixedClock{}))

	m.Register(&stepperA{stepper{log: log}}, ctx, 100, nil)
	m.Register(&stepperB{stepper{log: log}}, ctx, 50, nil)
	m.Register(&stepperC{stepper{log: log}}, ctx, 200, nil)

	m.Update(1, true)
	assert.Equal(t, []string{
		"tick 50", "tick 100", "tick 200",
		"frame 50", "frame 100", "frame 200",
		"frameCleanup 200", "frameCleanup 100", "frameCleanup 50",
		"tickCleanup 200", "tickCleanup 100", "tickCleanup 50",
	}, log.entries)

	var orders []int
	for _, s := range m.Systems() {
		orders = append(orders, s.Order())
	}
	assert.Equal(t, []int{50, 100, 200}, orders)
}

func TestUpdateRunsEveryTick(t *testing.T) {
	ctx := ecs.NewContext()
	log := &journal{}
	m := NewManager(WithClock(fixedClock{}))
	m.Register(&stepperA{stepper{log: log}}, ctx, 1, nil)

	m.Update(3, false)
	assert.Equal(t, []string{"tick 1", "tick 1", "tick 1", "tickCleanup 1"}, log.entries)
}

func TestSystemsEnableOnlyOnTickingCycles(t *testing.T) {
	ctx, mt := newWorld(t)
	log := &journal{}
	m := NewManager(WithClock(fixedClock{}))
	w := &watcher{log: log, marker: mt}
	m.Register(w, ctx, OrderUpdate, "cfg")

	m.Update(0, true)
	assert.False(t, w.IsActive())
	assert.Equal(t, []string{"awake cfg"}, log.entries)

	m.Update(1, false)
	assert.True(t, w.IsActive())
	assert.True(t, w.Started())
	assert.Equal(t, []string{"awake cfg", "enable", "start", "tick"}, log.entries)
}

func TestEnableDisableSymmetry(t *testing.T) {
	ctx, mt := newWorld(t)
	for i := range 3 {
		spawn(t, ctx, mt, fmt.Sprintf("e%d", i))
	}
	log := &journal{}
	m := NewManager(WithClock(fixedClock{}))
	w := &watcher{log: log, marker: mt}
	m.Register(w, ctx, OrderUpdate, nil)

	m.Update(1, false)
	assert.ElementsMatch(t, []string{"added e0", "added e1", "added e2"}, filter(log.entries, "added"))

	log.entries = nil
	w.SetEnabled(false)
	m.Update(1, false)
	assert.ElementsMatch(t, []string{"removed e0", "removed e1", "removed e2"}, filter(log.entries, "removed"))
	assert.Equal(t, "disable", log.entries[len(log.entries)-1])
	assert.False(t, w.IsActive())

	log.entries = nil
	m.Update(1, false)
	assert.Empty(t, log.entries, "a disabled system gets no callbacks")
}

func TestReactiveDeltasFlushBeforeTick(t *testing.T) {
	ctx, mt := newWorld(t)
	log := &journal{}
	m := NewManager(WithClock(fixedClock{}))
	m.Register(&watcher{log: log, marker: mt}, ctx, OrderUpdate, nil)
	m.Update(1, false)

	log.entries = nil
	e := spawn(t, ctx, mt, "late")
	transient := spawn(t, ctx, mt, "transient")
	transient.Destroy()

	m.Update(2, false)
	assert.Equal(t, []string{"added late", "tick", "tick"}, log.entries)

	log.entries = nil
	e.Destroy()
	m.Update(1, false)
	assert.Equal(t, []string{"removed late", "tick"}, log.entries)
}

func TestDisabledSystemDropsPendingDeltas(t *testing.T) {
	ctx, mt := newWorld(t)
	log := &journal{}
	m := NewManager(WithClock(fixedClock{}))
	w := &watcher{log: log, marker: mt}
	m.Register(w, ctx, OrderUpdate, nil)
	m.Update(1, false)

	w.SetEnabled(false)
	m.Update(1, false)
	spawn(t, ctx, mt, "unseen")
	m.Update(1, false)

	log.entries = nil
	w.SetEnabled(true)
	m.Update(1, false)
	assert.Equal(t, []string{"enable", "added unseen", "tick"}, log.entries,
		"the enable edge reports current members once")
}

// breeder spawns an extra marked entity, or destroys doomed, from its first synthetic add.
type breeder struct {
	watcher
	ctx    *ecs.Context
	doomed *ecs.Entity
	fired  bool
}

func (b *breeder) OnEntityAdded(e *ecs.Entity, g *ecs.Group) {
	b.watcher.OnEntityAdded(e, g)
	if b.fired {
		return
	}
	b.fired = true
	if b.doomed != nil {
		b.doomed.Destroy()
		return
	}
	child := b.ctx.CreateEntity(ecs.WithName("spawned"))
	if _, err := child.AddComponent(b.marker, nil); err != nil {
		panic(err)
	}
}

func TestEnableEdgeKeepsDeltasRaisedByItsCallbacks(t *testing.T) {
	ctx, mt := newWorld(t)
	spawn(t, ctx, mt, "a")
	log := &journal{}
	m := NewManager(WithClock(fixedClock{}))
	b := &breeder{watcher: watcher{log: log, marker: mt}, ctx: ctx}
	m.Register(b, ctx, OrderUpdate, nil)

	log.entries = nil
	m.Update(1, true)
	assert.Equal(t, []string{"enable", "added a", "start", "added spawned", "tick"}, log.entries)
	assert.Equal(t, 2, b.Group(0).EntityCount())

	log.entries = nil
	m.Update(1, true)
	assert.Equal(t, []string{"tick"}, log.entries, "each member is reported once")
}

func TestEnableEdgeReportsMembersRemovedByItsCallbacks(t *testing.T) {
	ctx, mt := newWorld(t)
	spawn(t, ctx, mt, "a")
	doomed := spawn(t, ctx, mt, "doomed")
	log := &journal{}
	m := NewManager(WithClock(fixedClock{}))
	b := &breeder{watcher: watcher{log: log, marker: mt}, ctx: ctx, doomed: doomed}
	m.Register(b, ctx, OrderUpdate, nil)

	log.entries = nil
	m.Update(1, false)
	assert.Equal(t, []string{"enable", "added a", "added doomed", "start", "removed doomed", "tick"}, log.entries)
	assert.Equal(t, 1, b.Group(0).EntityCount())
}

// recruiter registers stepperC from inside its first OnTick.
type recruiter struct {
	stepper
	ctx   *ecs.Context
	fired bool
}

func (r *recruiter) OnTick(delta float64) {
	r.stepper.OnTick(delta)
	if !r.fired {
		r.fired = true
		r.Manager().Register(&stepperC{stepper{log: r.log}}, r.ctx, 50, nil)
	}
}

func TestRegisterFromHookWaitsForNextCycle(t *testing.T) {
	ctx := ecs.NewContext()
	log := &journal{}
	m := NewManager(WithClock(fixedClock{}))
	m.Register(&stepperB{stepper{log: log}}, ctx, 200, nil)
	m.Register(&recruiter{stepper: stepper{log: log}, ctx: ctx}, ctx, 100, nil)

	m.Update(1, false)
	assert.Equal(t, []string{"tick 100", "tick 200", "tickCleanup 200", "tickCleanup 100"}, log.entries,
		"the running pass is not disturbed")

	log.entries = nil
	m.Update(1, false)
	assert.Equal(t, []string{
		"tick 50", "tick 100", "tick 200",
		"tickCleanup 200", "tickCleanup 100", "tickCleanup 50",
	}, log.entries)
}

func TestRegisterDuplicateTypeReturnsExisting(t *testing.T) {
	ctx, mt := newWorld(t)
	m := NewManager()
	first := &watcher{log: &journal{}, marker: mt}
	second := &watcher{log: &journal{}, marker: mt}

	assert.Same(t, first, m.Register(first, ctx, 1, nil))
	assert.Same(t, first, m.Register(second, ctx, 2, nil))
	assert.Len(t, m.Systems(), 1)
	assert.Empty(t, second.log.entries)

	got, ok := Get[*watcher](m)
	require.True(t, ok)
	assert.Same(t, first, got)
	_, ok = Get[*stepperA](m)
	assert.False(t, ok)
}

func TestRegisterPanicsOnNil(t *testing.T) {
	m := NewManager()
	assert.Panics(t, func() { m.Register(nil, ecs.NewContext(), 0, nil) })
	assert.Panics(t, func() { m.Register(&stepperA{}, nil, 0, nil) })
}

func TestPreRegisterAppliesByPriority(t *testing.T) {
	ctx, mt := newWorld(t)
	log := &journal{}
	m := NewManager(WithClock(fixedClock{}))

	m.PreRegister(&stepperA{stepper{log: log}}, ctx, 10, 2, nil)
	m.PreRegister(&watcher{log: log, marker: mt}, ctx, 20, 1, "first")
	assert.Empty(t, m.Systems())

	m.Startup()
	require.Len(t, m.Systems(), 2)
	assert.Equal(t, []string{"awake first"}, log.entries)
	assert.Equal(t, 10, m.Systems()[0].Order(), "execution order is independent of priority")

	m.PreRegister(&stepperB{stepper{log: log}}, ctx, 5, 0, nil)
	assert.Len(t, m.Systems(), 3, "registers immediately after startup")
}

func TestPanickingHookDoesNotStopOthers(t *testing.T) {
	ctx, mt := newWorld(t)
	log := &journal{}
	m := NewManager(WithClock(fixedClock{}))
	m.Register(&watcher{log: log, marker: mt, panicOn: "tick"}, ctx, 1, nil)
	m.Register(&stepperA{stepper{log: log}}, ctx, 2, nil)

	assert.NotPanics(t, func() { m.Update(1, false) })
	assert.Contains(t, log.entries, "tick 2")
}

func TestDebugManagerRepanics(t *testing.T) {
	ctx, mt := newWorld(t)
	m := NewManager(WithClock(fixedClock{}), WithDebug(true))
	m.Register(&watcher{log: &journal{}, marker: mt, panicOn: "tick"}, ctx, 1, nil)

	assert.Panics(t, func() { m.Update(1, false) })
}

func TestPlayerModeGatesSystems(t *testing.T) {
	ctx, mt := newWorld(t)
	log := &journal{}
	m := NewManager(WithClock(fixedClock{}))
	w := &watcher{log: log, marker: mt, mode: PlayerModeEditor}
	m.Register(w, ctx, 1, nil)

	m.Update(1, false)
	assert.False(t, w.IsActive())

	m.SetPlayerMode(PlayerModeEditor)
	m.Update(1, false)
	assert.True(t, w.IsActive())

	m.SetPlayerMode(PlayerModePlayer)
	m.Update(1, false)
	assert.False(t, w.IsActive())
	assert.Equal(t, "disable", log.entries[len(log.entries)-1])
}

func TestUnregisterAndDestroy(t *testing.T) {
	ctx, mt := newWorld(t)
	spawn(t, ctx, mt, "e")
	log := &journal{}
	m := NewManager(WithClock(fixedClock{}))
	w := &watcher{log: log, marker: mt}
	m.Register(w, ctx, 1, nil)
	m.Register(&stepperA{stepper{log: log}}, ctx, 2, nil)
	m.Update(1, false)

	log.entries = nil
	m.Destroy()
	assert.Equal(t, []string{"removed e", "disable", "destroy"}, log.entries)
	assert.Empty(t, m.Systems())
	assert.False(t, m.Unregister(w))

	spawn(t, ctx, mt, "after")
	assert.Equal(t, []string{"removed e", "disable", "destroy"}, log.entries)
}

type listening struct {
	BaseSystem
	heard int
}

func (l *listening) Listeners() []Listener {
	return []Listener{{Topic: "changed", Fn: func(ecs.Component) { l.heard++ }}}
}

func TestListenersRunOnlyWhileActive(t *testing.T) {
	ctx, mt := newWorld(t)
	e := spawn(t, ctx, mt, "e")
	m := NewManager(WithClock(fixedClock{}))
	l := &listening{}
	m.Register(l, ctx, 1, nil)

	ctx.Publish("changed", e.GetComponent(mt, false))
	assert.Zero(t, l.heard)

	m.Update(1, false)
	ctx.Publish("changed", e.GetComponent(mt, false))
	assert.Equal(t, 1, l.heard)

	m.Unregister(l)
	ctx.Publish("changed", e.GetComponent(mt, false))
	assert.Equal(t, 1, l.heard)
}

func filter(entries []string, prefix string) []string {
	var out []string
	for _, e := range entries {
		if len(e) >= len(prefix) && e[:len(prefix)] == prefix {
			out = append(out, e)
		}
	}
	return out
}
