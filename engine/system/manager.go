package system

import (
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strings"

	"github.com/Carmen-Shannon/oxy-ecs/engine/ecs"
	"go.uber.org/zap"
)

// Clock supplies the deltas passed to tick and frame hooks.
type Clock interface {
	// FixedDeltaTime returns the scaled duration of one fixed step, in seconds.
	FixedDeltaTime() float64

	// DeltaTime returns the scaled duration of the last frame, in seconds.
	DeltaTime() float64
}

type pendingRegistration struct {
	system   System
	context  *ecs.Context
	order    int
	priority int
	config   any
}

// Manager owns registered systems and drives their hooks. Systems are kept sorted by order;
// derived lists hold only the systems that implement each hook so a system without, for
// example, OnTick costs nothing in the tick loop. A Manager is not safe for concurrent use.
type Manager struct {
	log    *zap.Logger
	debug  bool
	mode   PlayerMode
	clock  Clock
	booted bool

	systems []System
	byType  map[reflect.Type]System
	pending []pendingRegistration

	starters      []System
	reactive      []System
	tickPass      []System
	tickCleaners  []System
	framePass     []System
	frameCleaners []System
}

// NewManager creates an empty system manager.
//
// Parameters:
//   - options: variadic list of ManagerBuilderOption functions
//
// Returns:
//   - *Manager: the new manager
func NewManager(options ...ManagerBuilderOption) *Manager {
	m := &Manager{
		log:    zap.NewNop(),
		mode:   PlayerModePlayer,
		byType: make(map[reflect.Type]System),
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *Manager) Logger() *zap.Logger    { return m.log }
func (m *Manager) Debug() bool            { return m.debug }
func (m *Manager) PlayerMode() PlayerMode { return m.mode }
func (m *Manager) Clock() Clock           { return m.clock }

// SetPlayerMode switches the run mode. Systems whose ExecuteMode excludes the mode are skipped.
func (m *Manager) SetPlayerMode(mode PlayerMode) { m.mode = mode }

// Systems returns every registered system in execution order. The slice must not be modified.
func (m *Manager) Systems() []System { return m.systems }

// Get returns the registered system of type T.
func Get[T System](m *Manager) (T, bool) {
	var zero T
	sys, ok := m.byType[reflect.TypeOf(zero)]
	if !ok {
		return zero, false
	}
	return sys.(T), true
}

// Register binds sys to ctx at the given order, creates its groups and collectors, subscribes its
// listeners and calls OnAwake. Registering a second system of the same type logs a warning and
// returns the one already registered.
//
// Parameters:
//   - sys: the system instance
//   - ctx: the context whose entities the system processes
//   - order: the execution order, usually one of the Order bands
//   - config: passed to OnAwake
//
// Returns:
//   - System: sys, or the previously registered system of the same type
func (m *Manager) Register(sys System, ctx *ecs.Context, order int, config any) System {
	if sys == nil || ctx == nil {
		panic("system: system and context must not be nil")
	}
	key := reflect.TypeOf(sys)
	if existing, ok := m.byType[key]; ok {
		m.log.Warn("system already registered", zap.String("system", existing.Name()))
		return existing
	}

	b := sys.base()
	if b.registered {
		m.log.Warn("system instance registered with another manager", zap.String("system", b.name))
		return sys
	}
	if b.name == "" {
		b.name = typeName(key)
	}
	b.order = order
	b.context = ctx
	b.manager = m
	b.registered = true

	if mp, ok := sys.(MatcherProvider); ok {
		for _, matcher := range mp.Matchers() {
			g := ctx.GetGroup(matcher)
			b.groups = append(b.groups, g)
			b.collectors = append(b.collectors, g.NewCollector())
		}
	}
	if lp, ok := sys.(ListenerProvider); ok {
		for _, l := range lp.Listeners() {
			b.unsubscribe = append(b.unsubscribe, ctx.Subscribe(l.Topic, func(c ecs.Component) {
				if !m.runnable(sys) {
					return
				}
				m.invoke(sys, "listener:"+l.Topic, func() { l.Fn(c) })
			}))
		}
	}

	m.byType[key] = sys
	m.systems = insertByOrder(m.systems, sys)
	_, isStarter := sys.(Starter)
	_, isTicker := sys.(Ticker)
	_, isFramer := sys.(Framer)
	isReactive := isReactiveSystem(sys)
	if isStarter {
		m.starters = insertByOrder(m.starters, sys)
	}
	if isReactive {
		m.reactive = insertByOrder(m.reactive, sys)
	}
	if isTicker || isReactive {
		m.tickPass = insertByOrder(m.tickPass, sys)
	}
	if isFramer || isReactive {
		m.framePass = insertByOrder(m.framePass, sys)
	}
	if _, ok := sys.(TickCleaner); ok {
		m.tickCleaners = insertByOrder(m.tickCleaners, sys)
	}
	if _, ok := sys.(FrameCleaner); ok {
		m.frameCleaners = insertByOrder(m.frameCleaners, sys)
	}

	m.log.Debug("system registered", zap.String("system", b.name), zap.Int("order", order))
	if a, ok := sys.(Awaker); ok {
		m.invoke(sys, "onAwake", func() { a.OnAwake(config) })
	}
	return sys
}

// PreRegister queues a registration applied by Startup. Queued systems are registered in
// ascending priority, which is independent of execution order. After Startup it registers
// immediately.
//
// Parameters:
//   - sys: the system instance
//   - ctx: the context whose entities the system processes
//   - order: the execution order
//   - priority: the registration priority
//   - config: passed to OnAwake
func (m *Manager) PreRegister(sys System, ctx *ecs.Context, order, priority int, config any) {
	if m.booted {
		m.Register(sys, ctx, order, config)
		return
	}
	m.pending = append(m.pending, pendingRegistration{
		system:   sys,
		context:  ctx,
		order:    order,
		priority: priority,
		config:   config,
	})
}

// Startup registers every queued system. It is idempotent.
func (m *Manager) Startup() {
	m.booted = true
	pending := m.pending
	m.pending = nil
	sort.SliceStable(pending, func(i, j int) bool { return pending[i].priority < pending[j].priority })
	for _, p := range pending {
		m.Register(p.system, p.context, p.order, p.config)
	}
}

// Update runs one cycle.
//
// With tickCount > 0 enable edges fire first (OnEnable with an OnEntityAdded for every current
// group member) followed by OnStart of newly started systems. Then OnTick runs tickCount times,
// OnFrame and reverse-order OnFrameCleanup run when frame is set, and finally, with tickCount > 0,
// reactive dispatch, reverse-order OnTickCleanup and disable edges (an OnEntityRemoved for every
// group member followed by OnDisable).
//
// Reactive callbacks of a system are flushed before its first OnTick of the cycle and before its
// OnFrame, so a system never sees a delta after the hook that should have observed it.
//
// Parameters:
//   - tickCount: the number of fixed steps to run
//   - frame: whether a render frame boundary was crossed
func (m *Manager) Update(tickCount int, frame bool) {
	var fixedDelta, frameDelta float64
	if m.clock != nil {
		fixedDelta, frameDelta = m.clock.FixedDeltaTime(), m.clock.DeltaTime()
	} else if m.debug && (len(m.tickPass) > 0 || len(m.framePass) > 0) {
		panic("system: manager has no clock")
	}

	if tickCount > 0 {
		m.enableEdges()
	}

	for i := 0; i < tickCount; i++ {
		for _, sys := range m.tickPass {
			if !m.runnable(sys) {
				continue
			}
			if i == 0 {
				m.flush(sys)
			}
			if t, ok := sys.(Ticker); ok {
				m.invoke(sys, "onTick", func() { t.OnTick(fixedDelta) })
			}
		}
	}

	if frame {
		for _, sys := range m.framePass {
			if !m.runnable(sys) {
				continue
			}
			m.flush(sys)
			if f, ok := sys.(Framer); ok {
				m.invoke(sys, "onFrame", func() { f.OnFrame(frameDelta) })
			}
		}
		for i := len(m.frameCleaners) - 1; i >= 0; i-- {
			sys := m.frameCleaners[i]
			if m.runnable(sys) {
				fc := sys.(FrameCleaner)
				m.invoke(sys, "onFrameCleanup", func() { fc.OnFrameCleanup(frameDelta) })
			}
		}
	}

	if tickCount > 0 {
		for _, sys := range m.reactive {
			if m.runnable(sys) {
				m.flush(sys)
			} else {
				sys.base().clearCollectors()
			}
		}
		for i := len(m.tickCleaners) - 1; i >= 0; i-- {
			sys := m.tickCleaners[i]
			if m.runnable(sys) {
				tc := sys.(TickCleaner)
				m.invoke(sys, "onTickCleanup", func() { tc.OnTickCleanup(fixedDelta) })
			}
		}
		m.disableEdges()
	}
}

// Unregister disables sys if needed, calls OnDestroy and detaches it from its context.
//
// Returns:
//   - bool: false if sys was not registered with m
func (m *Manager) Unregister(sys System) bool {
	key := reflect.TypeOf(sys)
	if m.byType[key] != sys {
		return false
	}
	b := sys.base()
	if b.lastEnabled {
		m.disable(sys)
	}
	if d, ok := sys.(Destroyer); ok {
		m.invoke(sys, "onDestroy", func() { d.OnDestroy() })
	}
	for _, unsubscribe := range b.unsubscribe {
		unsubscribe()
	}
	for i, g := range b.groups {
		g.RemoveCollector(b.collectors[i])
	}
	b.unsubscribe, b.groups, b.collectors = nil, nil, nil
	b.registered = false

	delete(m.byType, key)
	m.systems = remove(m.systems, sys)
	m.starters = remove(m.starters, sys)
	m.reactive = remove(m.reactive, sys)
	m.tickPass = remove(m.tickPass, sys)
	m.tickCleaners = remove(m.tickCleaners, sys)
	m.framePass = remove(m.framePass, sys)
	m.frameCleaners = remove(m.frameCleaners, sys)
	return true
}

// Destroy unregisters every system in reverse execution order.
func (m *Manager) Destroy() {
	for i := len(m.systems) - 1; i >= 0; i-- {
		if i < len(m.systems) {
			m.Unregister(m.systems[i])
		}
	}
}

func (m *Manager) enableEdges() {
	for _, sys := range m.systems {
		b := sys.base()
		if b.disabled || b.lastEnabled || !m.modeAllows(sys) {
			continue
		}
		b.lastEnabled = true
		if e, ok := sys.(Enabler); ok {
			m.invoke(sys, "onEnable", e.OnEnable)
		}
		m.log.Debug("system enabled", zap.String("system", b.name))
		// the synthetic adds below cover every delta recorded so far; deltas raised by the
		// callbacks themselves stay queued for the next flush
		b.clearCollectors()
		if h, ok := sys.(EntityAddedHandler); ok {
			for _, g := range b.groups {
				for _, e := range g.Entities() {
					m.invoke(sys, "onEntityAdded", func() { h.OnEntityAdded(e, g) })
				}
			}
		}
	}

	for _, sys := range m.starters {
		b := sys.base()
		if b.started || !m.runnable(sys) {
			continue
		}
		b.started = true
		s := sys.(Starter)
		m.invoke(sys, "onStart", s.OnStart)
	}
}

func (m *Manager) disableEdges() {
	for _, sys := range m.systems {
		b := sys.base()
		if b.lastEnabled && (b.disabled || !m.modeAllows(sys)) {
			m.disable(sys)
		}
	}
}

func (m *Manager) disable(sys System) {
	b := sys.base()
	b.lastEnabled = false
	if h, ok := sys.(EntityRemovedHandler); ok {
		for _, g := range b.groups {
			for _, e := range g.Entities() {
				m.invoke(sys, "onEntityRemoved", func() { h.OnEntityRemoved(e, g) })
			}
		}
	}
	if d, ok := sys.(Disabler); ok {
		m.invoke(sys, "onDisable", d.OnDisable)
	}
	b.clearCollectors()
	m.log.Debug("system disabled", zap.String("system", b.name))
}

// flush dispatches pending collector deltas: removed components, removed entities, added
// entities, then added components. Slots nilled by netting are skipped. Each collector is
// cleared before dispatch so deltas raised by the callbacks themselves wait for the next flush.
func (m *Manager) flush(sys System) {
	b := sys.base()
	if len(b.collectors) == 0 {
		return
	}
	cr, hasCR := sys.(ComponentRemovedHandler)
	er, hasER := sys.(EntityRemovedHandler)
	ea, hasEA := sys.(EntityAddedHandler)
	ca, hasCA := sys.(ComponentAddedHandler)

	for _, col := range b.collectors {
		if col.Empty() {
			continue
		}
		g := col.Group()
		removedComponents := slices.Clone(col.RemovedComponents())
		removedEntities := slices.Clone(col.RemovedEntities())
		addedEntities := slices.Clone(col.AddedEntities())
		addedComponents := slices.Clone(col.AddedComponents())
		col.Clear()

		if hasCR {
			for _, c := range removedComponents {
				if c != nil {
					m.invoke(sys, "onComponentRemoved", func() { cr.OnComponentRemoved(c, g) })
				}
			}
		}
		if hasER {
			for _, e := range removedEntities {
				if e != nil {
					m.invoke(sys, "onEntityRemoved", func() { er.OnEntityRemoved(e, g) })
				}
			}
		}
		if hasEA {
			for _, e := range addedEntities {
				if e != nil {
					m.invoke(sys, "onEntityAdded", func() { ea.OnEntityAdded(e, g) })
				}
			}
		}
		if hasCA {
			for _, c := range addedComponents {
				if c != nil {
					m.invoke(sys, "onComponentAdded", func() { ca.OnComponentAdded(c, g) })
				}
			}
		}
	}
}

func (m *Manager) runnable(sys System) bool {
	return sys.base().IsActive() && m.modeAllows(sys)
}

func (m *Manager) modeAllows(sys System) bool {
	if em, ok := sys.(ExecuteModer); ok {
		return em.ExecuteMode()&m.mode != 0
	}
	return true
}

// invoke runs one hook. A panic is logged and swallowed so the remaining systems still run;
// in debug mode it is re-raised after logging.
func (m *Manager) invoke(sys System, callback string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("system callback panicked",
				zap.String("system", sys.Name()),
				zap.String("callback", callback),
				zap.String("panic", fmt.Sprint(r)),
				zap.Stack("stack"))
			if m.debug {
				panic(r)
			}
		}
	}()
	fn()
}

func isReactiveSystem(sys System) bool {
	if len(sys.base().groups) == 0 {
		return false
	}
	_, a := sys.(EntityAddedHandler)
	_, b := sys.(EntityRemovedHandler)
	_, c := sys.(ComponentAddedHandler)
	_, d := sys.(ComponentRemovedHandler)
	return a || b || c || d
}

// insertByOrder returns a new list with sys after every system with an order <= its own.
// The passes are copied on write so a hook registering a system never disturbs a pass that
// Update is ranging over; the new system joins from the next pass.
func insertByOrder(list []System, sys System) []System {
	i := sort.Search(len(list), func(i int) bool { return list[i].Order() > sys.Order() })
	return slices.Concat(list[:i:i], []System{sys}, list[i:])
}

// remove returns a new list without sys, leaving list untouched for running passes.
func remove(list []System, sys System) []System {
	if i := slices.Index(list, sys); i >= 0 {
		return slices.Concat(list[:i:i], list[i+1:])
	}
	return list
}

func typeName(t reflect.Type) string {
	name := t.String()
	return strings.TrimPrefix(name, "*")
}
