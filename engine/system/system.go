package system

import (
	"github.com/Carmen-Shannon/oxy-ecs/engine/ecs"
)

// Execution order bands. Systems run in ascending order and clean up in descending order.
const (
	OrderBegin          = 0
	OrderEnable         = 1000
	OrderStart          = 2000
	OrderFixedUpdate    = 3000
	OrderUpdate         = 4000
	OrderAnimation      = 5000
	OrderLateUpdate     = 6000
	OrderBeforeRenderer = 7000
	OrderRenderer       = 8000
	OrderDisable        = 9000
	OrderEnd            = 10000
)

// PlayerMode is a bit set of the run modes a system executes in.
type PlayerMode uint8

const (
	PlayerModePlayer PlayerMode = 1 << iota
	PlayerModeDebugPlayer
	PlayerModeEditor

	PlayerModeAll = PlayerModePlayer | PlayerModeDebugPlayer | PlayerModeEditor
)

func (p PlayerMode) String() string {
	switch p {
	case PlayerModePlayer:
		return "player"
	case PlayerModeDebugPlayer:
		return "debug-player"
	case PlayerModeEditor:
		return "editor"
	case PlayerModeAll:
		return "all"
	}
	return "mixed"
}

// Listener subscribes a system to a context topic published by components, such as a mesh change.
type Listener struct {
	Topic string
	Fn    func(ecs.Component)
}

// System is stateful logic registered with a Manager. Implementations embed BaseSystem and
// implement any subset of the hook interfaces below; the manager only calls the hooks a system
// implements.
type System interface {
	// Name returns the system's identifier used in logs.
	Name() string

	// Order returns the execution order assigned at registration.
	Order() int

	// Enabled returns the authored enabled flag.
	Enabled() bool

	// SetEnabled sets the authored enabled flag. The manager fires OnEnable or OnDisable on the
	// next update cycle that runs at least one tick.
	SetEnabled(enabled bool)

	base() *BaseSystem
}

// MatcherProvider declares the matchers whose groups form the system's working set.
type MatcherProvider interface {
	Matchers() []*ecs.Matcher
}

// ListenerProvider declares context topics the system listens to while registered.
type ListenerProvider interface {
	Listeners() []Listener
}

// ExecuteModer restricts the player modes a system runs in. Systems without it run in every mode.
type ExecuteModer interface {
	ExecuteMode() PlayerMode
}

type (
	Awaker    interface{ OnAwake(config any) }
	Enabler   interface{ OnEnable() }
	Starter   interface{ OnStart() }
	Disabler  interface{ OnDisable() }
	Destroyer interface{ OnDestroy() }

	Ticker       interface{ OnTick(delta float64) }
	TickCleaner  interface{ OnTickCleanup(delta float64) }
	Framer       interface{ OnFrame(delta float64) }
	FrameCleaner interface{ OnFrameCleanup(delta float64) }

	EntityAddedHandler interface {
		OnEntityAdded(e *ecs.Entity, g *ecs.Group)
	}
	EntityRemovedHandler interface {
		OnEntityRemoved(e *ecs.Entity, g *ecs.Group)
	}
	ComponentAddedHandler interface {
		OnComponentAdded(c ecs.Component, g *ecs.Group)
	}
	ComponentRemovedHandler interface {
		OnComponentRemoved(c ecs.Component, g *ecs.Group)
	}
)

// BaseSystem carries the registration state every system shares. The zero value is an
// enabled, unregistered system.
type BaseSystem struct {
	name        string
	order       int
	context     *ecs.Context
	manager     *Manager
	groups      []*ecs.Group
	collectors  []*ecs.Collector
	unsubscribe []func()

	disabled    bool
	lastEnabled bool
	started     bool
	registered  bool
}

func (b *BaseSystem) Name() string            { return b.name }
func (b *BaseSystem) Order() int              { return b.order }
func (b *BaseSystem) Enabled() bool           { return !b.disabled }
func (b *BaseSystem) SetEnabled(enabled bool) { b.disabled = !enabled }
func (b *BaseSystem) Context() *ecs.Context   { return b.context }
func (b *BaseSystem) Manager() *Manager       { return b.manager }
func (b *BaseSystem) Groups() []*ecs.Group    { return b.groups }
func (b *BaseSystem) Started() bool           { return b.started }
func (b *BaseSystem) base() *BaseSystem       { return b }

// SetName overrides the name derived from the system's type. Call it before registration.
func (b *BaseSystem) SetName(name string) { b.name = name }

// Group returns the group of the i-th declared matcher.
func (b *BaseSystem) Group(i int) *ecs.Group {
	if i < 0 || i >= len(b.groups) {
		return nil
	}
	return b.groups[i]
}

// Collectors returns one collector per group, in matcher order.
func (b *BaseSystem) Collectors() []*ecs.Collector { return b.collectors }

// IsActive reports whether the system has received OnEnable and is still enabled.
func (b *BaseSystem) IsActive() bool {
	return !b.disabled && b.lastEnabled
}

func (b *BaseSystem) clearCollectors() {
	for _, c := range b.collectors {
		c.Clear()
	}
}
