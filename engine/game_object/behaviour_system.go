package game_object

import (
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/oxy-ecs/engine/ecs"
	"github.com/Carmen-Shannon/oxy-ecs/engine/system"
	"go.uber.org/zap"
)

// BehaviourSystem drives the hooks of behaviour components. Enable and disable hooks fire as
// the context reports the change; OnStart runs before the first update the behaviour takes part
// in; fixed updates run per tick and updates and late updates per frame, in enable order.
type BehaviourSystem struct {
	system.BaseSystem

	behaviours []ecs.Component
	starting   []ecs.Component
	removers   []func()
}

// NewBehaviourSystem creates an unregistered behaviour system.
func NewBehaviourSystem() *BehaviourSystem {
	return &BehaviourSystem{}
}

// Behaviours returns the live behaviours in enable order.
func (s *BehaviourSystem) Behaviours() []ecs.Component { return s.behaviours }

func (s *BehaviourSystem) OnAwake(config any) {
	ctx := s.Context()
	s.removers = append(s.removers,
		ctx.ComponentEnabled.Add(s.componentEnabled),
		ctx.ComponentDisabled.Add(s.componentDisabled),
	)
}

func (s *BehaviourSystem) OnEnable() {
	for _, e := range s.Context().Entities() {
		for _, c := range e.Components() {
			if c.Type().IsBehaviour() && c.IsActiveAndEnabled() {
				s.enable(c)
			}
		}
	}
}

func (s *BehaviourSystem) OnDisable() {
	for i := len(s.behaviours) - 1; i >= 0; i-- {
		c := s.behaviours[i]
		if d, ok := c.(BehaviourDisabler); ok && s.allowed(c) {
			s.call(c, "onDisable", d.OnDisable)
		}
	}
	s.behaviours = s.behaviours[:0]
	s.starting = s.starting[:0]
}

func (s *BehaviourSystem) OnDestroy() {
	for _, remove := range s.removers {
		remove()
	}
	s.removers = nil
}

func (s *BehaviourSystem) OnTick(delta float64) {
	s.start()
	for _, c := range slices.Clone(s.behaviours) {
		if u, ok := c.(FixedUpdater); ok && c.IsActiveAndEnabled() && s.allowed(c) {
			s.call(c, "onFixedUpdate", func() { u.OnFixedUpdate(delta) })
		}
	}
}

func (s *BehaviourSystem) OnFrame(delta float64) {
	s.start()
	list := slices.Clone(s.behaviours)
	for _, c := range list {
		if u, ok := c.(Updater); ok && c.IsActiveAndEnabled() && s.allowed(c) {
			s.call(c, "onUpdate", func() { u.OnUpdate(delta) })
		}
	}
	for _, c := range list {
		if u, ok := c.(LateUpdater); ok && c.IsActiveAndEnabled() && s.allowed(c) {
			s.call(c, "onLateUpdate", func() { u.OnLateUpdate(delta) })
		}
	}
}

func (s *BehaviourSystem) componentEnabled(c ecs.Component) {
	if c.Type().IsBehaviour() && s.IsActive() {
		s.enable(c)
	}
}

func (s *BehaviourSystem) componentDisabled(c ecs.Component) {
	if !c.Type().IsBehaviour() || !s.IsActive() {
		return
	}
	i := slices.Index(s.behaviours, c)
	if i < 0 {
		return
	}
	s.behaviours = slices.Delete(s.behaviours, i, i+1)
	if j := slices.Index(s.starting, c); j >= 0 {
		s.starting = slices.Delete(s.starting, j, j+1)
	}
	if d, ok := c.(BehaviourDisabler); ok && s.allowed(c) {
		s.call(c, "onDisable", d.OnDisable)
	}
}

func (s *BehaviourSystem) enable(c ecs.Component) {
	if slices.Contains(s.behaviours, c) {
		return
	}
	s.behaviours = append(s.behaviours, c)
	if _, ok := c.(BehaviourStarter); ok {
		s.starting = append(s.starting, c)
	}
	if e, ok := c.(BehaviourEnabler); ok && s.allowed(c) {
		s.call(c, "onEnable", e.OnEnable)
	}
}

// start runs OnStart of behaviours enabled since the last update. A behaviour enabled by
// another OnStart starts in the same pass.
func (s *BehaviourSystem) start() {
	for len(s.starting) > 0 {
		c := s.starting[0]
		s.starting = s.starting[1:]
		if c.IsActiveAndEnabled() && s.allowed(c) {
			st := c.(BehaviourStarter)
			s.call(c, "onStart", st.OnStart)
		}
	}
}

// allowed reports whether c's hooks run in the current player mode.
func (s *BehaviourSystem) allowed(c ecs.Component) bool {
	m := s.Manager()
	if m == nil || m.PlayerMode() != system.PlayerModeEditor {
		return true
	}
	return c.Type().ExecuteInEditMode()
}

func (s *BehaviourSystem) call(c ecs.Component, hook string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log := s.Context().Logger()
			log.Error("behaviour hook panicked",
				zap.String("component", c.Type().Name()),
				zap.Stringer("entity", c.Entity()),
				zap.String("hook", hook),
				zap.String("panic", fmt.Sprint(r)))
			if s.Context().Debug() {
				panic(r)
			}
		}
	}()
	fn()
}
