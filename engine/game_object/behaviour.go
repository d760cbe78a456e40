package game_object

import (
	"github.com/Carmen-Shannon/oxy-ecs/engine/ecs"
)

// Behaviour hooks. A component whose type is registered with ecs.WithBehaviour may implement
// any of them; BehaviourSystem calls them while the component is active and enabled.
type (
	BehaviourEnabler  interface{ OnEnable() }
	BehaviourDisabler interface{ OnDisable() }
	BehaviourStarter  interface{ OnStart() }
	FixedUpdater      interface{ OnFixedUpdate(delta float64) }
	Updater           interface{ OnUpdate(delta float64) }
	LateUpdater       interface{ OnLateUpdate(delta float64) }

	// BeforeRenderer is consulted before the entity is drawn. Returning false skips the draw.
	BeforeRenderer interface{ OnBeforeRender() bool }
)

// AllowRender runs the OnBeforeRender hook of every live behaviour on e and reports whether
// all of them allowed drawing. Every hook runs even after a veto.
//
// Parameters:
//   - e: the entity about to be drawn
//
// Returns:
//   - bool: false if any hook vetoed the draw
func AllowRender(e *ecs.Entity) bool {
	if e == nil {
		return true
	}
	allow := true
	for _, c := range e.Components() {
		if !c.Type().IsBehaviour() || !c.IsActiveAndEnabled() {
			continue
		}
		if br, ok := c.(BeforeRenderer); ok && !br.OnBeforeRender() {
			allow = false
		}
	}
	return allow
}
