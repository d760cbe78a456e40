package ecs

import "github.com/Carmen-Shannon/oxy-ecs/engine/scene"

// EntityBuilderOption is a functional option applied to an Entity before it is registered.
type EntityBuilderOption func(*Entity)

// WithName sets the entity name used by Find and Path.
func WithName(name string) EntityBuilderOption {
	return func(e *Entity) {
		e.name = name
	}
}

// WithScene assigns the entity to a scene. Entities may only be parented within one scene.
//
// Parameters:
//   - s: the owning scene, or nil for none
//
// Returns:
//   - EntityBuilderOption: option function to apply
func WithScene(s scene.Scene) EntityBuilderOption {
	return func(e *Entity) {
		e.scene = s
	}
}

// WithLayer sets the entity's layer bit index used by camera culling masks.
func WithLayer(layer uint32) EntityBuilderOption {
	return func(e *Entity) {
		e.layer = layer
	}
}

// WithEnabled sets the entity's initial enabled flag.
func WithEnabled(enabled bool) EntityBuilderOption {
	return func(e *Entity) {
		e.disabled = !enabled
	}
}
