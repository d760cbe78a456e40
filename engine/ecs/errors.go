package ecs

import "errors"

var (
	// ErrDuplicateComponent is returned when a type that disallows multiple instances is added twice.
	ErrDuplicateComponent = errors.New("ecs: component already exists on entity")

	// ErrAbstractComponent is returned when an abstract component type is instantiated.
	ErrAbstractComponent = errors.New("ecs: cannot instantiate abstract component")

	// ErrEntityDestroyed is returned when mutating an entity that has been destroyed.
	ErrEntityDestroyed = errors.New("ecs: entity has been destroyed")

	// ErrCircularParent is returned when a reparent would make an entity its own ancestor.
	ErrCircularParent = errors.New("ecs: parent would create a cycle")

	// ErrCrossSceneParent is returned when a reparent crosses scene boundaries.
	ErrCrossSceneParent = errors.New("ecs: cannot parent across scenes")

	// ErrGlobalEntity is returned when an operation is not permitted on the global entity.
	ErrGlobalEntity = errors.New("ecs: operation not permitted on the global entity")

	// ErrForeignEntity is returned when entities from different contexts are linked.
	ErrForeignEntity = errors.New("ecs: entity belongs to another context")
)
