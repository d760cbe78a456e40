package ecs

import "fmt"

// Registry assigns dense indices to component types and stores their metadata.
// Metadata must be finalised before the first instance of a type is created.
type Registry struct {
	types  []*ComponentType
	byName map[string]*ComponentType
}

// NewRegistry creates an empty component registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*ComponentType),
	}
}

// Register adds a component type under name, assigning the next free index.
// Repeat calls with the same name return the existing descriptor unchanged.
//
// Parameters:
//   - name: the unique type name
//   - factory: constructor for new instances; may be nil only for abstract types
//   - options: metadata options applied on first registration
//
// Returns:
//   - *ComponentType: the descriptor for name
func (r *Registry) Register(name string, factory func() Component, options ...ComponentTypeOption) *ComponentType {
	if t, ok := r.byName[name]; ok {
		return t
	}

	t := &ComponentType{
		index:   len(r.types),
		name:    name,
		factory: factory,
	}
	for _, opt := range options {
		opt(t)
	}
	if t.factory == nil && !t.abstract {
		panic(fmt.Sprintf("ecs: component type %q needs a factory unless abstract", name))
	}

	r.types = append(r.types, t)
	r.byName[name] = t
	return t
}

// Lookup returns the descriptor registered under name, or nil.
func (r *Registry) Lookup(name string) *ComponentType {
	return r.byName[name]
}

// Type returns the descriptor with the given index, or nil.
func (r *Registry) Type(index int) *ComponentType {
	if index < 0 || index >= len(r.types) {
		return nil
	}
	return r.types[index]
}

// Count returns the number of registered types, which is also the next index.
func (r *Registry) Count() int {
	return len(r.types)
}

// MarkSingleton limits t to one instance per entity. Call it before t is instantiated.
//
// Parameters:
//   - t: the component type to mark
func (r *Registry) MarkSingleton(t *ComponentType) {
	t.singleton = true
	t.allowMultiple = false
}

// MarkAbstract forbids instances of t; it can still serve as a base for matching.
func (r *Registry) MarkAbstract(t *ComponentType) {
	t.abstract = true
}

// MarkAllowMultiple lets an entity carry several instances of t. It is ignored for singleton types.
func (r *Registry) MarkAllowMultiple(t *ComponentType) {
	if !t.singleton {
		t.allowMultiple = true
	}
}

// MarkBehaviour makes instances of t receive the behaviour lifecycle hooks.
func (r *Registry) MarkBehaviour(t *ComponentType) {
	t.behaviour = true
}

// MarkExecuteInEditMode lets the behaviour hooks of t run in editor mode.
func (r *Registry) MarkExecuteInEditMode(t *ComponentType) {
	t.executeInEditMode = true
}

// MarkRequires makes other a prerequisite of t. AddComponent adds a missing prerequisite first.
//
// Parameters:
//   - t: the dependent component type
//   - other: the required component type
func (r *Registry) MarkRequires(t, other *ComponentType) {
	for _, req := range t.requires {
		if req == other {
			return
		}
	}
	t.requires = append(t.requires, other)
}
