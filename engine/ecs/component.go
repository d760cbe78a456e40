package ecs

// ComponentType is the registry descriptor for one kind of component.
// The index is dense and stable for the lifetime of the Registry that assigned it.
type ComponentType struct {
	index             int
	name              string
	singleton         bool
	allowMultiple     bool
	abstract          bool
	behaviour         bool
	executeInEditMode bool
	requires          []*ComponentType
	base              *ComponentType
	factory           func() Component
}

func (t *ComponentType) Index() int                 { return t.index }
func (t *ComponentType) Name() string               { return t.name }
func (t *ComponentType) IsSingleton() bool          { return t.singleton }
func (t *ComponentType) AllowMultiple() bool        { return t.allowMultiple && !t.singleton }
func (t *ComponentType) IsAbstract() bool           { return t.abstract }
func (t *ComponentType) IsBehaviour() bool          { return t.behaviour }
func (t *ComponentType) ExecuteInEditMode() bool    { return t.executeInEditMode }
func (t *ComponentType) Base() *ComponentType       { return t.base }
func (t *ComponentType) Requires() []*ComponentType { return t.requires }

// Is reports whether t is other or derives from it through its base chain.
func (t *ComponentType) Is(other *ComponentType) bool {
	for c := t; c != nil; c = c.base {
		if c == other {
			return true
		}
	}
	return false
}

func (t *ComponentType) matches(other *ComponentType, matchDerived bool) bool {
	if matchDerived {
		return t.Is(other)
	}
	return t == other
}

// Component is anything attached to an Entity. Concrete components embed BaseComponent,
// which supplies the bookkeeping; they override Initialize and Uninitialize as needed.
type Component interface {
	// Type returns the registered descriptor this component was created from.
	Type() *ComponentType

	// Entity returns the owning entity. It is set on attach and never reassigned.
	Entity() *Entity

	// Enabled returns the component's own enabled flag.
	Enabled() bool

	// SetEnabled sets the component's own enabled flag and re-evaluates its effective state.
	SetEnabled(enabled bool)

	// IsActiveAndEnabled reports whether the component, its entity and the entity's ancestors are all enabled.
	IsActiveAndEnabled() bool

	// IsDestroyed reports whether the component has been removed from its entity.
	IsDestroyed() bool

	// Initialize is called once, when the component is attached to an active entity or
	// when its entity first becomes active.
	//
	// Parameters:
	//   - config: the optional configuration value passed to AddComponent
	Initialize(config any)

	// Uninitialize is called once before the component is destroyed.
	Uninitialize()

	baseComponent() *BaseComponent
}

// BaseComponent carries the state every component shares.
type BaseComponent struct {
	componentType *ComponentType
	entity        *Entity
	disabled      bool
	destroyed     bool
	live          bool // enabled state last dispatched to groups
	initialized   bool
	pendingConfig any
}

func (b *BaseComponent) Type() *ComponentType          { return b.componentType }
func (b *BaseComponent) Entity() *Entity               { return b.entity }
func (b *BaseComponent) Enabled() bool                 { return !b.disabled }
func (b *BaseComponent) IsDestroyed() bool             { return b.destroyed }
func (b *BaseComponent) Initialize(config any)         {}
func (b *BaseComponent) Uninitialize()                 {}
func (b *BaseComponent) baseComponent() *BaseComponent { return b }

func (b *BaseComponent) SetEnabled(enabled bool) {
	if b.disabled == !enabled {
		return
	}
	b.disabled = !enabled
	if b.entity != nil && !b.destroyed {
		b.entity.refreshComponent(b.entity.componentFor(b))
	}
}

func (b *BaseComponent) IsActiveAndEnabled() bool {
	return b.live
}
