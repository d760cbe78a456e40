package ecs

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Carmen-Shannon/oxy-ecs/engine/scene"
)

// Entity is a container of components owned by one Context.
// Entities are created with Context.CreateEntity and are not safe for concurrent use.
type Entity struct {
	context *Context
	id      uint64
	uuid    uuid.UUID
	name    string
	layer   uint32
	scene   scene.Scene

	disabled  bool
	destroyed bool
	global    bool

	components []Component

	node Handle

	activeDirty bool
	active      bool
}

func (e *Entity) ID() uint64          { return e.id }
func (e *Entity) UUID() uuid.UUID     { return e.uuid }
func (e *Entity) Name() string        { return e.name }
func (e *Entity) SetName(name string) { e.name = name }
func (e *Entity) Layer() uint32       { return e.layer }
func (e *Entity) SetLayer(l uint32)   { e.layer = l }
func (e *Entity) Scene() scene.Scene  { return e.scene }
func (e *Entity) Context() *Context   { return e.context }
func (e *Entity) Enabled() bool       { return !e.disabled }
func (e *Entity) IsDestroyed() bool   { return e.destroyed }
func (e *Entity) IsGlobal() bool      { return e.global }

func (e *Entity) String() string {
	if e.name != "" {
		return fmt.Sprintf("%s#%d", e.name, e.id)
	}
	return fmt.Sprintf("entity#%d", e.id)
}

// Path returns the slash separated names from the root ancestor down to e.
func (e *Entity) Path() string {
	var names []string
	for p := e; p != nil; p = p.Parent() {
		names = append(names, p.name)
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return strings.Join(names, "/")
}

// Components returns the attached components in attachment order. The slice must not be modified.
func (e *Entity) Components() []Component {
	return e.components
}

// SetEnabled sets the entity's own flag. Components of e and its descendants are re-evaluated
// and enabled or disabled events fire for each effective change.
func (e *Entity) SetEnabled(enabled bool) {
	if e.destroyed || e.disabled == !enabled {
		return
	}
	e.disabled = !enabled
	e.invalidateActive()
}

// IsActiveInHierarchy reports whether e and every ancestor are enabled. The result is cached
// until e's flag or an ancestor link changes.
func (e *Entity) IsActiveInHierarchy() bool {
	if e.activeDirty {
		active := !e.disabled && !e.destroyed
		if active {
			if p := e.Parent(); p != nil {
				active = p.IsActiveInHierarchy()
			}
		}
		e.active = active
		e.activeDirty = false
	}
	return e.active
}

func (e *Entity) invalidateActive() {
	e.activeDirty = true
	e.refreshComponents()
	e.context.hierarchy.walk(e.node, func(child *Entity) {
		child.activeDirty = true
		child.refreshComponents()
	})
}

func (e *Entity) refreshComponents() {
	for _, c := range e.components {
		e.refreshComponent(c)
	}
}

// refreshComponent dispatches an enabled or disabled event when c's effective state changed.
func (e *Entity) refreshComponent(c Component) {
	if c == nil {
		return
	}
	b := c.baseComponent()
	want := !b.destroyed && !b.disabled && e.IsActiveInHierarchy()
	if want == b.live {
		return
	}
	b.live = want
	if want {
		if !b.initialized {
			e.initializeComponent(c)
		}
		e.context.componentEnabled(e, c)
	} else {
		e.context.componentDisabled(e, c)
	}
}

func (e *Entity) initializeComponent(c Component) {
	b := c.baseComponent()
	b.initialized = true
	config := b.pendingConfig
	b.pendingConfig = nil
	c.Initialize(config)
}

func (e *Entity) componentFor(b *BaseComponent) Component {
	for _, c := range e.components {
		if c.baseComponent() == b {
			return c
		}
	}
	return nil
}

// hasLive reports whether a component with the given index is present. With enabledOnly the
// component must also be effectively enabled.
func (e *Entity) hasLive(index int, enabledOnly bool) bool {
	for _, c := range e.components {
		b := c.baseComponent()
		if b.componentType.index != index || b.destroyed {
			continue
		}
		if !enabledOnly || b.live {
			return true
		}
	}
	return false
}

// AddComponent creates a component of type t and attaches it to e.
// Required types are added first when missing. Singleton types are redirected to the context's global entity.
//
// Parameters:
//   - t: the component type to instantiate
//   - config: an optional value passed to Initialize
//
// Returns:
//   - Component: the attached component (or the existing singleton instance)
//   - error: ErrEntityDestroyed, ErrAbstractComponent or ErrDuplicateComponent; e is unchanged on error
func (e *Entity) AddComponent(t *ComponentType, config any) (Component, error) {
	if e.destroyed {
		return nil, ErrEntityDestroyed
	}
	if t.abstract {
		return nil, fmt.Errorf("%w: %s", ErrAbstractComponent, t.name)
	}
	if t.singleton && !e.global {
		e.context.log.Warn("singleton component redirected to the global entity",
			zap.String("component", t.name), zap.Stringer("entity", e))
		return e.context.Singleton(t, config)
	}
	if !t.AllowMultiple() && e.GetComponent(t, false) != nil {
		return nil, fmt.Errorf("%w: %s on %s", ErrDuplicateComponent, t.name, e)
	}

	for _, req := range t.requires {
		if e.GetComponent(req, true) != nil {
			continue
		}
		if _, err := e.AddComponent(req, nil); err != nil {
			return nil, fmt.Errorf("add required %s for %s: %w", req.name, t.name, err)
		}
	}

	c := t.factory()
	b := c.baseComponent()
	b.componentType = t
	b.entity = e
	b.pendingConfig = config
	e.components = append(e.components, c)

	if e.IsActiveInHierarchy() {
		e.initializeComponent(c)
	}
	e.context.componentCreated(e, c)
	e.refreshComponent(c)
	return c, nil
}

// RemoveComponent destroys the first component of type t. It fires disabled then destroyed
// events before detaching.
//
// Parameters:
//   - t: the component type to remove
//   - matchDerived: also match types whose base chain includes t
//
// Returns:
//   - bool: false if no matching component was found
func (e *Entity) RemoveComponent(t *ComponentType, matchDerived bool) bool {
	c := e.GetComponent(t, matchDerived)
	if c == nil {
		return false
	}
	e.destroyComponent(c)
	return true
}

// RemoveComponentInstance destroys c if it is attached to e.
func (e *Entity) RemoveComponentInstance(c Component) bool {
	if c == nil || c.Entity() != e || c.IsDestroyed() {
		return false
	}
	e.destroyComponent(c)
	return true
}

func (e *Entity) destroyComponent(c Component) {
	b := c.baseComponent()
	if b.live {
		b.live = false
		e.context.componentDisabled(e, c)
	}
	if b.initialized {
		c.Uninitialize()
	}
	b.destroyed = true
	e.context.componentDestroyed(e, c)

	for i, other := range e.components {
		if other == c {
			e.components = append(e.components[:i:i], e.components[i+1:]...)
			break
		}
	}
}

// GetComponent returns the first component of type t, or nil.
func (e *Entity) GetComponent(t *ComponentType, matchDerived bool) Component {
	for _, c := range e.components {
		b := c.baseComponent()
		if !b.destroyed && b.componentType.matches(t, matchDerived) {
			return c
		}
	}
	return nil
}

// GetComponents returns every component of type t.
func (e *Entity) GetComponents(t *ComponentType, matchDerived bool) []Component {
	var out []Component
	for _, c := range e.components {
		b := c.baseComponent()
		if !b.destroyed && b.componentType.matches(t, matchDerived) {
			out = append(out, c)
		}
	}
	return out
}

// Destroy destroys e's descendants bottom-up, then e's components in reverse attachment order,
// then removes e from its context. Destroying a destroyed entity is a no-op.
func (e *Entity) Destroy() {
	if e.destroyed {
		return
	}
	e.context.EntityDestroying.Dispatch(e)
	e.destroyed = true

	for _, child := range e.context.hierarchy.children(e.node) {
		child.Destroy()
	}
	for i := len(e.components) - 1; i >= 0; i-- {
		if i < len(e.components) {
			e.destroyComponent(e.components[i])
		}
	}

	e.context.hierarchy.release(e.node)
	e.node = Handle{}
	e.context.removeEntity(e)
	e.context.EntityDestroyed.Dispatch(e)
}

// Parent returns e's parent, or nil for a root entity.
func (e *Entity) Parent() *Entity {
	return e.context.hierarchy.parent(e.node)
}

// SetParent links e under parent; nil makes e a root.
//
// Parameters:
//   - parent: the new parent entity, or nil
//
// Returns:
//   - error: ErrGlobalEntity, ErrCrossSceneParent, ErrCircularParent, ErrForeignEntity or ErrEntityDestroyed;
//     the hierarchy is unchanged on error
func (e *Entity) SetParent(parent *Entity) error {
	if e.destroyed {
		return ErrEntityDestroyed
	}
	if e.global {
		return ErrGlobalEntity
	}
	if parent == e.Parent() {
		return nil
	}

	var parentNode Handle
	if parent != nil {
		if parent.destroyed {
			return ErrEntityDestroyed
		}
		if parent.context != e.context {
			return ErrForeignEntity
		}
		if parent.scene != e.scene {
			e.context.log.Warn("cannot change the parent to a different scene", zap.Stringer("entity", e))
			return ErrCrossSceneParent
		}
		if parent == e || e.Contains(parent) {
			e.context.log.Error("set parent would create a cycle", zap.Stringer("entity", e), zap.Stringer("parent", parent))
			return ErrCircularParent
		}
		parentNode = parent.node
	}

	prevActive := e.IsActiveInHierarchy()
	e.context.hierarchy.setParent(e.node, parentNode)
	e.activeDirty = true
	if prevActive != e.IsActiveInHierarchy() {
		e.invalidateActive()
	} else {
		e.context.hierarchy.walk(e.node, func(child *Entity) { child.activeDirty = true })
	}
	return nil
}

// Contains reports whether other is a strict descendant of e.
func (e *Entity) Contains(other *Entity) bool {
	if other == nil || other.context != e.context {
		return false
	}
	return e.context.hierarchy.contains(e.node, other.node)
}

// Children returns a copy of e's direct children in order.
func (e *Entity) Children() []*Entity {
	return e.context.hierarchy.children(e.node)
}

func (e *Entity) ChildCount() int {
	return e.context.hierarchy.childCount(e.node)
}

func (e *Entity) ChildAt(i int) *Entity {
	return e.context.hierarchy.childAt(e.node, i)
}

// ChildIndex returns child's position under e, or -1.
func (e *Entity) ChildIndex(child *Entity) int {
	if child == nil || child.Parent() != e {
		return -1
	}
	return e.context.hierarchy.childIndex(e.node, child.node)
}

// SetChildIndex moves child to index among e's children.
func (e *Entity) SetChildIndex(child *Entity, index int) bool {
	if child == nil || child.Parent() != e {
		return false
	}
	return e.context.hierarchy.setChildIndex(e.node, child.node, index)
}

// Descendants returns every descendant depth-first, parents before children.
func (e *Entity) Descendants() []*Entity {
	var out []*Entity
	e.context.hierarchy.walk(e.node, func(d *Entity) { out = append(out, d) })
	return out
}

// Find resolves a slash separated path of child names below e. An empty segment stops the walk.
func (e *Entity) Find(path string) *Entity {
	current := e
	for _, name := range strings.Split(path, "/") {
		if name == "" {
			return current
		}
		var next *Entity
		for _, child := range current.Children() {
			if child.name == name {
				next = child
				break
			}
		}
		if next == nil {
			return nil
		}
		current = next
	}
	return current
}

// DestroyChildren destroys every descendant of e, last child first.
func (e *Entity) DestroyChildren() {
	children := e.Children()
	for i := len(children) - 1; i >= 0; i-- {
		children[i].Destroy()
	}
}
