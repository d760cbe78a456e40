package ecs

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Context owns a set of entities and every Group derived from them. Component events are
// routed only to the groups whose matcher names the component's index.
type Context struct {
	log      *zap.Logger
	registry *Registry
	debug    bool

	hierarchy *Hierarchy

	entities      []*Entity
	entityAt      map[*Entity]int
	entityCount   int
	entitiesDirty bool
	nextID        uint64
	global        *Entity

	groups          map[string]*Group
	enabledGroups   [][]*Group // component index -> groups following enabled/disabled events
	existenceGroups [][]*Group // component index -> groups following created/destroyed events

	topics map[string]*Signal[Component]

	EntityCreated    Signal[*Entity]
	EntityDestroying Signal[*Entity]
	EntityDestroyed  Signal[*Entity]

	ComponentCreated   Signal[Component]
	ComponentEnabled   Signal[Component]
	ComponentDisabled  Signal[Component]
	ComponentDestroyed Signal[Component]
}

// NewContext creates an empty Context with its global entity.
//
// Parameters:
//   - options: variadic list of ContextBuilderOption functions
//
// Returns:
//   - *Context: the new context
func NewContext(options ...ContextBuilderOption) *Context {
	c := &Context{
		log:       zap.NewNop(),
		hierarchy: newHierarchy(),
		entityAt:  make(map[*Entity]int),
		groups:    make(map[string]*Group),
		topics:    make(map[string]*Signal[Component]),
	}
	for _, opt := range options {
		opt(c)
	}
	if c.registry == nil {
		c.registry = NewRegistry()
	}

	c.global = c.CreateEntity(WithName("Global"))
	c.global.global = true
	return c
}

func (c *Context) Registry() *Registry { return c.registry }
func (c *Context) Logger() *zap.Logger { return c.log }
func (c *Context) Debug() bool         { return c.debug }

// GlobalEntity returns the entity that hosts singleton components. It cannot be reparented.
func (c *Context) GlobalEntity() *Entity { return c.global }

// CreateEntity creates an enabled root entity.
//
// Parameters:
//   - options: variadic list of EntityBuilderOption functions
//
// Returns:
//   - *Entity: the new entity
func (c *Context) CreateEntity(options ...EntityBuilderOption) *Entity {
	c.nextID++
	e := &Entity{
		context:     c,
		id:          c.nextID,
		uuid:        uuid.New(),
		activeDirty: true,
	}
	for _, opt := range options {
		opt(e)
	}
	e.node = c.hierarchy.alloc(e)

	c.entityAt[e] = len(c.entities)
	c.entities = append(c.entities, e)
	c.entityCount++
	c.EntityCreated.Dispatch(e)
	return e
}

// removeEntity tombstones e's slot. Compaction happens on the next Entities call.
func (c *Context) removeEntity(e *Entity) {
	i, ok := c.entityAt[e]
	if !ok {
		return
	}
	c.entities[i] = nil
	delete(c.entityAt, e)
	c.entityCount--
	c.entitiesDirty = true
}

// ContainsEntity reports whether e is a live entity of c.
func (c *Context) ContainsEntity(e *Entity) bool {
	_, ok := c.entityAt[e]
	return ok
}

func (c *Context) EntityCount() int { return c.entityCount }

// Entities returns the live entities in creation order. The slice must not be modified.
func (c *Context) Entities() []*Entity {
	if c.entitiesDirty {
		n := 0
		for _, e := range c.entities {
			if e != nil {
				c.entities[n] = e
				c.entityAt[e] = n
				n++
			}
		}
		clear(c.entities[n:])
		c.entities = c.entities[:n]
		c.entitiesDirty = false
	}
	return c.entities
}

// FindEntity returns the first live root entity named name, or nil.
func (c *Context) FindEntity(name string) *Entity {
	for _, e := range c.Entities() {
		if e.name == name && e.Parent() == nil {
			return e
		}
	}
	return nil
}

// GetGroup returns the Group for m, creating it over the current entities on first use.
// Structurally identical matchers share one Group.
//
// Parameters:
//   - m: the matcher describing membership
//
// Returns:
//   - *Group: the shared group for m's id
func (c *Context) GetGroup(m *Matcher) *Group {
	if g, ok := c.groups[m.ID()]; ok {
		return g
	}

	g := newGroup(m)
	g.seed(c.Entities())
	c.groups[m.ID()] = g

	table := &c.existenceGroups
	if m.componentEnabledFilter {
		table = &c.enabledGroups
	}
	for _, idx := range m.Components() {
		for len(*table) <= idx {
			*table = append(*table, nil)
		}
		(*table)[idx] = append((*table)[idx], g)
	}
	return g
}

// Singleton returns t's instance on the global entity, adding it with config when absent.
func (c *Context) Singleton(t *ComponentType, config any) (Component, error) {
	if existing := c.global.GetComponent(t, false); existing != nil {
		return existing, nil
	}
	return c.global.AddComponent(t, config)
}

// GetSingleton returns t's instance on the global entity, or nil.
func (c *Context) GetSingleton(t *ComponentType) Component {
	return c.global.GetComponent(t, false)
}

// Subscribe registers fn for components published under topic and returns its remover.
func (c *Context) Subscribe(topic string, fn func(Component)) (remove func()) {
	s, ok := c.topics[topic]
	if !ok {
		s = &Signal[Component]{}
		c.topics[topic] = s
	}
	return s.Add(fn)
}

// Publish notifies topic subscribers that comp changed.
func (c *Context) Publish(topic string, comp Component) {
	if s, ok := c.topics[topic]; ok {
		s.Dispatch(comp)
	}
}

func (c *Context) route(table [][]*Group, e *Entity, comp Component, added bool) {
	idx := comp.Type().index
	if idx >= len(table) {
		return
	}
	for _, g := range table[idx] {
		g.handleEvent(e, comp, added)
	}
}

func (c *Context) componentCreated(e *Entity, comp Component) {
	c.ComponentCreated.Dispatch(comp)
	c.route(c.existenceGroups, e, comp, true)
}

func (c *Context) componentEnabled(e *Entity, comp Component) {
	c.ComponentEnabled.Dispatch(comp)
	c.route(c.enabledGroups, e, comp, true)
}

func (c *Context) componentDisabled(e *Entity, comp Component) {
	c.ComponentDisabled.Dispatch(comp)
	c.route(c.enabledGroups, e, comp, false)
}

func (c *Context) componentDestroyed(e *Entity, comp Component) {
	c.ComponentDestroyed.Dispatch(comp)
	c.route(c.existenceGroups, e, comp, false)
}
