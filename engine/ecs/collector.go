package ecs

// Collector records the membership and component deltas of one Group between two Clear calls.
// An add followed by a remove of the same entity or component in one window cancels out;
// a remove followed by an add is recorded as both. Cancelled slots are left nil.
type Collector struct {
	group *Group

	addedEntities     []*Entity
	removedEntities   []*Entity
	addedComponents   []Component
	removedComponents []Component

	addedEntityAt    map[*Entity]int
	addedComponentAt map[Component]int
}

func newCollector(g *Group) *Collector {
	return &Collector{
		group:            g,
		addedEntityAt:    make(map[*Entity]int),
		addedComponentAt: make(map[Component]int),
	}
}

func (c *Collector) Group() *Group { return c.group }

// AddedEntities returns entities that joined the group. Entries may be nil.
func (c *Collector) AddedEntities() []*Entity { return c.addedEntities }

// RemovedEntities returns entities that left the group. Entries may be nil.
func (c *Collector) RemovedEntities() []*Entity { return c.removedEntities }

// AddedComponents returns components added to entities that stayed in the group. Entries may be nil.
func (c *Collector) AddedComponents() []Component { return c.addedComponents }

// RemovedComponents returns components removed from entities that stayed in the group. Entries may be nil.
func (c *Collector) RemovedComponents() []Component { return c.removedComponents }

// Empty reports whether no live delta is recorded.
func (c *Collector) Empty() bool {
	return len(c.addedEntityAt) == 0 && len(c.removedEntities) == 0 &&
		len(c.addedComponentAt) == 0 && len(c.removedComponents) == 0
}

func (c *Collector) entityAdded(e *Entity) {
	c.addedEntityAt[e] = len(c.addedEntities)
	c.addedEntities = append(c.addedEntities, e)
}

func (c *Collector) entityRemoved(e *Entity) {
	for i, comp := range c.addedComponents {
		if comp != nil && comp.Entity() == e {
			c.addedComponents[i] = nil
			delete(c.addedComponentAt, comp)
		}
	}
	if i, ok := c.addedEntityAt[e]; ok {
		c.addedEntities[i] = nil
		delete(c.addedEntityAt, e)
		return
	}
	c.removedEntities = append(c.removedEntities, e)
}

func (c *Collector) componentAdded(comp Component) {
	c.addedComponentAt[comp] = len(c.addedComponents)
	c.addedComponents = append(c.addedComponents, comp)
}

func (c *Collector) componentRemoved(comp Component) {
	if i, ok := c.addedComponentAt[comp]; ok {
		c.addedComponents[i] = nil
		delete(c.addedComponentAt, comp)
		return
	}
	c.removedComponents = append(c.removedComponents, comp)
}

// Clear drops every recorded delta. Slots are zeroed before truncation so the backing
// arrays keep no references to destroyed entities or components.
func (c *Collector) Clear() {
	clear(c.addedEntities)
	clear(c.removedEntities)
	clear(c.addedComponents)
	clear(c.removedComponents)
	c.addedEntities = c.addedEntities[:0]
	c.removedEntities = c.removedEntities[:0]
	c.addedComponents = c.addedComponents[:0]
	c.removedComponents = c.removedComponents[:0]
	clear(c.addedEntityAt)
	clear(c.addedComponentAt)
}
