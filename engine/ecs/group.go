package ecs

// Group is the live set of entities satisfying one Matcher. It is owned by a Context and
// updated only through the component events the Context routes to it.
type Group struct {
	matcher    *Matcher
	entities   []*Entity
	index      map[*Entity]int
	count      int
	dirty      bool
	collectors []*Collector
}

func newGroup(matcher *Matcher) *Group {
	return &Group{
		matcher: matcher,
		index:   make(map[*Entity]int),
	}
}

func (g *Group) Matcher() *Matcher { return g.matcher }
func (g *Group) EntityCount() int  { return g.count }

// ContainsEntity reports whether e is a member.
func (g *Group) ContainsEntity(e *Entity) bool {
	_, ok := g.index[e]
	return ok
}

// Entities returns the members. A returned slice is never modified by later membership changes,
// so callers may mutate the world while iterating it.
func (g *Group) Entities() []*Entity {
	if g.dirty {
		out := make([]*Entity, 0, g.count)
		for i, e := range g.entities {
			if j, ok := g.index[e]; ok && j == i {
				g.index[e] = len(out)
				out = append(out, e)
			}
		}
		g.entities = out
		g.dirty = false
	}
	return g.entities[:len(g.entities):len(g.entities)]
}

// SingleEntity returns the only member, or nil when the group is empty. It panics when the
// group holds more than one entity.
func (g *Group) SingleEntity() *Entity {
	switch g.count {
	case 0:
		return nil
	case 1:
		return g.Entities()[0]
	default:
		panic("ecs: group " + g.matcher.String() + " holds more than one entity")
	}
}

// Collectors returns the collectors attached to g.
func (g *Group) Collectors() []*Collector {
	return g.collectors
}

// NewCollector attaches a delta recorder to g. One collector is expected per (system, group) pair.
func (g *Group) NewCollector() *Collector {
	c := newCollector(g)
	g.collectors = append(g.collectors, c)
	return c
}

// RemoveCollector detaches c so it stops receiving deltas.
func (g *Group) RemoveCollector(c *Collector) {
	for i, other := range g.collectors {
		if other == c {
			g.collectors = append(g.collectors[:i:i], g.collectors[i+1:]...)
			return
		}
	}
}

// handleEvent re-evaluates e after component c was added or removed and records the
// resulting entity or component delta on every collector.
func (g *Group) handleEvent(e *Entity, c Component, added bool) {
	member := g.ContainsEntity(e)
	matches := g.matcher.Matches(e)

	switch {
	case matches && !member:
		g.add(e)
		for _, col := range g.collectors {
			col.entityAdded(e)
		}
	case !matches && member:
		g.remove(e)
		for _, col := range g.collectors {
			col.entityRemoved(e)
		}
	case matches && member:
		for _, col := range g.collectors {
			if added {
				col.componentAdded(c)
			} else {
				col.componentRemoved(c)
			}
		}
	}
}

func (g *Group) add(e *Entity) {
	g.index[e] = len(g.entities)
	g.entities = append(g.entities, e)
	g.count++
}

func (g *Group) remove(e *Entity) {
	delete(g.index, e)
	g.count--
	g.dirty = true
}

// seed adds every matching entity without recording deltas.
func (g *Group) seed(entities []*Entity) {
	for _, e := range entities {
		if g.matcher.Matches(e) {
			g.add(e)
		}
	}
}
