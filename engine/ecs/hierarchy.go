package ecs

// Handle addresses a node in a Hierarchy. The zero Handle is invalid.
type Handle struct {
	index      int32
	generation uint32
}

// Valid reports whether h was issued by a Hierarchy.
func (h Handle) Valid() bool {
	return h.generation != 0
}

const noParent int32 = -1

type hierarchyNode struct {
	entity     *Entity
	parent     int32
	children   []int32
	generation uint32
	alive      bool
}

// Hierarchy is an arena of parent/child links between entities. Links are stored as
// node indices, so no entity holds a pointer to its parent or children.
type Hierarchy struct {
	nodes []hierarchyNode
	free  []int32
}

func newHierarchy() *Hierarchy {
	return &Hierarchy{}
}

func (h *Hierarchy) alloc(e *Entity) Handle {
	var idx int32
	if n := len(h.free); n > 0 {
		idx = h.free[n-1]
		h.free = h.free[:n-1]
	} else {
		h.nodes = append(h.nodes, hierarchyNode{})
		idx = int32(len(h.nodes) - 1)
	}
	node := &h.nodes[idx]
	node.generation++
	node.entity = e
	node.parent = noParent
	node.children = node.children[:0]
	node.alive = true
	return Handle{index: idx, generation: node.generation}
}

func (h *Hierarchy) node(handle Handle) *hierarchyNode {
	if !handle.Valid() || int(handle.index) >= len(h.nodes) {
		return nil
	}
	n := &h.nodes[handle.index]
	if !n.alive || n.generation != handle.generation {
		return nil
	}
	return n
}

// release detaches the node from its parent and returns it to the free list.
// Children must have been released first.
func (h *Hierarchy) release(handle Handle) {
	n := h.node(handle)
	if n == nil {
		return
	}
	h.detach(handle.index)
	n.alive = false
	n.entity = nil
	n.children = n.children[:0]
	h.free = append(h.free, handle.index)
}

func (h *Hierarchy) detach(idx int32) {
	n := &h.nodes[idx]
	if n.parent == noParent {
		return
	}
	p := &h.nodes[n.parent]
	for i, c := range p.children {
		if c == idx {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	n.parent = noParent
}

func (h *Hierarchy) parent(handle Handle) *Entity {
	n := h.node(handle)
	if n == nil || n.parent == noParent {
		return nil
	}
	return h.nodes[n.parent].entity
}

// contains reports whether candidate is a strict descendant of ancestor, walking up from candidate.
func (h *Hierarchy) contains(ancestor, candidate Handle) bool {
	a := h.node(ancestor)
	c := h.node(candidate)
	if a == nil || c == nil {
		return false
	}
	for p := c.parent; p != noParent; p = h.nodes[p].parent {
		if p == ancestor.index {
			return true
		}
	}
	return false
}

func (h *Hierarchy) setParent(child, parent Handle) {
	h.detach(child.index)
	if !parent.Valid() {
		return
	}
	h.nodes[child.index].parent = parent.index
	p := &h.nodes[parent.index]
	p.children = append(p.children, child.index)
}

func (h *Hierarchy) children(handle Handle) []*Entity {
	n := h.node(handle)
	if n == nil || len(n.children) == 0 {
		return nil
	}
	out := make([]*Entity, len(n.children))
	for i, c := range n.children {
		out[i] = h.nodes[c].entity
	}
	return out
}

func (h *Hierarchy) childCount(handle Handle) int {
	n := h.node(handle)
	if n == nil {
		return 0
	}
	return len(n.children)
}

func (h *Hierarchy) childAt(handle Handle, i int) *Entity {
	n := h.node(handle)
	if n == nil || i < 0 || i >= len(n.children) {
		return nil
	}
	return h.nodes[n.children[i]].entity
}

func (h *Hierarchy) childIndex(parent, child Handle) int {
	n := h.node(parent)
	if n == nil {
		return -1
	}
	for i, c := range n.children {
		if c == child.index {
			return i
		}
	}
	return -1
}

func (h *Hierarchy) setChildIndex(parent, child Handle, index int) bool {
	n := h.node(parent)
	prev := h.childIndex(parent, child)
	if n == nil || prev < 0 || index < 0 || index >= len(n.children) || prev == index {
		return false
	}
	n.children = append(n.children[:prev], n.children[prev+1:]...)
	n.children = append(n.children, 0)
	copy(n.children[index+1:], n.children[index:])
	n.children[index] = child.index
	return true
}

// walk visits handle's descendants depth-first, parents before children.
func (h *Hierarchy) walk(handle Handle, fn func(*Entity)) {
	n := h.node(handle)
	if n == nil {
		return
	}
	for _, c := range n.children {
		child := &h.nodes[c]
		fn(child.entity)
		h.walk(Handle{index: c, generation: child.generation}, fn)
	}
}
