package draw_call

import (
	"go.uber.org/zap"
)

// Collector holds every draw call of a context keyed by owner. Removal by owner affects exactly
// the draw calls added under that owner. Draw calls keep insertion order.
type Collector struct {
	log  *zap.Logger
	pool *Pool

	drawCalls []*DrawCall
	byOwner   map[any][]*DrawCall
	skybox    *DrawCall

	added         int
	removed       int
	drawCallCount int
}

// NewCollector creates an empty draw-call collector.
//
// Parameters:
//   - options: variadic list of CollectorBuilderOption functions
//
// Returns:
//   - *Collector: the new collector
func NewCollector(options ...CollectorBuilderOption) *Collector {
	c := &Collector{
		log:     zap.NewNop(),
		pool:    &Pool{},
		byOwner: make(map[any][]*DrawCall),
	}
	for _, opt := range options {
		opt(c)
	}
	c.skybox = c.pool.Get()
	return c
}

// Pool returns the pool draw calls should be taken from.
func (c *Collector) Pool() *Pool { return c.pool }

// DrawCalls returns every draw call in insertion order. The slice must not be modified.
func (c *Collector) DrawCalls() []*DrawCall { return c.drawCalls }

// Len returns the number of draw calls.
func (c *Collector) Len() int { return len(c.drawCalls) }

// DrawCallsOf returns the draw calls added under owner.
func (c *Collector) DrawCallsOf(owner any) []*DrawCall { return c.byOwner[owner] }

// SkyboxDrawCall returns the shared draw call reused for every camera's skybox.
func (c *Collector) SkyboxDrawCall() *DrawCall { return c.skybox }

// AddDrawCall appends d under d.Owner. A nil owner falls back to d.Entity.
//
// Parameters:
//   - d: the draw call; must carry a mesh and a material
func (c *Collector) AddDrawCall(d *DrawCall) {
	if d == nil {
		return
	}
	if d.Owner == nil && d.Entity != nil {
		d.Owner = d.Entity
	}
	if d.Owner == nil {
		c.log.Warn("draw call without owner ignored")
		return
	}
	c.drawCalls = append(c.drawCalls, d)
	c.byOwner[d.Owner] = append(c.byOwner[d.Owner], d)
	c.added++
}

// RemoveDrawCalls removes and recycles every draw call added under owner.
//
// Parameters:
//   - owner: the owner key
//
// Returns:
//   - int: the number of removed draw calls
func (c *Collector) RemoveDrawCalls(owner any) int {
	owned, ok := c.byOwner[owner]
	if !ok {
		return 0
	}
	delete(c.byOwner, owner)

	kept := c.drawCalls[:0]
	for _, d := range c.drawCalls {
		if d.Owner != owner {
			kept = append(kept, d)
		}
	}
	clear(c.drawCalls[len(kept):])
	c.drawCalls = kept

	for _, d := range owned {
		c.pool.Put(d)
	}
	c.removed += len(owned)
	return len(owned)
}

// Added returns the number of draw calls added since creation.
func (c *Collector) Added() int { return c.added }

// Removed returns the number of draw calls removed since creation.
func (c *Collector) Removed() int { return c.removed }

// DrawCallCount returns the draws issued in the current frame.
func (c *Collector) DrawCallCount() int { return c.drawCallCount }

// CountDraw records one issued draw.
func (c *Collector) CountDraw() { c.drawCallCount++ }

// ResetDrawCallCount starts a new frame's statistic.
func (c *Collector) ResetDrawCallCount() { c.drawCallCount = 0 }
