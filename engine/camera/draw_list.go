package camera

import (
	"cmp"
	"slices"

	"github.com/Carmen-Shannon/oxy-ecs/engine/renderer/draw_call"
	"github.com/Carmen-Shannon/oxy-ecs/engine/renderer/material"
)

// DrawLists are the culled, sorted draw calls of one camera.
type DrawLists struct {
	// Opaque holds calls with a render queue below material.RenderQueueTransparent, front to back.
	Opaque []*draw_call.DrawCall

	// Transparent holds the remaining calls, back to front.
	Transparent []*draw_call.DrawCall

	// ShadowCasters holds calls whose renderer casts shadows, front to back.
	ShadowCasters []*draw_call.DrawCall
}

// Reset empties the lists while keeping their capacity.
func (l *DrawLists) Reset() {
	clear(l.Opaque)
	clear(l.Transparent)
	clear(l.ShadowCasters)
	l.Opaque = l.Opaque[:0]
	l.Transparent = l.Transparent[:0]
	l.ShadowCasters = l.ShadowCasters[:0]
}

// Visible reports whether d passes the camera's culling mask and frustum.
func (c *Camera) Visible(d *draw_call.DrawCall) bool {
	if d == nil || d.Mesh == nil || d.Material == nil {
		return false
	}
	if d.Entity != nil && c.cullingMask&(1<<(d.Entity.Layer()&31)) == 0 {
		return false
	}
	// instanced draws place geometry outside the mesh bounds
	if !c.frustumCull || d.Instances > 0 {
		return true
	}
	center, radius := d.WorldBounds()
	return c.frustum.IntersectsSphere(center, radius)
}

// Collect rebuilds the camera's opaque and transparent lists from calls. Update must have run
// for the current frame.
//
// Parameters:
//   - calls: every draw call of the context
func (c *Camera) Collect(calls []*draw_call.DrawCall) {
	c.lists.Opaque = c.lists.Opaque[:0]
	c.lists.Transparent = c.lists.Transparent[:0]
	for _, d := range calls {
		if !c.Visible(d) {
			continue
		}
		d.Distance = c.distance(d)
		if d.Material.RenderQueue() < material.RenderQueueTransparent {
			c.lists.Opaque = append(c.lists.Opaque, d)
		} else {
			c.lists.Transparent = append(c.lists.Transparent, d)
		}
	}
	slices.SortStableFunc(c.lists.Opaque, compareOpaque)
	slices.SortStableFunc(c.lists.Transparent, compareTransparent)
}

// CollectShadowCasters rebuilds the shadow caster list from calls as seen from this camera.
func (c *Camera) CollectShadowCasters(calls []*draw_call.DrawCall) {
	c.lists.ShadowCasters = c.lists.ShadowCasters[:0]
	for _, d := range calls {
		if d.Renderer != nil && !d.Renderer.CastShadows() {
			continue
		}
		if d.Material != nil && d.Material.IsTransparent() {
			continue
		}
		if !c.Visible(d) {
			continue
		}
		d.Distance = c.distance(d)
		c.lists.ShadowCasters = append(c.lists.ShadowCasters, d)
	}
	slices.SortStableFunc(c.lists.ShadowCasters, func(a, b *draw_call.DrawCall) int {
		return cmp.Compare(a.Distance, b.Distance)
	})
}

func (c *Camera) distance(d *draw_call.DrawCall) float32 {
	center, _ := d.WorldBounds()
	return center.Sub(c.position).Dot(c.forward)
}

// compareOpaque groups by queue then material to limit program switches, then front to back.
func compareOpaque(a, b *draw_call.DrawCall) int {
	if r := cmp.Compare(a.Material.RenderQueue(), b.Material.RenderQueue()); r != 0 {
		return r
	}
	if r := cmp.Compare(a.Material.ID(), b.Material.ID()); r != 0 {
		return r
	}
	return cmp.Compare(a.Distance, b.Distance)
}

func compareTransparent(a, b *draw_call.DrawCall) int {
	if r := cmp.Compare(a.Material.RenderQueue(), b.Material.RenderQueue()); r != 0 {
		return r
	}
	return cmp.Compare(b.Distance, a.Distance)
}
