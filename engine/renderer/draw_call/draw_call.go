package draw_call

import (
	"github.com/Carmen-Shannon/oxy-ecs/engine/ecs"
	"github.com/Carmen-Shannon/oxy-ecs/engine/game_object"
	"github.com/Carmen-Shannon/oxy-ecs/engine/model"
	"github.com/Carmen-Shannon/oxy-ecs/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

// DrawCall is one (mesh, sub-mesh, material, transform) unit submitted to the render backend.
type DrawCall struct {
	// Owner keys the draw call in a Collector; draw calls of one owner are removed together.
	Owner any

	// Entity is the drawn entity, or nil for draws not tied to one such as the skybox.
	Entity *ecs.Entity

	// Renderer is the component that produced the draw call, or nil.
	Renderer *game_object.MeshRenderer

	// Transform supplies the model matrix; nil draws with Matrix.
	Transform *game_object.Transform

	// Matrix is the model matrix used when Transform is nil.
	Matrix mgl32.Mat4

	Mesh         model.Mesh
	SubMeshIndex int
	Material     material.Material

	// Instances is the instance count; 0 issues a non-instanced draw.
	Instances int

	// DrawCount counts how often the draw call was issued when >= 0.
	DrawCount int

	// Distance is the view-space sort distance written during culling.
	Distance float32
}

// ModelMatrix returns the world matrix the draw call is rendered with.
func (d *DrawCall) ModelMatrix() mgl32.Mat4 {
	if d.Transform != nil {
		return d.Transform.LocalToWorld()
	}
	return d.Matrix
}

// WorldBounds returns the mesh bounding sphere in world space.
//
// Returns:
//   - mgl32.Vec3: the sphere centre
//   - float32: the sphere radius scaled by the largest axis scale of the model matrix
func (d *DrawCall) WorldBounds() (mgl32.Vec3, float32) {
	if d.Mesh == nil {
		return mgl32.Vec3{}, 0
	}
	m := d.ModelMatrix()
	center, radius := d.Mesh.Bounds()
	world := m.Mul4x1(center.Vec4(1)).Vec3()
	scale := max(m.Col(0).Vec3().Len(), m.Col(1).Vec3().Len(), m.Col(2).Vec3().Len())
	return world, radius * scale
}

func (d *DrawCall) reset() {
	*d = DrawCall{Matrix: mgl32.Ident4(), DrawCount: -1}
}

// Pool recycles DrawCall values. It is not safe for concurrent use.
type Pool struct {
	free []*DrawCall
}

// Get returns a reset draw call with an identity Matrix and counting disabled.
func (p *Pool) Get() *DrawCall {
	if n := len(p.free); n > 0 {
		d := p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
		return d
	}
	d := &DrawCall{}
	d.reset()
	return d
}

// Put resets d and returns it to the pool.
func (p *Pool) Put(d *DrawCall) {
	if d == nil {
		return
	}
	d.reset()
	p.free = append(p.free, d)
}

// Len returns the number of pooled draw calls.
func (p *Pool) Len() int { return len(p.free) }
