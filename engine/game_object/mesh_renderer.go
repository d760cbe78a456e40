package game_object

import (
	"github.com/Carmen-Shannon/oxy-ecs/engine/ecs"
	"github.com/Carmen-Shannon/oxy-ecs/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

// MeshRendererConfig is the optional Initialize value of a MeshRenderer.
type MeshRendererConfig struct {
	Materials      []material.Material
	CastShadows    bool
	ReceiveShadows bool
	Instances      int
}

// MeshRenderer draws the entity's MeshFilter mesh. Material i is used for sub-meshes whose
// material slot is i. Materials are retained while assigned.
type MeshRenderer struct {
	ecs.BaseComponent

	materials           []material.Material
	castShadows         bool
	receiveShadows      bool
	lightmapIndex       int
	lightmapScaleOffset mgl32.Vec4
	instances           int
}

func newMeshRenderer() *MeshRenderer {
	return &MeshRenderer{
		lightmapIndex:       -1,
		lightmapScaleOffset: mgl32.Vec4{1, 1, 0, 0},
	}
}

func (r *MeshRenderer) Initialize(config any) {
	cfg, ok := config.(*MeshRendererConfig)
	if !ok || cfg == nil {
		return
	}
	r.castShadows = cfg.CastShadows
	r.receiveShadows = cfg.ReceiveShadows
	r.instances = cfg.Instances
	if len(cfg.Materials) > 0 {
		r.SetMaterials(cfg.Materials...)
	}
}

// Uninitialize releases every material.
func (r *MeshRenderer) Uninitialize() {
	for _, m := range r.materials {
		if m != nil {
			m.Release()
		}
	}
	r.materials = nil
}

func (r *MeshRenderer) Materials() []material.Material { return r.materials }
func (r *MeshRenderer) CastShadows() bool              { return r.castShadows }
func (r *MeshRenderer) SetCastShadows(v bool)          { r.castShadows = v }
func (r *MeshRenderer) ReceiveShadows() bool           { return r.receiveShadows }
func (r *MeshRenderer) SetReceiveShadows(v bool)       { r.receiveShadows = v }
func (r *MeshRenderer) LightmapIndex() int             { return r.lightmapIndex }
func (r *MeshRenderer) LightmapScaleOffset() mgl32.Vec4 {
	return r.lightmapScaleOffset
}

// Material returns the material in slot i, or nil.
func (r *MeshRenderer) Material(i int) material.Material {
	if i < 0 || i >= len(r.materials) {
		return nil
	}
	return r.materials[i]
}

// SetMaterials replaces the material list and publishes TopicMaterialsChanged.
//
// Parameters:
//   - materials: the materials by slot; nil entries leave a slot empty
func (r *MeshRenderer) SetMaterials(materials ...material.Material) {
	for _, m := range materials {
		if m != nil {
			m.Retain()
		}
	}
	for _, m := range r.materials {
		if m != nil {
			m.Release()
		}
	}
	r.materials = append([]material.Material(nil), materials...)
	r.publish()
}

// SetLightmap assigns a baked lightmap. A negative index disables lightmapping.
func (r *MeshRenderer) SetLightmap(index int, scaleOffset mgl32.Vec4) {
	r.lightmapIndex = index
	r.lightmapScaleOffset = scaleOffset
}

// Instances returns the instance count of every draw, or 0 for non-instanced drawing.
func (r *MeshRenderer) Instances() int { return r.instances }

// SetInstances sets the instance count and rebuilds the draw calls.
func (r *MeshRenderer) SetInstances(n int) {
	if r.instances == n {
		return
	}
	r.instances = max(n, 0)
	r.publish()
}

func (r *MeshRenderer) publish() {
	if e := r.Entity(); e != nil {
		e.Context().Publish(TopicMaterialsChanged, r)
	}
}
