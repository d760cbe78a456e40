package game_object

import (
	"github.com/Carmen-Shannon/oxy-ecs/engine/ecs"
	"github.com/Carmen-Shannon/oxy-ecs/engine/model"
)

// MeshFilter holds the mesh drawn by the entity's renderer. The mesh is retained while assigned.
type MeshFilter struct {
	ecs.BaseComponent
	mesh model.Mesh
}

// Initialize accepts a model.Mesh as config.
func (f *MeshFilter) Initialize(config any) {
	if m, ok := config.(model.Mesh); ok && f.mesh == nil {
		f.SetMesh(m)
	}
}

// Uninitialize releases the mesh.
func (f *MeshFilter) Uninitialize() {
	if f.mesh != nil {
		f.mesh.Release()
		f.mesh = nil
	}
}

func (f *MeshFilter) Mesh() model.Mesh { return f.mesh }

// SetMesh replaces the mesh and publishes TopicMeshChanged.
//
// Parameters:
//   - m: the new mesh, or nil
func (f *MeshFilter) SetMesh(m model.Mesh) {
	if f.mesh == m {
		return
	}
	if m != nil {
		m.Retain()
	}
	if f.mesh != nil {
		f.mesh.Release()
	}
	f.mesh = m
	if e := f.Entity(); e != nil {
		e.Context().Publish(TopicMeshChanged, f)
	}
}
