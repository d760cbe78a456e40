package game_object

import (
	"github.com/Carmen-Shannon/oxy-ecs/engine/ecs"
)

// Context topics published by the standard components.
const (
	// TopicMeshChanged is published by a MeshFilter whose mesh was replaced.
	TopicMeshChanged = "meshChanged"

	// TopicMaterialsChanged is published by a MeshRenderer whose material list changed.
	TopicMaterialsChanged = "materialsChanged"
)

// Types holds the descriptors of the standard scene components.
type Types struct {
	Transform    *ecs.ComponentType
	MeshFilter   *ecs.ComponentType
	MeshRenderer *ecs.ComponentType
}

// Register registers the standard scene components with r. Calling it again returns the same
// descriptors.
//
// Parameters:
//   - r: the component registry
//
// Returns:
//   - *Types: the registered descriptors
func Register(r *ecs.Registry) *Types {
	transform := r.Register("Transform", func() ecs.Component { return newTransform() })
	return &Types{
		Transform: transform,
		MeshFilter: r.Register("MeshFilter", func() ecs.Component { return &MeshFilter{} },
			ecs.WithRequires(transform)),
		MeshRenderer: r.Register("MeshRenderer", func() ecs.Component { return newMeshRenderer() },
			ecs.WithRequires(transform)),
	}
}
