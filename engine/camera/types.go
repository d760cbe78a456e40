package camera

import (
	"github.com/Carmen-Shannon/oxy-ecs/engine/ecs"
	"github.com/Carmen-Shannon/oxy-ecs/engine/game_object"
)

// Types holds the camera component descriptors.
type Types struct {
	Camera          *ecs.ComponentType
	OrbitController *ecs.ComponentType
}

// Register registers the Camera and OrbitController components with r. Both require the
// Transform registered in goTypes.
//
// Parameters:
//   - r: the component registry
//   - goTypes: the standard component descriptors
//
// Returns:
//   - *Types: the registered descriptors
func Register(r *ecs.Registry, goTypes *game_object.Types) *Types {
	if goTypes == nil {
		panic("camera: standard component types are required")
	}
	transform := goTypes.Transform
	return &Types{
		Camera: r.Register("Camera", func() ecs.Component { return newCamera(transform) },
			ecs.WithRequires(transform)),
		OrbitController: r.Register("OrbitController", func() ecs.Component { return newOrbitController(transform) },
			ecs.WithRequires(transform), ecs.WithBehaviour()),
	}
}
