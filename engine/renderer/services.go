package renderer

import (
	"github.com/Carmen-Shannon/oxy-ecs/engine/camera"
	"github.com/Carmen-Shannon/oxy-ecs/engine/ecs"
	"github.com/Carmen-Shannon/oxy-ecs/engine/game_object"
	"github.com/Carmen-Shannon/oxy-ecs/engine/light"
	"github.com/Carmen-Shannon/oxy-ecs/engine/renderer/draw_call"
	"github.com/Carmen-Shannon/oxy-ecs/engine/system"
	"go.uber.org/zap"
)

// Services bundles the component types and render objects shared by the render systems.
type Services struct {
	GameObjects *game_object.Types
	Cameras     *camera.Types
	Lights      *light.Types

	DrawCalls    *draw_call.Collector
	CameraLights *CameraLightCollector
	Renderer     *Renderer
}

// NewServices registers the render components with registry and creates the render objects
// recording into device.
//
// Parameters:
//   - registry: the component registry of the context that will be rendered
//   - device: the GPU backend
//   - log: the logger shared by the render objects; nil disables logging
//   - options: variadic list of RendererBuilderOption functions applied after the logger
//
// Returns:
//   - *Services: the render services
func NewServices(registry *ecs.Registry, device Device, log *zap.Logger, options ...RendererBuilderOption) *Services {
	if log == nil {
		log = zap.NewNop()
	}
	goTypes := game_object.Register(registry)
	camTypes := camera.Register(registry, goTypes)
	lightTypes := light.Register(registry, goTypes)

	drawCalls := draw_call.NewCollector(draw_call.WithLogger(log.Named("draw_calls")))
	cameraLights := NewCameraLightCollector(NewRenderState(), camTypes.Camera, lightTypes.Light)
	opts := append([]RendererBuilderOption{WithLogger(log.Named("renderer"))}, options...)

	return &Services{
		GameObjects:  goTypes,
		Cameras:      camTypes,
		Lights:       lightTypes,
		DrawCalls:    drawCalls,
		CameraLights: cameraLights,
		Renderer:     NewRenderer(device, drawCalls, cameraLights, opts...),
	}
}

// RegisterSystems registers the mesh renderer, camera/light and render systems with m.
//
// Parameters:
//   - m: the system manager
//   - ctx: the context to render
func (s *Services) RegisterSystems(m *system.Manager, ctx *ecs.Context) {
	m.Register(NewMeshRendererSystem(s), ctx, system.OrderBeforeRenderer, nil)
	m.Register(NewCameraLightSystem(s), ctx, system.OrderBeforeRenderer+1, nil)
	m.Register(NewRenderSystem(s), ctx, system.OrderRenderer, nil)
}
