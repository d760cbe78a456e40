package renderer

import (
	"github.com/Carmen-Shannon/oxy-ecs/engine/camera"
	"github.com/Carmen-Shannon/oxy-ecs/engine/ecs"
	"github.com/Carmen-Shannon/oxy-ecs/engine/system"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// CameraLightSystem keeps the camera and light lists of the render services current. It also
// owns the disabled camera the renderer reuses for shadow passes.
type CameraLightSystem struct {
	system.BaseSystem

	services     *Services
	camerasDirty bool
	lightsDirty  bool
	shadowEntity *ecs.Entity
}

var _ system.MatcherProvider = &CameraLightSystem{}

// NewCameraLightSystem creates an unregistered camera/light system.
func NewCameraLightSystem(services *Services) *CameraLightSystem {
	if services == nil {
		panic("renderer: services are required")
	}
	return &CameraLightSystem{services: services, camerasDirty: true, lightsDirty: true}
}

func (s *CameraLightSystem) Matchers() []*ecs.Matcher {
	return []*ecs.Matcher{
		ecs.AllOf(s.services.Cameras.Camera),
		ecs.AllOf(s.services.Lights.Light),
	}
}

func (s *CameraLightSystem) OnAwake(any) {
	ctx := s.Context()
	e := ctx.CreateEntity(ecs.WithName("Shadow Camera"))
	if err := e.SetParent(ctx.GlobalEntity()); err != nil {
		ctx.Logger().Warn("shadow camera stays a root entity", zap.Error(err))
	}
	comp, err := e.AddComponent(s.services.Cameras.Camera, []camera.CameraBuilderOption{
		camera.WithClear(camera.ClearNothing, mgl32.Vec4{}),
		camera.WithFrustumCulling(false),
	})
	if err != nil {
		ctx.Logger().Error("cannot create the shadow camera", zap.Error(err))
		e.Destroy()
		return
	}
	comp.SetEnabled(false)
	s.shadowEntity = e
	s.services.Renderer.SetShadowCamera(comp.(*camera.Camera))
}

func (s *CameraLightSystem) OnDestroy() {
	s.services.Renderer.SetShadowCamera(nil)
	if s.shadowEntity != nil {
		s.shadowEntity.Destroy()
		s.shadowEntity = nil
	}
}

func (s *CameraLightSystem) OnEntityAdded(_ *ecs.Entity, g *ecs.Group) {
	s.markDirty(g)
}

func (s *CameraLightSystem) OnEntityRemoved(_ *ecs.Entity, g *ecs.Group) {
	s.markDirty(g)
}

func (s *CameraLightSystem) markDirty(g *ecs.Group) {
	if g == s.Group(0) {
		s.camerasDirty = true
	} else {
		s.lightsDirty = true
	}
}

// OnFrame rebuilds the lists that changed. Camera order may change without a group event, so
// the camera list is re-sorted every frame.
func (s *CameraLightSystem) OnFrame(float64) {
	cl := s.services.CameraLights
	if s.camerasDirty {
		cl.UpdateCameras(s.Group(0).Entities())
		s.camerasDirty = false
	} else {
		cl.SortCameras()
	}
	if s.lightsDirty {
		cl.UpdateLights(s.Group(1).Entities())
		s.lightsDirty = false
	}
}
