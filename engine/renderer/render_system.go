package renderer

import (
	"github.com/Carmen-Shannon/oxy-ecs/engine/system"
)

// RenderSystem renders one frame per frame pass and resets the frame statistics afterwards.
type RenderSystem struct {
	system.BaseSystem

	services *Services
	stats    FrameStats
}

// FrameStats are the counters of the last rendered frame.
type FrameStats struct {
	DrawCalls       int
	Cameras         int
	Lights          int
	DrawCallsQueued int
}

// NewRenderSystem creates an unregistered render system.
func NewRenderSystem(services *Services) *RenderSystem {
	if services == nil {
		panic("renderer: services are required")
	}
	return &RenderSystem{services: services}
}

// Stats returns the counters of the last rendered frame.
func (s *RenderSystem) Stats() FrameStats { return s.stats }

func (s *RenderSystem) OnFrame(float64) {
	s.services.Renderer.RenderFrame()
}

func (s *RenderSystem) OnFrameCleanup(float64) {
	dc := s.services.DrawCalls
	s.stats = FrameStats{
		DrawCalls:       dc.DrawCallCount(),
		Cameras:         len(s.services.CameraLights.Cameras()),
		Lights:          len(s.services.CameraLights.Lights()),
		DrawCallsQueued: dc.Len(),
	}
	dc.ResetDrawCallCount()
}

func (s *RenderSystem) OnDestroy() {
	s.services.Renderer.Release()
}
