package renderer

import (
	"github.com/Carmen-Shannon/oxy-ecs/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-ecs/engine/scene"
	"go.uber.org/zap"
)

// RendererBuilderOption is a functional option applied to a Renderer during construction via NewRenderer.
type RendererBuilderOption func(*Renderer)

// WithLogger sets the renderer's logger.
//
// Parameters:
//   - log: the logger; nil keeps the no-op default
//
// Returns:
//   - RendererBuilderOption: a function that applies the logger option to a Renderer
func WithLogger(log *zap.Logger) RendererBuilderOption {
	return func(r *Renderer) {
		if log != nil {
			r.log = log
		}
	}
}

// WithDebug enables validation logging of draws that reference disposed resources.
//
// Parameters:
//   - debug: true to log skipped draws
//
// Returns:
//   - RendererBuilderOption: a function that applies the debug option to a Renderer
func WithDebug(debug bool) RendererBuilderOption {
	return func(r *Renderer) {
		r.debug = debug
	}
}

// WithDefaultScene sets the scene used for draws whose entity has no scene.
//
// Parameters:
//   - s: the fallback scene
//
// Returns:
//   - RendererBuilderOption: a function that applies the scene option to a Renderer
func WithDefaultScene(s scene.Scene) RendererBuilderOption {
	return func(r *Renderer) {
		r.defaultScene = s
	}
}

// WithDepthMaterial replaces the material shadow passes draw with.
//
// Parameters:
//   - m: the depth material
//
// Returns:
//   - RendererBuilderOption: a function that applies the depth material option to a Renderer
func WithDepthMaterial(m material.Material) RendererBuilderOption {
	return func(r *Renderer) {
		r.depthMaterial = m
	}
}
