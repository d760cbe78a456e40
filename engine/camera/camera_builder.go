package camera

import (
	"github.com/Carmen-Shannon/oxy-ecs/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

// CameraBuilderOption configures a Camera. A []CameraBuilderOption is the Initialize config
// of the Camera component.
type CameraBuilderOption func(*Camera)

// WithOrder sets the camera's render order. Lower orders render first.
//
// Parameters:
//   - order: the render order
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithOrder(order int) CameraBuilderOption {
	return func(c *Camera) {
		c.order = order
	}
}

// WithFov sets the vertical field of view.
//
// Parameters:
//   - degrees: the field of view in degrees
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithFov(degrees float32) CameraBuilderOption {
	return func(c *Camera) {
		c.fov = mgl32.DegToRad(degrees)
	}
}

// WithClipPlanes sets the near and far clip distances.
//
// Parameters:
//   - near: near plane distance (must be > 0)
//   - far: far plane distance (must be > near)
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithClipPlanes(near, far float32) CameraBuilderOption {
	return func(c *Camera) {
		c.SetClipPlanes(near, far)
	}
}

// WithOrthographic switches the camera to an orthographic projection.
//
// Parameters:
//   - halfHeight: half the visible height in world units
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithOrthographic(halfHeight float32) CameraBuilderOption {
	return func(c *Camera) {
		c.projection = ProjectionOrthographic
		c.size = halfHeight
	}
}

// WithAspect fixes the aspect ratio instead of deriving it from the viewport.
func WithAspect(aspect float32) CameraBuilderOption {
	return func(c *Camera) {
		c.SetAspect(aspect)
	}
}

// WithViewport sets the normalized viewport rectangle (x, y, width, height).
func WithViewport(v mgl32.Vec4) CameraBuilderOption {
	return func(c *Camera) {
		c.viewport = v
	}
}

// WithCullingMask sets the layer bits the camera draws.
func WithCullingMask(mask uint32) CameraBuilderOption {
	return func(c *Camera) {
		c.cullingMask = mask
	}
}

// WithClear sets the clear mode and background colour.
//
// Parameters:
//   - mode: the clear mode
//   - color: the RGBA background colour
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithClear(mode ClearMode, color mgl32.Vec4) CameraBuilderOption {
	return func(c *Camera) {
		c.clearMode = mode
		c.background = color
	}
}

// WithRenderTarget renders the camera into t.
func WithRenderTarget(t RenderTarget) CameraBuilderOption {
	return func(c *Camera) {
		c.renderTarget = t
	}
}

// WithSkybox sets the skybox material.
func WithSkybox(m material.Material) CameraBuilderOption {
	return func(c *Camera) {
		c.SetSkybox(m)
	}
}

// WithOverrideMaterial draws every draw call with m.
func WithOverrideMaterial(m material.Material) CameraBuilderOption {
	return func(c *Camera) {
		c.SetOverrideMaterial(m)
	}
}

// WithFrustumCulling toggles bounding-sphere culling.
func WithFrustumCulling(enabled bool) CameraBuilderOption {
	return func(c *Camera) {
		c.frustumCull = enabled
	}
}
