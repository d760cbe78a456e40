package renderer

import (
	"slices"

	"github.com/Carmen-Shannon/oxy-ecs/engine/camera"
	"github.com/Carmen-Shannon/oxy-ecs/engine/ecs"
	"github.com/Carmen-Shannon/oxy-ecs/engine/light"
)

// CameraLightCollector keeps the sorted camera list and the per-kind light buckets of a
// context. Light count changes are pushed into the RenderState defines and flagged in a
// dirty mask the renderer consumes once per frame.
type CameraLightCollector struct {
	state      *RenderState
	cameraType *ecs.ComponentType
	lightType  *ecs.ComponentType

	cameras         []*camera.Camera
	lights          []*light.Light
	buckets         [light.KindCount][]*light.Light
	lightCountDirty uint8
}

// NewCameraLightCollector creates a collector that writes light count defines into state.
//
// Parameters:
//   - state: the render state receiving NUM_*_LIGHTS defines
//   - cameraType: the Camera component descriptor
//   - lightType: the Light component descriptor
//
// Returns:
//   - *CameraLightCollector: the new collector
func NewCameraLightCollector(state *RenderState, cameraType, lightType *ecs.ComponentType) *CameraLightCollector {
	if state == nil || cameraType == nil || lightType == nil {
		panic("renderer: camera/light collector needs a render state and component types")
	}
	return &CameraLightCollector{
		state:      state,
		cameraType: cameraType,
		lightType:  lightType,
	}
}

// Cameras returns the cameras in render order.
func (c *CameraLightCollector) Cameras() []*camera.Camera { return c.cameras }

// Lights returns every collected light.
func (c *CameraLightCollector) Lights() []*light.Light { return c.lights }

// LightsOf returns the lights of one kind.
func (c *CameraLightCollector) LightsOf(kind light.Kind) []*light.Light {
	if kind >= light.KindCount {
		return nil
	}
	return c.buckets[kind]
}

// UpdateCameras rebuilds the camera list from the live Camera components of entities and
// sorts it.
//
// Parameters:
//   - entities: the entities of the camera group
func (c *CameraLightCollector) UpdateCameras(entities []*ecs.Entity) {
	clear(c.cameras)
	c.cameras = c.cameras[:0]
	for _, e := range entities {
		for _, comp := range e.GetComponents(c.cameraType, false) {
			if cam, ok := comp.(*camera.Camera); ok && cam.IsActiveAndEnabled() {
				c.cameras = append(c.cameras, cam)
			}
		}
	}
	c.SortCameras()
}

// SortCameras orders cameras by SortKey. Cameras with a render target run before surface
// cameras of the same order.
func (c *CameraLightCollector) SortCameras() {
	slices.SortStableFunc(c.cameras, func(a, b *camera.Camera) int {
		return a.SortKey() - b.SortKey()
	})
}

// UpdateLights rebuilds the light list and its buckets from the live Light components of
// entities. A bucket whose size changed updates its count define and sets its dirty bit.
//
// Parameters:
//   - entities: the entities of the light group
func (c *CameraLightCollector) UpdateLights(entities []*ecs.Entity) {
	clear(c.lights)
	c.lights = c.lights[:0]
	var counts [light.KindCount]int
	for _, e := range entities {
		for _, comp := range e.GetComponents(c.lightType, false) {
			if l, ok := comp.(*light.Light); ok && l.IsActiveAndEnabled() {
				c.lights = append(c.lights, l)
				counts[l.Kind()]++
			}
		}
	}

	for kind := range light.KindCount {
		if counts[kind] != len(c.buckets[kind]) {
			c.lightCountDirty |= kind.DirtyBit()
			if counts[kind] == 0 {
				c.state.Defines().Remove(kind.Define())
			} else {
				c.state.Defines().Set(kind.Define(), counts[kind])
			}
		}
		clear(c.buckets[kind])
		c.buckets[kind] = c.buckets[kind][:0]
	}
	for _, l := range c.lights {
		c.buckets[l.Kind()] = append(c.buckets[l.Kind()], l)
	}
}

// LightCountDirty returns the kinds whose count changed since the last consume.
func (c *CameraLightCollector) LightCountDirty() uint8 { return c.lightCountDirty }

// ConsumeLightCountDirty returns and clears the dirty mask.
func (c *CameraLightCollector) ConsumeLightCountDirty() uint8 {
	d := c.lightCountDirty
	c.lightCountDirty = 0
	return d
}

// PackLights appends the uniform data of every light of kind to dst.
func (c *CameraLightCollector) PackLights(dst []float32, kind light.Kind) []float32 {
	for _, l := range c.LightsOf(kind) {
		dst = l.Pack(dst)
	}
	return dst
}

// ShadowCasters appends the lights that render a shadow pass to dst.
func (c *CameraLightCollector) ShadowCasters(dst []*light.Light) []*light.Light {
	for _, l := range c.lights {
		if l.CastShadows() {
			dst = append(dst, l)
		}
	}
	return dst
}
