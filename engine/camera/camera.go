package camera

import (
	"math"

	"github.com/Carmen-Shannon/oxy-ecs/common"
	"github.com/Carmen-Shannon/oxy-ecs/engine/ecs"
	"github.com/Carmen-Shannon/oxy-ecs/engine/game_object"
	"github.com/Carmen-Shannon/oxy-ecs/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

// Projection selects how a camera maps view space to clip space.
type Projection uint8

const (
	ProjectionPerspective Projection = iota
	ProjectionOrthographic
)

// ClearMode selects what a camera clears before drawing.
type ClearMode uint8

const (
	// ClearSkybox clears depth and draws the skybox material, or clears to the background
	// colour when the camera has none.
	ClearSkybox ClearMode = iota
	ClearSolidColor
	ClearDepthOnly
	ClearNothing
)

// CullingEverything is the default culling mask.
const CullingEverything uint32 = 0xFFFFFFFF

// RenderTarget is an offscreen colour/depth target created by the render device.
// A camera without a target renders to the window surface.
type RenderTarget interface {
	// Width returns the target width in pixels.
	//
	// Returns:
	//   - int: the width
	Width() int

	// Height returns the target height in pixels.
	//
	// Returns:
	//   - int: the height
	Height() int
}

// Camera renders the scene of its entity from the entity's Transform.
//
// Cameras are processed in ascending SortKey order. Only entities whose layer bit is set in the
// culling mask are drawn.
type Camera struct {
	ecs.BaseComponent

	transformType *ecs.ComponentType

	order         int
	cullingMask   uint32
	projection    Projection
	fov           float32
	near          float32
	far           float32
	size          float32
	aspect        float32
	viewport      mgl32.Vec4
	clearMode     ClearMode
	background    mgl32.Vec4
	frustumCull   bool
	renderTarget  RenderTarget
	previewTarget RenderTarget

	overrideMaterial material.Material
	skybox           material.Material

	customView       *mgl32.Mat4
	customProjection *mgl32.Mat4

	view           mgl32.Mat4
	proj           mgl32.Mat4
	viewProj       mgl32.Mat4
	frustum        common.Frustum
	position       mgl32.Vec3
	forward        mgl32.Vec3
	up             mgl32.Vec3
	resolvedAspect float32
	pixelWidth     int
	pixelHeight    int

	lists DrawLists
}

var _ ecs.Component = &Camera{}

func newCamera(transformType *ecs.ComponentType) *Camera {
	return &Camera{
		transformType: transformType,
		cullingMask:   CullingEverything,
		fov:           mgl32.DegToRad(60),
		near:          0.3,
		far:           1000,
		size:          5,
		viewport:      mgl32.Vec4{0, 0, 1, 1},
		clearMode:     ClearSkybox,
		background:    mgl32.Vec4{0.19, 0.3, 0.47, 1},
		frustumCull:   true,
		view:          mgl32.Ident4(),
		proj:          mgl32.Ident4(),
		viewProj:      mgl32.Ident4(),
		forward:       mgl32.Vec3{0, 0, -1},
		up:            mgl32.Vec3{0, 1, 0},
	}
}

// Initialize applies a []CameraBuilderOption config.
func (c *Camera) Initialize(config any) {
	opts, ok := config.([]CameraBuilderOption)
	if !ok {
		return
	}
	for _, opt := range opts {
		opt(c)
	}
}

// Uninitialize releases the override and skybox materials.
func (c *Camera) Uninitialize() {
	c.SetOverrideMaterial(nil)
	c.SetSkybox(nil)
}

func (c *Camera) Order() int                      { return c.order }
func (c *Camera) SetOrder(order int)              { c.order = order }
func (c *Camera) CullingMask() uint32             { return c.cullingMask }
func (c *Camera) SetCullingMask(mask uint32)      { c.cullingMask = mask }
func (c *Camera) Projection() Projection          { return c.projection }
func (c *Camera) SetProjection(p Projection)      { c.projection = p }
func (c *Camera) Fov() float32                    { return c.fov }
func (c *Camera) SetFov(radians float32)          { c.fov = radians }
func (c *Camera) Near() float32                   { return c.near }
func (c *Camera) Far() float32                    { return c.far }
func (c *Camera) Size() float32                   { return c.size }
func (c *Camera) SetSize(halfHeight float32)      { c.size = halfHeight }
func (c *Camera) Viewport() mgl32.Vec4            { return c.viewport }
func (c *Camera) SetViewport(v mgl32.Vec4)        { c.viewport = v }
func (c *Camera) ClearMode() ClearMode            { return c.clearMode }
func (c *Camera) SetClearMode(m ClearMode)        { c.clearMode = m }
func (c *Camera) BackgroundColor() mgl32.Vec4     { return c.background }
func (c *Camera) SetBackgroundColor(v mgl32.Vec4) { c.background = v }
func (c *Camera) FrustumCulling() bool            { return c.frustumCull }
func (c *Camera) SetFrustumCulling(v bool)        { c.frustumCull = v }
func (c *Camera) RenderTarget() RenderTarget      { return c.renderTarget }
func (c *Camera) PreviewTarget() RenderTarget     { return c.previewTarget }
func (c *Camera) SetPreviewTarget(t RenderTarget) { c.previewTarget = t }

// SetClipPlanes sets the near and far distances. Invalid ranges are ignored.
func (c *Camera) SetClipPlanes(near, far float32) {
	if near <= 0 || far <= near {
		return
	}
	c.near, c.far = near, far
}

// SetAspect fixes the aspect ratio. Zero derives it from the viewport on every Update.
func (c *Camera) SetAspect(aspect float32) { c.aspect = max(aspect, 0) }

// SetRenderTarget redirects the camera into an offscreen target; nil renders to the surface.
func (c *Camera) SetRenderTarget(t RenderTarget) { c.renderTarget = t }

// SortKey orders cameras for rendering. Cameras rendering into a target run before surface
// cameras of the same order and after cameras of any lower order.
func (c *Camera) SortKey() int {
	if c.renderTarget != nil || c.previewTarget != nil {
		return c.order * 1000
	}
	return c.order*1000 + 1
}

// OverrideMaterial returns the material that replaces every draw call's material, or nil.
func (c *Camera) OverrideMaterial() material.Material { return c.overrideMaterial }

// SetOverrideMaterial sets the replacement material. The camera retains it while assigned.
func (c *Camera) SetOverrideMaterial(m material.Material) {
	c.overrideMaterial = swapMaterial(c.overrideMaterial, m)
}

// Skybox returns the skybox material drawn in ClearSkybox mode, or nil.
func (c *Camera) Skybox() material.Material { return c.skybox }

// SetSkybox sets the skybox material. The camera retains it while assigned.
func (c *Camera) SetSkybox(m material.Material) {
	c.skybox = swapMaterial(c.skybox, m)
}

func swapMaterial(old, m material.Material) material.Material {
	if old == m {
		return m
	}
	if m != nil {
		m.Retain()
	}
	if old != nil {
		old.Release()
	}
	return m
}

// SetCustomMatrices replaces the transform-derived view and the projection. Shadow passes use
// it to look through a light. A nil argument keeps the computed matrix.
func (c *Camera) SetCustomMatrices(view, projection *mgl32.Mat4) {
	c.customView = view
	c.customProjection = projection
}

// ClearCustomMatrices restores transform-derived matrices.
func (c *Camera) ClearCustomMatrices() {
	c.customView = nil
	c.customProjection = nil
}

// Transform returns the camera entity's Transform, or nil.
func (c *Camera) Transform() *game_object.Transform {
	return transformOf(c.Entity(), c.transformType)
}

func transformOf(e *ecs.Entity, t *ecs.ComponentType) *game_object.Transform {
	if e == nil || t == nil {
		return nil
	}
	tr, _ := e.GetComponent(t, false).(*game_object.Transform)
	return tr
}

// Update recomputes the matrices and frustum for a target of the given pixel size.
//
// Parameters:
//   - width: the width in pixels of the surface or render target
//   - height: the height in pixels of the surface or render target
func (c *Camera) Update(width, height int) {
	vw := max(int(c.viewport[2]*float32(width)), 1)
	vh := max(int(c.viewport[3]*float32(height)), 1)
	c.pixelWidth, c.pixelHeight = vw, vh

	c.resolvedAspect = c.aspect
	if c.resolvedAspect == 0 {
		c.resolvedAspect = float32(vw) / float32(vh)
	}

	world := mgl32.Ident4()
	if tr := c.Transform(); tr != nil {
		world = tr.LocalToWorld()
	}
	if c.customView != nil {
		c.view = *c.customView
		world = c.view.Inv()
	} else {
		c.view = world.Inv()
	}
	c.position = world.Col(3).Vec3()
	c.forward = world.Mul4x1(mgl32.Vec4{0, 0, -1, 0}).Vec3().Normalize()
	c.up = world.Mul4x1(mgl32.Vec4{0, 1, 0, 0}).Vec3().Normalize()

	switch {
	case c.customProjection != nil:
		c.proj = *c.customProjection
	case c.projection == ProjectionOrthographic:
		c.proj = common.Orthographic(c.size, c.resolvedAspect, c.near, c.far)
	default:
		c.proj = common.Perspective(c.fov, c.resolvedAspect, c.near, c.far)
	}

	c.viewProj = c.proj.Mul4(c.view)
	c.frustum = common.ExtractFrustum(c.viewProj)
}

func (c *Camera) View() mgl32.Mat4             { return c.view }
func (c *Camera) ProjectionMatrix() mgl32.Mat4 { return c.proj }
func (c *Camera) ViewProjection() mgl32.Mat4   { return c.viewProj }
func (c *Camera) Frustum() common.Frustum      { return c.frustum }
func (c *Camera) Position() mgl32.Vec3         { return c.position }
func (c *Camera) Forward() mgl32.Vec3          { return c.forward }
func (c *Camera) Up() mgl32.Vec3               { return c.up }
func (c *Camera) Aspect() float32              { return c.resolvedAspect }

// PixelSize returns the viewport size in pixels computed by the last Update.
func (c *Camera) PixelSize() (int, int) { return c.pixelWidth, c.pixelHeight }

// PixelViewport returns the viewport rectangle in pixels of a target of the given size.
func (c *Camera) PixelViewport(width, height int) (x, y, w, h int) {
	x = int(c.viewport[0] * float32(width))
	y = int(c.viewport[1] * float32(height))
	w = max(int(c.viewport[2]*float32(width)), 1)
	h = max(int(c.viewport[3]*float32(height)), 1)
	return
}

// LogDepthFC returns the logarithmic depth constant 2 / log2(far + 1).
func (c *Camera) LogDepthFC() float32 {
	return float32(2.0 / math.Log2(float64(c.far)+1))
}

// Lists returns the draw lists built by the last Collect call.
func (c *Camera) Lists() *DrawLists { return &c.lists }
