package renderer

import (
	"github.com/Carmen-Shannon/oxy-ecs/common"
	"github.com/Carmen-Shannon/oxy-ecs/engine/camera"
	"github.com/Carmen-Shannon/oxy-ecs/engine/game_object"
	"github.com/Carmen-Shannon/oxy-ecs/engine/light"
	"github.com/Carmen-Shannon/oxy-ecs/engine/model"
	"github.com/Carmen-Shannon/oxy-ecs/engine/renderer/draw_call"
	"github.com/Carmen-Shannon/oxy-ecs/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-ecs/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-ecs/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-ecs/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Renderer turns the draw calls of a context into device commands. It keeps the bound
// program and the identity of the objects each uniform scope was last uploaded for, so a
// draw only re-uploads scopes whose source changed. Switching programs invalidates every
// scope. Not safe for concurrent use.
type Renderer struct {
	log   *zap.Logger
	debug bool

	device       Device
	state        *RenderState
	drawCalls    *draw_call.Collector
	cameraLights *CameraLightCollector

	defaultScene  scene.Scene
	shadowCamera  *camera.Camera
	depthMaterial material.Material
	skyboxMesh    model.Mesh

	program              *shader.Program
	programState         pipeline.State
	cacheScene           scene.Scene
	cacheCamera          *camera.Camera
	cacheLight           *light.Light
	cacheMesh            model.Mesh
	cacheMeshVersion     uint64
	cacheSubMesh         int
	cacheMaterial        material.Material
	cacheMaterialVersion uint64
	forceUpdate          bool

	currentScene       scene.Scene
	currentCamera      *camera.Camera
	currentShadowLight *light.Light
	shadowsActive      bool
	passOpen           bool

	staging       []byte
	lightData     [light.KindCount][]float32
	shadowCasters []*light.Light

	frameDrawCalls int
}

// NewRenderer creates a Renderer recording into device.
//
// Parameters:
//   - device: the GPU backend
//   - drawCalls: the draw calls to render
//   - cameraLights: the cameras and lights to render with; its RenderState is shared
//   - options: variadic list of RendererBuilderOption functions
//
// Returns:
//   - *Renderer: the new renderer
func NewRenderer(device Device, drawCalls *draw_call.Collector, cameraLights *CameraLightCollector, options ...RendererBuilderOption) *Renderer {
	if device == nil || drawCalls == nil || cameraLights == nil {
		panic("renderer: device, draw call collector and camera/light collector are required")
	}
	r := &Renderer{
		log:          zap.NewNop(),
		device:       device,
		state:        cameraLights.state,
		drawCalls:    drawCalls,
		cameraLights: cameraLights,
		cacheSubMesh: -1,
		forceUpdate:  true,
	}
	for _, opt := range options {
		opt(r)
	}
	if r.defaultScene == nil {
		r.defaultScene = scene.NewScene("default")
	}
	if r.depthMaterial == nil {
		r.depthMaterial = material.NewMaterial(shader.NewShader("depth", shader.DepthSource, shader.WithLogger(r.log)),
			material.WithName("shadow depth"))
	}
	r.depthMaterial.Retain()
	r.skyboxMesh = model.NewCube("skybox", 2)
	r.skyboxMesh.Retain()
	return r
}

func (r *Renderer) Device() Device                      { return r.device }
func (r *Renderer) State() *RenderState                 { return r.state }
func (r *Renderer) DrawCalls() *draw_call.Collector     { return r.drawCalls }
func (r *Renderer) CameraLights() *CameraLightCollector { return r.cameraLights }
func (r *Renderer) DefaultScene() scene.Scene           { return r.defaultScene }
func (r *Renderer) Program() *shader.Program            { return r.program }
func (r *Renderer) CurrentCamera() *camera.Camera       { return r.currentCamera }
func (r *Renderer) SetCurrentCamera(c *camera.Camera)   { r.currentCamera = c }
func (r *Renderer) CurrentShadowLight() *light.Light    { return r.currentShadowLight }
func (r *Renderer) SetShadowCamera(c *camera.Camera)    { r.shadowCamera = c }
func (r *Renderer) ShadowCamera() *camera.Camera        { return r.shadowCamera }

// LastFrameDrawCalls returns the number of draws issued by the last completed frame.
func (r *Renderer) LastFrameDrawCalls() int { return r.frameDrawCalls }

// Release frees the renderer's own materials and meshes.
func (r *Renderer) Release() {
	r.depthMaterial.Release()
	r.skyboxMesh.Release()
}

// ResetProgramCache forgets the bound program and every cached scope identity, so the next
// draw rebinds and re-uploads everything.
func (r *Renderer) ResetProgramCache() {
	r.program = nil
	r.resetScopeCaches()
}

func (r *Renderer) resetScopeCaches() {
	r.cacheScene = nil
	r.cacheCamera = nil
	r.cacheLight = nil
	r.cacheMesh = nil
	r.cacheMeshVersion = 0
	r.cacheSubMesh = -1
	r.cacheMaterial = nil
	r.cacheMaterialVersion = 0
	r.forceUpdate = true
}

// Draw issues one draw call. The override material, when set, replaces the draw call's
// material. Draws with a missing or disposed mesh or material are skipped, as are draws
// vetoed by a behaviour of the entity.
//
// Parameters:
//   - d: the draw call
//   - override: the replacement material, or nil
//
// Returns:
//   - bool: whether a draw was issued
func (r *Renderer) Draw(d *draw_call.DrawCall, override material.Material) bool {
	mat := d.Material
	if override != nil {
		mat = override
	}
	mesh := d.Mesh
	if mesh == nil || mat == nil {
		return false
	}
	if mesh.IsDisposed() || mat.IsDisposed() {
		if r.debug {
			r.log.Error("draw call references a disposed resource",
				zap.String("mesh", mesh.Name()),
				zap.Bool("meshDisposed", mesh.IsDisposed()),
				zap.String("material", mat.Name()),
				zap.Bool("materialDisposed", mat.IsDisposed()))
		}
		return false
	}
	if d.Entity != nil && !game_object.AllowRender(d.Entity) {
		return false
	}
	sub := mesh.SubMesh(d.SubMeshIndex)
	if sub.Count == 0 {
		return false
	}

	scn := r.sceneOf(d)
	program := r.updateProgram(d, mat, scn)
	if program == nil {
		return false
	}

	if mesh != r.cacheMesh || mesh.Version() != r.cacheMeshVersion || d.SubMeshIndex != r.cacheSubMesh {
		r.device.SetMesh(mesh)
		r.cacheMesh = mesh
		r.cacheMeshVersion = mesh.Version()
		r.cacheSubMesh = d.SubMeshIndex
	}

	r.updateUniforms(d, mat, scn, program)

	r.device.Draw(mesh, sub, d.Instances)
	if d.DrawCount >= 0 {
		d.DrawCount++
	}
	r.drawCalls.CountDraw()
	return true
}

func (r *Renderer) sceneOf(d *draw_call.DrawCall) scene.Scene {
	if d.Entity != nil {
		if s := d.Entity.Scene(); s != nil {
			return s
		}
	}
	if r.currentScene != nil {
		return r.currentScene
	}
	return r.defaultScene
}

// Prewarm prepares the programs mat needs in scn for every combination of the renderer
// feature defines, pre-processing sources on a pool of workers. Light-count defines are taken
// from the current state, so call it after the lights of scn exist.
//
// Parameters:
//   - mat: the material whose shader variants are prepared
//   - scn: the scene the material is drawn in; nil uses the default scene
//   - workers: the worker pool size
//
// Returns:
//   - int: the number of programs compiled
func (r *Renderer) Prewarm(mat material.Material, scn scene.Scene, workers int) int {
	if mat == nil || mat.Shader() == nil {
		return 0
	}
	if scn == nil {
		scn = r.defaultScene
	}
	var variants []shader.Variant
	seen := make(map[shader.Mask]struct{})
	for _, shadows := range []bool{false, true} {
		for _, lightmap := range []bool{false, true} {
			for _, instancing := range []bool{false, true} {
				features := r.state.FeatureDefines(shadows, lightmap, instancing)
				key := shader.KeyOf(r.state.Defines(), features, mat.Defines(), scn.Defines())
				if _, ok := seen[key]; ok {
					continue
				}
				seen[key] = struct{}{}
				variants = append(variants, shader.Variant{
					Defines: shader.Link(r.state.Defines(), features, mat.Defines(), scn.Defines()),
				})
			}
		}
	}
	return mat.Shader().Programs().Prewarm(variants, r.state.Chunks(), r.device, workers)
}

// updateProgram resolves the program of (renderer, material, scene) defines and binds it.
func (r *Renderer) updateProgram(d *draw_call.DrawCall, mat material.Material, scn scene.Scene) *shader.Program {
	var features *shader.Defines
	if d.Renderer != nil {
		features = r.state.FeatureDefines(
			d.Renderer.ReceiveShadows() && r.shadowsActive,
			d.Renderer.LightmapIndex() >= 0,
			d.Instances > 0)
	} else {
		features = r.state.FeatureDefines(false, false, d.Instances > 0)
	}

	key := shader.KeyOf(r.state.Defines(), features, mat.Defines(), scn.Defines())
	programs := mat.Shader().Programs()
	program, ok := programs.Lookup(key)
	if !ok {
		defines := shader.Link(r.state.Defines(), features, mat.Defines(), scn.Defines())
		program = programs.Get(key, defines, r.state.Chunks(), r.device)
	}
	if program == nil {
		return nil
	}

	switch {
	case program != r.program:
		r.device.SetProgram(program, mat.State())
		r.program = program
		r.programState = mat.State()
		r.resetScopeCaches()
	case mat.State() != r.programState:
		r.device.SetProgram(program, mat.State())
		r.programState = mat.State()
	}
	return program
}

func (r *Renderer) updateUniforms(d *draw_call.DrawCall, mat material.Material, scn scene.Scene, program *shader.Program) {
	refl := program.Reflection()
	if r.forceUpdate {
		r.upload(refl, shader.ScopeGlobal, func(b *shader.UniformBlock, buf []byte) { r.fillGlobal(b, buf, scn) })
		r.forceUpdate = false
	}
	if scn != r.cacheScene {
		r.upload(refl, shader.ScopeScene, func(b *shader.UniformBlock, buf []byte) { fillScene(b, buf, scn) })
		r.cacheScene = scn
	}
	if r.currentCamera != r.cacheCamera {
		r.upload(refl, shader.ScopeCamera, r.fillCamera)
		r.cacheCamera = r.currentCamera
	}
	if r.currentShadowLight != r.cacheLight {
		r.upload(refl, shader.ScopeShadow, r.fillShadow)
		r.cacheLight = r.currentShadowLight
	}
	r.upload(refl, shader.ScopeModel, func(b *shader.UniformBlock, buf []byte) { r.fillModel(b, buf, d) })
	if mat != r.cacheMaterial || mat.Version() != r.cacheMaterialVersion {
		r.upload(refl, shader.ScopeMaterial, func(b *shader.UniformBlock, buf []byte) { fillMaterial(b, buf, mat) })
		r.cacheMaterial = mat
		r.cacheMaterialVersion = mat.Version()
	}
}

// RenderFrame renders one frame: shadow passes, then every camera in order. Without cameras
// the surface is cleared to black.
func (r *Renderer) RenderFrame() {
	if err := r.device.BeginFrame(); err != nil {
		r.log.Warn("skipping frame", zap.Error(err))
		return
	}
	r.state.ResetPassState()
	r.prepareLights()

	cameras := r.cameraLights.Cameras()
	if len(cameras) > 0 {
		r.shadowsActive = false
		if r.state.ShadowsEnabled() {
			r.renderShadows(cameras[0])
		}
		for _, cam := range cameras {
			if cam.RenderTarget() != nil || sceneVisible(cam) {
				r.Render(cam)
			}
		}
	} else {
		r.beginPass(nil, Clear{Color: true, Depth: true, Value: mgl32.Vec4{0, 0, 0, 1}})
	}
	r.endPass()
	r.device.EndFrame()
	r.ResetProgramCache()
	r.frameDrawCalls = r.drawCalls.DrawCallCount()
}

func sceneVisible(cam *camera.Camera) bool {
	e := cam.Entity()
	if e == nil || e.Scene() == nil {
		return true
	}
	return e.Scene().Active()
}

// prepareLights packs the light uniforms of this frame. A changed light count changes the
// program keys, so the bound program is dropped.
func (r *Renderer) prepareLights() {
	if r.cameraLights.ConsumeLightCountDirty() != 0 {
		r.ResetProgramCache()
	}
	for kind := range light.KindCount {
		r.lightData[kind] = r.cameraLights.PackLights(r.lightData[kind][:0], kind)
	}
}

// Render draws the scene seen by cam: clear, skybox, opaque then transparent draw calls.
// A behaviour on the camera entity may veto the whole camera.
//
// Parameters:
//   - cam: the camera
//
// Returns:
//   - bool: false if the camera was vetoed
func (r *Renderer) Render(cam *camera.Camera) bool {
	if e := cam.Entity(); e != nil && !game_object.AllowRender(e) {
		return false
	}
	target := cam.RenderTarget()
	w, h := r.targetSize(target)
	cam.Update(w, h)
	cam.Collect(r.drawCalls.DrawCalls())

	r.currentCamera = cam
	r.currentScene = nil
	if e := cam.Entity(); e != nil {
		r.currentScene = e.Scene()
	}

	clear := Clear{Value: cam.BackgroundColor()}
	switch cam.ClearMode() {
	case camera.ClearSkybox:
		clear.Depth = true
		clear.Color = cam.Skybox() == nil
	case camera.ClearSolidColor:
		clear.Color, clear.Depth = true, true
	case camera.ClearDepthOnly:
		clear.Depth = true
	}
	if r.state.SetRenderTarget(target) || clear.Color || clear.Depth || !r.passOpen {
		r.beginPass(target, clear)
	}
	x, y, vw, vh := cam.PixelViewport(w, h)
	if vp := (Viewport{X: x, Y: y, Width: vw, Height: vh}); r.state.SetViewport(vp) {
		r.device.SetViewport(vp)
	}

	if cam.ClearMode() == camera.ClearSkybox && cam.Skybox() != nil {
		sky := r.drawCalls.SkyboxDrawCall()
		sky.Mesh = r.skyboxMesh
		sky.Material = cam.Skybox()
		sky.Matrix = mgl32.Translate3D(cam.Position().Elem())
		r.Draw(sky, nil)
	}

	override := cam.OverrideMaterial()
	lists := cam.Lists()
	for _, d := range lists.Opaque {
		r.Draw(d, override)
	}
	for _, d := range lists.Transparent {
		r.Draw(d, override)
	}

	r.currentCamera = nil
	r.currentScene = nil
	return true
}

// renderShadows renders the depth of every shadow-casting light into its shadow target.
// Point lights render six faces tiled three by two into one target.
func (r *Renderer) renderShadows(main *camera.Camera) {
	sc := r.shadowCamera
	if sc == nil {
		return
	}
	r.shadowCasters = r.cameraLights.ShadowCasters(r.shadowCasters[:0])
	if len(r.shadowCasters) == 0 {
		return
	}

	var center mgl32.Vec3
	if tr := main.Transform(); tr != nil {
		center = tr.WorldPosition()
	}

	for _, l := range r.shadowCasters {
		size := common.Coalesce(l.Shadow().MapSize, light.ShadowMapResolution)
		cols, rows := 1, 1
		if l.ShadowFaces() == 6 {
			cols, rows = 3, 2
		}
		target := l.ShadowTarget()
		if target == nil || target.Width() != size*cols || target.Height() != size*rows {
			t, err := r.device.NewRenderTarget(size*cols, size*rows)
			if err != nil {
				r.log.Error("cannot create shadow target", zap.Stringer("light", l.Kind()), zap.Error(err))
				continue
			}
			target = t
			l.SetShadowTarget(t)
		}

		r.state.SetRenderTarget(target)
		r.beginPass(target, Clear{Color: true, Depth: true, Value: mgl32.Vec4{1, 1, 1, 1}})
		r.currentShadowLight = l
		for face := range l.ShadowFaces() {
			view, proj := l.ShadowMatrices(face, center)
			sc.SetCustomMatrices(&view, &proj)
			sc.Update(size, size)
			sc.CollectShadowCasters(r.drawCalls.DrawCalls())

			vp := Viewport{X: (face % cols) * size, Y: (face / cols) * size, Width: size, Height: size}
			if r.state.SetViewport(vp) {
				r.device.SetViewport(vp)
			}
			// same camera object, new matrices
			r.currentCamera = sc
			r.cacheCamera = nil
			for _, d := range sc.Lists().ShadowCasters {
				r.Draw(d, r.depthMaterial)
			}
		}
		sc.ClearCustomMatrices()
	}
	r.currentShadowLight = nil
	r.currentCamera = nil
	r.shadowsActive = true
}

func (r *Renderer) beginPass(target camera.RenderTarget, clear Clear) {
	r.endPass()
	r.device.BeginPass(target, clear)
	r.state.viewport = Viewport{}
	r.passOpen = true
}

func (r *Renderer) endPass() {
	if r.passOpen {
		r.device.EndPass()
		r.passOpen = false
	}
}

func (r *Renderer) targetSize(t camera.RenderTarget) (int, int) {
	if t != nil {
		return t.Width(), t.Height()
	}
	return r.device.Size()
}
