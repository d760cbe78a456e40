package renderer

import (
	"fmt"
	"testing"

	"github.com/Carmen-Shannon/oxy-ecs/engine/camera"
	"github.com/Carmen-Shannon/oxy-ecs/engine/ecs"
	"github.com/Carmen-Shannon/oxy-ecs/engine/game_object"
	"github.com/Carmen-Shannon/oxy-ecs/engine/light"
	"github.com/Carmen-Shannon/oxy-ecs/engine/model"
	"github.com/Carmen-Shannon/oxy-ecs/engine/renderer/draw_call"
	"github.com/Carmen-Shannon/oxy-ecs/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-ecs/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-ecs/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-ecs/engine/system"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTarget struct{ w, h int }

func (t fakeTarget) Width() int  { return t.w }
func (t fakeTarget) Height() int { return t.h }

// recordingDevice counts the commands a Renderer issues.
type recordingDevice struct {
	failCompile bool

	compiles  int
	programs  int
	meshes    int
	draws     int
	passes    int
	viewports int
	frames    int
	uniforms  map[shader.UniformScope]int
	targets   int
}

var _ Device = &recordingDevice{}

func newRecordingDevice() *recordingDevice {
	return &recordingDevice{uniforms: make(map[shader.UniformScope]int)}
}

func (d *recordingDevice) CompileProgram(p *shader.Program) error {
	d.compiles++
	if d.failCompile {
		return fmt.Errorf("%w: rejected by test device", shader.ErrCompileFailed)
	}
	p.SetHandle(d.compiles, nil)
	return nil
}

func (d *recordingDevice) Size() (int, int)                                  { return 800, 600 }
func (d *recordingDevice) BeginFrame() error                                 { return nil }
func (d *recordingDevice) EndFrame()                                         { d.frames++ }
func (d *recordingDevice) BeginPass(camera.RenderTarget, Clear)              { d.passes++ }
func (d *recordingDevice) EndPass()                                          {}
func (d *recordingDevice) SetViewport(Viewport)                              { d.viewports++ }
func (d *recordingDevice) SetProgram(*shader.Program, pipeline.State)        { d.programs++ }
func (d *recordingDevice) SetMesh(model.Mesh)                                { d.meshes++ }
func (d *recordingDevice) Draw(model.Mesh, model.SubMesh, int)               { d.draws++ }
func (d *recordingDevice) WriteUniforms(b *shader.UniformBlock, data []byte) { d.uniforms[b.Scope]++ }

func (d *recordingDevice) NewRenderTarget(width, height int) (camera.RenderTarget, error) {
	d.targets++
	return fakeTarget{width, height}, nil
}

type fixture struct {
	ctx      *ecs.Context
	device   *recordingDevice
	services *Services
}

func newFixture() *fixture {
	ctx := ecs.NewContext()
	device := newRecordingDevice()
	return &fixture{ctx: ctx, device: device, services: NewServices(ctx.Registry(), device, nil)}
}

func (f *fixture) entity(t *testing.T, pos mgl32.Vec3) *ecs.Entity {
	t.Helper()
	e := f.ctx.CreateEntity()
	_, err := e.AddComponent(f.services.GameObjects.Transform, &game_object.TransformConfig{Position: pos})
	require.NoError(t, err)
	return e
}

func (f *fixture) camera(t *testing.T, options ...camera.CameraBuilderOption) *camera.Camera {
	t.Helper()
	c, err := f.entity(t, mgl32.Vec3{}).AddComponent(f.services.Cameras.Camera, options)
	require.NoError(t, err)
	return c.(*camera.Camera)
}

func (f *fixture) light(t *testing.T, kind light.Kind) *light.Light {
	t.Helper()
	c, err := f.entity(t, mgl32.Vec3{0, 5, 0}).AddComponent(f.services.Lights.Light, []light.LightBuilderOption{light.WithKind(kind)})
	require.NoError(t, err)
	return c.(*light.Light)
}

func (f *fixture) meshEntity(t *testing.T, mesh model.Mesh, mats ...material.Material) *ecs.Entity {
	t.Helper()
	e := f.entity(t, mgl32.Vec3{0, 0, -5})
	_, err := e.AddComponent(f.services.GameObjects.MeshFilter, mesh)
	require.NoError(t, err)
	_, err = e.AddComponent(f.services.GameObjects.MeshRenderer, &game_object.MeshRendererConfig{Materials: mats})
	require.NoError(t, err)
	return e
}

func (f *fixture) drawCall(mesh model.Mesh, mat material.Material, pos mgl32.Vec3) *draw_call.DrawCall {
	d := f.services.DrawCalls.Pool().Get()
	d.Owner = mesh
	d.Mesh = mesh
	d.Material = mat
	d.Matrix = mgl32.Translate3D(pos.Elem())
	return d
}

func (f *fixture) manager() *system.Manager {
	m := system.NewManager()
	f.services.RegisterSystems(m, f.ctx)
	return m
}

// splitMesh shares the cube's geometry between sub-meshes using the given material slots.
func splitMesh(name string, slots ...int) model.Mesh {
	cube := model.NewCube(name, 1)
	subs := make([]model.SubMesh, len(slots))
	for i, slot := range slots {
		subs[i] = model.SubMesh{Start: uint32(i * 6), Count: 6, Material: slot}
	}
	return model.NewMesh(name, cube.Vertices(), cube.Indices(), model.WithSubMeshes(subs...))
}

func TestDrawSkipsRedundantState(t *testing.T) {
	f := newFixture()
	r := f.services.Renderer
	cam := f.camera(t)
	cam.Update(800, 600)
	r.SetCurrentCamera(cam)

	mesh := model.NewCube("cube", 1)
	red := material.NewLambertMaterial("red", mgl32.Vec4{1, 0, 0, 1})

	first := f.drawCall(mesh, red, mgl32.Vec3{0, 0, -5})
	first.DrawCount = 0
	require.True(t, r.Draw(first, nil))
	require.True(t, r.Draw(f.drawCall(mesh, red, mgl32.Vec3{2, 0, -5}), nil))

	dev := f.device
	assert.Equal(t, 1, dev.compiles)
	assert.Equal(t, 1, dev.programs)
	assert.Equal(t, 1, dev.meshes)
	assert.Equal(t, 2, dev.draws)
	assert.Equal(t, 1, dev.uniforms[shader.ScopeGlobal])
	assert.Equal(t, 1, dev.uniforms[shader.ScopeCamera])
	assert.Equal(t, 1, dev.uniforms[shader.ScopeMaterial])
	assert.Equal(t, 2, dev.uniforms[shader.ScopeModel], "model uniforms follow every draw")
	assert.Equal(t, 1, first.DrawCount)
	assert.Equal(t, 2, f.services.DrawCalls.DrawCallCount())

	red.SetUniform("diffuse", mgl32.Vec4{0.5, 0, 0, 1})
	require.True(t, r.Draw(first, nil))
	assert.Equal(t, 2, dev.uniforms[shader.ScopeMaterial], "a new material version re-uploads")
	assert.Equal(t, 1, dev.programs)

	blue := material.NewLambertMaterial("blue", mgl32.Vec4{0, 0, 1, 1})
	require.True(t, r.Draw(f.drawCall(mesh, blue, mgl32.Vec3{}), nil))
	assert.Equal(t, 2, dev.compiles)
	assert.Equal(t, 2, dev.programs)
	assert.Equal(t, 2, dev.meshes, "a program switch invalidates every scope")
	assert.Equal(t, 2, dev.uniforms[shader.ScopeGlobal])
	assert.Equal(t, 2, dev.uniforms[shader.ScopeCamera])
}

func TestDrawReusesProgramsAcrossFrames(t *testing.T) {
	f := newFixture()
	r := f.services.Renderer
	mesh := model.NewCube("cube", 1)
	mat := material.NewLambertMaterial("m", mgl32.Vec4{1, 1, 1, 1})

	require.True(t, r.Draw(f.drawCall(mesh, mat, mgl32.Vec3{}), nil))
	r.ResetProgramCache()
	require.True(t, r.Draw(f.drawCall(mesh, mat, mgl32.Vec3{}), nil))

	assert.Equal(t, 1, f.device.compiles)
	assert.Equal(t, 1, mat.Shader().Programs().Compiles())
	assert.Equal(t, 2, f.device.programs, "the program is rebound after a reset")
}

func TestDrawRejectsUnusableInputs(t *testing.T) {
	f := newFixture()
	r := f.services.Renderer
	mat := material.NewLambertMaterial("m", mgl32.Vec4{1, 1, 1, 1})

	disposed := model.NewCube("gone", 1)
	disposed.Retain()
	require.True(t, disposed.Release())
	assert.False(t, r.Draw(f.drawCall(disposed, mat, mgl32.Vec3{}), nil))

	assert.False(t, r.Draw(f.drawCall(nil, mat, mgl32.Vec3{}), nil))

	mesh := model.NewCube("cube", 1)
	d := f.drawCall(mesh, mat, mgl32.Vec3{})
	d.SubMeshIndex = 3
	assert.False(t, r.Draw(d, nil), "an empty sub-mesh range draws nothing")

	f.device.failCompile = true
	assert.False(t, r.Draw(f.drawCall(mesh, mat, mgl32.Vec3{}), nil))
	assert.False(t, r.Draw(f.drawCall(mesh, mat, mgl32.Vec3{}), nil))
	assert.Equal(t, 1, f.device.compiles, "a failed variant is not recompiled")
	assert.Zero(t, f.device.draws)
}

func TestDrawUsesOverrideMaterial(t *testing.T) {
	f := newFixture()
	r := f.services.Renderer
	mesh := model.NewCube("cube", 1)
	mat := material.NewLambertMaterial("m", mgl32.Vec4{1, 1, 1, 1})
	override := material.NewLambertMaterial("override", mgl32.Vec4{0, 1, 0, 1})

	require.True(t, r.Draw(f.drawCall(mesh, mat, mgl32.Vec3{}), override))
	assert.Zero(t, mat.Shader().Programs().Len())
	assert.Equal(t, 1, override.Shader().Programs().Len())
}

func TestMeshRendererRebuildsOnMeshChange(t *testing.T) {
	f := newFixture()
	m := f.manager()
	a := material.NewLambertMaterial("a", mgl32.Vec4{1, 0, 0, 1})
	b := material.NewLambertMaterial("b", mgl32.Vec4{0, 1, 0, 1})

	e := f.meshEntity(t, splitMesh("m1", 0, 1), a, b)
	m.Update(1, false)

	dc := f.services.DrawCalls
	require.Len(t, dc.DrawCallsOf(e), 2)
	added, removed := dc.Added(), dc.Removed()

	filter := e.GetComponent(f.services.GameObjects.MeshFilter, false).(*game_object.MeshFilter)
	filter.SetMesh(splitMesh("m2", 0, 1, 1))

	assert.Equal(t, 2, dc.Removed()-removed)
	assert.Equal(t, 3, dc.Added()-added)
	calls := dc.DrawCallsOf(e)
	require.Len(t, calls, 3)
	assert.Equal(t, []material.Material{a, b, b}, []material.Material{calls[0].Material, calls[1].Material, calls[2].Material})
	assert.Equal(t, 3, dc.Len())
}

func TestMeshRendererMaterialSlots(t *testing.T) {
	f := newFixture()
	m := f.manager()
	a := material.NewLambertMaterial("a", mgl32.Vec4{1, 0, 0, 1})
	b := material.NewLambertMaterial("b", mgl32.Vec4{0, 1, 0, 1})

	e := f.meshEntity(t, splitMesh("m", 0, 4), a, b)
	m.Update(1, false)

	calls := f.services.DrawCalls.DrawCallsOf(e)
	require.Len(t, calls, 3, "slot 4 is skipped and the unused material draws every sub-mesh")
	assert.Same(t, a, calls[0].Material)
	assert.Same(t, b, calls[1].Material)
	assert.Same(t, b, calls[2].Material)
	assert.Equal(t, []int{0, 0, 1}, []int{calls[0].SubMeshIndex, calls[1].SubMeshIndex, calls[2].SubMeshIndex})

	mr := e.GetComponent(f.services.GameObjects.MeshRenderer, false).(*game_object.MeshRenderer)
	mr.SetMaterials(a)
	assert.Len(t, f.services.DrawCalls.DrawCallsOf(e), 1)

	e.Destroy()
	m.Update(1, false)
	assert.Zero(t, f.services.DrawCalls.Len())
}

func TestCameraSortPutsTargetsBeforeEqualOrder(t *testing.T) {
	f := newFixture()
	a := f.camera(t, camera.WithOrder(1))
	b := f.camera(t, camera.WithOrder(1), camera.WithRenderTarget(fakeTarget{256, 256}))
	c := f.camera(t, camera.WithOrder(0))

	cl := f.services.CameraLights
	cl.UpdateCameras([]*ecs.Entity{a.Entity(), b.Entity(), c.Entity()})
	assert.Equal(t, []*camera.Camera{c, b, a}, cl.Cameras())

	a.SetOrder(-1)
	cl.SortCameras()
	assert.Equal(t, []*camera.Camera{a, c, b}, cl.Cameras())

	b.SetEnabled(false)
	cl.UpdateCameras([]*ecs.Entity{a.Entity(), b.Entity(), c.Entity()})
	assert.Equal(t, []*camera.Camera{a, c}, cl.Cameras())
}

func TestLightCountDefines(t *testing.T) {
	f := newFixture()
	cl := f.services.CameraLights
	defines := f.services.Renderer.State().Defines()

	sun := f.light(t, light.KindDirectional)
	fill := f.light(t, light.KindDirectional)
	sky := f.light(t, light.KindHemisphere)
	entities := []*ecs.Entity{sun.Entity(), fill.Entity(), sky.Entity()}

	cl.UpdateLights(entities)
	v, ok := defines.Value(light.KindDirectional.Define())
	require.True(t, ok)
	assert.Equal(t, "2", v)
	assert.True(t, defines.Has(light.KindHemisphere.Define()))
	assert.False(t, defines.Has(light.KindPoint.Define()))
	assert.Equal(t, light.KindDirectional.DirtyBit()|light.KindHemisphere.DirtyBit(), cl.ConsumeLightCountDirty())
	assert.Zero(t, cl.LightCountDirty())

	assert.Len(t, cl.PackLights(nil, light.KindDirectional), 2*light.KindDirectional.Stride())
	assert.Equal(t, []*light.Light{sun, fill}, cl.LightsOf(light.KindDirectional))

	cl.UpdateLights(entities)
	assert.Zero(t, cl.LightCountDirty(), "unchanged counts stay clean")

	fill.SetEnabled(false)
	sky.SetEnabled(false)
	cl.UpdateLights(entities)
	v, _ = defines.Value(light.KindDirectional.Define())
	assert.Equal(t, "1", v)
	assert.False(t, defines.Has(light.KindHemisphere.Define()))
	assert.Equal(t, light.KindDirectional.DirtyBit()|light.KindHemisphere.DirtyBit(), cl.LightCountDirty())
	assert.Nil(t, cl.LightsOf(light.KindCount))
}

func TestShadowCasters(t *testing.T) {
	f := newFixture()
	cl := f.services.CameraLights
	sun := f.light(t, light.KindDirectional)
	sky := f.light(t, light.KindHemisphere)
	sun.SetCastShadows(true)
	sky.SetCastShadows(true)

	cl.UpdateLights([]*ecs.Entity{sun.Entity(), sky.Entity()})
	assert.Equal(t, []*light.Light{sun}, cl.ShadowCasters(nil), "hemisphere lights have no shadow views")
}

func TestRenderFrame(t *testing.T) {
	f := newFixture()
	m := f.manager()
	f.camera(t)
	f.meshEntity(t, model.NewCube("cube", 1), material.NewLambertMaterial("m", mgl32.Vec4{1, 1, 1, 1}))

	m.Update(1, true)

	dev := f.device
	assert.Equal(t, 1, dev.frames)
	assert.Equal(t, 1, dev.passes)
	assert.Equal(t, 1, dev.draws)
	assert.Equal(t, 1, f.services.Renderer.LastFrameDrawCalls())
	assert.Zero(t, f.services.DrawCalls.DrawCallCount(), "the statistic resets after the frame")

	rs, ok := system.Get[*RenderSystem](m)
	require.True(t, ok)
	assert.Equal(t, FrameStats{DrawCalls: 1, Cameras: 1, DrawCallsQueued: 1}, rs.Stats())

	m.Update(0, true)
	assert.Equal(t, 2, dev.frames)
	assert.Equal(t, 2, dev.draws)
	assert.Equal(t, 1, dev.compiles)
}

func TestRenderFrameWithoutCamerasClears(t *testing.T) {
	f := newFixture()
	m := f.manager()
	f.meshEntity(t, model.NewCube("cube", 1), material.NewLambertMaterial("m", mgl32.Vec4{1, 1, 1, 1}))

	m.Update(1, true)
	assert.Equal(t, 1, f.device.passes)
	assert.Zero(t, f.device.draws)
}

func TestRenderFrameShadowPass(t *testing.T) {
	f := newFixture()
	m := f.manager()
	f.camera(t)
	sun := f.light(t, light.KindDirectional)
	sun.SetCastShadows(true)
	e := f.meshEntity(t, model.NewCube("cube", 1), material.NewLambertMaterial("m", mgl32.Vec4{1, 1, 1, 1}))
	mr := e.GetComponent(f.services.GameObjects.MeshRenderer, false).(*game_object.MeshRenderer)
	mr.SetCastShadows(true)

	m.Update(1, true)

	dev := f.device
	assert.Equal(t, 1, dev.targets)
	require.NotNil(t, sun.ShadowTarget())
	assert.Equal(t, light.ShadowMapResolution, sun.ShadowTarget().Width())
	assert.Equal(t, 2, dev.passes, "one shadow pass and one camera pass")
	assert.Equal(t, 2, dev.draws)

	m.Update(0, true)
	assert.Equal(t, 1, dev.targets, "the shadow target is reused")
}

func TestPrewarmCompilesFeatureVariants(t *testing.T) {
	f := newFixture()
	mat := material.NewLambertMaterial("m", mgl32.Vec4{1, 1, 1, 1})

	n := f.services.Renderer.Prewarm(mat, nil, 2)
	assert.Equal(t, 8, n)
	assert.Equal(t, 8, f.device.compiles)

	assert.Zero(t, f.services.Renderer.Prewarm(mat, nil, 2), "cached variants are skipped")
	assert.Zero(t, f.services.Renderer.Prewarm(nil, nil, 2))
}

func TestPrewarmedVariantServesDrawWithShadowedDefine(t *testing.T) {
	f := newFixture()
	r := f.services.Renderer
	r.DefaultScene().Defines().Set("NUM_DIR_LIGHTS", 1)
	mat := material.NewLambertMaterial("m", mgl32.Vec4{1, 1, 1, 1}, material.WithDefines("NUM_DIR_LIGHTS 2"))

	require.Equal(t, 8, r.Prewarm(mat, nil, 1))
	require.True(t, r.Draw(f.drawCall(model.NewCube("cube", 1), mat, mgl32.Vec3{}), nil))
	assert.Equal(t, 8, f.device.compiles, "the draw finds the prewarmed program")
}
