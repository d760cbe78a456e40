package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-ecs/engine/camera"
	"github.com/Carmen-Shannon/oxy-ecs/engine/model"
	"github.com/Carmen-Shannon/oxy-ecs/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-ecs/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

const (
	// uniformAlignment is the largest minUniformBufferOffsetAlignment WebGPU allows, so offsets
	// aligned to it are valid on every adapter.
	uniformAlignment = 256

	defaultArenaSize = 1 << 20

	depthFormat        = wgpu.TextureFormatDepth24Plus
	renderTargetFormat = wgpu.TextureFormatRGBA16Float
)

var errNoFrame = errors.New("renderer: previous frame surface not yet presented")

// WGPUDevice is a Device presenting to a window surface.
type WGPUDevice interface {
	Device

	// Resize reconfigures the surface after the window size changed.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	//
	// Returns:
	//   - error: an error if an attachment could not be created
	Resize(width, height int) error

	// Release frees every GPU object owned by the device.
	Release()
}

// wgpuDevice records renderer commands with WebGPU. Uniform blocks written during a frame are
// packed into one buffer and bound with dynamic offsets; bindings are applied lazily at draw time
// so they survive pass switches.
type wgpuDevice struct {
	mu  sync.Mutex
	log *zap.Logger

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface
	device   *wgpu.Device
	queue    *wgpu.Queue

	surfaceFormat wgpu.TextureFormat
	width, height int
	presentMode   wgpu.PresentMode
	sampleCount   MSAASampleCount
	forceFallback bool

	msaaTexture  *wgpu.Texture
	msaaView     *wgpu.TextureView
	depthTexture *wgpu.Texture
	depthView    *wgpu.TextureView

	encoder      *wgpu.CommandEncoder
	pass         *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
	passTarget   *wgpuRenderTarget

	arena   uniformArena
	offsets map[[2]int]uint32

	program     *wgpuProgram
	state       pipeline.State
	pipelineSet bool
	meshes      map[uint64]*wgpuMesh
	mesh        *wgpuMesh
	meshBound   bool
}

var _ WGPUDevice = &wgpuDevice{}

// NewWGPUDevice creates a WebGPU device presenting to the surface described by surfaceDescriptor.
// It locks the calling goroutine to its OS thread; every later call must come from that goroutine.
//
// Parameters:
//   - surfaceDescriptor: the platform surface, usually from the window
//   - width: the initial surface width in pixels
//   - height: the initial surface height in pixels
//   - options: variadic list of DeviceBuilderOption functions
//
// Returns:
//   - WGPUDevice: the device
//   - error: an error if no adapter or device could be acquired
func NewWGPUDevice(surfaceDescriptor *wgpu.SurfaceDescriptor, width, height int, options ...DeviceBuilderOption) (WGPUDevice, error) {
	runtime.LockOSThread()
	d := &wgpuDevice{
		log:         zap.NewNop(),
		presentMode: wgpu.PresentModeFifo,
		sampleCount: MSAA4x,
		offsets:     make(map[[2]int]uint32),
		meshes:      make(map[uint64]*wgpuMesh),
	}
	for _, opt := range options {
		opt(d)
	}

	d.instance = wgpu.CreateInstance(nil)
	d.surface = d.instance.CreateSurface(surfaceDescriptor)

	adapter, err := d.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: d.forceFallback,
		CompatibleSurface:    d.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	d.adapter = adapter

	limits := wgpu.DefaultLimits()
	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label:          "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{Limits: limits},
	})
	if err != nil {
		return nil, fmt.Errorf("request device: %w", err)
	}
	d.device = device
	d.queue = device.GetQueue()

	if err := d.Resize(width, height); err != nil {
		return nil, err
	}
	if err := d.arena.grow(d.device, defaultArenaSize); err != nil {
		return nil, err
	}
	return d, nil
}

// Resize reconfigures the surface and its multisample and depth attachments.
func (d *wgpuDevice) Resize(width, height int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	width, height = max(width, 1), max(height, 1)
	capabilities := d.surface.GetCapabilities(d.adapter)
	d.surfaceFormat = capabilities.Formats[0]
	d.surface.Configure(d.adapter, d.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      d.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: d.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
	d.width, d.height = width, height

	d.releaseAttachments()
	count := uint32(d.sampleCount)
	if count > 1 {
		tex, view, err := d.createTexture("MSAA Texture", width, height, count, d.surfaceFormat, wgpu.TextureUsageRenderAttachment)
		if err != nil {
			return err
		}
		d.msaaTexture, d.msaaView = tex, view
	}
	tex, view, err := d.createTexture("Depth Texture", width, height, count, depthFormat, wgpu.TextureUsageRenderAttachment)
	if err != nil {
		return err
	}
	d.depthTexture, d.depthView = tex, view
	return nil
}

func (d *wgpuDevice) releaseAttachments() {
	if d.msaaView != nil {
		d.msaaView.Release()
		d.msaaTexture.Release()
		d.msaaView, d.msaaTexture = nil, nil
	}
	if d.depthView != nil {
		d.depthView.Release()
		d.depthTexture.Release()
		d.depthView, d.depthTexture = nil, nil
	}
}

func (d *wgpuDevice) createTexture(label string, width, height int, samples uint32, format wgpu.TextureFormat, usage wgpu.TextureUsage) (*wgpu.Texture, *wgpu.TextureView, error) {
	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   samples,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create %s: %w", label, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, nil, fmt.Errorf("create %s view: %w", label, err)
	}
	return tex, view, nil
}

func (d *wgpuDevice) Size() (int, int) { return d.width, d.height }

// CompileProgram creates the shader modules and pipeline layout of p. Render pipelines are
// created on first use for each fixed-function state and attachment format.
func (d *wgpuDevice) CompileProgram(p *shader.Program) error {
	refl := p.Reflection()
	if refl == nil {
		return fmt.Errorf("%w: %s has no reflection", shader.ErrCompileFailed, p.ShaderName())
	}
	prog := &wgpuProgram{
		reflection: refl,
		pipelines:  make(map[pipelineKey]*wgpu.RenderPipeline),
	}

	var err error
	label := fmt.Sprintf("%s#%d", p.ShaderName(), p.ID())
	prog.vs, err = d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          label + " vertex",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: p.Source(shader.StageVertex)},
	})
	if err != nil {
		return fmt.Errorf("%w: vertex module: %w", shader.ErrCompileFailed, err)
	}
	prog.fs, err = d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          label + " fragment",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: p.Source(shader.StageFragment)},
	})
	if err != nil {
		prog.release()
		return fmt.Errorf("%w: fragment module: %w", shader.ErrCompileFailed, err)
	}

	maxGroup := -1
	for g := range refl.BindGroupLayouts {
		maxGroup = max(maxGroup, g)
	}
	prog.layouts = make([]*wgpu.BindGroupLayout, maxGroup+1)
	prog.entries = make([][]wgpu.BindGroupLayoutEntry, maxGroup+1)
	for g := range prog.layouts {
		desc := refl.BindGroupLayouts[g]
		entries := make([]wgpu.BindGroupLayoutEntry, len(desc.Entries))
		for i, e := range desc.Entries {
			e.Buffer.HasDynamicOffset = true
			entries[i] = e
		}
		layout, err := d.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
			Label:   fmt.Sprintf("%s group %d", label, g),
			Entries: entries,
		})
		if err != nil {
			prog.release()
			return fmt.Errorf("%w: bind group layout %d: %w", shader.ErrCompileFailed, g, err)
		}
		prog.layouts[g] = layout
		prog.entries[g] = entries
	}

	prog.layout, err = d.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            label,
		BindGroupLayouts: prog.layouts,
	})
	if err != nil {
		prog.release()
		return fmt.Errorf("%w: pipeline layout: %w", shader.ErrCompileFailed, err)
	}
	prog.label = label
	p.SetHandle(prog, prog.release)
	return nil
}

func (d *wgpuDevice) BeginFrame() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.frameSurface != nil {
		return errNoFrame
	}
	surfaceTexture, err := d.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}
	encoder, err := d.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}
	d.encoder = encoder
	d.frameSurface = surfaceTexture
	d.frameView = view
	d.arena.reset()
	clear(d.offsets)
	return nil
}

func (d *wgpuDevice) BeginPass(target camera.RenderTarget, c Clear) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.encoder == nil {
		return
	}
	d.endPassLocked()

	colorLoad, depthLoad := wgpu.LoadOpLoad, wgpu.LoadOpLoad
	if c.Color {
		colorLoad = wgpu.LoadOpClear
	}
	if c.Depth {
		depthLoad = wgpu.LoadOpClear
	}
	color := wgpu.RenderPassColorAttachment{
		LoadOp:  colorLoad,
		StoreOp: wgpu.StoreOpStore,
		ClearValue: wgpu.Color{
			R: float64(c.Value[0]), G: float64(c.Value[1]), B: float64(c.Value[2]), A: float64(c.Value[3]),
		},
	}
	depth := &wgpu.RenderPassDepthStencilAttachment{
		DepthLoadOp:     depthLoad,
		DepthStoreOp:    wgpu.StoreOpStore,
		DepthClearValue: 1.0,
	}

	rt, _ := target.(*wgpuRenderTarget)
	if rt != nil {
		color.View = rt.colorView
		depth.View = rt.depthView
	} else {
		if d.sampleCount > 1 {
			color.View = d.msaaView
			color.ResolveTarget = d.frameView
		} else {
			color.View = d.frameView
		}
		depth.View = d.depthView
	}

	d.pass = d.encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments:       []wgpu.RenderPassColorAttachment{color},
		DepthStencilAttachment: depth,
	})
	d.passTarget = rt
	d.pipelineSet = false
	d.meshBound = false
}

func (d *wgpuDevice) EndPass() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.endPassLocked()
}

func (d *wgpuDevice) endPassLocked() {
	if d.pass == nil {
		return
	}
	d.pass.End()
	d.pass.Release()
	d.pass = nil
}

func (d *wgpuDevice) SetViewport(v Viewport) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pass == nil || v.Width <= 0 || v.Height <= 0 {
		return
	}
	d.pass.SetViewport(float32(v.X), float32(v.Y), float32(v.Width), float32(v.Height), 0, 1)
}

func (d *wgpuDevice) SetProgram(p *shader.Program, s pipeline.State) {
	d.mu.Lock()
	defer d.mu.Unlock()
	prog, _ := p.Handle().(*wgpuProgram)
	if prog != d.program || s != d.state {
		d.pipelineSet = false
	}
	d.program = prog
	d.state = s
}

func (d *wgpuDevice) SetMesh(m model.Mesh) {
	d.mu.Lock()
	defer d.mu.Unlock()

	gm, ok := d.meshes[m.ID()]
	if !ok {
		gm = &wgpuMesh{mesh: m}
		d.meshes[m.ID()] = gm
	}
	if !gm.uploaded || gm.version != m.Version() {
		if err := gm.upload(d.device, d.queue); err != nil {
			d.log.Error("cannot upload mesh", zap.String("mesh", m.Name()), zap.Error(err))
			d.mesh = nil
			return
		}
	}
	if gm != d.mesh {
		d.meshBound = false
	}
	d.mesh = gm
}

func (d *wgpuDevice) WriteUniforms(block *shader.UniformBlock, data []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()

	offset, grown := d.arena.write(data)
	if grown {
		// recorded draws still read the old buffer; the new one starts with a copy of its contents
		d.arena.flush(d.queue)
		if err := d.arena.grow(d.device, d.arena.size*2); err != nil {
			d.log.Error("cannot grow the uniform arena", zap.Error(err))
			return
		}
		offset, _ = d.arena.write(data)
	}
	d.offsets[[2]int{block.Group, block.Binding}] = offset
}

func (d *wgpuDevice) Draw(m model.Mesh, sub model.SubMesh, instances int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pass == nil || d.program == nil || d.mesh == nil || d.mesh.mesh != m {
		return
	}
	if !d.pipelineSet {
		rp, err := d.program.pipeline(d.device, d.state, d.colorFormat(), d.samples())
		if err != nil {
			d.log.Error("cannot create render pipeline", zap.String("program", d.program.label), zap.Error(err))
			return
		}
		d.pass.SetPipeline(rp)
		d.pipelineSet = true
	}
	if err := d.bindUniforms(); err != nil {
		d.log.Error("cannot bind uniforms", zap.String("program", d.program.label), zap.Error(err))
		return
	}
	if !d.meshBound {
		d.pass.SetVertexBuffer(0, d.mesh.vertices, 0, wgpu.WholeSize)
		if d.mesh.indices != nil {
			d.pass.SetIndexBuffer(d.mesh.indices, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		}
		d.meshBound = true
	}

	count := uint32(max(instances, 1))
	if d.mesh.indices != nil {
		d.pass.DrawIndexed(sub.Count, count, sub.Start, 0, 0)
	} else {
		d.pass.Draw(sub.Count, count, sub.Start, 0)
	}
}

// bindUniforms sets every bind group of the bound program at the offsets of the latest writes.
func (d *wgpuDevice) bindUniforms() error {
	prog := d.program
	if err := prog.bindGroups(d.device, &d.arena); err != nil {
		return err
	}
	for g, bg := range prog.groups {
		entries := prog.entries[g]
		dynamic := prog.dynamic[g][:0]
		for _, e := range entries {
			dynamic = append(dynamic, d.offsets[[2]int{g, int(e.Binding)}])
		}
		prog.dynamic[g] = dynamic
		d.pass.SetBindGroup(uint32(g), bg, dynamic)
	}
	return nil
}

func (d *wgpuDevice) colorFormat() wgpu.TextureFormat {
	if d.passTarget != nil {
		return renderTargetFormat
	}
	return d.surfaceFormat
}

func (d *wgpuDevice) samples() uint32 {
	if d.passTarget != nil {
		return 1
	}
	return uint32(d.sampleCount)
}

func (d *wgpuDevice) EndFrame() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.encoder == nil {
		return
	}
	d.endPassLocked()
	d.arena.flush(d.queue)

	commandBuffer, err := d.encoder.Finish(nil)
	d.encoder.Release()
	d.encoder = nil
	if err != nil {
		d.log.Error("cannot finish frame", zap.Error(err))
	} else {
		d.queue.Submit(commandBuffer)
		commandBuffer.Release()
		d.surface.Present()
	}

	d.frameView.Release()
	d.frameSurface.Release()
	d.frameView = nil
	d.frameSurface = nil
	d.arena.releaseRetired()
	d.sweepMeshes()
}

// sweepMeshes frees the buffers of disposed meshes.
func (d *wgpuDevice) sweepMeshes() {
	for id, gm := range d.meshes {
		if gm.mesh.IsDisposed() {
			gm.release()
			delete(d.meshes, id)
			if d.mesh == gm {
				d.mesh = nil
			}
		}
	}
}

func (d *wgpuDevice) NewRenderTarget(width, height int) (camera.RenderTarget, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	rt := &wgpuRenderTarget{width: width, height: height}
	var err error
	rt.color, rt.colorView, err = d.createTexture("Render Target", width, height, 1, renderTargetFormat,
		wgpu.TextureUsageRenderAttachment|wgpu.TextureUsageTextureBinding)
	if err != nil {
		return nil, err
	}
	rt.depth, rt.depthView, err = d.createTexture("Render Target Depth", width, height, 1, depthFormat,
		wgpu.TextureUsageRenderAttachment)
	if err != nil {
		rt.Release()
		return nil, err
	}
	return rt, nil
}

func (d *wgpuDevice) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for id, gm := range d.meshes {
		gm.release()
		delete(d.meshes, id)
	}
	d.arena.release()
	d.releaseAttachments()
	if d.queue != nil {
		d.queue.Release()
	}
	if d.device != nil {
		d.device.Release()
	}
	if d.adapter != nil {
		d.adapter.Release()
	}
	if d.surface != nil {
		d.surface.Release()
	}
	if d.instance != nil {
		d.instance.Release()
	}
}
