package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-ecs/engine/camera"
	"github.com/Carmen-Shannon/oxy-ecs/engine/model"
	"github.com/Carmen-Shannon/oxy-ecs/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-ecs/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

type pipelineKey struct {
	state   pipeline.State
	format  wgpu.TextureFormat
	samples uint32
}

// wgpuProgram is the backend handle of a compiled shader.Program.
type wgpuProgram struct {
	label      string
	reflection *shader.Reflection
	vs, fs     *wgpu.ShaderModule
	layouts    []*wgpu.BindGroupLayout
	entries    [][]wgpu.BindGroupLayoutEntry
	layout     *wgpu.PipelineLayout
	pipelines  map[pipelineKey]*wgpu.RenderPipeline

	groups   []*wgpu.BindGroup
	dynamic  [][]uint32
	arenaGen int
}

// pipeline returns the render pipeline of s for the given attachment format, creating it once.
func (p *wgpuProgram) pipeline(device *wgpu.Device, s pipeline.State, format wgpu.TextureFormat, samples uint32) (*wgpu.RenderPipeline, error) {
	key := pipelineKey{state: s, format: format, samples: samples}
	if rp, ok := p.pipelines[key]; ok {
		return rp, nil
	}
	rp, err := device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.label + " " + s.String(),
		Layout: p.layout,
		Vertex: wgpu.VertexState{
			Module:     p.vs,
			EntryPoint: p.reflection.VertexEntryPoint,
			Buffers:    p.reflection.VertexLayouts,
		},
		Fragment: &wgpu.FragmentState{
			Module:     p.fs,
			EntryPoint: p.reflection.FragmentEntryPoint,
			Targets:    []wgpu.ColorTargetState{s.ColorTarget(format)},
		},
		Primitive:    s.PrimitiveState(),
		DepthStencil: s.DepthStencilState(depthFormat),
		Multisample: wgpu.MultisampleState{
			Count: samples,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, err
	}
	p.pipelines[key] = rp
	return rp, nil
}

// bindGroups (re)creates one bind group per group index over the arena buffer. Every uniform
// binding views one block-sized window whose position is chosen by a dynamic offset.
func (p *wgpuProgram) bindGroups(device *wgpu.Device, arena *uniformArena) error {
	if p.groups != nil && p.arenaGen == arena.generation {
		return nil
	}
	p.releaseGroups()
	p.groups = make([]*wgpu.BindGroup, len(p.layouts))
	p.dynamic = make([][]uint32, len(p.layouts))
	for g, layout := range p.layouts {
		entries := make([]wgpu.BindGroupEntry, len(p.entries[g]))
		for i, e := range p.entries[g] {
			entries[i] = wgpu.BindGroupEntry{
				Binding: e.Binding,
				Buffer:  arena.buffer,
				Offset:  0,
				Size:    e.Buffer.MinBindingSize,
			}
		}
		bg, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:   fmt.Sprintf("%s group %d", p.label, g),
			Layout:  layout,
			Entries: entries,
		})
		if err != nil {
			return err
		}
		p.groups[g] = bg
	}
	p.arenaGen = arena.generation
	return nil
}

func (p *wgpuProgram) releaseGroups() {
	for _, bg := range p.groups {
		if bg != nil {
			bg.Release()
		}
	}
	p.groups = nil
}

func (p *wgpuProgram) release() {
	p.releaseGroups()
	for _, rp := range p.pipelines {
		rp.Release()
	}
	clear(p.pipelines)
	if p.layout != nil {
		p.layout.Release()
	}
	for _, l := range p.layouts {
		if l != nil {
			l.Release()
		}
	}
	if p.vs != nil {
		p.vs.Release()
	}
	if p.fs != nil {
		p.fs.Release()
	}
}

// uniformArena packs the uniform blocks of one frame into a single buffer.
type uniformArena struct {
	buffer     *wgpu.Buffer
	size       uint64
	staging    []byte
	generation int
	retired    []*wgpu.Buffer
}

// write appends data at the next aligned offset. grown reports that data does not fit.
func (a *uniformArena) write(data []byte) (offset uint32, grown bool) {
	prev := uint64(len(a.staging))
	start := alignTo(prev, uniformAlignment)
	end := start + uint64(len(data))
	if end > a.size {
		return 0, true
	}
	a.staging = a.staging[:end]
	clear(a.staging[prev:start])
	copy(a.staging[start:end], data)
	return uint32(start), false
}

// flush uploads the staged bytes to the current buffer.
func (a *uniformArena) flush(queue *wgpu.Queue) {
	if a.buffer != nil && len(a.staging) > 0 {
		queue.WriteBuffer(a.buffer, 0, a.staging)
	}
}

func (a *uniformArena) grow(device *wgpu.Device, size uint64) error {
	buf, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Uniform Arena",
		Size:  size,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}
	if a.buffer != nil {
		a.retired = append(a.retired, a.buffer)
	}
	a.buffer = buf
	a.size = size
	staging := make([]byte, len(a.staging), size)
	copy(staging, a.staging)
	a.staging = staging
	a.generation++
	return nil
}

func (a *uniformArena) reset() {
	a.staging = a.staging[:0]
}

func (a *uniformArena) releaseRetired() {
	for _, b := range a.retired {
		b.Release()
	}
	a.retired = a.retired[:0]
}

func (a *uniformArena) release() {
	a.releaseRetired()
	if a.buffer != nil {
		a.buffer.Release()
		a.buffer = nil
	}
}

func alignTo(v, align uint64) uint64 {
	return (v + align - 1) / align * align
}

// wgpuMesh holds the GPU buffers of one mesh version.
type wgpuMesh struct {
	mesh     model.Mesh
	vertices *wgpu.Buffer
	indices  *wgpu.Buffer
	version  uint64
	uploaded bool
}

func (m *wgpuMesh) upload(device *wgpu.Device, queue *wgpu.Queue) error {
	m.release()
	vertexData := m.mesh.VertexBytes()
	if len(vertexData) == 0 {
		return fmt.Errorf("mesh %s has no vertices", m.mesh.Name())
	}
	buf, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: m.mesh.Name() + " Vertex Buffer",
		Size:  alignTo(uint64(len(vertexData)), 4),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}
	queue.WriteBuffer(buf, 0, vertexData)
	m.vertices = buf

	if indexData := m.mesh.IndexBytes(); len(indexData) > 0 {
		buf, err := device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: m.mesh.Name() + " Index Buffer",
			Size:  alignTo(uint64(len(indexData)), 4),
			Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return err
		}
		queue.WriteBuffer(buf, 0, indexData)
		m.indices = buf
	}
	m.version = m.mesh.Version()
	m.uploaded = true
	return nil
}

func (m *wgpuMesh) release() {
	if m.vertices != nil {
		m.vertices.Release()
		m.vertices = nil
	}
	if m.indices != nil {
		m.indices.Release()
		m.indices = nil
	}
	m.uploaded = false
}

// wgpuRenderTarget is an offscreen colour and depth attachment pair.
type wgpuRenderTarget struct {
	width, height int
	color         *wgpu.Texture
	colorView     *wgpu.TextureView
	depth         *wgpu.Texture
	depthView     *wgpu.TextureView
}

var _ camera.RenderTarget = &wgpuRenderTarget{}

func (t *wgpuRenderTarget) Width() int  { return t.width }
func (t *wgpuRenderTarget) Height() int { return t.height }

// ColorView returns the sampleable colour attachment.
func (t *wgpuRenderTarget) ColorView() *wgpu.TextureView { return t.colorView }

// Release frees the target's textures.
func (t *wgpuRenderTarget) Release() {
	for _, v := range []*wgpu.TextureView{t.colorView, t.depthView} {
		if v != nil {
			v.Release()
		}
	}
	for _, tex := range []*wgpu.Texture{t.color, t.depth} {
		if tex != nil {
			tex.Release()
		}
	}
	t.colorView, t.depthView, t.color, t.depth = nil, nil, nil, nil
}
