package renderer

import (
	"github.com/Carmen-Shannon/oxy-ecs/engine/camera"
	"github.com/Carmen-Shannon/oxy-ecs/engine/model"
	"github.com/Carmen-Shannon/oxy-ecs/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-ecs/engine/renderer/shader"
	"github.com/go-gl/mathgl/mgl32"
)

// Viewport is a pixel rectangle of a render target.
type Viewport struct {
	X, Y, Width, Height int
}

// Clear describes what a render pass clears when it begins.
type Clear struct {
	// Color clears the colour attachment when set.
	Color bool

	// Depth clears the depth attachment when set.
	Depth bool

	// Value is the colour used when Color is set.
	Value mgl32.Vec4
}

// Device is the GPU backend a Renderer records into. All methods are called from the render
// goroutine between BeginFrame and EndFrame, except CompileProgram, NewRenderTarget and Size.
type Device interface {
	shader.Compiler

	// Size returns the surface size in pixels.
	//
	// Returns:
	//   - int: the width
	//   - int: the height
	Size() (int, int)

	// BeginFrame acquires the next surface image.
	//
	// Returns:
	//   - error: an error if no image could be acquired; the frame must be skipped
	BeginFrame() error

	// EndFrame submits the recorded passes and presents the surface.
	EndFrame()

	// BeginPass starts a pass on target, or on the surface when target is nil.
	//
	// Parameters:
	//   - target: the render target, or nil
	//   - clear: what the pass clears on load
	BeginPass(target camera.RenderTarget, clear Clear)

	// EndPass ends the current pass.
	EndPass()

	// SetViewport sets the pixel rectangle draws are mapped to.
	SetViewport(v Viewport)

	// SetProgram binds the pipeline of program p drawn with the fixed-function state s.
	SetProgram(p *shader.Program, s pipeline.State)

	// SetMesh binds the vertex and index buffers of m, uploading them if m changed.
	SetMesh(m model.Mesh)

	// WriteUniforms stages the bytes of one uniform block for the draws that follow.
	//
	// Parameters:
	//   - block: the reflected block of the bound program
	//   - data: block.Size bytes
	WriteUniforms(block *shader.UniformBlock, data []byte)

	// Draw issues one draw of a sub-mesh range of the bound mesh.
	//
	// Parameters:
	//   - m: the bound mesh
	//   - sub: the index or vertex range
	//   - instances: the instance count, or 0 for a single non-instanced draw
	Draw(m model.Mesh, sub model.SubMesh, instances int)

	// NewRenderTarget creates an offscreen colour and depth target.
	//
	// Parameters:
	//   - width: the width in pixels
	//   - height: the height in pixels
	//
	// Returns:
	//   - camera.RenderTarget: the target
	//   - error: an error if GPU resources could not be created
	NewRenderTarget(width, height int) (camera.RenderTarget, error)
}
