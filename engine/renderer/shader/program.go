package shader

import (
	"errors"
	"sync/atomic"
)

// ErrCompileFailed marks a program whose compilation or linking failed.
var ErrCompileFailed = errors.New("shader: program compilation failed")

var programIDs atomic.Uint64

// Program is one compiled variant of a Shader: processed stage sources, their reflection
// and the backend object produced by a Compiler.
type Program struct {
	id         uint64
	key        Mask
	shader     string
	vertex     string
	fragment   string
	reflection *Reflection

	handle  any
	release func()
}

func (p *Program) ID() uint64              { return p.id }
func (p *Program) Key() Mask               { return p.key }
func (p *Program) ShaderName() string      { return p.shader }
func (p *Program) Reflection() *Reflection { return p.reflection }
func (p *Program) Handle() any             { return p.handle }

// Source returns the processed WGSL of a stage.
func (p *Program) Source(stage Stage) string {
	if stage == StageFragment {
		return p.fragment
	}
	return p.vertex
}

// SetHandle stores the backend object of p and the function that frees it.
func (p *Program) SetHandle(handle any, release func()) {
	p.handle = handle
	p.release = release
}

func (p *Program) dispose() {
	if p.release != nil {
		p.release()
	}
	p.handle = nil
	p.release = nil
}

// Compiler turns processed programs into backend objects.
type Compiler interface {
	// CompileProgram compiles and links p, storing the result with p.SetHandle.
	//
	// Parameters:
	//   - p: the processed program
	//
	// Returns:
	//   - error: compiler diagnostics wrapped with ErrCompileFailed on failure
	CompileProgram(p *Program) error
}
