package pipeline

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// BlendMode selects one of the fixed colour blend configurations a technique can use.
type BlendMode int

const (
	// BlendModeNone writes source colour unblended.
	BlendModeNone BlendMode = iota

	// BlendModeAlpha blends with source alpha over the destination.
	BlendModeAlpha

	// BlendModeAdditive adds source colour scaled by source alpha.
	BlendModeAdditive

	// BlendModePremultiplied blends premultiplied-alpha sources.
	BlendModePremultiplied
)

// State is the fixed-function state of a material technique: blending, culling, depth and topology.
// It is a comparable value so backends can key compiled pipelines by (program, State).
type State struct {
	depthTest           bool
	depthWrite          bool
	depthBias           int32
	depthBiasSlopeScale float32
	blend               BlendMode
	cullMode            wgpu.CullMode
	topology            wgpu.PrimitiveTopology
	frontFace           wgpu.FrontFace
	writeMask           wgpu.ColorWriteMask
}

// NewState creates an opaque, depth-tested, back-face culled triangle-list State with options applied.
//
// Parameters:
//   - opts: variadic list of StateBuilderOption functions
//
// Returns:
//   - State: the configured technique state
func NewState(opts ...StateBuilderOption) State {
	s := State{
		depthTest:  true,
		depthWrite: true,
		blend:      BlendModeNone,
		cullMode:   wgpu.CullModeBack,
		topology:   wgpu.PrimitiveTopologyTriangleList,
		frontFace:  wgpu.FrontFaceCCW,
		writeMask:  wgpu.ColorWriteMaskAll,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// DefaultState is the state used by materials that do not configure one.
var DefaultState = NewState()

// TransparentState is alpha blended with depth writes disabled.
var TransparentState = NewState(WithBlend(BlendModeAlpha), WithDepthWriteEnabled(false))

func (s State) DepthTestEnabled() bool       { return s.depthTest }
func (s State) DepthWriteEnabled() bool      { return s.depthWrite }
func (s State) DepthBias() int32             { return s.depthBias }
func (s State) DepthBiasSlopeScale() float32 { return s.depthBiasSlopeScale }
func (s State) Blend() BlendMode             { return s.blend }
func (s State) CullMode() wgpu.CullMode      { return s.cullMode }
func (s State) Topology() wgpu.PrimitiveTopology {
	return s.topology
}
func (s State) FrontFace() wgpu.FrontFace      { return s.frontFace }
func (s State) WriteMask() wgpu.ColorWriteMask { return s.writeMask }

func (s State) String() string {
	return fmt.Sprintf("depth(%t,%t) blend(%d) cull(%d) topo(%d)", s.depthTest, s.depthWrite, s.blend, s.cullMode, s.topology)
}

// BlendState returns the wgpu blend state for the blend mode, or nil when blending is off.
//
// Returns:
//   - *wgpu.BlendState: the blend configuration or nil
func (s State) BlendState() *wgpu.BlendState {
	switch s.blend {
	case BlendModeAlpha:
		return &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		}
	case BlendModeAdditive:
		return &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOne,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOne,
				Operation: wgpu.BlendOperationAdd,
			},
		}
	case BlendModePremultiplied:
		return &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		}
	default:
		return nil
	}
}

// ColorTarget returns the colour target state for a render pass attachment of the given format.
func (s State) ColorTarget(format wgpu.TextureFormat) wgpu.ColorTargetState {
	return wgpu.ColorTargetState{
		Format:    format,
		WriteMask: s.writeMask,
		Blend:     s.BlendState(),
	}
}

// PrimitiveState returns the primitive assembly state.
func (s State) PrimitiveState() wgpu.PrimitiveState {
	return wgpu.PrimitiveState{
		Topology:  s.topology,
		FrontFace: s.frontFace,
		CullMode:  s.cullMode,
	}
}

// DepthStencilState returns the depth state for an attachment of the given format.
// A disabled depth test still writes through a CompareFunctionAlways comparison.
//
// Parameters:
//   - format: the depth attachment format
//
// Returns:
//   - *wgpu.DepthStencilState: the depth configuration
func (s State) DepthStencilState(format wgpu.TextureFormat) *wgpu.DepthStencilState {
	compare := wgpu.CompareFunctionLess
	if !s.depthTest {
		compare = wgpu.CompareFunctionAlways
	}
	return &wgpu.DepthStencilState{
		Format:              format,
		DepthWriteEnabled:   s.depthWrite,
		DepthCompare:        compare,
		DepthBias:           s.depthBias,
		DepthBiasSlopeScale: s.depthBiasSlopeScale,
		StencilFront: wgpu.StencilFaceState{
			Compare: wgpu.CompareFunctionAlways,
		},
		StencilBack: wgpu.StencilFaceState{
			Compare: wgpu.CompareFunctionAlways,
		},
	}
}
