package renderer

import (
	"github.com/Carmen-Shannon/oxy-ecs/engine/camera"
	"github.com/Carmen-Shannon/oxy-ecs/engine/renderer/shader"
)

// Renderer-level defines derived from the drawn renderer component.
const (
	DefineShadowMap  = "USE_SHADOWMAP"
	DefineLightmap   = "USE_LIGHTMAP"
	DefineInstancing = "USE_INSTANCING"
)

const (
	featureShadowMap = 1 << iota
	featureLightmap
	featureInstancing
	featureCount = 1 << 3
)

// RenderState holds the renderer-wide inputs of program selection and the pass state the
// renderer last applied. It is owned by one Renderer and not safe for concurrent use.
type RenderState struct {
	defines  *shader.Defines
	features [featureCount]*shader.Defines
	chunks   map[string]string

	exposure   float32
	whitePoint float32

	shadows bool

	target    camera.RenderTarget
	targetSet bool
	viewport  Viewport
}

// NewRenderState creates a RenderState with tone mapping exposure and white point of 1.
func NewRenderState() *RenderState {
	s := &RenderState{
		defines:    shader.NewDefines(),
		chunks:     make(map[string]string),
		exposure:   1,
		whitePoint: 1,
		shadows:    true,
	}
	for f := range s.features {
		d := shader.NewDefines()
		if f&featureShadowMap != 0 {
			d.Add(DefineShadowMap)
		}
		if f&featureLightmap != 0 {
			d.Add(DefineLightmap)
		}
		if f&featureInstancing != 0 {
			d.Add(DefineInstancing)
		}
		s.features[f] = d
	}
	return s
}

// Defines returns the renderer-wide define set, which holds the light count defines.
func (s *RenderState) Defines() *shader.Defines { return s.defines }

// FeatureDefines returns the define set for a combination of per-draw renderer features.
//
// Parameters:
//   - shadowMap: the renderer receives shadows and shadows are enabled
//   - lightmap: the renderer has a baked lightmap
//   - instancing: the draw is instanced
//
// Returns:
//   - *shader.Defines: a shared, read-only define set
func (s *RenderState) FeatureDefines(shadowMap, lightmap, instancing bool) *shader.Defines {
	f := 0
	if shadowMap && s.shadows {
		f |= featureShadowMap
	}
	if lightmap {
		f |= featureLightmap
	}
	if instancing {
		f |= featureInstancing
	}
	return s.features[f]
}

// Chunks returns the custom shader chunks resolved after each shader's own chunks.
func (s *RenderState) Chunks() map[string]string { return s.chunks }

// SetChunk adds or replaces a custom shader chunk. Programs compiled earlier keep the old source.
func (s *RenderState) SetChunk(name, source string) { s.chunks[name] = source }

func (s *RenderState) ToneMappingExposure() float32     { return s.exposure }
func (s *RenderState) SetToneMappingExposure(v float32) { s.exposure = v }
func (s *RenderState) ToneMappingWhitePoint() float32   { return s.whitePoint }
func (s *RenderState) SetToneMappingWhitePoint(v float32) {
	s.whitePoint = v
}

// ShadowsEnabled reports whether shadow passes run.
func (s *RenderState) ShadowsEnabled() bool { return s.shadows }

// SetShadowsEnabled toggles shadow passes and the USE_SHADOWMAP feature.
func (s *RenderState) SetShadowsEnabled(v bool) { s.shadows = v }

// SetRenderTarget records t as the bound target.
//
// Returns:
//   - bool: true if t differs from the bound target
func (s *RenderState) SetRenderTarget(t camera.RenderTarget) bool {
	if s.targetSet && s.target == t {
		return false
	}
	s.target = t
	s.targetSet = true
	return true
}

// SetViewport records v as the bound viewport.
//
// Returns:
//   - bool: true if v differs from the bound viewport
func (s *RenderState) SetViewport(v Viewport) bool {
	if s.viewport == v {
		return false
	}
	s.viewport = v
	return true
}

// ResetPassState forgets the bound target and viewport. The next SetRenderTarget and
// SetViewport calls report a change.
func (s *RenderState) ResetPassState() {
	s.target = nil
	s.targetSet = false
	s.viewport = Viewport{}
}
