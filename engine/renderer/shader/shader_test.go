package shader

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingCompiler records every compile and hands out integer handles.
type countingCompiler struct {
	calls    int
	released int
	fail     bool
}

func (c *countingCompiler) CompileProgram(p *Program) error {
	c.calls++
	if c.fail {
		return fmt.Errorf("%w: entry point vs_main not found", ErrCompileFailed)
	}
	p.SetHandle(c.calls, func() { c.released++ })
	return nil
}

func TestDefinesTrackMask(t *testing.T) {
	d := NewDefines()
	assert.True(t, d.Add("TEST_FLAT_SHADED"))
	assert.False(t, d.Add("TEST_FLAT_SHADED"))
	assert.True(t, d.Mask().Has(DefineBit("TEST_FLAT_SHADED")))

	assert.True(t, d.Set("TEST_COUNT", 1))
	assert.True(t, d.Set("TEST_COUNT", 2))
	assert.False(t, d.Set("TEST_COUNT", 2))
	assert.False(t, d.Mask().Has(DefineBit("TEST_COUNT 1")))
	assert.True(t, d.Mask().Has(DefineBit("TEST_COUNT 2")))

	v, ok := d.Value("TEST_COUNT")
	assert.True(t, ok)
	assert.Equal(t, "2", v)
	assert.Equal(t, []string{"TEST_FLAT_SHADED", "TEST_COUNT 2"}, d.Entries())

	assert.True(t, d.Remove("TEST_FLAT_SHADED"))
	assert.False(t, d.Remove("TEST_FLAT_SHADED"))
	assert.False(t, d.Has("TEST_FLAT_SHADED"))
	assert.Equal(t, 1, d.Len())

	d.Clear()
	assert.True(t, d.Mask().IsZero())
	assert.Zero(t, d.Len())
}

func TestDefineBitIsStable(t *testing.T) {
	a := DefineBit("TEST_STABLE")
	assert.Equal(t, a, DefineBit("TEST_STABLE"))
	assert.NotEqual(t, a, DefineBit("TEST_STABLE 1"))
}

func TestLinkKeepsFirstEntryPerName(t *testing.T) {
	material := NewDefines("TEST_LINK_A", "TEST_LINK_N 4")
	feature := NewDefines("TEST_LINK_N 8", "TEST_LINK_B")

	linked := Link(material, nil, feature)
	assert.Equal(t, []string{"TEST_LINK_A", "TEST_LINK_N 4", "TEST_LINK_B"}, linked)

	assert.Equal(t, MaskOf(linked), KeyOf(material, nil, feature), "the key follows the linked list")
	assert.NotEqual(t, KeyOf(material, feature), KeyOf(feature, material),
		"the first set wins a name clash")

	plain := NewDefines("TEST_LINK_C")
	assert.Equal(t, material.Mask().Or(plain.Mask()), KeyOf(material, plain))
}

func TestPreProcessorResolvesIncludes(t *testing.T) {
	pp := NewPreProcessor(map[string]string{
		"custom":       "let custom = 1.0;\n#include <nested>",
		"nested":       "let nested = 2.0;",
		"vertex_input": "shadowed",
	})
	out, err := pp.Process("#include <custom>\n#include <vertex_input>\n#include <missing>\nfn main() {}", nil)
	require.NoError(t, err)

	assert.Contains(t, out, "let custom = 1.0;")
	assert.Contains(t, out, "let nested = 2.0;")
	assert.Contains(t, out, "struct VertexInput", "built-in chunks resolve before custom ones")
	assert.NotContains(t, out, "shadowed")
	assert.NotContains(t, out, "#include")
	assert.Equal(t, []string{"missing"}, pp.Unresolved())

	_, err = pp.Process("fn main() {}", nil)
	require.NoError(t, err)
	assert.Empty(t, pp.Unresolved())
}

func TestPreProcessorConditionals(t *testing.T) {
	source := strings.Join([]string{
		"#ifdef USE_FOG",
		"fog",
		"#else",
		"no_fog",
		"#endif",
		"#ifndef USE_FOG",
		"#ifdef USE_MAP",
		"map",
		"#endif",
		"#endif",
		"always",
	}, "\n")
	pp := NewPreProcessor(nil)

	out, err := pp.Process(source, []string{"USE_FOG"})
	require.NoError(t, err)
	assert.Equal(t, "fog\nalways", out)

	out, err = pp.Process(source, []string{"USE_MAP"})
	require.NoError(t, err)
	assert.Equal(t, "no_fog\nmap\nalways", out)

	out, err = pp.Process(source, []string{"USE_FOG 1"})
	require.NoError(t, err)
	assert.Equal(t, "fog\nalways", out, "valued defines count as present")
}

func TestPreProcessorRejectsUnbalancedBlocks(t *testing.T) {
	pp := NewPreProcessor(nil)
	for _, source := range []string{
		"#ifdef A\nx",
		"x\n#endif",
		"#else",
		"#ifdef A\n#else\n#else\n#endif",
		"#ifdef\n#endif",
	} {
		_, err := pp.Process(source, nil)
		assert.Error(t, err, source)
	}
}

func TestPreProcessorSubstitutesAndUnrolls(t *testing.T) {
	source := "let count = NUM_LIGHTS;\nlet other = NUM_LIGHTS_MAX;\n#pragma unroll_loop\nfor (var i = 0; i < NUM_LIGHTS; i++) {\n    total += lights[i].color;\n}\ndone"
	out, err := NewPreProcessor(nil).Process(source, []string{"NUM_LIGHTS 3"})
	require.NoError(t, err)

	assert.Contains(t, out, "let count = 3;")
	assert.Contains(t, out, "let other = NUM_LIGHTS_MAX;", "only whole tokens are replaced")
	for i := 0; i < 3; i++ {
		assert.Contains(t, out, fmt.Sprintf("total += lights[%d].color;", i))
	}
	assert.NotContains(t, out, "lights[i]")
	assert.NotContains(t, out, "for (")
	assert.True(t, strings.HasSuffix(out, "\ndone"))

	_, err = NewPreProcessor(nil).Process("#pragma unroll_loop\nwhile (true) {}", nil)
	assert.Error(t, err)
}

func TestReflectLambert(t *testing.T) {
	pp := NewPreProcessor(nil)
	defines := []string{"NUM_DIR_LIGHTS 2"}
	source, err := pp.Process(LambertSource, defines)
	require.NoError(t, err)

	refl, err := Reflect(source, source)
	require.NoError(t, err)
	assert.Equal(t, "vs_main", refl.VertexEntryPoint)
	assert.Equal(t, "fs_main", refl.FragmentEntryPoint)
	require.Len(t, refl.VertexLayouts, 1)
	assert.Len(t, refl.VertexLayouts[0].Attributes, 3)

	require.Len(t, refl.Uniforms, 4)
	names := make([]string, 0, len(refl.Uniforms))
	for _, b := range refl.Uniforms {
		names = append(names, b.Name)
	}
	assert.Equal(t, []string{"global", "camera", "model", "material"}, names)
	assert.Equal(t, ScopeGlobal, refl.Uniforms[0].Scope)
	assert.Equal(t, ScopeCamera, refl.Uniforms[1].Scope)
	assert.Equal(t, ScopeModel, refl.Uniforms[2].Scope)
	assert.Equal(t, ScopeMaterial, refl.Uniforms[3].Scope)

	camera := refl.Uniforms[1]
	lights, ok := camera.Field("directionalLights")
	require.True(t, ok)
	assert.Equal(t, uint64(240), lights.Offset)
	assert.Equal(t, uint64(64), lights.Size)
	assert.Equal(t, uint64(304), camera.Size)

	normal, ok := refl.Uniforms[2].Field("normalMatrix")
	require.True(t, ok)
	assert.Equal(t, uint64(192), normal.Offset)

	assert.Len(t, refl.UniformsIn(ScopeMaterial), 1)
	assert.Len(t, refl.BindGroupLayouts, 4)
}

func TestReflectRejectsMissingEntryPoints(t *testing.T) {
	_, err := Reflect("fn main() {}", "@fragment fn fs() {}")
	assert.Error(t, err)
	_, err = Reflect("@vertex fn vs() {}", "fn main() {}")
	assert.Error(t, err)
}

func TestUniformBlockEncode(t *testing.T) {
	b := &UniformBlock{
		Size: 32,
		Fields: []UniformField{
			{Name: "diffuse", Type: "vec4<f32>", Offset: 0, Size: 16},
			{Name: "opacity", Type: "f32", Offset: 16, Size: 4},
			{Name: "count", Type: "i32", Offset: 20, Size: 4},
		},
	}
	dst := make([]byte, b.Size)

	assert.True(t, b.Encode(dst, "diffuse", mgl32.Vec4{1, 2, 3, 4}))
	assert.True(t, b.Encode(dst, "opacity", 0.5))
	assert.True(t, b.Encode(dst, "count", -2))
	assert.False(t, b.Encode(dst, "missing", 1))
	assert.False(t, b.Encode(dst, "opacity", "text"))

	assert.Equal(t, float32(3), math.Float32frombits(binary.LittleEndian.Uint32(dst[8:])))
	assert.Equal(t, float32(0.5), math.Float32frombits(binary.LittleEndian.Uint32(dst[16:])))
	assert.Equal(t, int32(-2), int32(binary.LittleEndian.Uint32(dst[20:])))
}

func TestProgramCacheReusesProgram(t *testing.T) {
	s := NewShader("lambert", LambertSource)
	defines := NewDefines("NUM_DIR_LIGHTS 1")
	compiler := &countingCompiler{}

	first := s.Programs().Get(KeyOf(defines), Link(defines), nil, compiler)
	require.NotNil(t, first)
	second := s.Programs().Get(KeyOf(defines), Link(defines), nil, compiler)

	assert.Same(t, first, second)
	assert.Equal(t, 1, compiler.calls)
	assert.Equal(t, 1, s.Programs().Compiles())
	assert.Equal(t, 1, first.Handle())
	assert.Equal(t, "lambert", first.ShaderName())
	assert.Contains(t, first.Source(StageVertex), "camera.directionalLights[0]")

	other := NewDefines("NUM_DIR_LIGHTS 2")
	third := s.Programs().Get(KeyOf(other), Link(other), nil, compiler)
	require.NotNil(t, third)
	assert.NotEqual(t, first.ID(), third.ID())
	assert.Equal(t, 2, s.Programs().Len())
}

func TestProgramCacheCachesFailures(t *testing.T) {
	s := NewShader("lambert", LambertSource)
	compiler := &countingCompiler{fail: true}

	assert.Nil(t, s.Programs().Get(Mask{}, nil, nil, compiler))
	assert.Nil(t, s.Programs().Get(Mask{}, nil, nil, compiler))
	assert.Equal(t, 1, compiler.calls, "failures are not retried")

	p, ok := s.Programs().Lookup(Mask{})
	assert.True(t, ok)
	assert.Nil(t, p)

	broken := NewShader("broken", "#ifdef A\n@vertex fn vs() {}")
	assert.Nil(t, broken.Programs().Get(Mask{}, nil, nil, compiler))
	assert.Zero(t, broken.Programs().Compiles(), "preprocessing errors never reach the compiler")
	assert.Equal(t, 1, broken.Programs().Len())
}

func TestProgramCacheUsesCustomChunks(t *testing.T) {
	source := "#include <surface>\n@vertex fn vs_main() {}\n@fragment fn fs_main() {}"
	s := NewShader("custom", source, WithChunk("surface", "// shader chunk"))
	compiler := &countingCompiler{}

	p := s.Programs().Get(Mask{}, nil, map[string]string{"surface": "// state chunk"}, compiler)
	require.NotNil(t, p)
	assert.Contains(t, p.Source(StageVertex), "// shader chunk", "a shader's chunks win over extra chunks")
}

func TestProgramCachePrewarm(t *testing.T) {
	s := NewShader("lambert", LambertSource)
	compiler := &countingCompiler{}

	cached := NewDefines("NUM_DIR_LIGHTS 1")
	require.NotNil(t, s.Programs().Get(MaskOf(Link(cached)), Link(cached), nil, compiler))

	n := s.Programs().Prewarm([]Variant{
		{Defines: nil},
		{Defines: []string{"NUM_DIR_LIGHTS 1"}},
		{Defines: []string{"NUM_DIR_LIGHTS 2"}},
		{Defines: []string{"NUM_DIR_LIGHTS 2"}},
		{Defines: []string{"NUM_DIR_LIGHTS 1", "NUM_HEMI_LIGHTS 1"}},
	}, nil, compiler, 3)

	assert.Equal(t, 3, n)
	assert.Equal(t, 4, compiler.calls)
	assert.Equal(t, 4, s.Programs().Len())

	p, ok := s.Programs().Lookup(MaskOf([]string{"NUM_DIR_LIGHTS 2"}))
	require.True(t, ok)
	assert.NotNil(t, p)
}

func TestShaderReleaseDisposesPrograms(t *testing.T) {
	s := NewShader("lambert", LambertSource)
	compiler := &countingCompiler{}
	require.NotNil(t, s.Programs().Get(Mask{}, nil, nil, compiler))

	s.Retain()
	s.Retain()
	assert.False(t, s.Release())
	assert.Equal(t, 1, s.RefCount())
	assert.True(t, s.Release())
	assert.True(t, s.IsDisposed())
	assert.False(t, s.Release())

	assert.Equal(t, 1, compiler.released)
	assert.Zero(t, s.Programs().Len())
}

func TestNewShaderPanicsWithoutSource(t *testing.T) {
	assert.Panics(t, func() { NewShader("empty", "") })
}
