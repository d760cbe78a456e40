package material

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-ecs/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-ecs/engine/renderer/shader"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMutationsBumpVersion(t *testing.T) {
	m := NewMaterial(shader.NewShader("flat", "fn main() {}"), WithUniform("tint", 1.0))
	v := m.Version()

	m.SetUniform("tint", 2.0)
	assert.Greater(t, m.Version(), v)
	v = m.Version()

	m.SetRenderQueue(m.RenderQueue())
	m.SetState(m.State())
	assert.Equal(t, v, m.Version(), "unchanged values keep the version")

	m.SetRenderQueue(RenderQueueOverlay)
	m.SetState(pipeline.TransparentState)
	m.Touch()
	assert.Equal(t, v+3, m.Version())
	assert.True(t, m.IsTransparent())

	got, ok := m.Uniform("tint")
	require.True(t, ok)
	assert.Equal(t, 2.0, got)
}

func TestReleaseDisposesShaderAtZero(t *testing.T) {
	s := shader.NewShader("flat", "fn main() {}")
	m := NewMaterial(s)
	assert.Equal(t, 1, s.RefCount())

	m.Retain()
	m.Retain()
	assert.False(t, m.Release())
	assert.False(t, m.IsDisposed())
	assert.True(t, m.Release())
	assert.True(t, m.IsDisposed())
	assert.True(t, s.IsDisposed())
	assert.False(t, m.Release(), "a disposed material is released once")
}

func TestLambertMaterial(t *testing.T) {
	opaque := NewLambertMaterial("red", mgl32.Vec4{1, 0, 0, 1}, WithDefines("USE_FOG"))
	assert.Equal(t, "red", opaque.Name())
	assert.Equal(t, RenderQueueGeometry, opaque.RenderQueue())
	assert.False(t, opaque.IsTransparent())
	assert.True(t, opaque.Defines().Has("USE_FOG"))
	assert.Equal(t, []string{"diffuse"}, opaque.UniformNames())

	glass := NewLambertMaterial("glass", mgl32.Vec4{0, 0, 1, 0.5})
	assert.True(t, glass.IsTransparent())
	assert.Equal(t, pipeline.TransparentState, glass.State())
	assert.NotEqual(t, opaque.ID(), glass.ID())
}

func TestSkyboxMaterialSkipsDepth(t *testing.T) {
	sky := NewSkyboxMaterial(mgl32.Vec4{0, 0, 1, 1}, mgl32.Vec4{1, 1, 1, 1})
	assert.Equal(t, RenderQueueBackground, sky.RenderQueue())
	assert.False(t, sky.State().DepthTestEnabled())
	assert.False(t, sky.State().DepthWriteEnabled())
	assert.Equal(t, []string{"bottom", "top"}, sky.UniformNames())
}

func TestNewMaterialPanicsWithoutShader(t *testing.T) {
	assert.Panics(t, func() { NewMaterial(nil) })
}
