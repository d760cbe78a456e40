package material

import (
	"github.com/Carmen-Shannon/oxy-ecs/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-ecs/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// NewLambertMaterial creates an opaque diffuse material on a new instance of the built-in
// Lambert shader.
//
// Parameters:
//   - name: the material name
//   - diffuse: the base colour; an alpha below 1 makes the material transparent
//   - options: variadic list of MaterialBuilderOption functions applied last
//
// Returns:
//   - Material: the new material
func NewLambertMaterial(name string, diffuse mgl32.Vec4, options ...MaterialBuilderOption) Material {
	opts := []MaterialBuilderOption{WithName(name), WithUniform("diffuse", diffuse)}
	if diffuse.W() < 1 {
		opts = append(opts, WithTransparent())
	}
	return NewMaterial(shader.NewShader("lambert", shader.LambertSource), append(opts, options...)...)
}

// NewSkyboxMaterial creates the vertical gradient drawn behind a camera's scene. It neither
// tests nor writes depth and is drawn from inside its cube.
func NewSkyboxMaterial(top, bottom mgl32.Vec4) Material {
	return NewMaterial(shader.NewShader("skybox", shader.SkyboxSource),
		WithName("skybox"),
		WithUniform("top", top),
		WithUniform("bottom", bottom),
		WithRenderQueue(RenderQueueBackground),
		WithState(pipeline.NewState(
			pipeline.WithDepthTestEnabled(false),
			pipeline.WithDepthWriteEnabled(false),
			pipeline.WithCullMode(wgpu.CullModeNone),
		)),
	)
}
