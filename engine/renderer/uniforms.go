package renderer

import (
	"github.com/Carmen-Shannon/oxy-ecs/common"
	"github.com/Carmen-Shannon/oxy-ecs/engine/light"
	"github.com/Carmen-Shannon/oxy-ecs/engine/renderer/draw_call"
	"github.com/Carmen-Shannon/oxy-ecs/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-ecs/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-ecs/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// upload encodes every block of scope through fill and hands the bytes to the device.
func (r *Renderer) upload(refl *shader.Reflection, scope shader.UniformScope, fill func(*shader.UniformBlock, []byte)) {
	if refl == nil {
		return
	}
	for _, b := range refl.Uniforms {
		if b.Scope != scope {
			continue
		}
		buf := r.stagingFor(b.Size)
		fill(b, buf)
		r.device.WriteUniforms(b, buf)
	}
}

func (r *Renderer) stagingFor(size uint64) []byte {
	if uint64(cap(r.staging)) < size {
		r.staging = make([]byte, size)
	}
	buf := r.staging[:size]
	clear(buf)
	return buf
}

func (r *Renderer) fillGlobal(b *shader.UniformBlock, buf []byte, scn scene.Scene) {
	w, h := r.device.Size()
	if vp := r.state.viewport; vp.Width > 0 && vp.Height > 0 {
		w, h = vp.Width, vp.Height
	}
	b.Encode(buf, "ambientLightColor", scn.AmbientColor())
	b.Encode(buf, "toneMappingExposure", r.state.ToneMappingExposure())
	b.Encode(buf, "toneMappingWhitePoint", r.state.ToneMappingWhitePoint())
	b.Encode(buf, "resolution", mgl32.Vec2{float32(w), float32(h)})

	fog := scn.Fog()
	if fog.Enabled {
		b.Encode(buf, "fogColor", fog.Color)
		b.Encode(buf, "fogNear", fog.Near)
		b.Encode(buf, "fogFar", fog.Far)
	}
}

func fillScene(b *shader.UniformBlock, buf []byte, scn scene.Scene) {
	b.Encode(buf, "lightmapIntensity", scn.LightmapIntensity())
}

func (r *Renderer) fillCamera(b *shader.UniformBlock, buf []byte) {
	cam := r.currentCamera
	if cam == nil {
		return
	}
	b.Encode(buf, "view", cam.View())
	b.Encode(buf, "projection", cam.ProjectionMatrix())
	b.Encode(buf, "viewProjection", cam.ViewProjection())
	b.Encode(buf, "cameraPosition", cam.Position())
	b.Encode(buf, "logDepthBufFC", cam.LogDepthFC())
	b.Encode(buf, "cameraForward", cam.Forward())
	b.Encode(buf, "cameraUp", cam.Up())
	for kind := range light.KindCount {
		if data := r.lightData[kind]; len(data) > 0 {
			b.Encode(buf, kind.UniformField(), data)
		}
	}
}

func (r *Renderer) fillShadow(b *shader.UniformBlock, buf []byte) {
	l := r.currentShadowLight
	if l == nil {
		return
	}
	s := l.Shadow()
	b.Encode(buf, "referencePosition", l.Position())
	b.Encode(buf, "nearDistance", s.Near)
	b.Encode(buf, "farDistance", s.Far)
}

func (r *Renderer) fillModel(b *shader.UniformBlock, buf []byte, d *draw_call.DrawCall) {
	m := d.ModelMatrix()
	b.Encode(buf, "model", m)
	b.Encode(buf, "normalMatrix", common.NormalMatrix(m))
	if cam := r.currentCamera; cam != nil {
		mv := cam.View().Mul4(m)
		b.Encode(buf, "modelView", mv)
		b.Encode(buf, "modelViewProjection", cam.ProjectionMatrix().Mul4(mv))
	}
}

func fillMaterial(b *shader.UniformBlock, buf []byte, mat material.Material) {
	for _, f := range b.Fields {
		if v, ok := mat.Uniform(f.Name); ok {
			b.Encode(buf, f.Name, v)
		}
	}
}
