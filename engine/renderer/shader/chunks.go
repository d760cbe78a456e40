package shader

// builtinChunks are the WGSL snippets every shader may #include. Custom chunks supplied by a
// Shader or the render state resolve after these.
var builtinChunks = map[string]string{
	"vertex_input": `struct VertexInput {
    @location(0) position: vec3<f32>,
    @location(1) normal: vec3<f32>,
    @location(2) uv: vec2<f32>,
}`,

	"global_uniforms": `struct GlobalUniforms {
    ambientLightColor: vec3<f32>,
    toneMappingExposure: f32,
    fogColor: vec3<f32>,
    toneMappingWhitePoint: f32,
    resolution: vec2<f32>,
    fogNear: f32,
    fogFar: f32,
}
@group(0) @binding(0) var<uniform> global: GlobalUniforms;`,

	"scene_uniforms": `struct SceneUniforms {
    lightmapIntensity: f32,
}
@group(0) @binding(1) var<uniform> scene: SceneUniforms;`,

	"light_structs": `struct DirectionalLight {
    direction: vec3<f32>,
    intensity: f32,
    color: vec3<f32>,
    castShadow: f32,
}
struct PointLight {
    position: vec3<f32>,
    intensity: f32,
    color: vec3<f32>,
    range: f32,
}
struct SpotLight {
    position: vec3<f32>,
    intensity: f32,
    color: vec3<f32>,
    range: f32,
    direction: vec3<f32>,
    cosAngle: f32,
}
struct RectAreaLight {
    position: vec3<f32>,
    intensity: f32,
    color: vec3<f32>,
    width: f32,
    normal: vec3<f32>,
    height: f32,
}
struct HemisphereLight {
    skyColor: vec3<f32>,
    intensity: f32,
    groundColor: vec3<f32>,
    padding: f32,
}`,

	"camera_uniforms": `#include <light_structs>
struct CameraUniforms {
    view: mat4x4<f32>,
    projection: mat4x4<f32>,
    viewProjection: mat4x4<f32>,
    cameraPosition: vec3<f32>,
    logDepthBufFC: f32,
    cameraForward: vec3<f32>,
    cameraUp: vec3<f32>,
#ifdef NUM_DIR_LIGHTS
    directionalLights: array<DirectionalLight, NUM_DIR_LIGHTS>,
#endif
#ifdef NUM_POINT_LIGHTS
    pointLights: array<PointLight, NUM_POINT_LIGHTS>,
#endif
#ifdef NUM_SPOT_LIGHTS
    spotLights: array<SpotLight, NUM_SPOT_LIGHTS>,
#endif
#ifdef NUM_RECT_AREA_LIGHTS
    rectAreaLights: array<RectAreaLight, NUM_RECT_AREA_LIGHTS>,
#endif
#ifdef NUM_HEMI_LIGHTS
    hemisphereLights: array<HemisphereLight, NUM_HEMI_LIGHTS>,
#endif
}
@group(1) @binding(0) var<uniform> camera: CameraUniforms;`,

	"shadow_uniforms": `struct ShadowUniforms {
    referencePosition: vec3<f32>,
    nearDistance: f32,
    farDistance: f32,
}
@group(1) @binding(1) var<uniform> shadow: ShadowUniforms;`,

	"model_uniforms": `struct ModelUniforms {
    model: mat4x4<f32>,
    modelView: mat4x4<f32>,
    modelViewProjection: mat4x4<f32>,
    normalMatrix: mat3x3<f32>,
}
@group(2) @binding(0) var<uniform> model: ModelUniforms;`,

	"tone_mapping": `fn linearToneMapping(color: vec3<f32>) -> vec3<f32> {
    return global.toneMappingExposure * color;
}`,

	"lights_fragment": `fn accumulateLights(normal: vec3<f32>, worldPosition: vec3<f32>) -> vec3<f32> {
    var total = global.ambientLightColor;
#ifdef NUM_DIR_LIGHTS
#pragma unroll_loop
    for (var i = 0; i < NUM_DIR_LIGHTS; i++) {
        total += camera.directionalLights[i].color * camera.directionalLights[i].intensity * max(dot(normal, -camera.directionalLights[i].direction), 0.0);
    }
#endif
#ifdef NUM_POINT_LIGHTS
#pragma unroll_loop
    for (var i = 0; i < NUM_POINT_LIGHTS; i++) {
        let toLight = camera.pointLights[i].position - worldPosition;
        let falloff = clamp(1.0 - length(toLight) / camera.pointLights[i].range, 0.0, 1.0);
        total += camera.pointLights[i].color * camera.pointLights[i].intensity * falloff * max(dot(normal, normalize(toLight)), 0.0);
    }
#endif
#ifdef NUM_HEMI_LIGHTS
#pragma unroll_loop
    for (var i = 0; i < NUM_HEMI_LIGHTS; i++) {
        let w = 0.5 * dot(normal, vec3<f32>(0.0, 1.0, 0.0)) + 0.5;
        total += mix(camera.hemisphereLights[i].groundColor, camera.hemisphereLights[i].skyColor, w) * camera.hemisphereLights[i].intensity;
    }
#endif
    return total;
}`,
}

// LambertSource is the built-in diffuse shader. Vertex and fragment entry points share one module.
const LambertSource = `#include <vertex_input>
#include <global_uniforms>
#include <camera_uniforms>
#include <model_uniforms>
#include <tone_mapping>
#include <lights_fragment>

struct MaterialUniforms {
    diffuse: vec4<f32>,
}
@group(3) @binding(0) var<uniform> material: MaterialUniforms;

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) normal: vec3<f32>,
    @location(1) worldPosition: vec3<f32>,
}

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    let world = model.model * vec4<f32>(in.position, 1.0);
    out.position = model.modelViewProjection * vec4<f32>(in.position, 1.0);
    out.normal = normalize((model.model * vec4<f32>(in.normal, 0.0)).xyz);
    out.worldPosition = world.xyz;
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    let lit = accumulateLights(normalize(in.normal), in.worldPosition);
    return vec4<f32>(linearToneMapping(material.diffuse.rgb * lit), material.diffuse.a);
}
`

// DepthSource writes depth only and is used as the override material of shadow passes.
const DepthSource = `#include <vertex_input>
#include <shadow_uniforms>
#include <camera_uniforms>
#include <model_uniforms>

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) worldPosition: vec3<f32>,
}

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.position = model.modelViewProjection * vec4<f32>(in.position, 1.0);
    out.worldPosition = (model.model * vec4<f32>(in.position, 1.0)).xyz;
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    let d = (length(in.worldPosition - shadow.referencePosition) - shadow.nearDistance) / (shadow.farDistance - shadow.nearDistance);
    return vec4<f32>(d, d, d, 1.0);
}
`

// SkyboxSource draws a background gradient behind everything else.
const SkyboxSource = `#include <vertex_input>
#include <camera_uniforms>
#include <model_uniforms>

struct MaterialUniforms {
    top: vec4<f32>,
    bottom: vec4<f32>,
}
@group(3) @binding(0) var<uniform> material: MaterialUniforms;

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) direction: vec3<f32>,
}

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    let rotated = (camera.view * vec4<f32>(in.position, 0.0)).xyz;
    let clip = camera.projection * vec4<f32>(rotated, 1.0);
    out.position = clip.xyww;
    out.direction = in.position;
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    let t = clamp(normalize(in.direction).y * 0.5 + 0.5, 0.0, 1.0);
    return mix(material.bottom, material.top, t);
}
`
