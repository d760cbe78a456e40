package light

import (
	"math"

	"github.com/Carmen-Shannon/oxy-ecs/common"
	"github.com/Carmen-Shannon/oxy-ecs/engine/camera"
	"github.com/Carmen-Shannon/oxy-ecs/engine/ecs"
	"github.com/Carmen-Shannon/oxy-ecs/engine/game_object"
	"github.com/go-gl/mathgl/mgl32"
)

// Kind identifies the kind of light source. The set is closed.
type Kind uint8

const (
	// KindDirectional has no position, only a direction. Used for distant sources like the sun.
	KindDirectional Kind = iota

	// KindSpot emits in a cone from a position along a direction.
	KindSpot

	// KindRectArea emits from a rectangle facing the transform's forward axis.
	KindRectArea

	// KindPoint emits in all directions from a position, attenuated up to Range.
	KindPoint

	// KindHemisphere blends a sky and a ground colour by surface orientation.
	KindHemisphere

	// KindCount is the number of light kinds.
	KindCount
)

var kindInfo = [KindCount]struct {
	name   string
	define string
	stride int
}{
	KindDirectional: {"directional", "NUM_DIR_LIGHTS", 8},
	KindSpot:        {"spot", "NUM_SPOT_LIGHTS", 12},
	KindRectArea:    {"rectArea", "NUM_RECT_AREA_LIGHTS", 12},
	KindPoint:       {"point", "NUM_POINT_LIGHTS", 8},
	KindHemisphere:  {"hemisphere", "NUM_HEMI_LIGHTS", 8},
}

func (k Kind) String() string {
	if k >= KindCount {
		return "unknown"
	}
	return kindInfo[k].name
}

// Define returns the shader define holding the number of lights of this kind.
func (k Kind) Define() string { return kindInfo[k].define }

// DirtyBit returns the bit of this kind in a light-count dirty mask.
func (k Kind) DirtyBit() uint8 { return 1 << k }

// Stride returns the number of float32 values Pack appends for this kind.
func (k Kind) Stride() int { return kindInfo[k].stride }

// UniformField returns the camera uniform array member holding lights of this kind.
func (k Kind) UniformField() string {
	switch k {
	case KindDirectional:
		return "directionalLights"
	case KindSpot:
		return "spotLights"
	case KindRectArea:
		return "rectAreaLights"
	case KindPoint:
		return "pointLights"
	default:
		return "hemisphereLights"
	}
}

// Light is a light source placed by its entity's Transform. Lights point along the
// transform's forward axis.
type Light struct {
	ecs.BaseComponent

	transformType *ecs.ComponentType

	kind        Kind
	color       mgl32.Vec3
	groundColor mgl32.Vec3
	intensity   float32
	lightRange  float32
	spotAngle   float32
	width       float32
	height      float32

	castShadows  bool
	shadow       Shadow
	shadowTarget camera.RenderTarget
}

var _ ecs.Component = &Light{}

func newLight(transformType *ecs.ComponentType) *Light {
	return &Light{
		transformType: transformType,
		color:         mgl32.Vec3{1, 1, 1},
		groundColor:   mgl32.Vec3{0.2, 0.2, 0.2},
		intensity:     1,
		lightRange:    10,
		spotAngle:     mgl32.DegToRad(30),
		width:         1,
		height:        1,
		shadow:        DefaultShadow(),
	}
}

// Initialize applies a []LightBuilderOption config. The kind can only be chosen here.
func (l *Light) Initialize(config any) {
	opts, ok := config.([]LightBuilderOption)
	if !ok {
		return
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.kind >= KindCount {
		l.kind = KindDirectional
	}
}

func (l *Light) Kind() Kind                        { return l.kind }
func (l *Light) Color() mgl32.Vec3                 { return l.color }
func (l *Light) SetColor(c mgl32.Vec3)             { l.color = c }
func (l *Light) GroundColor() mgl32.Vec3           { return l.groundColor }
func (l *Light) SetGroundColor(c mgl32.Vec3)       { l.groundColor = c }
func (l *Light) Intensity() float32                { return l.intensity }
func (l *Light) SetIntensity(v float32)            { l.intensity = max(v, 0) }
func (l *Light) Range() float32                    { return l.lightRange }
func (l *Light) SetRange(v float32)                { l.lightRange = max(v, 0) }
func (l *Light) SpotAngle() float32                { return l.spotAngle }
func (l *Light) Shadow() Shadow                    { return l.shadow }
func (l *Light) SetShadow(s Shadow)                { l.shadow = s }
func (l *Light) ShadowTarget() camera.RenderTarget { return l.shadowTarget }

// SetSpotAngle sets the half angle of a spot cone in radians.
func (l *Light) SetSpotAngle(radians float32) {
	l.spotAngle = mgl32.Clamp(radians, 0, math.Pi/2)
}

// SetSize sets the rectangle of an area light.
func (l *Light) SetSize(width, height float32) {
	l.width, l.height = max(width, 0), max(height, 0)
}

// CastShadows reports whether the light renders a shadow pass. Only directional, spot and
// point lights can cast shadows.
func (l *Light) CastShadows() bool { return l.castShadows && l.ShadowFaces() > 0 }

// SetCastShadows toggles the shadow pass.
func (l *Light) SetCastShadows(v bool) { l.castShadows = v }

// SetShadowTarget assigns the depth target the shadow pass renders into.
func (l *Light) SetShadowTarget(t camera.RenderTarget) { l.shadowTarget = t }

// Transform returns the light entity's Transform, or nil.
func (l *Light) Transform() *game_object.Transform {
	e := l.Entity()
	if e == nil || l.transformType == nil {
		return nil
	}
	tr, _ := e.GetComponent(l.transformType, false).(*game_object.Transform)
	return tr
}

// Position returns the world position of the light.
func (l *Light) Position() mgl32.Vec3 {
	if tr := l.Transform(); tr != nil {
		return tr.WorldPosition()
	}
	return mgl32.Vec3{}
}

// Direction returns the normalized world direction the light points to.
func (l *Light) Direction() mgl32.Vec3 {
	if tr := l.Transform(); tr != nil {
		return tr.Forward()
	}
	return mgl32.Vec3{0, 0, -1}
}

// Pack appends the light in the layout of its WGSL struct and returns the extended slice.
//
// Parameters:
//   - dst: the slice to append to
//
// Returns:
//   - []float32: dst extended by Kind().Stride() values
func (l *Light) Pack(dst []float32) []float32 {
	c := l.color
	switch l.kind {
	case KindDirectional:
		d := l.Direction()
		shadow := float32(0)
		if l.CastShadows() {
			shadow = 1
		}
		return append(dst, d[0], d[1], d[2], l.intensity, c[0], c[1], c[2], shadow)
	case KindPoint:
		p := l.Position()
		return append(dst, p[0], p[1], p[2], l.intensity, c[0], c[1], c[2], l.lightRange)
	case KindSpot:
		p, d := l.Position(), l.Direction()
		cos := float32(math.Cos(float64(l.spotAngle)))
		return append(dst,
			p[0], p[1], p[2], l.intensity,
			c[0], c[1], c[2], l.lightRange,
			d[0], d[1], d[2], cos)
	case KindRectArea:
		p, n := l.Position(), l.Direction()
		return append(dst,
			p[0], p[1], p[2], l.intensity,
			c[0], c[1], c[2], l.width,
			n[0], n[1], n[2], l.height)
	default:
		g := l.groundColor
		return append(dst, c[0], c[1], c[2], l.intensity, g[0], g[1], g[2], 0)
	}
}

// ShadowFaces returns how many shadow views the light renders: six for point lights, one for
// directional and spot lights and zero otherwise.
func (l *Light) ShadowFaces() int {
	switch l.kind {
	case KindPoint:
		return 6
	case KindDirectional, KindSpot:
		return 1
	default:
		return 0
	}
}

// cubeFaces are the forward and up axes of the six point-light shadow views.
var cubeFaces = [6][2]mgl32.Vec3{
	{{1, 0, 0}, {0, -1, 0}},
	{{-1, 0, 0}, {0, -1, 0}},
	{{0, 1, 0}, {0, 0, 1}},
	{{0, -1, 0}, {0, 0, -1}},
	{{0, 0, 1}, {0, -1, 0}},
	{{0, 0, -1}, {0, -1, 0}},
}

// ShadowMatrices returns the view and projection of one shadow view.
//
// Parameters:
//   - face: the view index in [0, ShadowFaces())
//   - center: the world point a directional shadow frustum is centred on
//
// Returns:
//   - view: the light view matrix
//   - projection: the light projection matrix
func (l *Light) ShadowMatrices(face int, center mgl32.Vec3) (view, projection mgl32.Mat4) {
	s := l.shadow
	switch l.kind {
	case KindPoint:
		f := cubeFaces[face%6]
		p := l.Position()
		view = mgl32.LookAtV(p, p.Add(f[0]), f[1])
		projection = common.Perspective(math.Pi/2, 1, s.Near, max(l.lightRange, s.Near+1))
	case KindSpot:
		p, d := l.Position(), l.Direction()
		view = mgl32.LookAtV(p, p.Add(d), stableUp(d))
		projection = common.Perspective(2*l.spotAngle, 1, s.Near, max(l.lightRange, s.Near+1))
	default:
		// eye sits behind the centre, opposite the light direction
		d := l.Direction()
		eye := center.Sub(d.Mul(s.Far * 0.5))
		view = mgl32.LookAtV(eye, center, stableUp(d))
		projection = common.Orthographic(s.HalfExtent, 1, s.Near, s.Far)
	}
	return view, projection
}

// stableUp picks an up vector that is not parallel to dir.
func stableUp(dir mgl32.Vec3) mgl32.Vec3 {
	if float32(math.Abs(float64(dir[1]))) > 0.99 {
		return mgl32.Vec3{1, 0, 0}
	}
	return mgl32.Vec3{0, 1, 0}
}

// Types holds the light component descriptor.
type Types struct {
	Light *ecs.ComponentType
}

// Register registers the Light component with r. It requires the Transform of goTypes.
//
// Parameters:
//   - r: the component registry
//   - goTypes: the standard component descriptors
//
// Returns:
//   - *Types: the registered descriptors
func Register(r *ecs.Registry, goTypes *game_object.Types) *Types {
	if goTypes == nil {
		panic("light: standard component types are required")
	}
	transform := goTypes.Transform
	return &Types{
		Light: r.Register("Light", func() ecs.Component { return newLight(transform) },
			ecs.WithRequires(transform)),
	}
}
