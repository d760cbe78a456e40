package camera

import (
	"math"

	"github.com/Carmen-Shannon/oxy-ecs/engine/ecs"
	"github.com/Carmen-Shannon/oxy-ecs/engine/game_object"
	"github.com/go-gl/mathgl/mgl32"
)

// OrbitController is a behaviour that places its entity on a sphere around a target and
// points it at the target. Input handlers call Orbit, Zoom and Pan; the Transform is updated
// in OnLateUpdate.
type OrbitController struct {
	ecs.BaseComponent

	transformType *ecs.ComponentType

	target mgl32.Vec3

	// spherical offset from target
	radius    float32
	azimuth   float32
	elevation float32

	minRadius    float32
	maxRadius    float32
	minElevation float32
	maxElevation float32

	orbitSpeed float32
	zoomSpeed  float32
	panSpeed   float32

	dirty bool
}

var _ game_object.LateUpdater = &OrbitController{}

func newOrbitController(transformType *ecs.ComponentType) *OrbitController {
	return &OrbitController{
		transformType: transformType,
		radius:        10,
		elevation:     float32(math.Pi / 6),
		minRadius:     1,
		maxRadius:     500,
		minElevation:  -float32(math.Pi/2 - 0.05),
		maxElevation:  float32(math.Pi/2 - 0.05),
		orbitSpeed:    1.5,
		zoomSpeed:     1,
		panSpeed:      1,
		dirty:         true,
	}
}

// Initialize applies a []OrbitControllerOption config.
func (o *OrbitController) Initialize(config any) {
	opts, ok := config.([]OrbitControllerOption)
	if !ok {
		return
	}
	for _, opt := range opts {
		opt(o)
	}
	o.clamp()
}

func (o *OrbitController) Target() mgl32.Vec3 { return o.target }
func (o *OrbitController) Radius() float32    { return o.radius }
func (o *OrbitController) Azimuth() float32   { return o.azimuth }
func (o *OrbitController) Elevation() float32 { return o.elevation }

// SetTarget moves the orbit centre.
func (o *OrbitController) SetTarget(target mgl32.Vec3) {
	o.target = target
	o.dirty = true
}

// Orbit rotates around the target. Deltas are scaled by the orbit speed.
//
// Parameters:
//   - dAzimuth: horizontal rotation in radians
//   - dElevation: vertical rotation in radians
func (o *OrbitController) Orbit(dAzimuth, dElevation float32) {
	o.azimuth += dAzimuth * o.orbitSpeed
	o.elevation += dElevation * o.orbitSpeed
	o.clamp()
	o.dirty = true
}

// Zoom moves towards the target for positive deltas.
func (o *OrbitController) Zoom(delta float32) {
	o.radius -= delta * o.zoomSpeed
	o.clamp()
	o.dirty = true
}

// Pan translates both the target and the camera along the camera's right and up axes.
func (o *OrbitController) Pan(right, up float32) {
	r, u, _ := o.axes()
	o.target = o.target.Add(r.Mul(right * o.panSpeed)).Add(u.Mul(up * o.panSpeed))
	o.dirty = true
}

// Position returns the world position implied by the spherical coordinates.
func (o *OrbitController) Position() mgl32.Vec3 {
	cosElev := float32(math.Cos(float64(o.elevation)))
	sinElev := float32(math.Sin(float64(o.elevation)))
	cosAzim := float32(math.Cos(float64(o.azimuth)))
	sinAzim := float32(math.Sin(float64(o.azimuth)))
	return o.target.Add(mgl32.Vec3{
		o.radius * cosElev * sinAzim,
		o.radius * sinElev,
		o.radius * cosElev * cosAzim,
	})
}

// OnLateUpdate writes pending changes to the Transform.
func (o *OrbitController) OnLateUpdate(float64) {
	if !o.dirty {
		return
	}
	tr := transformOf(o.Entity(), o.transformType)
	if tr == nil {
		return
	}
	tr.SetPosition(o.Position())
	tr.LookAt(o.target, mgl32.Vec3{0, 1, 0})
	o.dirty = false
}

func (o *OrbitController) clamp() {
	o.radius = mgl32.Clamp(o.radius, o.minRadius, o.maxRadius)
	o.elevation = mgl32.Clamp(o.elevation, o.minElevation, o.maxElevation)
}

// axes returns the right, up and forward vectors of the LookAt basis.
func (o *OrbitController) axes() (right, up, forward mgl32.Vec3) {
	back := o.Position().Sub(o.target)
	if back.Len() < 1e-6 {
		return mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, -1}
	}
	back = back.Normalize()
	right = mgl32.Vec3{0, 1, 0}.Cross(back)
	if right.Len() < 1e-6 {
		right = mgl32.Vec3{1, 0, 0}
	}
	right = right.Normalize()
	up = back.Cross(right)
	return right, up, back.Mul(-1)
}
