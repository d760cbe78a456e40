package game_object

import (
	"github.com/Carmen-Shannon/oxy-ecs/engine/ecs"
	"github.com/go-gl/mathgl/mgl32"
)

// TransformConfig is the optional Initialize value of a Transform.
type TransformConfig struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

// Transform places its entity in the world. The world matrix follows the entity hierarchy
// and is recomputed lazily when the local values or any ancestor changed.
type Transform struct {
	ecs.BaseComponent

	position mgl32.Vec3
	rotation mgl32.Quat
	scale    mgl32.Vec3

	local      mgl32.Mat4
	localDirty bool

	world               mgl32.Mat4
	worldVersion        uint64
	cachedParent        *Transform
	cachedParentVersion uint64
	worldValid          bool
}

func newTransform() *Transform {
	return &Transform{
		rotation:   mgl32.QuatIdent(),
		scale:      mgl32.Vec3{1, 1, 1},
		localDirty: true,
	}
}

func (t *Transform) Initialize(config any) {
	cfg, ok := config.(*TransformConfig)
	if !ok || cfg == nil {
		return
	}
	t.position = cfg.Position
	if cfg.Rotation != (mgl32.Quat{}) {
		t.rotation = cfg.Rotation
	}
	if cfg.Scale != (mgl32.Vec3{}) {
		t.scale = cfg.Scale
	}
	t.localDirty = true
}

func (t *Transform) Position() mgl32.Vec3 { return t.position }
func (t *Transform) Rotation() mgl32.Quat { return t.rotation }
func (t *Transform) Scale() mgl32.Vec3    { return t.scale }

func (t *Transform) SetPosition(p mgl32.Vec3) {
	t.position = p
	t.localDirty = true
}

func (t *Transform) SetRotation(q mgl32.Quat) {
	t.rotation = q.Normalize()
	t.localDirty = true
}

// SetEulerAngles sets the rotation from XYZ angles in degrees.
func (t *Transform) SetEulerAngles(x, y, z float32) {
	t.SetRotation(mgl32.AnglesToQuat(mgl32.DegToRad(x), mgl32.DegToRad(y), mgl32.DegToRad(z), mgl32.XYZ))
}

func (t *Transform) SetScale(s mgl32.Vec3) {
	t.scale = s
	t.localDirty = true
}

// LookAt rotates the transform so its forward axis points at target.
//
// Parameters:
//   - target: the world-space point to face
//   - up: the world-space up direction
func (t *Transform) LookAt(target, up mgl32.Vec3) {
	dir := target.Sub(t.WorldPosition())
	if dir.Len() == 0 {
		return
	}
	t.SetRotation(mgl32.QuatLookAtV(mgl32.Vec3{}, dir, up))
}

// LocalMatrix returns translation * rotation * scale.
func (t *Transform) LocalMatrix() mgl32.Mat4 {
	if t.localDirty {
		t.local = mgl32.Translate3D(t.position[0], t.position[1], t.position[2]).
			Mul4(t.rotation.Mat4()).
			Mul4(mgl32.Scale3D(t.scale[0], t.scale[1], t.scale[2]))
		t.localDirty = false
		t.worldValid = false
	}
	return t.local
}

// LocalToWorld returns the world matrix of the transform.
func (t *Transform) LocalToWorld() mgl32.Mat4 {
	parent := t.parentTransform()
	var parentVersion uint64
	if parent != nil {
		parent.LocalToWorld()
		parentVersion = parent.worldVersion
	}
	local := t.LocalMatrix()
	if t.worldValid && parent == t.cachedParent && parentVersion == t.cachedParentVersion {
		return t.world
	}
	if parent != nil {
		t.world = parent.world.Mul4(local)
	} else {
		t.world = local
	}
	t.cachedParent = parent
	t.cachedParentVersion = parentVersion
	t.worldValid = true
	t.worldVersion++
	return t.world
}

// WorldPosition returns the translation of the world matrix.
func (t *Transform) WorldPosition() mgl32.Vec3 {
	return t.LocalToWorld().Col(3).Vec3()
}

// Forward returns the world-space -Z axis.
func (t *Transform) Forward() mgl32.Vec3 {
	return t.LocalToWorld().Mul4x1(mgl32.Vec4{0, 0, -1, 0}).Vec3().Normalize()
}

// Up returns the world-space +Y axis.
func (t *Transform) Up() mgl32.Vec3 {
	return t.LocalToWorld().Mul4x1(mgl32.Vec4{0, 1, 0, 0}).Vec3().Normalize()
}

// WorldToLocal returns the inverse of the world matrix.
func (t *Transform) WorldToLocal() mgl32.Mat4 {
	return t.LocalToWorld().Inv()
}

func (t *Transform) parentTransform() *Transform {
	e := t.Entity()
	if e == nil {
		return nil
	}
	for p := e.Parent(); p != nil; p = p.Parent() {
		if pt, ok := p.GetComponent(t.Type(), false).(*Transform); ok {
			return pt
		}
	}
	return nil
}
