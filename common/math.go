package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Perspective builds a right-handed perspective projection for WebGPU clip space, where depth
// maps to [0, 1] rather than the [-1, 1] range of mgl32.Perspective.
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//
// Returns:
//   - mgl32.Mat4: the projection matrix
func Perspective(fovY, aspect, near, far float32) mgl32.Mat4 {
	f := 1.0 / float32(math.Tan(float64(fovY)/2.0))
	var m mgl32.Mat4
	m[0] = f / aspect
	m[5] = f
	m[10] = far / (near - far)
	m[11] = -1.0
	m[14] = (near * far) / (near - far)
	return m
}

// Orthographic builds a right-handed orthographic projection for WebGPU clip space.
//
// Parameters:
//   - halfHeight: half the visible height
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance
//   - far: far clipping plane distance
//
// Returns:
//   - mgl32.Mat4: the projection matrix
func Orthographic(halfHeight, aspect, near, far float32) mgl32.Mat4 {
	halfWidth := halfHeight * aspect
	m := mgl32.Ident4()
	m[0] = 1 / halfWidth
	m[5] = 1 / halfHeight
	m[10] = 1 / (near - far)
	m[14] = near / (near - far)
	return m
}

// NormalMatrix returns the inverse transpose of the upper 3x3 of model.
func NormalMatrix(model mgl32.Mat4) mgl32.Mat3 {
	return model.Mat3().Inv().Transpose()
}
