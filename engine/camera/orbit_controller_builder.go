package camera

import "github.com/go-gl/mathgl/mgl32"

// OrbitControllerOption configures an OrbitController. A []OrbitControllerOption is the
// Initialize config of the component.
type OrbitControllerOption func(*OrbitController)

// WithTarget sets the orbit centre.
//
// Parameters:
//   - target: the world position to orbit around
//
// Returns:
//   - OrbitControllerOption: option function to apply
func WithTarget(target mgl32.Vec3) OrbitControllerOption {
	return func(o *OrbitController) {
		o.target = target
	}
}

// WithSpherical sets the initial spherical coordinates.
//
// Parameters:
//   - radius: distance from the target
//   - azimuth: horizontal angle in radians
//   - elevation: vertical angle from the horizontal plane in radians
//
// Returns:
//   - OrbitControllerOption: option function to apply
func WithSpherical(radius, azimuth, elevation float32) OrbitControllerOption {
	return func(o *OrbitController) {
		o.radius = radius
		o.azimuth = azimuth
		o.elevation = elevation
	}
}

// WithRadiusBounds sets the zoom limits.
func WithRadiusBounds(minRadius, maxRadius float32) OrbitControllerOption {
	return func(o *OrbitController) {
		if minRadius > 0 && maxRadius >= minRadius {
			o.minRadius, o.maxRadius = minRadius, maxRadius
		}
	}
}

// WithSpeeds sets the orbit, zoom and pan multipliers.
func WithSpeeds(orbit, zoom, pan float32) OrbitControllerOption {
	return func(o *OrbitController) {
		o.orbitSpeed, o.zoomSpeed, o.panSpeed = orbit, zoom, pan
	}
}
