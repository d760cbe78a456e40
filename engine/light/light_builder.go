package light

import "github.com/go-gl/mathgl/mgl32"

// LightBuilderOption configures a Light. A []LightBuilderOption is the Initialize config of
// the Light component.
type LightBuilderOption func(*Light)

// WithKind sets the light kind.
//
// Parameters:
//   - kind: the light kind
//
// Returns:
//   - LightBuilderOption: option function to apply
func WithKind(kind Kind) LightBuilderOption {
	return func(l *Light) {
		l.kind = kind
	}
}

// WithColor sets the RGB colour of the light. For hemisphere lights this is the sky colour.
//
// Parameters:
//   - color: the linear RGB colour
//
// Returns:
//   - LightBuilderOption: option function to apply
func WithColor(color mgl32.Vec3) LightBuilderOption {
	return func(l *Light) {
		l.color = color
	}
}

// WithGroundColor sets the ground colour of a hemisphere light.
func WithGroundColor(color mgl32.Vec3) LightBuilderOption {
	return func(l *Light) {
		l.groundColor = color
	}
}

// WithIntensity sets the scalar intensity multiplier.
//
// Parameters:
//   - intensity: the intensity value
//
// Returns:
//   - LightBuilderOption: option function to apply
func WithIntensity(intensity float32) LightBuilderOption {
	return func(l *Light) {
		l.SetIntensity(intensity)
	}
}

// WithRange sets the attenuation range of point and spot lights.
func WithRange(lightRange float32) LightBuilderOption {
	return func(l *Light) {
		l.SetRange(lightRange)
	}
}

// WithSpotAngle sets the cone half angle of a spot light.
//
// Parameters:
//   - degrees: the half angle in degrees
//
// Returns:
//   - LightBuilderOption: option function to apply
func WithSpotAngle(degrees float32) LightBuilderOption {
	return func(l *Light) {
		l.SetSpotAngle(mgl32.DegToRad(degrees))
	}
}

// WithSize sets the rectangle of an area light.
func WithSize(width, height float32) LightBuilderOption {
	return func(l *Light) {
		l.SetSize(width, height)
	}
}

// WithShadows enables the shadow pass with the given settings.
func WithShadows(s Shadow) LightBuilderOption {
	return func(l *Light) {
		l.castShadows = true
		l.shadow = s
	}
}
