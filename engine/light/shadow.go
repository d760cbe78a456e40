package light

// Shadow defaults.
const (
	ShadowMapResolution             = 2048
	DefaultShadowHalfExtent float32 = 40.0
	DefaultShadowNear       float32 = 0.1
	DefaultShadowFar        float32 = 200.0
	DefaultShadowBias       float32 = 0.001

	// DefaultShadowNormalBiasScale multiplies the world size of one shadow texel to get the
	// normal-offset bias. Typical values are 2 to 4.
	DefaultShadowNormalBiasScale float32 = 3.0
)

// Shadow holds the shadow-pass settings of a light.
type Shadow struct {
	// MapSize is the width and height of the depth target in texels.
	MapSize int

	// HalfExtent is the half size of a directional light's orthographic frustum.
	HalfExtent float32

	Near float32
	Far  float32
	Bias float32

	// NormalBiasScale scales the per-texel world size into the normal-offset bias.
	NormalBiasScale float32
}

// DefaultShadow returns the default shadow settings.
func DefaultShadow() Shadow {
	return Shadow{
		MapSize:         ShadowMapResolution,
		HalfExtent:      DefaultShadowHalfExtent,
		Near:            DefaultShadowNear,
		Far:             DefaultShadowFar,
		Bias:            DefaultShadowBias,
		NormalBiasScale: DefaultShadowNormalBiasScale,
	}
}

// NormalBias returns the world-space distance a fragment is pushed along its normal before
// the shadow lookup.
func (s Shadow) NormalBias() float32 {
	if s.MapSize <= 0 {
		return 0
	}
	texelWorldSize := 2.0 * s.HalfExtent / float32(s.MapSize)
	return texelWorldSize * s.NormalBiasScale
}
