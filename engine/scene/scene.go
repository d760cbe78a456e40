package scene

import (
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-ecs/engine/renderer/shader"
	"github.com/go-gl/mathgl/mgl32"
)

var sceneIDs atomic.Uint64

// Fog describes linear distance fog.
type Fog struct {
	Enabled bool
	Color   mgl32.Vec3
	Near    float32
	Far     float32
}

// scene is the implementation of the Scene interface.
type scene struct {
	id                uint64
	name              string
	active            bool
	defines           *shader.Defines
	ambientColor      mgl32.Vec3
	fog               Fog
	lightmapIntensity float32
	version           uint64
}

// Scene groups entities that may be parented to each other and carries the scene-level
// shader defines and uniforms. Scenes can be hot-swapped via the Active flag; cameras of an
// inactive scene are not rendered.
type Scene interface {
	// ID returns a process-unique identifier.
	ID() uint64

	// Name returns the scene's identifier.
	Name() string

	// SetName sets the scene's identifier.
	SetName(name string)

	// Active returns whether this scene is currently active for rendering.
	Active() bool

	// SetActive sets whether this scene is active for rendering.
	SetActive(active bool)

	// Defines returns the scene-level define set. Call Touch after editing it.
	//
	// Returns:
	//   - *shader.Defines: the mutable define set
	Defines() *shader.Defines

	// AmbientColor returns the ambient light colour.
	AmbientColor() mgl32.Vec3

	// SetAmbientColor sets the ambient light colour.
	//
	// Parameters:
	//   - c: the linear RGB colour
	SetAmbientColor(c mgl32.Vec3)

	// Fog returns the fog settings.
	Fog() Fog

	// SetFog replaces the fog settings and toggles the USE_FOG define.
	//
	// Parameters:
	//   - fog: the new settings
	SetFog(fog Fog)

	// LightmapIntensity returns the lightmap multiplier.
	LightmapIntensity() float32

	// SetLightmapIntensity sets the lightmap multiplier.
	SetLightmapIntensity(v float32)

	// Version increases on every change and lets the renderer skip scene uniform uploads.
	Version() uint64

	// Touch marks the scene dirty after an external edit.
	Touch()
}

var _ Scene = &scene{}

// NewScene creates an active scene.
//
// Parameters:
//   - name: the scene's identifier
//   - options: variadic list of SceneBuilderOption functions
//
// Returns:
//   - Scene: the new scene
func NewScene(name string, options ...SceneBuilderOption) Scene {
	s := &scene{
		id:                sceneIDs.Add(1),
		name:              name,
		active:            true,
		defines:           shader.NewDefines(),
		ambientColor:      mgl32.Vec3{0.2, 0.2, 0.2},
		lightmapIntensity: 1,
		version:           1,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *scene) ID() uint64                 { return s.id }
func (s *scene) Name() string               { return s.name }
func (s *scene) SetName(name string)        { s.name = name }
func (s *scene) Active() bool               { return s.active }
func (s *scene) SetActive(active bool)      { s.active = active }
func (s *scene) Defines() *shader.Defines   { return s.defines }
func (s *scene) AmbientColor() mgl32.Vec3   { return s.ambientColor }
func (s *scene) Fog() Fog                   { return s.fog }
func (s *scene) LightmapIntensity() float32 { return s.lightmapIntensity }
func (s *scene) Version() uint64            { return s.version }
func (s *scene) Touch()                     { s.version++ }

func (s *scene) SetAmbientColor(c mgl32.Vec3) {
	s.ambientColor = c
	s.version++
}

func (s *scene) SetFog(fog Fog) {
	s.fog = fog
	if fog.Enabled {
		s.defines.Add("USE_FOG")
	} else {
		s.defines.Remove("USE_FOG")
	}
	s.version++
}

func (s *scene) SetLightmapIntensity(v float32) {
	s.lightmapIntensity = v
	s.version++
}
