package shader

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// UniformScope buckets uniform blocks by how often their inputs change. The renderer
// re-uploads a scope only when the object it is derived from changes.
type UniformScope int

const (
	// ScopeGlobal holds tone mapping, ambient light, fog and resolution.
	ScopeGlobal UniformScope = iota

	// ScopeScene holds per-scene values such as lightmap intensity.
	ScopeScene

	// ScopeCamera holds view and projection matrices and the light arrays.
	ScopeCamera

	// ScopeShadow holds the light of the shadow pass in progress.
	ScopeShadow

	// ScopeModel holds the model matrices of one draw call.
	ScopeModel

	// ScopeMaterial holds material uniform values.
	ScopeMaterial

	scopeCount
)

var scopeNames = [...]string{"global", "scene", "camera", "shadow", "model", "material"}

func (s UniformScope) String() string {
	if s < 0 || s >= scopeCount {
		return "unknown"
	}
	return scopeNames[s]
}

// scopeOf derives the scope of a uniform block from its variable name.
func scopeOf(varName string) UniformScope {
	for i, name := range scopeNames {
		if name == varName {
			return UniformScope(i)
		}
	}
	return ScopeMaterial
}

// UniformField is one member of a uniform block.
type UniformField struct {
	Name   string
	Type   string
	Offset uint64
	Size   uint64
}

// UniformBlock is a var<uniform> declaration reflected from a compiled program.
type UniformBlock struct {
	Name    string
	Type    string
	Scope   UniformScope
	Group   int
	Binding int
	Size    uint64
	Fields  []UniformField
}

// Field returns the member called name.
func (b *UniformBlock) Field(name string) (UniformField, bool) {
	for _, f := range b.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return UniformField{}, false
}

// Encode writes value into dst at the offset of the member called name. dst must be at least
// b.Size long. Supported values are float32, float64, int, int32, uint32, bool, mgl32 vectors,
// mgl32.Mat3, mgl32.Mat4 and []float32.
//
// Parameters:
//   - dst: the block's CPU staging bytes
//   - name: the member name
//   - value: the value to encode
//
// Returns:
//   - bool: false if the member does not exist or the value type is unsupported
func (b *UniformBlock) Encode(dst []byte, name string, value any) bool {
	f, ok := b.Field(name)
	if !ok {
		return false
	}
	out := dst[f.Offset : f.Offset+f.Size]

	switch v := value.(type) {
	case float32:
		putFloats(out, v)
	case float64:
		putFloats(out, float32(v))
	case int:
		binary.LittleEndian.PutUint32(out, uint32(int32(v)))
	case int32:
		binary.LittleEndian.PutUint32(out, uint32(v))
	case uint32:
		binary.LittleEndian.PutUint32(out, v)
	case bool:
		var u uint32
		if v {
			u = 1
		}
		binary.LittleEndian.PutUint32(out, u)
	case mgl32.Vec2:
		putFloats(out, v[:]...)
	case mgl32.Vec3:
		putFloats(out, v[:]...)
	case mgl32.Vec4:
		putFloats(out, v[:]...)
	case mgl32.Mat4:
		putFloats(out, v[:]...)
	case mgl32.Mat3:
		// each column is padded to 16 bytes
		for c := 0; c < 3; c++ {
			if len(out) < (c+1)*16 {
				break
			}
			putFloats(out[c*16:], v[c*3], v[c*3+1], v[c*3+2])
		}
	case []float32:
		putFloats(out, v...)
	default:
		return false
	}
	return true
}

func putFloats(dst []byte, values ...float32) {
	for i, v := range values {
		if (i+1)*4 > len(dst) {
			return
		}
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v))
	}
}
