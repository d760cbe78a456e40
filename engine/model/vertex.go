package model

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// VertexStride is the byte size of one interleaved Vertex on the GPU.
const VertexStride = 32

// Vertex is the interleaved vertex format shared by every mesh:
// position (12 bytes), normal (12 bytes), uv (8 bytes).
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
}

// Marshal appends the little-endian GPU layout of v to buf.
//
// Parameters:
//   - buf: the destination buffer
//
// Returns:
//   - []byte: buf with VertexStride bytes appended
func (v Vertex) Marshal(buf []byte) []byte {
	var tmp [VertexStride]byte
	binary.LittleEndian.PutUint32(tmp[0:4], math.Float32bits(v.Position[0]))
	binary.LittleEndian.PutUint32(tmp[4:8], math.Float32bits(v.Position[1]))
	binary.LittleEndian.PutUint32(tmp[8:12], math.Float32bits(v.Position[2]))
	binary.LittleEndian.PutUint32(tmp[12:16], math.Float32bits(v.Normal[0]))
	binary.LittleEndian.PutUint32(tmp[16:20], math.Float32bits(v.Normal[1]))
	binary.LittleEndian.PutUint32(tmp[20:24], math.Float32bits(v.Normal[2]))
	binary.LittleEndian.PutUint32(tmp[24:28], math.Float32bits(v.UV[0]))
	binary.LittleEndian.PutUint32(tmp[28:32], math.Float32bits(v.UV[1]))
	return append(buf, tmp[:]...)
}
