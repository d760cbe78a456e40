package model

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCubeGeometry(t *testing.T) {
	m := NewCube("cube", 2)
	assert.Len(t, m.Vertices(), 24)
	assert.Len(t, m.Indices(), 36)
	assert.True(t, m.Indexed())

	center, radius := m.Bounds()
	assert.InDelta(t, 0, center.Len(), 1e-6)
	assert.InDelta(t, math.Sqrt(3), radius, 1e-5)

	require.Len(t, m.SubMeshes(), 1)
	assert.Equal(t, SubMesh{Start: 0, Count: 36, Material: -1}, m.SubMesh(0))
	assert.Zero(t, m.SubMesh(0).MaterialIndex())
	assert.Equal(t, SubMesh{}, m.SubMesh(5))
}

func TestSetGeometryBumpsVersion(t *testing.T) {
	m := NewPlane("plane", 2, 2)
	v := m.Version()
	verts := []Vertex{
		{Position: mgl32.Vec3{0, 0, 0}},
		{Position: mgl32.Vec3{4, 0, 0}},
		{Position: mgl32.Vec3{4, 2, 0}},
	}
	m.SetGeometry(verts, nil, []SubMesh{{Count: 3, Material: 2}})
	assert.Equal(t, v+1, m.Version())
	assert.False(t, m.Indexed())
	assert.Equal(t, 2, m.SubMesh(0).MaterialIndex())

	center, _ := m.Bounds()
	assert.Equal(t, mgl32.Vec3{2, 1, 0}, center)
}

func TestWithSubMeshes(t *testing.T) {
	verts := make([]Vertex, 6)
	m := NewMesh("split", verts, nil, WithSubMeshes(SubMesh{Count: 3}, SubMesh{Start: 3, Count: 3, Material: 1}))
	require.Len(t, m.SubMeshes(), 2)
	assert.Equal(t, 1, m.SubMesh(1).MaterialIndex())

	m = NewMesh("whole", verts, nil, WithSubMeshes())
	assert.Len(t, m.SubMeshes(), 1)
	assert.EqualValues(t, 6, m.SubMesh(0).Count)
}

func TestMeshBytes(t *testing.T) {
	v := Vertex{Position: mgl32.Vec3{1, 2, 3}, Normal: mgl32.Vec3{0, 1, 0}, UV: mgl32.Vec2{0.5, 0.25}}
	m := NewMesh("tri", []Vertex{v, v, v}, []uint32{0, 1, 2})

	vb := m.VertexBytes()
	require.Len(t, vb, 3*VertexStride)
	assert.Equal(t, float32(2), math.Float32frombits(binary.LittleEndian.Uint32(vb[4:8])))
	assert.Equal(t, float32(0.25), math.Float32frombits(binary.LittleEndian.Uint32(vb[28:32])))

	ib := m.IndexBytes()
	require.Len(t, ib, 12)
	assert.EqualValues(t, 2, binary.LittleEndian.Uint32(ib[8:12]))
}

func TestMeshReleaseCountsReferences(t *testing.T) {
	m := NewCube("cube", 1)
	m.Retain()
	m.Retain()
	assert.Equal(t, 2, m.RefCount())
	assert.False(t, m.Release())
	assert.True(t, m.Release())
	assert.True(t, m.IsDisposed())
	assert.False(t, m.Release())
}
