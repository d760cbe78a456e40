package model

import (
	"encoding/binary"
	"fmt"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
)

var meshIDs atomic.Uint64

// SubMesh is a contiguous range of a mesh drawn with one material slot.
// Start and Count index the index buffer, or the vertex buffer for non-indexed meshes.
type SubMesh struct {
	Start uint32
	Count uint32

	// Material is the declared material slot; a negative value means slot 0.
	Material int
}

// MaterialIndex returns the material slot of the sub-mesh.
func (s SubMesh) MaterialIndex() int {
	if s.Material < 0 {
		return 0
	}
	return s.Material
}

// mesh is the implementation of the Mesh interface.
type mesh struct {
	id        uint64
	name      string
	vertices  []Vertex
	indices   []uint32
	subMeshes []SubMesh
	version   uint64
	center    mgl32.Vec3
	radius    float32
	refs      int
	disposed  bool
}

// Mesh is reference-counted vertex data split into sub-meshes. A mesh is disposed when its
// last reference is released; a disposed mesh must not be drawn.
type Mesh interface {
	// ID returns a process-unique identifier used to key GPU buffers.
	ID() uint64

	// Name returns the mesh identifier.
	Name() string

	// Vertices returns the vertex data.
	Vertices() []Vertex

	// Indices returns the index data, or nil for a non-indexed mesh.
	Indices() []uint32

	// Indexed reports whether the mesh has an index buffer.
	Indexed() bool

	// SubMeshes returns the sub-mesh ranges.
	SubMeshes() []SubMesh

	// SubMesh returns sub-mesh i.
	//
	// Parameters:
	//   - i: the sub-mesh index
	//
	// Returns:
	//   - SubMesh: the range, or the zero value when out of range
	SubMesh(i int) SubMesh

	// SetGeometry replaces vertices, indices and sub-meshes and bumps the version.
	//
	// Parameters:
	//   - vertices: the new vertices
	//   - indices: the new indices, or nil
	//   - subMeshes: the new ranges; nil means one range over everything
	SetGeometry(vertices []Vertex, indices []uint32, subMeshes []SubMesh)

	// Version increases every time the geometry changes.
	Version() uint64

	// VertexBytes returns the GPU layout of all vertices.
	VertexBytes() []byte

	// IndexBytes returns the GPU layout of all indices as uint32.
	IndexBytes() []byte

	// Bounds returns the local-space bounding sphere.
	//
	// Returns:
	//   - mgl32.Vec3: the sphere centre
	//   - float32: the sphere radius
	Bounds() (mgl32.Vec3, float32)

	// Retain increments the reference count.
	Retain()

	// Release decrements the reference count and disposes the mesh at zero.
	//
	// Returns:
	//   - bool: true if this call disposed the mesh
	Release() bool

	// RefCount returns the current reference count.
	RefCount() int

	// IsDisposed reports whether the mesh has been disposed.
	IsDisposed() bool
}

var _ Mesh = &mesh{}

// NewMesh creates a mesh with a reference count of zero.
//
// Parameters:
//   - name: the mesh identifier
//   - vertices: the vertex data
//   - indices: the index data, or nil for a non-indexed mesh
//   - options: variadic list of MeshBuilderOption functions
//
// Returns:
//   - Mesh: the new mesh
func NewMesh(name string, vertices []Vertex, indices []uint32, options ...MeshBuilderOption) Mesh {
	m := &mesh{
		id:   meshIDs.Add(1),
		name: name,
	}
	m.SetGeometry(vertices, indices, nil)
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *mesh) ID() uint64           { return m.id }
func (m *mesh) Name() string         { return m.name }
func (m *mesh) Vertices() []Vertex   { return m.vertices }
func (m *mesh) Indices() []uint32    { return m.indices }
func (m *mesh) Indexed() bool        { return len(m.indices) > 0 }
func (m *mesh) SubMeshes() []SubMesh { return m.subMeshes }
func (m *mesh) Version() uint64      { return m.version }
func (m *mesh) RefCount() int        { return m.refs }
func (m *mesh) IsDisposed() bool     { return m.disposed }
func (m *mesh) Retain()              { m.refs++ }
func (m *mesh) String() string       { return fmt.Sprintf("mesh(%s#%d)", m.name, m.id) }
func (m *mesh) Bounds() (mgl32.Vec3, float32) {
	return m.center, m.radius
}

func (m *mesh) SubMesh(i int) SubMesh {
	if i < 0 || i >= len(m.subMeshes) {
		return SubMesh{}
	}
	return m.subMeshes[i]
}

func (m *mesh) SetGeometry(vertices []Vertex, indices []uint32, subMeshes []SubMesh) {
	m.vertices = vertices
	m.indices = indices
	if subMeshes == nil {
		count := uint32(len(vertices))
		if len(indices) > 0 {
			count = uint32(len(indices))
		}
		subMeshes = []SubMesh{{Start: 0, Count: count, Material: -1}}
	}
	m.subMeshes = subMeshes
	m.computeBounds()
	m.version++
}

func (m *mesh) computeBounds() {
	if len(m.vertices) == 0 {
		m.center, m.radius = mgl32.Vec3{}, 0
		return
	}
	lo, hi := m.vertices[0].Position, m.vertices[0].Position
	for _, v := range m.vertices[1:] {
		for i := 0; i < 3; i++ {
			lo[i] = min(lo[i], v.Position[i])
			hi[i] = max(hi[i], v.Position[i])
		}
	}
	m.center = lo.Add(hi).Mul(0.5)
	m.radius = 0
	for _, v := range m.vertices {
		m.radius = max(m.radius, v.Position.Sub(m.center).Len())
	}
}

func (m *mesh) VertexBytes() []byte {
	buf := make([]byte, 0, len(m.vertices)*VertexStride)
	for _, v := range m.vertices {
		buf = v.Marshal(buf)
	}
	return buf
}

func (m *mesh) IndexBytes() []byte {
	buf := make([]byte, len(m.indices)*4)
	for i, idx := range m.indices {
		binary.LittleEndian.PutUint32(buf[i*4:], idx)
	}
	return buf
}

func (m *mesh) Release() bool {
	if m.disposed {
		return false
	}
	if m.refs > 0 {
		m.refs--
	}
	if m.refs > 0 {
		return false
	}
	m.disposed = true
	return true
}
