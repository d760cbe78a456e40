package model

import "github.com/go-gl/mathgl/mgl32"

// NewCube creates an indexed cube centred on the origin with one sub-mesh.
//
// Parameters:
//   - name: the mesh identifier
//   - size: the edge length
//
// Returns:
//   - Mesh: the cube mesh
func NewCube(name string, size float32) Mesh {
	h := size / 2
	faces := []struct {
		normal, u, v mgl32.Vec3
	}{
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
	}
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

	vertices := make([]Vertex, 0, 24)
	indices := make([]uint32, 0, 36)
	for _, f := range faces {
		base := uint32(len(vertices))
		for _, c := range corners {
			p := f.normal.Mul(h).Add(f.u.Mul(c[0] * h)).Add(f.v.Mul(c[1] * h))
			vertices = append(vertices, Vertex{
				Position: p,
				Normal:   f.normal,
				UV:       mgl32.Vec2{(c[0] + 1) / 2, (c[1] + 1) / 2},
			})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return NewMesh(name, vertices, indices)
}

// NewPlane creates an indexed plane on the XZ plane facing +Y.
func NewPlane(name string, width, depth float32) Mesh {
	w, d := width/2, depth/2
	up := mgl32.Vec3{0, 1, 0}
	vertices := []Vertex{
		{Position: mgl32.Vec3{-w, 0, d}, Normal: up, UV: mgl32.Vec2{0, 0}},
		{Position: mgl32.Vec3{w, 0, d}, Normal: up, UV: mgl32.Vec2{1, 0}},
		{Position: mgl32.Vec3{w, 0, -d}, Normal: up, UV: mgl32.Vec2{1, 1}},
		{Position: mgl32.Vec3{-w, 0, -d}, Normal: up, UV: mgl32.Vec2{0, 1}},
	}
	return NewMesh(name, vertices, []uint32{0, 1, 2, 0, 2, 3})
}
