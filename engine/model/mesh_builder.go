package model

// MeshBuilderOption is a functional option for configuring a Mesh.
type MeshBuilderOption func(*mesh)

// WithSubMeshes splits the mesh into the given ranges, each with its own material slot.
//
// Parameters:
//   - subMeshes: the sub-mesh ranges
//
// Returns:
//   - MeshBuilderOption: option function to apply
func WithSubMeshes(subMeshes ...SubMesh) MeshBuilderOption {
	return func(m *mesh) {
		if len(subMeshes) > 0 {
			m.subMeshes = subMeshes
		}
	}
}
