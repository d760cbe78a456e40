package shader

import (
	"fmt"
	"sort"

	"github.com/cogentcore/webgpu/wgpu"
)

// Reflection describes the bindings and vertex inputs of a processed vertex/fragment pair.
type Reflection struct {
	VertexEntryPoint   string
	FragmentEntryPoint string
	VertexLayouts      []wgpu.VertexBufferLayout

	// BindGroupLayouts are keyed by group index with entries sorted by binding.
	// Visibility merges both stages.
	BindGroupLayouts map[int]wgpu.BindGroupLayoutDescriptor

	Uniforms []*UniformBlock
}

// UniformsIn returns the uniform blocks of scope s.
func (r *Reflection) UniformsIn(s UniformScope) []*UniformBlock {
	var out []*UniformBlock
	for _, b := range r.Uniforms {
		if b.Scope == s {
			out = append(out, b)
		}
	}
	return out
}

// Reflect extracts entry points, vertex layouts and uniform blocks from processed sources.
// Only uniform buffer bindings are supported.
//
// Parameters:
//   - vertex: the processed vertex stage source
//   - fragment: the processed fragment stage source
//
// Returns:
//   - *Reflection: the extracted description
//   - error: an error if an entry point is missing or a binding is unsupported
func Reflect(vertex, fragment string) (*Reflection, error) {
	vs := stripComments(vertex)
	fs := stripComments(fragment)

	r := &Reflection{
		VertexEntryPoint:   parseEntryPoint(vs, StageVertex),
		FragmentEntryPoint: parseEntryPoint(fs, StageFragment),
		BindGroupLayouts:   make(map[int]wgpu.BindGroupLayoutDescriptor),
	}
	if r.VertexEntryPoint == "" {
		return nil, fmt.Errorf("no @vertex entry point")
	}
	if r.FragmentEntryPoint == "" {
		return nil, fmt.Errorf("no @fragment entry point")
	}

	vsStructs := parseStructBlocks(vs)
	r.VertexLayouts = parseVertexLayouts(vsStructs)

	entries := make(map[int]map[int]*wgpu.BindGroupLayoutEntry)
	blocks := make(map[[2]int]*UniformBlock)

	for _, stage := range []struct {
		source     string
		visibility wgpu.ShaderStage
	}{
		{vs, wgpu.ShaderStageVertex},
		{fs, wgpu.ShaderStageFragment},
	} {
		structs := parseStructBlocks(stage.source)
		known := layoutStructs(structs)
		byName := make(map[string]parsedStruct, len(structs))
		for _, ps := range structs {
			byName[ps.name] = ps
		}

		for _, b := range parseBindings(stage.source) {
			if b.addressSpace != "uniform" {
				return nil, fmt.Errorf("binding %s at @group(%d) @binding(%d): only uniform buffers are supported", b.varName, b.group, b.binding)
			}
			if entries[b.group] == nil {
				entries[b.group] = make(map[int]*wgpu.BindGroupLayoutEntry)
			}
			if e, ok := entries[b.group][b.binding]; ok {
				e.Visibility |= stage.visibility
				continue
			}

			ps, ok := byName[b.typeName]
			if !ok {
				return nil, fmt.Errorf("uniform %s: unknown struct type %s", b.varName, b.typeName)
			}
			fields, layout, ok := layoutStruct(ps, known)
			if !ok {
				return nil, fmt.Errorf("uniform %s: cannot lay out struct %s", b.varName, b.typeName)
			}

			e := &wgpu.BindGroupLayoutEntry{
				Binding:    uint32(b.binding),
				Visibility: stage.visibility,
			}
			e.Buffer.Type = wgpu.BufferBindingTypeUniform
			e.Buffer.MinBindingSize = layout.size
			entries[b.group][b.binding] = e

			blocks[[2]int{b.group, b.binding}] = &UniformBlock{
				Name:    b.varName,
				Type:    b.typeName,
				Scope:   scopeOf(b.varName),
				Group:   b.group,
				Binding: b.binding,
				Size:    layout.size,
				Fields:  fields,
			}
		}
	}

	for group, byBinding := range entries {
		list := make([]wgpu.BindGroupLayoutEntry, 0, len(byBinding))
		for _, e := range byBinding {
			list = append(list, *e)
		}
		sort.Slice(list, func(i, j int) bool { return list[i].Binding < list[j].Binding })
		r.BindGroupLayouts[group] = wgpu.BindGroupLayoutDescriptor{Entries: list}
	}
	for _, b := range blocks {
		r.Uniforms = append(r.Uniforms, b)
	}
	sort.Slice(r.Uniforms, func(i, j int) bool {
		if r.Uniforms[i].Group != r.Uniforms[j].Group {
			return r.Uniforms[i].Group < r.Uniforms[j].Group
		}
		return r.Uniforms[i].Binding < r.Uniforms[j].Binding
	})
	return r, nil
}
