package shader

import (
	"strconv"
	"strings"
)

// typeLayout is the host-shareable size and alignment of a WGSL type.
type typeLayout struct {
	size  uint64
	align uint64
}

// wgslLayouts holds the uniform layout rules of the WGSL types a uniform block may contain.
// Reference: https://www.w3.org/TR/WGSL/#alignment-and-size
var wgslLayouts = map[string]typeLayout{
	"f32":         {4, 4},
	"i32":         {4, 4},
	"u32":         {4, 4},
	"vec2<f32>":   {8, 8},
	"vec2f":       {8, 8},
	"vec3<f32>":   {12, 16},
	"vec3f":       {12, 16},
	"vec4<f32>":   {16, 16},
	"vec4f":       {16, 16},
	"vec2<i32>":   {8, 8},
	"vec4<i32>":   {16, 16},
	"vec2<u32>":   {8, 8},
	"vec4<u32>":   {16, 16},
	"mat3x3<f32>": {48, 16},
	"mat3x3f":     {48, 16},
	"mat4x4<f32>": {64, 16},
	"mat4x4f":     {64, 16},
}

func alignUp(align, v uint64) uint64 {
	if align == 0 {
		return v
	}
	return (v + align - 1) &^ (align - 1)
}

// resolveLayout resolves primitives, known structs and fixed-size arrays.
func resolveLayout(typeName string, known map[string]typeLayout) (typeLayout, bool) {
	if l, ok := wgslLayouts[typeName]; ok {
		return l, true
	}
	if l, ok := known[typeName]; ok {
		return l, true
	}
	inner, ok := strings.CutPrefix(typeName, "array<")
	if !ok || !strings.HasSuffix(inner, ">") {
		return typeLayout{}, false
	}
	elemName, countText, ok := strings.Cut(strings.TrimSuffix(inner, ">"), ",")
	if !ok {
		return typeLayout{}, false
	}
	count, err := strconv.ParseUint(strings.TrimSpace(countText), 10, 64)
	if err != nil {
		return typeLayout{}, false
	}
	elem, ok := resolveLayout(strings.TrimSpace(elemName), known)
	if !ok {
		return typeLayout{}, false
	}
	// uniform arrays use a 16 byte stride at minimum
	stride := alignUp(max(elem.align, 16), elem.size)
	return typeLayout{size: count * stride, align: max(elem.align, 16)}, true
}

// layoutStruct places each member at its next aligned offset and returns the member offsets
// with the total struct layout.
func layoutStruct(ps parsedStruct, known map[string]typeLayout) ([]UniformField, typeLayout, bool) {
	var offset uint64
	maxAlign := uint64(1)
	fields := make([]UniformField, 0, len(ps.fields))
	for _, f := range ps.fields {
		if f.isBuiltin {
			continue
		}
		l, ok := resolveLayout(f.typeName, known)
		if !ok {
			return nil, typeLayout{}, false
		}
		offset = alignUp(l.align, offset)
		fields = append(fields, UniformField{Name: f.name, Type: f.typeName, Offset: offset, Size: l.size})
		offset += l.size
		maxAlign = max(maxAlign, l.align)
	}
	return fields, typeLayout{size: alignUp(maxAlign, offset), align: maxAlign}, true
}

// layoutStructs resolves struct layouts in dependency order until no more progress is made.
func layoutStructs(structs []parsedStruct) map[string]typeLayout {
	known := make(map[string]typeLayout, len(structs))
	pending := append([]parsedStruct(nil), structs...)
	for len(pending) > 0 {
		next := pending[:0]
		for _, ps := range pending {
			if _, l, ok := layoutStruct(ps, known); ok {
				known[ps.name] = l
			} else {
				next = append(next, ps)
			}
		}
		if len(next) == len(pending) {
			break
		}
		pending = next
	}
	return known
}
