package shader

import "github.com/spaghettifunk/lumen/engine/renderer/metadata"

type attributeFormat struct {
	kind       metadata.ScalarKind
	components uint32
}

var attributeFormats = map[string]attributeFormat{
	"float": {metadata.ScalarFloat, 1},
	"vec2":  {metadata.ScalarFloat, 2},
	"vec3":  {metadata.ScalarFloat, 3},
	"vec4":  {metadata.ScalarFloat, 4},
	"uint":  {metadata.ScalarUnsignedInt, 1},
	"uvec2": {metadata.ScalarUnsignedInt, 2},
	"uvec3": {metadata.ScalarUnsignedInt, 3},
	"uvec4": {metadata.ScalarUnsignedInt, 4},
}

// NewAttributeDescriptor describes a vertex input of the given GLSL type.
func NewAttributeDescriptor(name, typeName string, location int32) (metadata.AttributeDescriptor, bool) {
	f, ok := attributeFormats[typeName]
	if !ok {
		return metadata.AttributeDescriptor{}, false
	}
	return metadata.AttributeDescriptor{
		Name:       name,
		Location:   location,
		Kind:       f.kind,
		Components: f.components,
		Size:       f.components * 4,
	}, true
}

// NewVertexLayout packs attributes in declaration order: each element starts where the
// previous one ended and the stride is the sum of all element sizes.
func NewVertexLayout(attributes []metadata.AttributeDescriptor) metadata.VertexLayout {
	layout := metadata.VertexLayout{
		Elements: make([]metadata.VertexElement, 0, len(attributes)),
	}
	for _, a := range attributes {
		layout.Elements = append(layout.Elements, metadata.VertexElement{
			Name:       a.Name,
			Location:   a.Location,
			Components: a.Components,
			Kind:       a.Kind,
			Normalized: false,
			Offset:     layout.Stride,
		})
		layout.Stride += a.Components * 4
	}
	return layout
}
