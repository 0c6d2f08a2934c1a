package metadata

import "fmt"

/** @brief The scalar type backing a vertex attribute component. */
type ScalarKind uint8

const (
	ScalarFloat ScalarKind = iota
	ScalarUnsignedInt
)

func (k ScalarKind) String() string {
	switch k {
	case ScalarFloat:
		return "float"
	case ScalarUnsignedInt:
		return "uint"
	}
	return fmt.Sprintf("ScalarKind(%d)", k)
}

/** @brief Handle of a linked GPU program. Zero means "no program". */
type ProgramHandle uint32

/** @brief GPU location of a uniform inside a program. */
type UniformLocation int32

/** @brief Handle of a vertex array object holding a mesh's buffers. */
type VertexArrayHandle uint32

/**
 * @brief A vertex stage input as found in shader source.
 * Location is the one assigned by the GPU after linking, -1 if the input is inactive.
 */
type AttributeDescriptor struct {
	Name       string
	Location   int32
	Kind       ScalarKind
	Components uint32
	// Size in bytes: Components * 4.
	Size uint32
}

/** @brief One attribute inside a packed vertex. */
type VertexElement struct {
	Name       string
	Location   int32
	Components uint32
	Kind       ScalarKind
	Normalized bool
	Offset     uint32
}

/** @brief Memory layout of an interleaved vertex buffer. */
type VertexLayout struct {
	Stride   uint32
	Elements []VertexElement
}

// Components returns the number of scalars in one vertex.
func (l VertexLayout) Components() uint32 {
	return l.Stride / 4
}

// Element looks an element up by attribute name.
func (l VertexLayout) Element(name string) (VertexElement, bool) {
	for _, e := range l.Elements {
		if e.Name == name {
			return e, true
		}
	}
	return VertexElement{}, false
}

/** @brief The uniform types a program can expose to the engine. */
type UniformType uint8

const (
	UniformTypeFloat UniformType = iota
	UniformTypeInt
	UniformTypeUInt
	UniformTypeBool
	UniformTypeVec2
	UniformTypeVec3
	UniformTypeVec4
	UniformTypeMat3
	UniformTypeMat4
	UniformTypeSampler2D
	UniformTypeSamplerCube
)

var uniformTypeNames = map[string]UniformType{
	"float":       UniformTypeFloat,
	"int":         UniformTypeInt,
	"uint":        UniformTypeUInt,
	"bool":        UniformTypeBool,
	"vec2":        UniformTypeVec2,
	"vec3":        UniformTypeVec3,
	"vec4":        UniformTypeVec4,
	"mat3":        UniformTypeMat3,
	"mat4":        UniformTypeMat4,
	"sampler2D":   UniformTypeSampler2D,
	"samplerCube": UniformTypeSamplerCube,
}

// ParseUniformType maps a GLSL type name to a UniformType.
func ParseUniformType(name string) (UniformType, bool) {
	t, ok := uniformTypeNames[name]
	return t, ok
}

func (t UniformType) String() string {
	for name, v := range uniformTypeNames {
		if v == t {
			return name
		}
	}
	return fmt.Sprintf("UniformType(%d)", t)
}

// IsSampler reports whether values of t are texture unit indices.
func (t UniformType) IsSampler() bool {
	return t == UniformTypeSampler2D || t == UniformTypeSamplerCube
}
