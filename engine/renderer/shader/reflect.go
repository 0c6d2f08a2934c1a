package shader

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer"
	"github.com/spaghettifunk/lumen/engine/renderer/glsl"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

const (
	// MaxUniformArraySize bounds a single array dimension.
	MaxUniformArraySize = 1024
	// MaxUniformLeaves bounds the flattened uniforms of one declaration.
	MaxUniformLeaves = 4096
)

// Reflection is everything the engine learns about a linked program from its source.
type Reflection struct {
	Attributes []metadata.AttributeDescriptor
	Layout     metadata.VertexLayout
	Uniforms   *UniformBlock
}

// Reflector extracts vertex layouts and uniform slots from shader source, resolving
// locations against a linked program on the GPU.
type Reflector struct {
	gpu renderer.Backend
}

func NewReflector(gpu renderer.Backend) *Reflector {
	return &Reflector{gpu: gpu}
}

// SplitSource separates a combined source into its stages.
func SplitSource(source string) (glsl.Sections, error) {
	sections, err := glsl.Split(source)
	if err != nil {
		return glsl.Sections{}, &core.ReflectionError{Reason: "malformed stage markers", Err: err}
	}
	return sections, nil
}

// Reflect walks both stages of a program that was linked from sections. It either
// succeeds completely or returns a *core.ReflectionError.
func (r *Reflector) Reflect(program metadata.ProgramHandle, sections glsl.Sections) (*Reflection, error) {
	vertex, err := glsl.Parse(sections.Vertex)
	if err != nil {
		return nil, &core.ReflectionError{Declaration: "vertex stage", Reason: "parse failed", Err: err}
	}
	fragment, err := glsl.Parse(sections.Fragment)
	if err != nil {
		return nil, &core.ReflectionError{Declaration: "fragment stage", Reason: "parse failed", Err: err}
	}

	attributes, err := r.attributes(program, vertex)
	if err != nil {
		return nil, err
	}

	combined := &glsl.Module{}
	combined.Merge(vertex)
	combined.Merge(fragment)

	slots, err := r.uniforms(program, combined)
	if err != nil {
		return nil, err
	}

	return &Reflection{
		Attributes: attributes,
		Layout:     NewVertexLayout(attributes),
		Uniforms:   NewUniformBlock(slots...),
	}, nil
}

func (r *Reflector) attributes(program metadata.ProgramHandle, m *glsl.Module) ([]metadata.AttributeDescriptor, error) {
	attributes := make([]metadata.AttributeDescriptor, 0, len(m.Inputs))
	for _, in := range m.Inputs {
		if in.Array != nil {
			return nil, core.NewReflectionError(in.String(), "array inputs are not supported")
		}
		location := r.gpu.AttribLocation(program, in.Name)
		desc, ok := NewAttributeDescriptor(in.Name, in.Type, location)
		if !ok {
			return nil, core.NewReflectionError(in.String(), fmt.Sprintf("unknown attribute type '%s'", in.Type))
		}
		if location < 0 {
			core.LogDebug("attribute '%s' is inactive in program %d", in.Name, program)
		}
		attributes = append(attributes, desc)
	}
	return attributes, nil
}

type leafUniform struct {
	name     string
	typeName string
}

func (r *Reflector) uniforms(program metadata.ProgramHandle, m *glsl.Module) ([]*UniformSlot, error) {
	structs := make(map[string]glsl.StructDecl, len(m.Structs))
	for _, s := range m.Structs {
		// The same struct is usually declared in both stages; the first one wins.
		if _, ok := structs[s.Name]; !ok {
			structs[s.Name] = s
		}
	}

	var slots []*UniformSlot
	for _, decl := range m.Uniforms {
		names, err := expandArray(decl.Name, decl.Array, m)
		if err != nil {
			return nil, core.NewReflectionError(decl.String(), err.Error())
		}

		var leaves []leafUniform
		for _, name := range names {
			leaves, err = flatten(leaves, name, decl.Type, structs, m, map[string]bool{})
			if err != nil {
				return nil, core.NewReflectionError(decl.String(), err.Error())
			}
		}

		for _, leaf := range leaves {
			kind, ok := metadata.ParseUniformType(leaf.typeName)
			if !ok {
				return nil, core.NewReflectionError(decl.String(),
					fmt.Sprintf("unsupported uniform type '%s' for '%s'", leaf.typeName, leaf.name))
			}
			location, ok := r.gpu.UniformLocation(program, leaf.name)
			if !ok {
				return nil, core.NewReflectionError(decl.String(),
					fmt.Sprintf("no uniform location for '%s'", leaf.name))
			}
			slots = append(slots, newUniformSlot(r.gpu, leaf.name, kind, location))
		}
	}
	return slots, nil
}

// flatten appends the leaf uniforms of name (of type typeName) to out. Struct typed
// values recurse into their members; only non-struct members become leaves.
func flatten(out []leafUniform, name, typeName string, structs map[string]glsl.StructDecl, m *glsl.Module, visiting map[string]bool) ([]leafUniform, error) {
	s, ok := structs[typeName]
	if !ok {
		if len(out) >= MaxUniformLeaves {
			return nil, fmt.Errorf("more than %d uniforms", MaxUniformLeaves)
		}
		return append(out, leafUniform{name: name, typeName: typeName}), nil
	}
	if visiting[typeName] {
		return nil, fmt.Errorf("struct '%s' contains itself", typeName)
	}
	visiting[typeName] = true
	defer delete(visiting, typeName)

	for _, member := range s.Members {
		names, err := expandArray(name+"."+member.Name, member.Array, m)
		if err != nil {
			return nil, fmt.Errorf("member '%s' of struct '%s': %w", member.Name, s.Name, err)
		}
		for _, n := range names {
			out, err = flatten(out, n, member.Type, structs, m, visiting)
			if err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// expandArray returns name itself, or name[0]..name[N-1] when size is set.
func expandArray(name string, size *glsl.ArraySize, m *glsl.Module) ([]string, error) {
	if size == nil {
		return []string{name}, nil
	}
	n, err := resolveArraySize(size.Expr, m)
	if err != nil {
		return nil, err
	}
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("%s[%d]", name, i)
	}
	return names, nil
}

// resolveArraySize accepts an integer literal or the name of a constant that is assigned
// an integer literal. Anything else is an error; there is no default size.
func resolveArraySize(expr string, m *glsl.Module) (int, error) {
	if n, ok := parseIntLiteral(expr); ok {
		return checkArraySize(expr, n)
	}
	c, ok := m.Constant(expr)
	if !ok {
		return 0, fmt.Errorf("array size '%s' is neither an integer literal nor a declared constant", expr)
	}
	n, ok := parseIntLiteral(c.Value)
	if !ok {
		return 0, fmt.Errorf("constant '%s' is not an integer literal (value '%s')", c.Name, c.Value)
	}
	return checkArraySize(expr, n)
}

func checkArraySize(expr string, n int64) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("array size '%s' must be positive, got %d", expr, n)
	}
	if n > MaxUniformArraySize {
		return 0, fmt.Errorf("array size '%s' exceeds %d, got %d", expr, MaxUniformArraySize, n)
	}
	return int(n), nil
}

func parseIntLiteral(s string) (int64, bool) {
	s = strings.TrimRight(strings.TrimSpace(s), "uU")
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 0, 32)
	if err != nil {
		return 0, false
	}
	return n, true
}
