package glsl

import (
	"fmt"
	"strings"
)

// Module is the set of top-level declarations found in one shader stage.
type Module struct {
	Inputs    []InputDecl
	Structs   []StructDecl
	Uniforms  []UniformDecl
	Constants []ConstDecl
}

// ArraySize is the text between the brackets of an array declarator. It is either an
// integer literal or an expression naming a constant; resolving it is up to the caller.
type ArraySize struct {
	Expr string
	Pos  Position
}

func (a *ArraySize) suffix() string {
	if a == nil {
		return ""
	}
	return "[" + a.Expr + "]"
}

// InputDecl is a vertex stage input ("in vec3 a_position;").
// Location is -1 unless a layout qualifier assigned one.
type InputDecl struct {
	Name     string
	Type     string
	Location int
	Array    *ArraySize
	Pos      Position
}

func (d InputDecl) String() string {
	return fmt.Sprintf("in %s %s%s", d.Type, d.Name, d.Array.suffix())
}

type StructMember struct {
	Name  string
	Type  string
	Array *ArraySize
	Pos   Position
}

type StructDecl struct {
	Name    string
	Members []StructMember
	Pos     Position
}

func (d StructDecl) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "struct %s {", d.Name)
	for _, m := range d.Members {
		fmt.Fprintf(&sb, " %s %s%s;", m.Type, m.Name, m.Array.suffix())
	}
	sb.WriteString(" }")
	return sb.String()
}

// Member returns the named member, if any.
func (d StructDecl) Member(name string) (StructMember, bool) {
	for _, m := range d.Members {
		if m.Name == name {
			return m, true
		}
	}
	return StructMember{}, false
}

type UniformDecl struct {
	Name  string
	Type  string
	Array *ArraySize
	Pos   Position
}

func (d UniformDecl) String() string {
	return fmt.Sprintf("uniform %s %s%s", d.Type, d.Name, d.Array.suffix())
}

// ConstDecl covers both "const int N = 3;" and "#define N 3". Type is empty for defines.
type ConstDecl struct {
	Name  string
	Type  string
	Value string
	Pos   Position
}

func (d ConstDecl) String() string {
	if d.Type == "" {
		return fmt.Sprintf("#define %s %s", d.Name, d.Value)
	}
	return fmt.Sprintf("const %s %s = %s", d.Type, d.Name, d.Value)
}

// Merge appends the declarations of other to m. Uniforms already present by name are not
// duplicated, so a uniform declared in both stages is reported once.
func (m *Module) Merge(other *Module) {
	if other == nil {
		return
	}
	m.Inputs = append(m.Inputs, other.Inputs...)
	m.Structs = append(m.Structs, other.Structs...)
	m.Constants = append(m.Constants, other.Constants...)

	seen := make(map[string]bool, len(m.Uniforms))
	for _, u := range m.Uniforms {
		seen[u.Name] = true
	}
	for _, u := range other.Uniforms {
		if !seen[u.Name] {
			m.Uniforms = append(m.Uniforms, u)
			seen[u.Name] = true
		}
	}
}

// Struct looks up a struct declaration by type name.
func (m *Module) Struct(name string) (StructDecl, bool) {
	for _, s := range m.Structs {
		if s.Name == name {
			return s, true
		}
	}
	return StructDecl{}, false
}

// Constant returns the first constant declared under name.
func (m *Module) Constant(name string) (ConstDecl, bool) {
	for _, c := range m.Constants {
		if c.Name == name {
			return c, true
		}
	}
	return ConstDecl{}, false
}
