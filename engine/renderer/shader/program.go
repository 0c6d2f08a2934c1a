package shader

import (
	"fmt"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

// Program is a linked GPU program together with the vertex layout and uniform slots
// reflected from its source. Its ID is unique among live programs of one IDSequence
// and is what the renderer compares to avoid rebinding.
type Program struct {
	id     uint32
	name   string
	handle metadata.ProgramHandle

	gpu renderer.Backend
	ids *core.IDSequence

	attributes []metadata.AttributeDescriptor
	layout     metadata.VertexLayout
	uniforms   *UniformBlock
}

// Build compiles, links and reflects a combined shader source.
func Build(gpu renderer.Backend, ids *core.IDSequence, name, source string) (*Program, error) {
	if gpu == nil || !gpu.Initialized() {
		return nil, core.ErrNotInitialized
	}

	sections, err := SplitSource(source)
	if err != nil {
		core.LogError("shader '%s': %s", name, err)
		return nil, err
	}

	handle, err := gpu.CreateProgram(sections.Vertex, sections.Fragment)
	if err != nil {
		core.LogError("shader '%s': %s", name, err)
		return nil, fmt.Errorf("shader '%s': %w", name, err)
	}

	reflection, err := NewReflector(gpu).Reflect(handle, sections)
	if err != nil {
		gpu.DeleteProgram(handle)
		core.LogError("shader '%s': %s", name, err)
		return nil, err
	}

	p := &Program{
		name:       name,
		handle:     handle,
		gpu:        gpu,
		ids:        ids,
		attributes: reflection.Attributes,
		layout:     reflection.Layout,
		uniforms:   reflection.Uniforms,
	}
	p.id = ids.Acquire(p)

	core.LogDebug("shader '%s' built: id=%d stride=%d attributes=%d uniforms=%d",
		name, p.id, p.layout.Stride, len(p.attributes), p.uniforms.Len())
	return p, nil
}

func (p *Program) ID() uint32                                 { return p.id }
func (p *Program) Name() string                               { return p.name }
func (p *Program) Handle() metadata.ProgramHandle             { return p.handle }
func (p *Program) Layout() metadata.VertexLayout              { return p.layout }
func (p *Program) Attributes() []metadata.AttributeDescriptor { return p.attributes }
func (p *Program) Uniforms() *UniformBlock                    { return p.uniforms }

// Bind makes the program current on the GPU.
func (p *Program) Bind() {
	p.gpu.UseProgram(p.handle)
}

func (p *Program) Unbind() {
	p.gpu.UseProgram(0)
}

func (p *Program) Set(data map[string]interface{}) error {
	return p.uniforms.Set(data)
}

func (p *Program) SetSubset(data map[string]interface{}) error {
	return p.uniforms.SetSubset(data)
}

// Upload sends pending uniform values. The program must be bound.
func (p *Program) Upload() int {
	return p.uniforms.Upload()
}

// CreateMesh packs geometry with this program's vertex layout and uploads it.
func (p *Program) CreateMesh(g *metadata.Geometry) (*metadata.Mesh, error) {
	vertices, err := g.Pack(p.layout)
	if err != nil {
		return nil, err
	}
	vao, err := p.gpu.CreateVertexArray(p.layout, vertices, g.Indices)
	if err != nil {
		return nil, fmt.Errorf("mesh '%s': %w", g.Name, err)
	}

	positions := make([]math.Vec3, 0, len(g.Vertices))
	for _, v := range g.Vertices {
		if len(v) > 0 && len(v[0]) >= 3 {
			positions = append(positions, math.Vec3{v[0][0], v[0][1], v[0][2]})
		}
	}
	return &metadata.Mesh{
		Name:        g.Name,
		VertexArray: vao,
		DrawCount:   g.DrawCount(),
		Indexed:     len(g.Indices) > 0,
		Extents:     math.ComputeExtents(positions),
	}, nil
}

// Destroy deletes the GPU program and releases its ID.
func (p *Program) Destroy() error {
	p.gpu.DeleteProgram(p.handle)
	p.handle = 0
	return p.ids.Release(p.id)
}
