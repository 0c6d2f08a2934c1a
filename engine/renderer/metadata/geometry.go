package metadata

import "fmt"

// Vertex is one vertex as a list of attribute values, e.g. [position, uv, normal].
type Vertex [][]float32

/** @brief CPU side geometry, as produced by a mesh parser. */
type Geometry struct {
	Name     string
	Vertices []Vertex
	Indices  []uint32
}

// Pack interleaves the geometry into a flat buffer following layout. Every vertex must
// carry one value per layout element with the element's component count.
func (g *Geometry) Pack(layout VertexLayout) ([]float32, error) {
	out := make([]float32, 0, len(g.Vertices)*int(layout.Components()))
	for i, vertex := range g.Vertices {
		if len(vertex) != len(layout.Elements) {
			return nil, fmt.Errorf("geometry %s: vertex %d has %d elements, layout requires %d", g.Name, i, len(vertex), len(layout.Elements))
		}
		for j, element := range vertex {
			if uint32(len(element)) != layout.Elements[j].Components {
				return nil, fmt.Errorf("geometry %s: vertex %d element '%s' has %d components, layout requires %d",
					g.Name, i, layout.Elements[j].Name, len(element), layout.Elements[j].Components)
			}
			out = append(out, element...)
		}
	}
	return out, nil
}

// DrawCount is what a draw call for this geometry should cover.
func (g *Geometry) DrawCount() uint32 {
	if len(g.Indices) > 0 {
		return uint32(len(g.Indices))
	}
	return uint32(len(g.Vertices))
}
