package metadata

import "github.com/spaghettifunk/lumen/engine/math"

/**
 * @brief A mesh uploaded to the GPU. DrawCount is the number of indices when
 * Indexed is true, otherwise the number of vertices.
 */
type Mesh struct {
	Name        string
	VertexArray VertexArrayHandle
	DrawCount   uint32
	Indexed     bool
	Extents     math.Extents3D
}
