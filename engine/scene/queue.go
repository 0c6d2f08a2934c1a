package scene

import (
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/renderer/shader"
)

// UniformData maps qualified uniform names to values.
type UniformData map[string]interface{}

// RenderQueueEntry is one draw: a mesh, the program drawing it and every uniform value
// the program needs for it.
type RenderQueueEntry struct {
	Type     NodeType
	Node     *SceneNode
	Mesh     *metadata.Mesh
	Shader   *shader.Program
	Uniforms UniformData
}

// RenderQueue is built for one frame and cleared by the renderer once drawn.
type RenderQueue struct {
	Entries []RenderQueueEntry
	Lights  []*metadata.LightParams
}

func (q *RenderQueue) Len() int {
	return len(q.Entries)
}

func (q *RenderQueue) Reset() {
	q.Entries = q.Entries[:0]
	q.Lights = q.Lights[:0]
}
