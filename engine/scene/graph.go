package scene

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

// Uniform names filled in by Build.
const (
	UniformView       = "u_view"
	UniformProjection = "u_projection"
	UniformModel      = "u_model"
	UniformViewPos    = "u_viewPos"
	UniformLightColor = "u_lightColor"

	UniformMaterialAmbient   = "u_material.ambient"
	UniformMaterialDiffuse   = "u_material.diffuse"
	UniformMaterialSpecular  = "u_material.specular"
	UniformMaterialShininess = "u_material.shininess"
)

// LightUniform returns the qualified name of field of light i, e.g. "u_light[1].color".
func LightUniform(i int, field string) string {
	return fmt.Sprintf("u_light[%d].%s", i, field)
}

// CameraView supplies the per-frame camera state the queue needs.
type CameraView interface {
	View() math.Mat4
	Projection() math.Mat4
	Position() math.Vec3
}

// SceneGraph is an ordered forest of scene nodes seen through one camera.
type SceneGraph struct {
	Camera CameraView
	roots  []*SceneNode
}

func NewSceneGraph(camera CameraView) *SceneGraph {
	return &SceneGraph{Camera: camera}
}

// CreateNode creates a new root node.
func (g *SceneGraph) CreateNode(nodeType NodeType, data NodeData) *SceneNode {
	n := NewSceneNode(nodeType, data)
	n.graph = g
	g.roots = append(g.roots, n)
	return n
}

// AddNode makes n a root, detaching it from its parent if it has one.
func (g *SceneGraph) AddNode(n *SceneNode) error {
	if n == nil {
		return fmt.Errorf("cannot add a nil node")
	}
	if n.graph == g {
		return nil
	}
	n.detach()
	n.graph = g
	g.roots = append(g.roots, n)
	return nil
}

// RemoveNode removes a root node and destroys its subtree.
func (g *SceneGraph) RemoveNode(n *SceneNode) bool {
	if n == nil || n.graph != g {
		return false
	}
	g.dropRoot(n)
	n.destroy()
	return true
}

func (g *SceneGraph) dropRoot(n *SceneNode) {
	for i, r := range g.roots {
		if r == n {
			g.roots = append(g.roots[:i], g.roots[i+1:]...)
			break
		}
	}
	n.graph = nil
}

func (g *SceneGraph) Roots() []*SceneNode {
	out := make([]*SceneNode, len(g.roots))
	copy(out, g.roots)
	return out
}

// Walk visits every node, root by root.
func (g *SceneGraph) Walk(fn func(*SceneNode) bool) {
	for _, r := range g.roots {
		r.Walk(fn)
	}
}

func (g *SceneGraph) Find(id uuid.UUID) *SceneNode {
	for _, r := range g.roots {
		if n := r.Find(id); n != nil {
			return n
		}
	}
	return nil
}

// Clear destroys every node.
func (g *SceneGraph) Clear() {
	for _, r := range g.roots {
		r.graph = nil
		r.destroy()
	}
	g.roots = nil
}

type compiler struct {
	view       math.Mat4
	projection math.Mat4
	eye        math.Vec3
	queue      *RenderQueue
}

// Build compiles the graph into a render queue. Each subtree is walked post order,
// carrying the accumulated world position down; every light found gets its world
// position written back and, once the walk is done, every non-light entry receives the
// uniforms of every light in discovery order.
func (g *SceneGraph) Build() (*RenderQueue, error) {
	if g.Camera == nil {
		return nil, core.NewConfigurationError("scene graph", "no camera attached")
	}
	c := &compiler{
		view:       g.Camera.View(),
		projection: g.Camera.Projection(),
		eye:        g.Camera.Position(),
		queue:      &RenderQueue{},
	}
	for _, r := range g.roots {
		if err := c.visit(r, math.NewVec3Zero()); err != nil {
			return nil, err
		}
	}
	c.applyLights()
	return c.queue, nil
}

func (c *compiler) visit(n *SceneNode, parentPos math.Vec3) error {
	worldPos := parentPos
	if n.Data.Transform != nil {
		worldPos = parentPos.Add(n.Data.Transform.Position)
	}

	for _, child := range n.children {
		if err := c.visit(child, worldPos); err != nil {
			return err
		}
	}

	switch n.Type {
	case NodeTypeAnchor:
		return nil
	case NodeTypeLight:
		if n.Data.Light == nil {
			return core.NewConfigurationError("light node "+n.label(), "missing light parameters")
		}
		n.Data.Light.Position = worldPos
		c.queue.Lights = append(c.queue.Lights, n.Data.Light)
		if n.Data.Object == nil {
			return nil
		}
	case NodeTypeObject:
		if n.Data.Object == nil {
			return core.NewConfigurationError("object node "+n.label(), "missing renderable")
		}
	default:
		return core.NewConfigurationError("node "+n.label(), fmt.Sprintf("unknown node type %s", n.Type))
	}
	return c.emit(n, worldPos)
}

func (c *compiler) emit(n *SceneNode, worldPos math.Vec3) error {
	obj := n.Data.Object
	if obj.Mesh == nil || obj.Shader == nil {
		return core.NewConfigurationError("node "+n.label(), "renderable needs a mesh and a shader")
	}

	uniforms := UniformData{
		UniformView:       c.view,
		UniformProjection: c.projection,
		UniformModel:      n.Data.Transform.Matrix(worldPos),
	}
	if n.Type == NodeTypeLight {
		uniforms[UniformLightColor] = n.Data.Light.Color
	} else {
		material := obj.Material
		if material == nil {
			material = metadata.NewDefaultMaterial()
		}
		uniforms[UniformViewPos] = c.eye
		uniforms[UniformMaterialAmbient] = material.Ambient
		uniforms[UniformMaterialDiffuse] = material.Diffuse
		uniforms[UniformMaterialSpecular] = material.Specular
		uniforms[UniformMaterialShininess] = material.Shininess
	}

	c.queue.Entries = append(c.queue.Entries, RenderQueueEntry{
		Type:     n.Type,
		Node:     n,
		Mesh:     obj.Mesh,
		Shader:   obj.Shader,
		Uniforms: uniforms,
	})
	return nil
}

func (c *compiler) applyLights() {
	for _, entry := range c.queue.Entries {
		if entry.Type == NodeTypeLight {
			continue
		}
		for i, l := range c.queue.Lights {
			entry.Uniforms[LightUniform(i, "color")] = l.Color
			entry.Uniforms[LightUniform(i, "position")] = l.Position
			entry.Uniforms[LightUniform(i, "constant")] = l.Constant
			entry.Uniforms[LightUniform(i, "linear")] = l.Linear
			entry.Uniforms[LightUniform(i, "quadratic")] = l.Quadratic
		}
	}
}
