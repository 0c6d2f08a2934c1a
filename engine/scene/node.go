// Package scene holds the scene graph and compiles it into a per-frame render queue.
package scene

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/renderer/shader"
)

type NodeType uint8

const (
	NodeTypeAnchor NodeType = iota
	NodeTypeObject
	NodeTypeLight
)

func (t NodeType) String() string {
	switch t {
	case NodeTypeAnchor:
		return "anchor"
	case NodeTypeObject:
		return "object"
	case NodeTypeLight:
		return "light"
	}
	return fmt.Sprintf("NodeType(%d)", uint8(t))
}

func ParseNodeType(s string) (NodeType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "anchor":
		return NodeTypeAnchor, nil
	case "object":
		return NodeTypeObject, nil
	case "light":
		return NodeTypeLight, nil
	}
	return 0, core.NewConfigurationError("node type", fmt.Sprintf("unknown node type '%s'", s))
}

// Renderable is what an object or light node draws.
type Renderable struct {
	Mesh     *metadata.Mesh
	Shader   *shader.Program
	Material *metadata.Material
}

// NodeData is the optional payload of a node. Which fields matter depends on the type.
type NodeData struct {
	Transform *math.Transform
	Object    *Renderable
	Light     *metadata.LightParams
}

// SceneNode is one node of the scene graph. A node owns its children; the parent
// reference is only a back pointer.
type SceneNode struct {
	ID   uuid.UUID
	Name string
	Type NodeType
	Data NodeData

	parent   *SceneNode
	children []*SceneNode
	// graph is set while the node is a root of a SceneGraph.
	graph *SceneGraph
}

func NewSceneNode(nodeType NodeType, data NodeData) *SceneNode {
	return &SceneNode{
		ID:   uuid.New(),
		Type: nodeType,
		Data: data,
	}
}

// CreateNode creates a new child of n.
func (n *SceneNode) CreateNode(nodeType NodeType, data NodeData) *SceneNode {
	child := NewSceneNode(nodeType, data)
	child.parent = n
	n.children = append(n.children, child)
	return child
}

// AddNode moves child, with its subtree, under n.
func (n *SceneNode) AddNode(child *SceneNode) error {
	if child == nil {
		return fmt.Errorf("cannot add a nil node")
	}
	for p := n; p != nil; p = p.parent {
		if p == child {
			return fmt.Errorf("node %s cannot become a descendant of itself", child.label())
		}
	}
	child.detach()
	child.parent = n
	n.children = append(n.children, child)
	return nil
}

// RemoveNode detaches child from n and destroys its subtree. It reports whether child
// was a direct child of n.
func (n *SceneNode) RemoveNode(child *SceneNode) bool {
	if child == nil || child.parent != n {
		return false
	}
	child.detach()
	child.destroy()
	return true
}

func (n *SceneNode) Parent() *SceneNode {
	return n.parent
}

func (n *SceneNode) Children() []*SceneNode {
	out := make([]*SceneNode, len(n.children))
	copy(out, n.children)
	return out
}

// Walk visits n and its descendants depth first, parents before children. Returning
// false from fn skips the children of that node.
func (n *SceneNode) Walk(fn func(*SceneNode) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(fn)
	}
}

// Find returns the node with the given ID in n's subtree.
func (n *SceneNode) Find(id uuid.UUID) *SceneNode {
	var found *SceneNode
	n.Walk(func(node *SceneNode) bool {
		if node.ID == id {
			found = node
		}
		return found == nil
	})
	return found
}

func (n *SceneNode) detach() {
	if n.graph != nil {
		n.graph.dropRoot(n)
	}
	if n.parent == nil {
		return
	}
	siblings := n.parent.children
	for i, c := range siblings {
		if c == n {
			n.parent.children = append(siblings[:i], siblings[i+1:]...)
			break
		}
	}
	n.parent = nil
}

func (n *SceneNode) destroy() {
	for _, c := range n.children {
		c.parent = nil
		c.destroy()
	}
	n.children = nil
	n.Data = NodeData{}
}

func (n *SceneNode) label() string {
	if n.Name != "" {
		return fmt.Sprintf("'%s'", n.Name)
	}
	return n.ID.String()
}
