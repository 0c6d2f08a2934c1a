package scene

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/headless"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/renderer/shader"
)

const litSource = `
__VERTEX__
layout(location = 0) in vec3 a_position;
uniform mat4 u_model;
uniform mat4 u_view;
uniform mat4 u_projection;
void main() { gl_Position = u_projection * u_view * u_model * vec4(a_position, 1.0); }
__FRAGMENT__
#define MAX_LIGHTS 2
struct Material { float ambient; vec3 diffuse; vec3 specular; float shininess; };
struct Light { vec3 color; vec3 position; float constant; float linear; float quadratic; };
uniform Material u_material;
uniform Light u_light[MAX_LIGHTS];
uniform vec3 u_viewPos;
out vec4 fragColor;
void main() { fragColor = vec4(u_material.diffuse, 1.0); }
`

const lampSource = `
__VERTEX__
layout(location = 0) in vec3 a_position;
uniform mat4 u_model;
uniform mat4 u_view;
uniform mat4 u_projection;
void main() { gl_Position = u_projection * u_view * u_model * vec4(a_position, 1.0); }
__FRAGMENT__
uniform vec3 u_lightColor;
out vec4 fragColor;
void main() { fragColor = vec4(u_lightColor, 1.0); }
`

type fixedCamera struct {
	position math.Vec3
}

func (c fixedCamera) View() math.Mat4       { return math.NewMat4Identity() }
func (c fixedCamera) Projection() math.Mat4 { return math.NewMat4Identity() }
func (c fixedCamera) Position() math.Vec3   { return c.position }

type fixture struct {
	gpu  *headless.Context
	lit  *shader.Program
	lamp *shader.Program
	mesh *metadata.Mesh
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gpu := headless.New()
	ids := core.NewIDSequence(2)
	lit, err := shader.Build(gpu, ids, "lit", litSource)
	require.NoError(t, err)
	lamp, err := shader.Build(gpu, ids, "lamp", lampSource)
	require.NoError(t, err)
	return &fixture{gpu: gpu, lit: lit, lamp: lamp, mesh: &metadata.Mesh{Name: "cube", DrawCount: 36}}
}

func (f *fixture) object(pos math.Vec3) NodeData {
	return NodeData{
		Transform: math.TransformFromPosition(pos),
		Object:    &Renderable{Mesh: f.mesh, Shader: f.lit},
	}
}

func (f *fixture) light(pos math.Vec3) NodeData {
	return NodeData{
		Transform: math.TransformFromPosition(pos),
		Object:    &Renderable{Mesh: f.mesh, Shader: f.lamp},
		Light:     &metadata.LightParams{Color: math.NewVec3One(), Constant: 1, Linear: 0.09, Quadratic: 0.032},
	}
}

func TestTransformAccumulation(t *testing.T) {
	for _, lightFirst := range []bool{true, false} {
		f := newFixture(t)
		g := NewSceneGraph(fixedCamera{})

		anchor := g.CreateNode(NodeTypeAnchor, NodeData{Transform: math.TransformFromPosition(math.NewVec3(1, 0, 0))})
		var lamp *SceneNode
		if lightFirst {
			lamp = anchor.CreateNode(NodeTypeLight, f.light(math.NewVec3(0, 1, 0)))
			anchor.CreateNode(NodeTypeObject, f.object(math.NewVec3(5, 5, 5)))
		} else {
			anchor.CreateNode(NodeTypeObject, f.object(math.NewVec3(5, 5, 5)))
			lamp = anchor.CreateNode(NodeTypeLight, f.light(math.NewVec3(0, 1, 0)))
		}

		queue, err := g.Build()
		require.NoError(t, err)
		require.Len(t, queue.Lights, 1)
		assert.Equal(t, math.NewVec3(1, 1, 0), lamp.Data.Light.Position)
		assert.Equal(t, math.NewVec3(1, 1, 0), queue.Lights[0].Position)
	}
}

func TestNodeWithoutTransformInheritsParentPosition(t *testing.T) {
	f := newFixture(t)
	g := NewSceneGraph(fixedCamera{})
	anchor := g.CreateNode(NodeTypeAnchor, NodeData{Transform: math.TransformFromPosition(math.NewVec3(0, 0, -3))})
	data := f.light(math.Vec3{})
	data.Transform = nil
	anchor.CreateNode(NodeTypeLight, data)

	queue, err := g.Build()
	require.NoError(t, err)
	assert.Equal(t, math.NewVec3(0, 0, -3), queue.Lights[0].Position)
}

func TestLightFanOut(t *testing.T) {
	f := newFixture(t)
	g := NewSceneGraph(fixedCamera{position: math.NewVec3(0, 0, 5)})

	g.CreateNode(NodeTypeLight, f.light(math.NewVec3(0, 4, 0)))
	g.CreateNode(NodeTypeLight, f.light(math.NewVec3(4, 0, 0)))
	for i := 0; i < 3; i++ {
		g.CreateNode(NodeTypeObject, f.object(math.NewVec3(float32(i), 0, 0)))
	}

	queue, err := g.Build()
	require.NoError(t, err)
	require.Len(t, queue.Entries, 5)

	const objectBase, lightBase = 8, 4
	objects := 0
	for _, e := range queue.Entries {
		if e.Type == NodeTypeLight {
			assert.Len(t, e.Uniforms, lightBase)
			assert.Contains(t, e.Uniforms, UniformLightColor)
			assert.NotContains(t, e.Uniforms, LightUniform(0, "color"))
			continue
		}
		objects++
		assert.Len(t, e.Uniforms, objectBase+10)
		assert.Equal(t, math.NewVec3(0, 4, 0), e.Uniforms[LightUniform(0, "position")])
		assert.Equal(t, math.NewVec3(4, 0, 0), e.Uniforms[LightUniform(1, "position")])
		assert.Equal(t, float32(0.032), e.Uniforms[LightUniform(1, "quadratic")])
		assert.Equal(t, math.NewVec3(0, 0, 5), e.Uniforms[UniformViewPos])
	}
	assert.Equal(t, 3, objects)

	// Every entry carries exactly what its program needs.
	for _, e := range queue.Entries {
		assert.NoError(t, e.Shader.Set(e.Uniforms), e.Node.Type.String())
	}
}

func TestLightDiscoveryOrderIsChildrenFirst(t *testing.T) {
	f := newFixture(t)
	g := NewSceneGraph(fixedCamera{})

	parent := g.CreateNode(NodeTypeLight, f.light(math.NewVec3(1, 0, 0)))
	parent.CreateNode(NodeTypeLight, f.light(math.NewVec3(0, 1, 0)))
	g.CreateNode(NodeTypeLight, f.light(math.NewVec3(0, 0, 1)))

	queue, err := g.Build()
	require.NoError(t, err)
	require.Len(t, queue.Lights, 3)
	assert.Equal(t, math.NewVec3(1, 1, 0), queue.Lights[0].Position)
	assert.Equal(t, math.NewVec3(1, 0, 0), queue.Lights[1].Position)
	assert.Equal(t, math.NewVec3(0, 0, 1), queue.Lights[2].Position)
}

func TestModelMatrixUsesWorldPosition(t *testing.T) {
	f := newFixture(t)
	g := NewSceneGraph(fixedCamera{})

	anchor := g.CreateNode(NodeTypeAnchor, NodeData{Transform: math.TransformFromPosition(math.NewVec3(0, 2, 0))})
	data := f.object(math.NewVec3(3, 0, 0))
	data.Transform.SetRotation(math.NewVec3(0, 90, 0))
	data.Transform.SetScale(math.NewVec3(2, 2, 2))
	anchor.CreateNode(NodeTypeObject, data)

	queue, err := g.Build()
	require.NoError(t, err)
	require.Len(t, queue.Entries, 1)

	model := queue.Entries[0].Uniforms[UniformModel].(math.Mat4)
	assert.Equal(t, data.Transform.Matrix(math.NewVec3(3, 2, 0)), model)
	assert.Equal(t, math.NewVec3(3, 2, 0), model.Col(3).Vec3())
}

func TestDefaultMaterial(t *testing.T) {
	f := newFixture(t)
	g := NewSceneGraph(fixedCamera{})
	g.CreateNode(NodeTypeObject, f.object(math.NewVec3Zero()))

	queue, err := g.Build()
	require.NoError(t, err)
	def := metadata.NewDefaultMaterial()
	assert.Equal(t, def.Shininess, queue.Entries[0].Uniforms[UniformMaterialShininess])
	assert.Equal(t, def.Diffuse, queue.Entries[0].Uniforms[UniformMaterialDiffuse])
}

func TestAnchorEmitsNothing(t *testing.T) {
	f := newFixture(t)
	g := NewSceneGraph(fixedCamera{})
	g.CreateNode(NodeTypeAnchor, f.object(math.NewVec3Zero()))

	queue, err := g.Build()
	require.NoError(t, err)
	assert.Zero(t, queue.Len())
	assert.Empty(t, queue.Lights)
}

func TestBuildConfigurationErrors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name  string
		setup func(g *SceneGraph)
	}{
		{"light without parameters", func(g *SceneGraph) {
			a := g.CreateNode(NodeTypeAnchor, NodeData{})
			a.CreateNode(NodeTypeLight, NodeData{Transform: math.TransformFromPosition(math.NewVec3Zero())})
		}},
		{"object without renderable", func(g *SceneGraph) {
			g.CreateNode(NodeTypeObject, NodeData{})
		}},
		{"renderable without shader", func(g *SceneGraph) {
			g.CreateNode(NodeTypeObject, NodeData{Object: &Renderable{Mesh: f.mesh}})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewSceneGraph(fixedCamera{})
			tt.setup(g)
			_, err := g.Build()
			var cerr *core.ConfigurationError
			require.ErrorAs(t, err, &cerr)
			assert.True(t, errors.Is(err, core.ErrConfiguration))
		})
	}

	_, err := NewSceneGraph(nil).Build()
	assert.ErrorIs(t, err, core.ErrConfiguration)
}

func TestNodeOperations(t *testing.T) {
	g := NewSceneGraph(fixedCamera{})
	a := g.CreateNode(NodeTypeAnchor, NodeData{})
	b := g.CreateNode(NodeTypeAnchor, NodeData{})
	child := a.CreateNode(NodeTypeAnchor, NodeData{})
	grandchild := child.CreateNode(NodeTypeAnchor, NodeData{})

	assert.Equal(t, a, child.Parent())
	assert.Equal(t, child, g.Find(grandchild.ID).Parent())

	require.NoError(t, b.AddNode(child))
	assert.Empty(t, a.Children())
	assert.Equal(t, []*SceneNode{child}, b.Children())
	assert.Equal(t, b, child.Parent())

	assert.Error(t, grandchild.AddNode(b))
	assert.Error(t, child.AddNode(child))

	assert.False(t, a.RemoveNode(grandchild))
	assert.True(t, b.RemoveNode(child))
	assert.Nil(t, child.Parent())
	assert.Empty(t, child.Children())
	assert.Nil(t, grandchild.Parent())
	assert.Nil(t, g.Find(grandchild.ID))

	visited := 0
	g.Walk(func(*SceneNode) bool { visited++; return true })
	assert.Equal(t, 2, visited)

	assert.True(t, g.RemoveNode(a))
	assert.False(t, g.RemoveNode(a))
	assert.Len(t, g.Roots(), 1)
}

func TestMovingRootNodeLeavesRoots(t *testing.T) {
	f := newFixture(t)
	g := NewSceneGraph(fixedCamera{})
	anchor := g.CreateNode(NodeTypeAnchor, NodeData{Transform: math.TransformFromPosition(math.NewVec3(1, 0, 0))})
	obj := g.CreateNode(NodeTypeObject, f.object(math.Vec3{}))
	lamp := g.CreateNode(NodeTypeLight, f.light(math.Vec3{}))

	require.NoError(t, anchor.AddNode(obj))
	require.NoError(t, anchor.AddNode(lamp))
	assert.Equal(t, []*SceneNode{anchor}, g.Roots())
	assert.False(t, g.RemoveNode(obj))

	queue, err := g.Build()
	require.NoError(t, err)
	assert.Len(t, queue.Entries, 2)
	require.Len(t, queue.Lights, 1)
	assert.Equal(t, math.NewVec3(1, 0, 0), queue.Lights[0].Position)

	// Back to the top level.
	require.NoError(t, g.AddNode(lamp))
	require.NoError(t, g.AddNode(lamp))
	assert.Equal(t, []*SceneNode{anchor, lamp}, g.Roots())
	assert.Equal(t, []*SceneNode{obj}, anchor.Children())
	assert.Nil(t, lamp.Parent())

	queue, err = g.Build()
	require.NoError(t, err)
	assert.Len(t, queue.Entries, 2)
	assert.Len(t, queue.Lights, 1)
}

func TestQueueReset(t *testing.T) {
	f := newFixture(t)
	g := NewSceneGraph(fixedCamera{})
	g.CreateNode(NodeTypeLight, f.light(math.NewVec3Zero()))
	g.CreateNode(NodeTypeObject, f.object(math.NewVec3Zero()))

	queue, err := g.Build()
	require.NoError(t, err)
	assert.Equal(t, 2, queue.Len())
	queue.Reset()
	assert.Zero(t, queue.Len())
	assert.Empty(t, queue.Lights)
}

type stubResolver struct {
	f      *fixture
	shader map[string]*shader.Program
}

func (r *stubResolver) Shader(path string) (*shader.Program, error) {
	if p, ok := r.shader[path]; ok {
		return p, nil
	}
	return nil, core.ErrAssetNotFound
}

func (r *stubResolver) Mesh(path string, program *shader.Program) (*metadata.Mesh, error) {
	if !strings.HasSuffix(path, ".obj") {
		return nil, core.ErrUnsupportedAsset
	}
	return &metadata.Mesh{Name: path, DrawCount: 3}, nil
}

const sceneYAML = `
nodes:
  - name: rig
    type: anchor
    transform:
      position: [1, 0, 0]
    children:
      - name: lamp
        type: light
        transform: {position: [0, 1, 0], scale: [0.2, 0.2, 0.2]}
        light: {color: [1, 0.9, 0.8], constant: 1, linear: 0.09, quadratic: 0.032}
        mesh: cube.obj
        shader: lamp.glsl
  - name: crate
    type: object
    transform: {position: [0, 0, -2], rotation: [0, 45, 0]}
    mesh: cube.obj
    shader: lit.glsl
    material: {ambient: 0.2, diffuse: [1, 0, 0], shininess: 16}
`

func TestLoadSceneYAML(t *testing.T) {
	f := newFixture(t)
	resolver := &stubResolver{f: f, shader: map[string]*shader.Program{"lit.glsl": f.lit, "lamp.glsl": f.lamp}}

	g, err := LoadSceneYAML(strings.NewReader(sceneYAML), fixedCamera{}, resolver)
	require.NoError(t, err)
	require.Len(t, g.Roots(), 2)
	assert.Equal(t, "rig", g.Roots()[0].Name)

	queue, err := g.Build()
	require.NoError(t, err)
	require.Len(t, queue.Entries, 2)
	require.Len(t, queue.Lights, 1)
	assert.Equal(t, math.NewVec3(1, 1, 0), queue.Lights[0].Position)

	crate := queue.Entries[1]
	assert.Equal(t, "crate", crate.Node.Name)
	assert.Equal(t, float32(16), crate.Uniforms[UniformMaterialShininess])
	assert.Equal(t, math.NewVec3(1, 0, 0), crate.Uniforms[UniformMaterialDiffuse])
	assert.Equal(t, metadata.NewDefaultMaterial().Specular, crate.Uniforms[UniformMaterialSpecular])
	assert.Equal(t, math.NewVec3(1, 0.9, 0.8), crate.Uniforms[LightUniform(0, "color")])
}

func TestLoadSceneYAMLErrors(t *testing.T) {
	f := newFixture(t)
	resolver := &stubResolver{f: f, shader: map[string]*shader.Program{"lit.glsl": f.lit}}

	tests := []struct {
		name   string
		yaml   string
		target error
	}{
		{"unknown type", "nodes: [{name: x, type: spot}]", core.ErrConfiguration},
		{"short vector", "nodes: [{name: x, type: anchor, transform: {position: [1, 2]}}]", core.ErrConfiguration},
		{"mesh without shader", "nodes: [{name: x, type: object, mesh: a.obj}]", core.ErrConfiguration},
		{"unknown shader", "nodes: [{name: x, type: object, mesh: a.obj, shader: nope.glsl}]", core.ErrAssetNotFound},
		{"bad mesh", "nodes: [{name: x, type: object, mesh: a.fbx, shader: lit.glsl}]", core.ErrUnsupportedAsset},
		{"malformed", "nodes: {", core.ErrConfiguration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSceneYAML(strings.NewReader(tt.yaml), fixedCamera{}, resolver)
			assert.ErrorIs(t, err, tt.target)
		})
	}
}
