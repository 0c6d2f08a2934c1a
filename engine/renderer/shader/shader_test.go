package shader

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/headless"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

const litSource = `
__VERTEX__
#version 410 core
layout(location = 0) in vec3 a_position;
layout(location = 1) in vec2 a_texCoord;
layout(location = 2) in vec3 a_normal;

uniform mat4 u_model;
uniform mat4 u_view, u_projection;

out vec3 v_normal;

void main() {
    v_normal = a_normal;
    gl_Position = u_projection * u_view * u_model * vec4(a_position, 1.0);
}

__FRAGMENT__
#version 410 core
struct Light {
    vec3 color;
    float constant;
};
uniform Light u_light[2];

in vec3 v_normal;
out vec4 fragColor;

void main() {
    fragColor = vec4(u_light[0].color * u_light[1].constant, 1.0);
}
`

const arraySource = `
__VERTEX__
in vec3 a_position;
const int N = 3;
uniform float u_arr[N];
void main() { gl_Position = vec4(a_position * u_arr[0], 1.0); }
__FRAGMENT__
out vec4 fragColor;
void main() { fragColor = vec4(1.0); }
`

func build(t *testing.T, gpu *headless.Context, source string) *Program {
	t.Helper()
	p, err := Build(gpu, core.NewIDSequence(4), "test", source)
	require.NoError(t, err)
	return p
}

func TestVertexLayoutOffsets(t *testing.T) {
	p := build(t, headless.New(), litSource)

	layout := p.Layout()
	assert.EqualValues(t, 32, layout.Stride)
	require.Len(t, layout.Elements, 3)

	var offsets []uint32
	for _, e := range layout.Elements {
		offsets = append(offsets, e.Offset)
	}
	assert.Equal(t, []uint32{0, 12, 20}, offsets)
	assert.Equal(t, "a_texCoord", layout.Elements[1].Name)
	assert.EqualValues(t, 2, layout.Elements[1].Components)
}

func TestNewVertexLayoutUnsignedAttributes(t *testing.T) {
	pos, ok := NewAttributeDescriptor("a_position", "vec4", 0)
	require.True(t, ok)
	id, ok := NewAttributeDescriptor("a_id", "uint", 1)
	require.True(t, ok)

	layout := NewVertexLayout([]metadata.AttributeDescriptor{pos, id})
	assert.EqualValues(t, 20, layout.Stride)
	assert.Equal(t, metadata.ScalarUnsignedInt, layout.Elements[1].Kind)
	assert.EqualValues(t, 16, layout.Elements[1].Offset)

	_, ok = NewAttributeDescriptor("a_m", "mat4", 2)
	assert.False(t, ok)
}

func TestStructArrayFlattensToLeaves(t *testing.T) {
	p := build(t, headless.New(), litSource)

	var lights []string
	for _, name := range p.Uniforms().Names() {
		if len(name) > 7 && name[:7] == "u_light" {
			lights = append(lights, name)
		}
	}
	assert.Equal(t, []string{
		"u_light[0].color",
		"u_light[0].constant",
		"u_light[1].color",
		"u_light[1].constant",
	}, lights)
	assert.Equal(t, 7, p.Uniforms().Len())

	slot, ok := p.Uniforms().Slot("u_light[1].constant")
	require.True(t, ok)
	assert.Equal(t, metadata.UniformTypeFloat, slot.Type())
}

func TestConstantArraySize(t *testing.T) {
	p := build(t, headless.New(), arraySource)
	assert.Equal(t, []string{"u_arr[0]", "u_arr[1]", "u_arr[2]"}, p.Uniforms().Names())
}

func TestReflectionErrors(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		contains string
	}{
		{
			name: "unresolvable array size",
			source: `__VERTEX__
in vec3 a_position;
uniform float u_arr[M];
__FRAGMENT__
void main() {}`,
			contains: "u_arr[M]",
		},
		{
			name: "constant that is not a literal",
			source: `__VERTEX__
in vec3 a_position;
const int N = 2 * 2;
uniform float u_arr[N];
__FRAGMENT__
void main() {}`,
			contains: "not an integer literal",
		},
		{
			name: "zero array size",
			source: `__VERTEX__
in vec3 a_position;
uniform float u_arr[0];
__FRAGMENT__
void main() {}`,
			contains: "must be positive",
		},
		{
			name: "oversized array",
			source: `__VERTEX__
in vec3 a_position;
uniform float u_arr[2147483647];
__FRAGMENT__
void main() {}`,
			contains: "exceeds 1024",
		},
		{
			name: "too many flattened uniforms",
			source: `__VERTEX__
in vec3 a_position;
struct Inner { float v[1024]; };
struct Outer { Inner inner[8]; };
uniform Outer u_outer;
__FRAGMENT__
void main() {}`,
			contains: "more than 4096 uniforms",
		},
		{
			name: "unknown attribute type",
			source: `__VERTEX__
in mat4 a_instance;
__FRAGMENT__
void main() {}`,
			contains: "unknown attribute type 'mat4'",
		},
		{
			name: "unsupported uniform type",
			source: `__VERTEX__
in vec3 a_position;
uniform dvec3 u_precise;
__FRAGMENT__
void main() {}`,
			contains: "unsupported uniform type 'dvec3'",
		},
		{
			name: "self referencing struct",
			source: `__VERTEX__
in vec3 a_position;
struct Node { Node next; };
uniform Node u_node;
__FRAGMENT__
void main() {}`,
			contains: "contains itself",
		},
		{
			name:     "missing marker",
			source:   "__VERTEX__\nin vec3 a_position;\n",
			contains: "malformed stage markers",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gpu := headless.New()
			_, err := Build(gpu, core.NewIDSequence(1), tt.name, tt.source)
			require.Error(t, err)

			var rerr *core.ReflectionError
			require.ErrorAs(t, err, &rerr)
			assert.True(t, errors.Is(err, core.ErrReflection))
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestStructDeclaredAfterUse(t *testing.T) {
	source := `__VERTEX__
in vec3 a_position;
uniform Material u_material;
struct Material { float ambient; vec3 diffuse; };
__FRAGMENT__
void main() {}`
	p := build(t, headless.New(), source)
	assert.Equal(t, []string{"u_material.ambient", "u_material.diffuse"}, p.Uniforms().Names())
}

func TestInactiveUniformFailsBuild(t *testing.T) {
	gpu := headless.New()
	gpu.MarkInactive("u_light[1].constant")

	_, err := Build(gpu, core.NewIDSequence(1), "lit", litSource)
	var rerr *core.ReflectionError
	require.ErrorAs(t, err, &rerr)
	assert.Contains(t, rerr.Reason, "no uniform location for 'u_light[1].constant'")
}

func TestInactiveAttributeKeepsStride(t *testing.T) {
	gpu := headless.New()
	gpu.MarkInactive("a_texCoord")
	p := build(t, gpu, litSource)

	element, ok := p.Layout().Element("a_texCoord")
	require.True(t, ok)
	assert.EqualValues(t, -1, element.Location)
	assert.EqualValues(t, 32, p.Layout().Stride)
}

func TestBuildRequiresInitializedContext(t *testing.T) {
	gpu := headless.New()
	require.NoError(t, gpu.Shutdown())

	_, err := Build(gpu, core.NewIDSequence(1), "lit", litSource)
	assert.ErrorIs(t, err, core.ErrNotInitialized)

	_, err = Build(nil, core.NewIDSequence(1), "lit", litSource)
	assert.ErrorIs(t, err, core.ErrNotInitialized)
}

func litUniforms() map[string]interface{} {
	return map[string]interface{}{
		"u_model":             math.NewMat4Identity(),
		"u_view":              math.NewMat4Identity(),
		"u_projection":        math.NewMat4Identity(),
		"u_light[0].color":    math.NewVec3(1, 1, 1),
		"u_light[0].constant": 1.0,
		"u_light[1].color":    []float32{0.5, 0.5, 0.5},
		"u_light[1].constant": float32(1),
	}
}

func TestSetMissingNameIsAllOrNothing(t *testing.T) {
	p := build(t, headless.New(), litSource)

	data := litUniforms()
	delete(data, "u_light[1].color")
	err := p.Set(data)

	var berr *core.BindingError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, "u_light[1].color", berr.Name)
	assert.Empty(t, p.Uniforms().Dirty())
	assert.Equal(t, 0, p.Upload())
}

func TestSetRejectsWrongType(t *testing.T) {
	p := build(t, headless.New(), litSource)

	data := litUniforms()
	data["u_model"] = "identity"
	err := p.Set(data)

	var berr *core.BindingError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, "u_model", berr.Name)
	assert.Empty(t, p.Uniforms().Dirty())
}

func TestSetIgnoresExtraEntries(t *testing.T) {
	p := build(t, headless.New(), litSource)

	data := litUniforms()
	data["u_unused"] = 4.0
	require.NoError(t, p.Set(data))
	assert.Len(t, p.Uniforms().Dirty(), 7)
}

func TestSetSubset(t *testing.T) {
	gpu := headless.New()
	p := build(t, gpu, litSource)

	err := p.SetSubset(map[string]interface{}{
		"u_model": math.NewMat4Identity(),
		"u_nope":  1.0,
	})
	var berr *core.BindingError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, "u_nope", berr.Name)
	assert.Empty(t, p.Uniforms().Dirty())

	require.NoError(t, p.SetSubset(map[string]interface{}{"u_light[0].constant": 2}))
	assert.Equal(t, []string{"u_light[0].constant"}, p.Uniforms().Dirty())

	p.Bind()
	assert.Equal(t, 1, p.Upload())
	v, ok := gpu.LastUpload(p.Handle(), "u_light[0].constant")
	require.True(t, ok)
	assert.Equal(t, float32(2), v)
}

func TestSlotStateMachine(t *testing.T) {
	gpu := headless.New()
	p := build(t, gpu, litSource)
	p.Bind()

	slot, ok := p.Uniforms().Slot("u_model")
	require.True(t, ok)
	assert.Equal(t, SlotClean, slot.State())
	_, has := slot.Value()
	assert.False(t, has)

	// Never set: nothing is sent.
	assert.False(t, slot.Upload())
	assert.Empty(t, gpu.Uploads())

	m := math.NewMat4Translation(math.NewVec3(1, 2, 3))
	require.NoError(t, slot.Set(m))
	assert.Equal(t, SlotDirty, slot.State())
	assert.True(t, slot.Upload())
	assert.Equal(t, SlotClean, slot.State())

	v, has := slot.Value()
	require.True(t, has)
	assert.Equal(t, m, v)

	// Clean again: a second upload is a no-op.
	assert.False(t, slot.Upload())
	assert.Len(t, gpu.Uploads(), 1)
}

func TestBlockUploadCountsDirtySlots(t *testing.T) {
	gpu := headless.New()
	p := build(t, gpu, litSource)
	p.Bind()

	require.NoError(t, p.Set(litUniforms()))
	assert.Equal(t, 7, p.Upload())
	assert.Equal(t, 0, p.Upload())

	v, ok := gpu.LastUpload(p.Handle(), "u_light[1].color")
	require.True(t, ok)
	assert.Equal(t, math.NewVec3(0.5, 0.5, 0.5), v)
}

func TestBoolUniformUploadsAsInt(t *testing.T) {
	gpu := headless.New()
	source := `__VERTEX__
in vec3 a_position;
uniform bool u_enabled;
__FRAGMENT__
void main() {}`
	p := build(t, gpu, source)
	p.Bind()

	require.NoError(t, p.Set(map[string]interface{}{"u_enabled": true}))
	p.Upload()
	v, ok := gpu.LastUpload(p.Handle(), "u_enabled")
	require.True(t, ok)
	assert.Equal(t, int32(1), v)
}

func TestCreateMesh(t *testing.T) {
	gpu := headless.New()
	p := build(t, gpu, litSource)

	g := &metadata.Geometry{
		Name: "tri",
		Vertices: []metadata.Vertex{
			{{0, 0, 0}, {0, 0}, {0, 0, 1}},
			{{1, 0, 0}, {1, 0}, {0, 0, 1}},
			{{0, 1, 0}, {0, 1}, {0, 0, 1}},
		},
	}
	mesh, err := p.CreateMesh(g)
	require.NoError(t, err)
	assert.EqualValues(t, 3, mesh.DrawCount)
	assert.False(t, mesh.Indexed)
	assert.Equal(t, math.NewVec3(1, 1, 0), mesh.Extents.Max)

	va, ok := gpu.VertexArray(mesh.VertexArray)
	require.True(t, ok)
	assert.Len(t, va.Vertices, 24)

	g.Vertices[1] = metadata.Vertex{{1, 0, 0}, {0, 0, 1}}
	_, err = p.CreateMesh(g)
	assert.Error(t, err)
}

func TestDestroyReleasesID(t *testing.T) {
	gpu := headless.New()
	ids := core.NewIDSequence(2)

	a, err := Build(gpu, ids, "a", litSource)
	require.NoError(t, err)
	b, err := Build(gpu, ids, "b", litSource)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID(), b.ID())

	id := a.ID()
	require.NoError(t, a.Destroy())
	c, err := Build(gpu, ids, "c", litSource)
	require.NoError(t, err)
	assert.Equal(t, id, c.ID())
}
