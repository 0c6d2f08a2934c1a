// Package headless provides a GPU context that keeps everything in memory and records
// what it was asked to do. It stands in for a real driver in tests and offline tools.
package headless

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/glsl"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

type UniformUpload struct {
	Program  metadata.ProgramHandle
	Location metadata.UniformLocation
	Name     string
	Value    interface{}
}

type DrawCall struct {
	Program     metadata.ProgramHandle
	Mesh        string
	VertexArray metadata.VertexArrayHandle
	Count       uint32
	Indexed     bool
}

type VertexArray struct {
	Layout   metadata.VertexLayout
	Vertices []float32
	Indices  []uint32
}

type program struct {
	inputs    []glsl.InputDecl
	declared  map[string]bool
	attribs   map[string]int32
	locations map[string]metadata.UniformLocation
	names     map[metadata.UniformLocation]string
}

// Context is an in-memory renderer.Backend.
type Context struct {
	mu          sync.Mutex
	initialized bool

	nextProgram  metadata.ProgramHandle
	nextVAO      metadata.VertexArrayHandle
	nextLocation metadata.UniformLocation

	programs     map[metadata.ProgramHandle]*program
	vertexArrays map[metadata.VertexArrayHandle]VertexArray
	inactive     map[string]bool
	current      metadata.ProgramHandle

	binds   []metadata.ProgramHandle
	uploads []UniformUpload
	draws   []DrawCall
	clears  int
}

func New() *Context {
	return &Context{
		initialized:  true,
		programs:     make(map[metadata.ProgramHandle]*program),
		vertexArrays: make(map[metadata.VertexArrayHandle]VertexArray),
		inactive:     make(map[string]bool),
	}
}

// MarkInactive makes the context report name as optimised out, for attributes and
// uniforms alike, in programs created afterwards.
func (c *Context) MarkInactive(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inactive[name] = true
}

func (c *Context) Initialized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initialized
}

func (c *Context) Shutdown() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.initialized = false
	return nil
}

// CreateProgram "compiles" both stages by parsing them. Active inputs get sequential
// locations unless a layout qualifier set one.
func (c *Context) CreateProgram(vertexSource, fragmentSource string) (metadata.ProgramHandle, error) {
	vertex, err := glsl.Parse(vertexSource)
	if err != nil {
		return 0, fmt.Errorf("vertex stage failed to compile: %w", err)
	}
	fragment, err := glsl.Parse(fragmentSource)
	if err != nil {
		return 0, fmt.Errorf("fragment stage failed to compile: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	p := &program{
		inputs:    vertex.Inputs,
		declared:  make(map[string]bool),
		attribs:   make(map[string]int32),
		locations: make(map[string]metadata.UniformLocation),
		names:     make(map[metadata.UniformLocation]string),
	}
	next := int32(0)
	for _, in := range vertex.Inputs {
		if c.inactive[in.Name] {
			continue
		}
		loc := next
		if in.Location >= 0 {
			loc = int32(in.Location)
		}
		p.attribs[in.Name] = loc
		next = loc + 1
	}
	for _, u := range append(vertex.Uniforms, fragment.Uniforms...) {
		p.declared[u.Name] = true
	}

	c.nextProgram++
	c.programs[c.nextProgram] = p
	return c.nextProgram, nil
}

func (c *Context) DeleteProgram(handle metadata.ProgramHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.programs, handle)
	if c.current == handle {
		c.current = 0
	}
}

func (c *Context) UseProgram(handle metadata.ProgramHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = handle
	if handle != 0 {
		c.binds = append(c.binds, handle)
	}
}

func (c *Context) AttribLocation(handle metadata.ProgramHandle, name string) int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.programs[handle]
	if !ok {
		return -1
	}
	if loc, ok := p.attribs[name]; ok {
		return loc
	}
	return -1
}

// UniformLocation accepts any name whose root identifier was declared as a uniform,
// e.g. "u_light[1].color" for "uniform Light u_light[2];".
func (c *Context) UniformLocation(handle metadata.ProgramHandle, name string) (metadata.UniformLocation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.programs[handle]
	if !ok || c.inactive[name] {
		return -1, false
	}
	if loc, ok := p.locations[name]; ok {
		return loc, true
	}
	root := name
	if i := strings.IndexAny(root, "[."); i >= 0 {
		root = root[:i]
	}
	if !p.declared[root] {
		return -1, false
	}
	loc := c.nextLocation
	c.nextLocation++
	p.locations[name] = loc
	p.names[loc] = name
	return loc, true
}

func (c *Context) record(location metadata.UniformLocation, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	name := ""
	if p, ok := c.programs[c.current]; ok {
		name = p.names[location]
	}
	c.uploads = append(c.uploads, UniformUpload{
		Program:  c.current,
		Location: location,
		Name:     name,
		Value:    value,
	})
}

func (c *Context) Uniform1f(location metadata.UniformLocation, v float32)   { c.record(location, v) }
func (c *Context) Uniform1i(location metadata.UniformLocation, v int32)     { c.record(location, v) }
func (c *Context) Uniform1ui(location metadata.UniformLocation, v uint32)   { c.record(location, v) }
func (c *Context) Uniform2f(location metadata.UniformLocation, v math.Vec2) { c.record(location, v) }
func (c *Context) Uniform3f(location metadata.UniformLocation, v math.Vec3) { c.record(location, v) }
func (c *Context) Uniform4f(location metadata.UniformLocation, v math.Vec4) { c.record(location, v) }
func (c *Context) UniformMatrix3f(location metadata.UniformLocation, m math.Mat3) {
	c.record(location, m)
}
func (c *Context) UniformMatrix4f(location metadata.UniformLocation, m math.Mat4) {
	c.record(location, m)
}

func (c *Context) CreateVertexArray(layout metadata.VertexLayout, vertices []float32, indices []uint32) (metadata.VertexArrayHandle, error) {
	if layout.Stride == 0 {
		return 0, fmt.Errorf("vertex layout has no elements")
	}
	if len(vertices)%int(layout.Components()) != 0 {
		return 0, fmt.Errorf("vertex buffer of %d floats is not a multiple of the %d byte stride", len(vertices), layout.Stride)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextVAO++
	c.vertexArrays[c.nextVAO] = VertexArray{
		Layout:   layout,
		Vertices: append([]float32(nil), vertices...),
		Indices:  append([]uint32(nil), indices...),
	}
	return c.nextVAO, nil
}

func (c *Context) DeleteVertexArray(vao metadata.VertexArrayHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.vertexArrays, vao)
}

func (c *Context) Draw(mesh *metadata.Mesh) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized {
		core.LogError("draw on a context that is not initialized")
		return
	}
	c.draws = append(c.draws, DrawCall{
		Program:     c.current,
		Mesh:        mesh.Name,
		VertexArray: mesh.VertexArray,
		Count:       mesh.DrawCount,
		Indexed:     mesh.Indexed,
	})
}

func (c *Context) Viewport(width, height uint32) {}

func (c *Context) Clear(colour math.Vec4) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clears++
}

// Binds returns every non-zero program passed to UseProgram, in call order.
func (c *Context) Binds() []metadata.ProgramHandle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]metadata.ProgramHandle(nil), c.binds...)
}

func (c *Context) Uploads() []UniformUpload {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]UniformUpload(nil), c.uploads...)
}

func (c *Context) Draws() []DrawCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]DrawCall(nil), c.draws...)
}

// LastUpload returns the most recent value uploaded to name in program.
func (c *Context) LastUpload(handle metadata.ProgramHandle, name string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.uploads) - 1; i >= 0; i-- {
		if c.uploads[i].Program == handle && c.uploads[i].Name == name {
			return c.uploads[i].Value, true
		}
	}
	return nil, false
}

func (c *Context) VertexArray(vao metadata.VertexArrayHandle) (VertexArray, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	va, ok := c.vertexArrays[vao]
	return va, ok
}

// ResetRecording forgets recorded binds, uploads and draws.
func (c *Context) ResetRecording() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.binds = nil
	c.uploads = nil
	c.draws = nil
	c.clears = 0
}
