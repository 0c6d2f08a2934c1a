// Package opengl implements the GPU context on OpenGL 4.1 core through go-gl.
// Every call must happen on the thread owning the current GL context.
package opengl

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

type vertexArray struct {
	vao     uint32
	buffers []uint32
}

// Context is a renderer.Backend on top of the GL context made current by the platform.
type Context struct {
	initialized  bool
	locations    map[metadata.ProgramHandle]map[string]metadata.UniformLocation
	vertexArrays map[metadata.VertexArrayHandle]vertexArray
}

// New loads the GL function pointers. A GL context must be current.
func New() (*Context, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	core.LogInfo("OpenGL %s, GLSL %s, %s",
		gl.GoStr(gl.GetString(gl.VERSION)),
		gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION)),
		gl.GoStr(gl.GetString(gl.RENDERER)))

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)

	return &Context{
		initialized:  true,
		locations:    make(map[metadata.ProgramHandle]map[string]metadata.UniformLocation),
		vertexArrays: make(map[metadata.VertexArrayHandle]vertexArray),
	}, nil
}

func (c *Context) Initialized() bool {
	return c != nil && c.initialized
}

func compileShader(kind uint32, stage, src string) (uint32, error) {
	handle := gl.CreateShader(kind)
	csources, free := gl.Strs(src + "\x00")
	gl.ShaderSource(handle, 1, csources, nil)
	free()
	gl.CompileShader(handle)

	var status int32
	gl.GetShaderiv(handle, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(handle, gl.INFO_LOG_LENGTH, &logLength)
		msg := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(handle, logLength, nil, gl.Str(msg))
		gl.DeleteShader(handle)
		return 0, fmt.Errorf("%s stage failed to compile: %s", stage, strings.TrimRight(msg, "\x00"))
	}
	return handle, nil
}

func (c *Context) CreateProgram(vertexSource, fragmentSource string) (metadata.ProgramHandle, error) {
	vs, err := compileShader(gl.VERTEX_SHADER, "vertex", vertexSource)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vs)
	fs, err := compileShader(gl.FRAGMENT_SHADER, "fragment", fragmentSource)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fs)

	handle := gl.CreateProgram()
	gl.AttachShader(handle, vs)
	gl.AttachShader(handle, fs)
	gl.LinkProgram(handle)
	gl.DetachShader(handle, vs)
	gl.DetachShader(handle, fs)

	var status int32
	gl.GetProgramiv(handle, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(handle, gl.INFO_LOG_LENGTH, &logLength)
		msg := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(handle, logLength, nil, gl.Str(msg))
		gl.DeleteProgram(handle)
		return 0, fmt.Errorf("program failed to link: %s", strings.TrimRight(msg, "\x00"))
	}

	program := metadata.ProgramHandle(handle)
	c.locations[program] = make(map[string]metadata.UniformLocation)
	return program, nil
}

func (c *Context) DeleteProgram(program metadata.ProgramHandle) {
	delete(c.locations, program)
	gl.DeleteProgram(uint32(program))
}

func (c *Context) UseProgram(program metadata.ProgramHandle) {
	gl.UseProgram(uint32(program))
}

func (c *Context) AttribLocation(program metadata.ProgramHandle, name string) int32 {
	return gl.GetAttribLocation(uint32(program), gl.Str(name+"\x00"))
}

// UniformLocation caches lookups per program, misses included.
func (c *Context) UniformLocation(program metadata.ProgramHandle, name string) (metadata.UniformLocation, bool) {
	cache, ok := c.locations[program]
	if !ok {
		return -1, false
	}
	loc, ok := cache[name]
	if !ok {
		loc = metadata.UniformLocation(gl.GetUniformLocation(uint32(program), gl.Str(name+"\x00")))
		cache[name] = loc
	}
	return loc, loc >= 0
}

func (c *Context) Uniform1f(location metadata.UniformLocation, v float32) {
	gl.Uniform1f(int32(location), v)
}

func (c *Context) Uniform1i(location metadata.UniformLocation, v int32) {
	gl.Uniform1i(int32(location), v)
}

func (c *Context) Uniform1ui(location metadata.UniformLocation, v uint32) {
	gl.Uniform1ui(int32(location), v)
}

func (c *Context) Uniform2f(location metadata.UniformLocation, v math.Vec2) {
	gl.Uniform2fv(int32(location), 1, &v[0])
}

func (c *Context) Uniform3f(location metadata.UniformLocation, v math.Vec3) {
	gl.Uniform3fv(int32(location), 1, &v[0])
}

func (c *Context) Uniform4f(location metadata.UniformLocation, v math.Vec4) {
	gl.Uniform4fv(int32(location), 1, &v[0])
}

func (c *Context) UniformMatrix3f(location metadata.UniformLocation, m math.Mat3) {
	gl.UniformMatrix3fv(int32(location), 1, false, &m[0])
}

func (c *Context) UniformMatrix4f(location metadata.UniformLocation, m math.Mat4) {
	gl.UniformMatrix4fv(int32(location), 1, false, &m[0])
}

// CreateVertexArray uploads the buffers and points every active layout element at its
// offset. Unsigned elements use the integer pointer variant so they are not converted.
func (c *Context) CreateVertexArray(layout metadata.VertexLayout, vertices []float32, indices []uint32) (metadata.VertexArrayHandle, error) {
	if layout.Stride == 0 {
		return 0, fmt.Errorf("vertex layout has no elements")
	}
	if len(vertices) == 0 || len(vertices)%int(layout.Components()) != 0 {
		return 0, fmt.Errorf("vertex buffer of %d floats does not match the %d byte stride", len(vertices), layout.Stride)
	}

	va := vertexArray{}
	gl.GenVertexArrays(1, &va.vao)
	gl.BindVertexArray(va.vao)

	var vbo uint32
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)
	va.buffers = append(va.buffers, vbo)

	if len(indices) > 0 {
		var ebo uint32
		gl.GenBuffers(1, &ebo)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ebo)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.STATIC_DRAW)
		va.buffers = append(va.buffers, ebo)
	}

	for _, e := range layout.Elements {
		if e.Location < 0 {
			continue
		}
		loc := uint32(e.Location)
		gl.EnableVertexAttribArray(loc)
		switch e.Kind {
		case metadata.ScalarUnsignedInt:
			gl.VertexAttribIPointerWithOffset(loc, int32(e.Components), gl.UNSIGNED_INT, int32(layout.Stride), uintptr(e.Offset))
		default:
			gl.VertexAttribPointerWithOffset(loc, int32(e.Components), gl.FLOAT, e.Normalized, int32(layout.Stride), uintptr(e.Offset))
		}
	}
	gl.BindVertexArray(0)

	handle := metadata.VertexArrayHandle(va.vao)
	c.vertexArrays[handle] = va
	return handle, nil
}

func (c *Context) DeleteVertexArray(handle metadata.VertexArrayHandle) {
	va, ok := c.vertexArrays[handle]
	if !ok {
		return
	}
	gl.DeleteBuffers(int32(len(va.buffers)), &va.buffers[0])
	gl.DeleteVertexArrays(1, &va.vao)
	delete(c.vertexArrays, handle)
}

func (c *Context) Draw(mesh *metadata.Mesh) {
	if !c.initialized {
		core.LogError("draw on a context that is not initialized")
		return
	}
	gl.BindVertexArray(uint32(mesh.VertexArray))
	if mesh.Indexed {
		gl.DrawElementsWithOffset(gl.TRIANGLES, int32(mesh.DrawCount), gl.UNSIGNED_INT, 0)
	} else {
		gl.DrawArrays(gl.TRIANGLES, 0, int32(mesh.DrawCount))
	}
	gl.BindVertexArray(0)
}

func (c *Context) Viewport(width, height uint32) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

func (c *Context) Clear(colour math.Vec4) {
	gl.ClearColor(colour[0], colour[1], colour[2], colour[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Shutdown releases every vertex array and program still owned by the context.
func (c *Context) Shutdown() error {
	if !c.initialized {
		return nil
	}
	for handle := range c.vertexArrays {
		c.DeleteVertexArray(handle)
	}
	for program := range c.locations {
		c.DeleteProgram(program)
	}
	c.initialized = false
	return nil
}
