package renderer

import (
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

// Backend is the GPU context the engine draws through. Implementations are created and
// initialized by the application and handed to every component that talks to the GPU.
type Backend interface {
	// Initialized reports whether the context is ready to accept calls.
	Initialized() bool

	CreateProgram(vertexSource, fragmentSource string) (metadata.ProgramHandle, error)
	DeleteProgram(program metadata.ProgramHandle)
	// UseProgram makes program current. Zero unbinds.
	UseProgram(program metadata.ProgramHandle)
	// AttribLocation returns -1 when the input is not active in the linked program.
	AttribLocation(program metadata.ProgramHandle, name string) int32
	UniformLocation(program metadata.ProgramHandle, name string) (metadata.UniformLocation, bool)

	Uniform1f(location metadata.UniformLocation, v float32)
	Uniform1i(location metadata.UniformLocation, v int32)
	Uniform1ui(location metadata.UniformLocation, v uint32)
	Uniform2f(location metadata.UniformLocation, v math.Vec2)
	Uniform3f(location metadata.UniformLocation, v math.Vec3)
	Uniform4f(location metadata.UniformLocation, v math.Vec4)
	UniformMatrix3f(location metadata.UniformLocation, m math.Mat3)
	UniformMatrix4f(location metadata.UniformLocation, m math.Mat4)

	// CreateVertexArray uploads an interleaved vertex buffer (and optional index buffer)
	// and records the attribute pointers described by layout.
	CreateVertexArray(layout metadata.VertexLayout, vertices []float32, indices []uint32) (metadata.VertexArrayHandle, error)
	DeleteVertexArray(vao metadata.VertexArrayHandle)
	Draw(mesh *metadata.Mesh)

	Viewport(width, height uint32)
	Clear(colour math.Vec4)
	Shutdown() error
}
