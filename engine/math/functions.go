package math

import (
	"encoding/binary"
	stdmath "math"

	"github.com/go-gl/mathgl/mgl32"
)

func DegToRad(degrees float32) float32 {
	return mgl32.DegToRad(degrees)
}

func RadToDeg(radians float32) float32 {
	return mgl32.RadToDeg(radians)
}

func NewMat4Perspective(fovRadians, aspect, near, far float32) Mat4 {
	return mgl32.Perspective(fovRadians, aspect, near, far)
}

func NewMat4LookAt(eye, center, up Vec3) Mat4 {
	return mgl32.LookAtV(eye, center, up)
}

// Mat4Buffer returns the column-major elements of m, ready for a uniform upload.
func Mat4Buffer(m Mat4) []float32 {
	out := make([]float32, 16)
	copy(out, m[:])
	return out
}

func Mat3Buffer(m Mat3) []float32 {
	out := make([]float32, 9)
	copy(out, m[:])
	return out
}

func Vec3Buffer(v Vec3) []float32 {
	return []float32{v[0], v[1], v[2]}
}

func Vec4Buffer(v Vec4) []float32 {
	return []float32{v[0], v[1], v[2], v[3]}
}

// Float32Bytes encodes values little endian, the layout GPU vertex buffers expect.
func Float32Bytes(values []float32) []byte {
	out := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(out[i*4:], stdmath.Float32bits(v))
	}
	return out
}

// BytesFloat32 is the inverse of Float32Bytes. Trailing bytes that do not form a full
// float are ignored.
func BytesFloat32(data []byte) []float32 {
	out := make([]float32, len(data)/4)
	for i := range out {
		out[i] = stdmath.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return out
}
