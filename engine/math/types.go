package math

import "github.com/go-gl/mathgl/mgl32"

// The engine uses the mathgl value types directly: they are fixed-size arrays, so
// assignment copies and nothing aliases a GPU buffer by accident.
type (
	Vec2 = mgl32.Vec2
	Vec3 = mgl32.Vec3
	Vec4 = mgl32.Vec4
	Mat3 = mgl32.Mat3
	Mat4 = mgl32.Mat4
)

func NewVec3(x, y, z float32) Vec3 {
	return Vec3{x, y, z}
}

func NewVec3Zero() Vec3 {
	return Vec3{}
}

func NewVec3One() Vec3 {
	return Vec3{1, 1, 1}
}

func NewVec3Up() Vec3 {
	return Vec3{0, 1, 0}
}

func NewVec4(x, y, z, w float32) Vec4 {
	return Vec4{x, y, z, w}
}

func NewMat4Identity() Mat4 {
	return mgl32.Ident4()
}

func NewMat4Translation(position Vec3) Mat4 {
	return mgl32.Translate3D(position[0], position[1], position[2])
}

// Extents3D is an axis aligned bounding box.
type Extents3D struct {
	Min Vec3
	Max Vec3
}
