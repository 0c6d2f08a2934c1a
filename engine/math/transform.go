package math

import "github.com/go-gl/mathgl/mgl32"

// Transform is the local placement of a scene node. Rotation holds Euler angles in
// degrees; Rotation and Scale are optional.
type Transform struct {
	Position Vec3
	Rotation *Vec3
	Scale    *Vec3
}

func TransformFromPosition(position Vec3) *Transform {
	return &Transform{Position: position}
}

func TransformFromPositionRotationScale(position, rotation, scale Vec3) *Transform {
	return &Transform{Position: position, Rotation: &rotation, Scale: &scale}
}

func (t *Transform) SetRotation(rotation Vec3) {
	t.Rotation = &rotation
}

func (t *Transform) SetScale(scale Vec3) {
	t.Scale = &scale
}

func (t *Transform) Translate(translation Vec3) {
	t.Position = t.Position.Add(translation)
}

// Matrix builds the world matrix for a node sitting at worldPos:
// translate, then rotate about X, Y and Z in that order, then scale.
// A nil transform yields a pure translation.
func (t *Transform) Matrix(worldPos Vec3) Mat4 {
	m := NewMat4Translation(worldPos)
	if t == nil {
		return m
	}
	if t.Rotation != nil {
		r := *t.Rotation
		m = m.Mul4(mgl32.HomogRotate3DX(DegToRad(r[0])))
		m = m.Mul4(mgl32.HomogRotate3DY(DegToRad(r[1])))
		m = m.Mul4(mgl32.HomogRotate3DZ(DegToRad(r[2])))
	}
	if t.Scale != nil {
		s := *t.Scale
		m = m.Mul4(mgl32.Scale3D(s[0], s[1], s[2]))
	}
	return m
}
