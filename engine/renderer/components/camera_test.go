package components

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spaghettifunk/lumen/engine/math"
)

func TestNewCameraLooksDownNegativeZ(t *testing.T) {
	c := NewCamera(CameraConfig{Width: 1280, Height: 720})

	assert.True(t, c.Front().ApproxEqualThreshold(math.NewVec3(0, 0, -1), 1e-6))
	assert.True(t, c.Right().ApproxEqualThreshold(math.NewVec3(1, 0, 0), 1e-6))
	assert.True(t, c.Up().ApproxEqualThreshold(math.NewVec3(0, 1, 0), 1e-6))
	assert.Equal(t, float32(-90), c.Yaw())

	expected := math.NewMat4Perspective(math.DegToRad(60), 1280.0/720.0, 0.1, 100)
	assert.Equal(t, expected, c.Projection())
}

func TestKeyMove(t *testing.T) {
	c := NewCamera(CameraConfig{MoveSpeed: 2})

	c.KeyMove(DirectionForward, 0.5)
	assert.True(t, c.Position().ApproxEqualThreshold(math.NewVec3(0, 0, -1), 1e-6))

	c.KeyMove(DirectionRight, 1)
	assert.True(t, c.Position().ApproxEqualThreshold(math.NewVec3(2, 0, -1), 1e-6))

	c.KeyMove(DirectionDown, 1)
	assert.True(t, c.Position().ApproxEqualThreshold(math.NewVec3(2, -2, -1), 1e-6))

	view := c.View()
	eye := view.Mul4x1(math.NewVec4(2, -2, -1, 1))
	assert.True(t, eye.Vec3().ApproxEqualThreshold(math.NewVec3Zero(), 1e-5))
}

func TestMouseMoveClampsPitch(t *testing.T) {
	c := NewCamera(CameraConfig{})

	c.MouseMove(0, 10000)
	assert.Equal(t, float32(89), c.Pitch())
	c.MouseMove(0, -20000)
	assert.Equal(t, float32(-89), c.Pitch())

	c.MouseMove(900, 0)
	assert.Equal(t, float32(0), c.Yaw())
	assert.True(t, c.Front().Y() < 0)
}

func TestResizeIgnoresEmptyFramebuffer(t *testing.T) {
	c := NewCamera(CameraConfig{Width: 800, Height: 600})
	before := c.Projection()

	c.Resize(0, 600)
	assert.Equal(t, before, c.Projection())

	c.Resize(600, 600)
	assert.NotEqual(t, before, c.Projection())
}
