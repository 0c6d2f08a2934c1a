package components

import (
	"github.com/chewxy/math32"

	"github.com/spaghettifunk/lumen/engine/math"
)

/** @brief The name of the default camera. */
const DEFAULT_CAMERA_NAME string = "default"

/** @brief A direction the camera can be moved in, relative to where it looks. */
type Direction uint8

const (
	DirectionForward Direction = iota
	DirectionBackward
	DirectionLeft
	DirectionRight
	DirectionUp
	DirectionDown
)

/** @brief Construction options for a camera. Zero values select the defaults. */
type CameraConfig struct {
	/** @brief Degrees of rotation per unit of mouse movement. Default 0.1. */
	Sensitivity float32
	/** @brief World units moved per second of key press. Default 0.1. */
	MoveSpeed float32
	Near      float32
	Far       float32
	/** @brief Vertical field of view in degrees. Default 60. */
	FovDegrees float32
	Width      uint32
	Height     uint32
	WorldUp    *math.Vec3
}

/**
 * @brief A perspective fly camera driven by yaw and pitch. The view matrix is
 * rebuilt whenever the camera moves or turns.
 */
type Camera struct {
	worldUp math.Vec3
	near    float32
	far     float32
	fov     float32
	aspect  float32

	/** @brief Rotation about the world up axis, in degrees. */
	yaw float32
	/** @brief Elevation in degrees, kept within [-89, 89] to avoid gimbal flip. */
	pitch       float32
	sensitivity float32
	moveSpeed   float32

	position math.Vec3
	front    math.Vec3
	right    math.Vec3
	up       math.Vec3

	view       math.Mat4
	projection math.Mat4
}

type CameraLookup struct {
	ID             uint16
	ReferenceCount uint16
	Camera         *Camera
}

const pitchLimit float32 = 89.0

func NewCamera(config CameraConfig) *Camera {
	c := &Camera{
		near:        orDefault(config.Near, 0.1),
		far:         orDefault(config.Far, 100),
		fov:         math.DegToRad(orDefault(config.FovDegrees, 60)),
		sensitivity: orDefault(config.Sensitivity, 0.1),
		moveSpeed:   orDefault(config.MoveSpeed, 0.1),
		worldUp:     math.NewVec3Up(),
		aspect:      1,
	}
	if config.WorldUp != nil {
		c.worldUp = *config.WorldUp
	}
	if config.Width > 0 && config.Height > 0 {
		c.aspect = float32(config.Width) / float32(config.Height)
	}
	c.Reset()
	return c
}

func orDefault(v, def float32) float32 {
	if v == 0 {
		return def
	}
	return v
}

/** @brief Puts the camera back at the origin looking down -Z. */
func (c *Camera) Reset() {
	c.position = math.NewVec3Zero()
	c.yaw = -90
	c.pitch = 0
	c.calcProjection()
	c.calcView()
}

func (c *Camera) Position() math.Vec3 {
	return c.position
}

func (c *Camera) SetPosition(position math.Vec3) {
	c.position = position
	c.calcView()
}

func (c *Camera) Yaw() float32   { return c.yaw }
func (c *Camera) Pitch() float32 { return c.pitch }

func (c *Camera) Front() math.Vec3 { return c.front }
func (c *Camera) Right() math.Vec3 { return c.right }
func (c *Camera) Up() math.Vec3    { return c.up }

func (c *Camera) View() math.Mat4 {
	return c.view
}

func (c *Camera) Projection() math.Mat4 {
	return c.projection
}

// Resize keeps the projection in step with the framebuffer aspect ratio.
func (c *Camera) Resize(width, height uint32) {
	if width == 0 || height == 0 {
		return
	}
	c.aspect = float32(width) / float32(height)
	c.calcProjection()
}

/**
 * @brief Moves the camera along its own axes.
 * @param direction Where to move, relative to the view direction.
 * @param deltaTime Scales the move speed.
 */
func (c *Camera) KeyMove(direction Direction, deltaTime float32) {
	velocity := c.moveSpeed * deltaTime
	switch direction {
	case DirectionForward:
		c.position = c.position.Add(c.front.Mul(velocity))
	case DirectionBackward:
		c.position = c.position.Sub(c.front.Mul(velocity))
	case DirectionRight:
		c.position = c.position.Add(c.right.Mul(velocity))
	case DirectionLeft:
		c.position = c.position.Sub(c.right.Mul(velocity))
	case DirectionUp:
		c.position = c.position.Add(c.up.Mul(velocity))
	case DirectionDown:
		c.position = c.position.Sub(c.up.Mul(velocity))
	}
	c.calcView()
}

/** @brief Turns the camera by a mouse offset. Positive y looks up. */
func (c *Camera) MouseMove(offsetX, offsetY float32) {
	c.yaw = math.WrapDegrees(c.yaw + offsetX*c.sensitivity)
	c.pitch = math.Clamp(c.pitch+offsetY*c.sensitivity, -pitchLimit, pitchLimit)
	c.calcView()
}

func (c *Camera) calcProjection() {
	c.projection = math.NewMat4Perspective(c.fov, c.aspect, c.near, c.far)
}

func (c *Camera) calcView() {
	yaw := math.DegToRad(c.yaw)
	pitch := math.DegToRad(c.pitch)
	c.front = math.NewVec3(
		math32.Cos(yaw)*math32.Cos(pitch),
		math32.Sin(pitch),
		math32.Sin(yaw)*math32.Cos(pitch),
	).Normalize()
	c.right = c.front.Cross(c.worldUp).Normalize()
	c.up = c.right.Cross(c.front).Normalize()
	c.view = math.NewMat4LookAt(c.position, c.position.Add(c.front), c.up)
}
