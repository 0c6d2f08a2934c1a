package metadata

import "github.com/spaghettifunk/lumen/engine/math"

/**
 * @brief Point light parameters. Position is written by scene traversal with the
 * light's world position; values set by hand are overwritten every frame.
 */
type LightParams struct {
	Color     math.Vec3
	Constant  float32
	Linear    float32
	Quadratic float32
	Position  math.Vec3
}
