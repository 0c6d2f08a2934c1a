package metadata

import "github.com/spaghettifunk/lumen/engine/math"

/** @brief The name of the default material. */
const DefaultMaterialName string = "default"

/** @brief Phong material parameters, uploaded as u_material.* uniforms. */
type Material struct {
	Name      string
	Ambient   float32
	Diffuse   math.Vec3
	Specular  math.Vec3
	Shininess float32
}

func NewDefaultMaterial() *Material {
	return &Material{
		Name:      DefaultMaterialName,
		Ambient:   0.1,
		Diffuse:   math.NewVec3(0.8, 0.8, 0.8),
		Specular:  math.NewVec3(0.5, 0.5, 0.5),
		Shininess: 32,
	}
}
