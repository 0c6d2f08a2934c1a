package metadata

import (
	"path/filepath"
	"strings"
)

type ResourceType int

/** @brief Pre-defined resource types. */
const (
	ResourceTypeNone ResourceType = iota
	/** @brief Combined vertex/fragment shader source (.glsl). */
	ResourceTypeShader
	/** @brief Face-indexed mesh source (.obj). */
	ResourceTypeMesh
	/** @brief Scene description (.yaml, .yml). */
	ResourceTypeScene
	/** @brief Engine configuration (.toml). */
	ResourceTypeConfig
)

func (t ResourceType) String() string {
	switch t {
	case ResourceTypeShader:
		return "shader"
	case ResourceTypeMesh:
		return "mesh"
	case ResourceTypeScene:
		return "scene"
	case ResourceTypeConfig:
		return "config"
	}
	return "none"
}

// ResourceTypeFromPath classifies a file by its extension.
func ResourceTypeFromPath(path string) ResourceType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".glsl":
		return ResourceTypeShader
	case ".obj":
		return ResourceTypeMesh
	case ".yaml", ".yml":
		return ResourceTypeScene
	case ".toml":
		return ResourceTypeConfig
	default:
		return ResourceTypeNone
	}
}

/**
 * @brief A generic structure for a resource. All resource loaders
 * load data into these.
 */
type Resource struct {
	Type ResourceType
	/** @brief The full file path of the resource. */
	FullPath string
	/** @brief The size of the resource data in bytes. */
	DataSize uint64
	/** @brief The resource data: a string for shaders, *Geometry for meshes. */
	Data interface{}
}
