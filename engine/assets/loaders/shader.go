package loaders

import (
	"os"

	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

// ShaderLoader reads combined vertex and fragment shader source.
type ShaderLoader struct{}

func (sl *ShaderLoader) Load(path string) (*metadata.Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &metadata.Resource{
		Type:     metadata.ResourceTypeShader,
		FullPath: path,
		DataSize: uint64(len(data)),
		Data:     string(data),
	}, nil
}

func (sl *ShaderLoader) Unload(*metadata.Resource) error {
	return nil
}
