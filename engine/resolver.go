package engine

import (
	"fmt"

	"github.com/spaghettifunk/lumen/engine/assets"
	"github.com/spaghettifunk/lumen/engine/renderer"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/renderer/shader"
	"github.com/spaghettifunk/lumen/engine/systems"
)

type meshKey struct {
	path    string
	program uint32
}

// assetResolver feeds scene files from the asset directory. Programs are registered in
// the shader system under their asset path. Meshes are owned by the resolver until
// Release.
type assetResolver struct {
	gpu     renderer.Backend
	assets  *assets.AssetManager
	shaders *systems.ShaderSystem
	meshes  map[meshKey]*metadata.Mesh
}

func newAssetResolver(gpu renderer.Backend, am *assets.AssetManager, ss *systems.ShaderSystem) *assetResolver {
	return &assetResolver{
		gpu:     gpu,
		assets:  am,
		shaders: ss,
		meshes:  make(map[meshKey]*metadata.Mesh),
	}
}

func (r *assetResolver) Shader(path string) (*shader.Program, error) {
	if p, err := r.shaders.Get(path); err == nil {
		return p, nil
	}
	res := <-r.assets.LoadShaderSource(path)
	if res.Err != nil {
		return nil, res.Err
	}
	return r.shaders.Acquire(path, res.Source)
}

// ReloadShader rebuilds the program registered under path from the current file.
func (r *assetResolver) ReloadShader(path string) error {
	if _, err := r.shaders.Get(path); err != nil {
		return nil
	}
	res := <-r.assets.LoadShaderSource(path)
	if res.Err != nil {
		return res.Err
	}
	_, err := r.shaders.Reload(path, res.Source)
	return err
}

func (r *assetResolver) Mesh(path string, program *shader.Program) (*metadata.Mesh, error) {
	key := meshKey{path: path, program: program.ID()}
	if m, ok := r.meshes[key]; ok {
		return m, nil
	}
	res := <-r.assets.LoadMeshGeometry(path)
	if res.Err != nil {
		return nil, res.Err
	}
	m, err := program.CreateMesh(res.Geometry)
	if err != nil {
		return nil, fmt.Errorf("mesh %s for program %s: %w", path, program.Name(), err)
	}
	r.meshes[key] = m
	return m, nil
}

// Release deletes every mesh handed out so far.
func (r *assetResolver) Release() {
	for key, m := range r.meshes {
		r.gpu.DeleteVertexArray(m.VertexArray)
		delete(r.meshes, key)
	}
}
