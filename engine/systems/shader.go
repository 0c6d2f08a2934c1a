package systems

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer"
	"github.com/spaghettifunk/lumen/engine/renderer/shader"
)

/** @brief Configuration for the shader system. */
type ShaderSystemConfig struct {
	/** @brief The maximum number of shaders held in the system. */
	MaxShaderCount uint16
}

// ShaderSystem owns every program built by the engine, keyed by name. Program IDs come
// from the system's own sequence so they are unique among live programs.
type ShaderSystem struct {
	Config *ShaderSystemConfig

	gpu    renderer.Backend
	ids    *core.IDSequence
	lookup map[string]*shader.Program
}

func NewShaderSystem(config *ShaderSystemConfig, gpu renderer.Backend) (*ShaderSystem, error) {
	if config == nil || config.MaxShaderCount == 0 {
		err := core.NewConfigurationError("shader system", "MaxShaderCount must be greater than 0")
		core.LogError(err.Error())
		return nil, err
	}
	if gpu == nil {
		return nil, core.ErrNotInitialized
	}
	return &ShaderSystem{
		Config: config,
		gpu:    gpu,
		ids:    core.NewIDSequence(int(config.MaxShaderCount)),
		lookup: make(map[string]*shader.Program),
	}, nil
}

/**
 * @brief Returns the program called name, building it from source if it does not
 * exist yet.
 */
func (s *ShaderSystem) Acquire(name, source string) (*shader.Program, error) {
	if p, ok := s.lookup[name]; ok {
		return p, nil
	}
	if len(s.lookup) >= int(s.Config.MaxShaderCount) {
		return nil, fmt.Errorf("shader system is full (%d shaders), cannot create '%s'", s.Config.MaxShaderCount, name)
	}
	p, err := shader.Build(s.gpu, s.ids, name, source)
	if err != nil {
		return nil, err
	}
	s.lookup[name] = p
	return p, nil
}

func (s *ShaderSystem) Get(name string) (*shader.Program, error) {
	p, ok := s.lookup[name]
	if !ok {
		return nil, fmt.Errorf("shader '%s': %w", name, core.ErrAssetNotFound)
	}
	return p, nil
}

// Reload rebuilds name from source. The old program survives if the rebuild fails.
// Renderables that point at the old program must be rebuilt by the caller.
func (s *ShaderSystem) Reload(name, source string) (*shader.Program, error) {
	old, ok := s.lookup[name]
	if !ok {
		return s.Acquire(name, source)
	}
	p, err := shader.Build(s.gpu, s.ids, name, source)
	if err != nil {
		core.LogWarn("keeping previous version of shader '%s'", name)
		return nil, err
	}
	if err := old.Destroy(); err != nil {
		core.LogWarn("destroying previous version of shader '%s': %s", name, err)
	}
	s.lookup[name] = p
	core.LogInfo("shader '%s' reloaded", name)
	return p, nil
}

// Release destroys the program called name.
func (s *ShaderSystem) Release(name string) error {
	p, ok := s.lookup[name]
	if !ok {
		return fmt.Errorf("shader '%s': %w", name, core.ErrAssetNotFound)
	}
	delete(s.lookup, name)
	return p.Destroy()
}

// Names returns the names of every live program, sorted.
func (s *ShaderSystem) Names() []string {
	return slices.Sorted(maps.Keys(s.lookup))
}

/**
 * @brief Shuts down the shader system, destroying any shaders still in existence.
 */
func (s *ShaderSystem) Shutdown() error {
	for _, name := range s.Names() {
		if err := s.Release(name); err != nil {
			core.LogError(err.Error())
			return err
		}
	}
	return nil
}
