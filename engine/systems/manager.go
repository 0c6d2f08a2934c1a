package systems

import (
	"github.com/spaghettifunk/lumen/engine/renderer"
	"github.com/spaghettifunk/lumen/engine/renderer/components"
)

type SystemManagerConfig struct {
	Workers        int
	JobQueueSize   int
	MaxShaderCount uint16
	MaxCameraCount uint16
	Width          uint32
	Height         uint32
	Camera         components.CameraConfig
	Renderer       []RendererOption
}

// SystemManager creates the engine systems around one GPU context and shuts them down
// in reverse order.
type SystemManager struct {
	JobSystem      *JobSystem
	CameraSystem   *CameraSystem
	ShaderSystem   *ShaderSystem
	RendererSystem *RendererSystem
}

func NewSystemManager(gpu renderer.Backend, config SystemManagerConfig) (*SystemManager, error) {
	js, err := NewJobSystem(config.Workers, config.JobQueueSize)
	if err != nil {
		return nil, err
	}
	cs, err := NewCameraSystem(&CameraSystemConfig{
		MaxCameraCount: config.MaxCameraCount,
		Camera:         config.Camera,
	})
	if err != nil {
		js.Shutdown()
		return nil, err
	}
	ss, err := NewShaderSystem(&ShaderSystemConfig{
		MaxShaderCount: config.MaxShaderCount,
	}, gpu)
	if err != nil {
		js.Shutdown()
		return nil, err
	}
	rs, err := NewRendererSystem(gpu, config.Width, config.Height, config.Renderer...)
	if err != nil {
		js.Shutdown()
		return nil, err
	}
	return &SystemManager{
		JobSystem:      js,
		CameraSystem:   cs,
		ShaderSystem:   ss,
		RendererSystem: rs,
	}, nil
}

func (sm *SystemManager) OnResize(width, height uint32) {
	sm.RendererSystem.OnResize(width, height)
	sm.CameraSystem.OnResize(width, height)
}

func (sm *SystemManager) Shutdown() error {
	if err := sm.ShaderSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.CameraSystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.JobSystem.Shutdown(); err != nil {
		return err
	}
	return sm.RendererSystem.Shutdown()
}
