package engine

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/components"
)

type WindowConfig struct {
	// The application name used in windowing.
	Name string `toml:"name"`
	// Window starting position.
	X uint32 `toml:"x"`
	Y uint32 `toml:"y"`
	// Window starting size.
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`
}

type CameraConfig struct {
	FovDegrees  float32 `toml:"fov"`
	Near        float32 `toml:"near"`
	Far         float32 `toml:"far"`
	Sensitivity float32 `toml:"sensitivity"`
	MoveSpeed   float32 `toml:"move_speed"`
}

type JobsConfig struct {
	Workers   int `toml:"workers"`
	QueueSize int `toml:"queue_size"`
}

type RendererConfig struct {
	// Upload only the uniforms present in each queue entry instead of requiring all.
	PartialUniforms bool       `toml:"partial_uniforms"`
	ClearColour     [4]float32 `toml:"clear_colour"`
	MaxShaders      uint16     `toml:"max_shaders"`
}

// ApplicationConfig is everything the engine reads before opening a window.
type ApplicationConfig struct {
	Window   WindowConfig `toml:"window"`
	LogLevel string       `toml:"log_level"`
	Assets   string       `toml:"assets"`
	Scene    string       `toml:"scene"`
	// Evict and reload assets when they change on disk.
	HotReload bool `toml:"hot_reload"`
	// Milliseconds between FPS counter refreshes.
	FpsInterval uint32         `toml:"fps_interval"`
	Camera      CameraConfig   `toml:"camera"`
	Jobs        JobsConfig     `toml:"jobs"`
	Renderer    RendererConfig `toml:"renderer"`
}

func DefaultApplicationConfig() *ApplicationConfig {
	return &ApplicationConfig{
		Window: WindowConfig{
			Name:   "lumen",
			X:      100,
			Y:      100,
			Width:  1280,
			Height: 720,
		},
		LogLevel:    "info",
		Assets:      "assets",
		Scene:       "scenes/default.yaml",
		HotReload:   true,
		FpsInterval: 500,
		Camera: CameraConfig{
			FovDegrees:  60,
			Near:        0.1,
			Far:         100,
			Sensitivity: 0.1,
			MoveSpeed:   2.5,
		},
		Jobs: JobsConfig{
			Workers:   2,
			QueueSize: 32,
		},
		Renderer: RendererConfig{
			ClearColour: [4]float32{0.05, 0.05, 0.08, 1},
			MaxShaders:  64,
		},
	}
}

// LoadApplicationConfig reads a TOML file on top of the defaults. Unknown keys are
// rejected so typos do not silently fall back to a default.
func LoadApplicationConfig(path string) (*ApplicationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config %s: %w", path, err)
	}
	config := DefaultApplicationConfig()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(config); err != nil {
		return nil, core.NewConfigurationError(path, err.Error())
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *ApplicationConfig) Validate() error {
	switch {
	case c.Window.Width == 0:
		return core.NewConfigurationError("window.width", "must be greater than zero")
	case c.Window.Height == 0:
		return core.NewConfigurationError("window.height", "must be greater than zero")
	case c.Assets == "":
		return core.NewConfigurationError("assets", "asset directory is required")
	case c.Scene == "":
		return core.NewConfigurationError("scene", "scene file is required")
	case c.Camera.FovDegrees <= 0 || c.Camera.FovDegrees >= 180:
		return core.NewConfigurationError("camera.fov", fmt.Sprintf("%v is outside (0, 180)", c.Camera.FovDegrees))
	case c.Camera.Near <= 0:
		return core.NewConfigurationError("camera.near", "must be greater than zero")
	case c.Camera.Near >= c.Camera.Far:
		return core.NewConfigurationError("camera.far", "must be greater than camera.near")
	case c.Jobs.Workers < 1:
		return core.NewConfigurationError("jobs.workers", "at least one worker is required")
	case c.Jobs.QueueSize < 0:
		return core.NewConfigurationError("jobs.queue_size", "must not be negative")
	case c.Renderer.MaxShaders == 0:
		return core.NewConfigurationError("renderer.max_shaders", "must be greater than zero")
	}
	_, err := core.ParseLogLevel(c.LogLevel)
	return err
}

func (c *ApplicationConfig) FpsUpdateInterval() time.Duration {
	return time.Duration(c.FpsInterval) * time.Millisecond
}

// CameraSettings converts the camera section for the camera system.
func (c *ApplicationConfig) CameraSettings() components.CameraConfig {
	return components.CameraConfig{
		Sensitivity: c.Camera.Sensitivity,
		MoveSpeed:   c.Camera.MoveSpeed,
		Near:        c.Camera.Near,
		Far:         c.Camera.Far,
		FovDegrees:  c.Camera.FovDegrees,
		Width:       c.Window.Width,
		Height:      c.Window.Height,
	}
}
