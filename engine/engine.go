package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/spaghettifunk/lumen/engine/assets"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/platform"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/renderer/opengl"
	"github.com/spaghettifunk/lumen/engine/scene"
	"github.com/spaghettifunk/lumen/engine/systems"
	"github.com/spaghettifunk/lumen/engine/ui"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

// Seconds without further file changes before a hot reload starts.
const reloadSettleTime = 0.25

type Engine struct {
	currentStage  Stage
	gameInstance  *Game
	config        *ApplicationConfig
	isRunning     atomic.Bool
	isSuspended   bool
	events        *core.EventBus
	input         *core.Input
	platform      *platform.Platform
	gpu           *opengl.Context
	assetManager  *assets.AssetManager
	systemManager *systems.SystemManager
	resolver      *assetResolver
	scene         *scene.SceneGraph
	fps           *ui.FpsCounter
	spinner       *ui.Spinner
	metrics       *core.Metrics
	clock         *core.Clock
	width         uint32
	height        uint32
	lastTime      float64

	pendingChanges map[string]bool
	lastChange     float64
}

func New(g *Game) (*Engine, error) {
	if g.ApplicationConfig == nil {
		g.ApplicationConfig = DefaultApplicationConfig()
	}
	if err := g.ApplicationConfig.Validate(); err != nil {
		return nil, err
	}
	events := core.NewEventBus()
	input := core.NewInput(events)
	return &Engine{
		currentStage:   EngineStageUninitialized,
		gameInstance:   g,
		config:         g.ApplicationConfig,
		events:         events,
		input:          input,
		platform:       platform.New(input, events),
		metrics:        core.NewMetrics(),
		clock:          core.NewClock(),
		spinner:        ui.NewSpinner(),
		width:          g.ApplicationConfig.Window.Width,
		height:         g.ApplicationConfig.Window.Height,
		pendingChanges: make(map[string]bool),
	}, nil
}

// Initialize opens the window, creates the systems and loads the configured scene. Any
// shader or scene error aborts here, before the first frame.
func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing
	config := e.config

	level, err := core.ParseLogLevel(config.LogLevel)
	if err != nil {
		return err
	}
	core.SetLogLevel(level)

	e.events.Register(core.EVENT_CODE_APPLICATION_QUIT, e.onQuit)
	e.events.Register(core.EVENT_CODE_KEY_PRESSED, e.onKey)
	e.events.Register(core.EVENT_CODE_RESIZED, e.onResized)

	w := config.Window
	if err := e.platform.Startup(w.Name, w.X, w.Y, w.Width, w.Height); err != nil {
		return err
	}
	e.width, e.height = e.platform.FramebufferSize()

	gpu, err := opengl.New()
	if err != nil {
		return err
	}
	e.gpu = gpu

	rendererOpts := []systems.RendererOption{
		systems.WithClearColour(math.Vec4(config.Renderer.ClearColour)),
	}
	if config.Renderer.PartialUniforms {
		rendererOpts = append(rendererOpts, systems.WithPartialUniforms())
	}
	camera := config.CameraSettings()
	camera.Width, camera.Height = e.width, e.height
	sm, err := systems.NewSystemManager(gpu, systems.SystemManagerConfig{
		Workers:        config.Jobs.Workers,
		JobQueueSize:   config.Jobs.QueueSize,
		MaxShaderCount: config.Renderer.MaxShaders,
		MaxCameraCount: 4,
		Width:          e.width,
		Height:         e.height,
		Camera:         camera,
		Renderer:       rendererOpts,
	})
	if err != nil {
		return err
	}
	e.systemManager = sm

	am, err := assets.NewAssetManager(sm.JobSystem)
	if err != nil {
		return err
	}
	assetsDir := config.Assets
	if !filepath.IsAbs(assetsDir) {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		assetsDir = filepath.Join(wd, assetsDir)
	}
	if err := am.Initialize(assetsDir); err != nil {
		return err
	}
	e.assetManager = am
	e.resolver = newAssetResolver(gpu, am, sm.ShaderSystem)

	e.fps = ui.NewFpsCounter(config.FpsUpdateInterval(), time.Now())

	if err := e.loadScene(); err != nil {
		return err
	}

	e.gameInstance.SystemManager = sm
	e.gameInstance.Input = e.input
	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(); err != nil {
			return err
		}
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(e.width, e.height); err != nil {
			return err
		}
	}
	e.currentStage = EngineStageInitialized
	return nil
}

func (e *Engine) loadScene() error {
	e.spinner.Start()
	defer e.spinner.Stop()

	path := e.assetManager.Resolve(e.config.Scene)
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("could not open scene %s: %w", path, err)
	}
	defer f.Close()

	g, err := scene.LoadSceneYAML(f, e.systemManager.CameraSystem.GetDefault(), e.resolver)
	if err != nil {
		return fmt.Errorf("scene %s: %w", e.config.Scene, err)
	}
	// Surface configuration errors now rather than on the first frame.
	queue, err := g.Build()
	if err != nil {
		return fmt.Errorf("scene %s: %w", e.config.Scene, err)
	}
	queue.Reset()

	if e.scene != nil {
		e.scene.Clear()
	}
	e.scene = g
	e.gameInstance.Scene = g
	core.LogInfo("scene %s loaded", e.config.Scene)
	return nil
}

// reload rebuilds changed shaders and then the whole scene, since every renderable may
// point at a program or mesh that was replaced. Failures keep the current scene.
func (e *Engine) reload() {
	root := e.assetManager.Root()
	for path := range e.pendingChanges {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)
		if filepath.Ext(rel) == ".glsl" {
			if err := e.resolver.ReloadShader(rel); err != nil {
				core.LogError("shader %s not reloaded: %s", rel, err)
			}
		}
	}
	clear(e.pendingChanges)

	previous := e.resolver.meshes
	e.resolver.meshes = make(map[meshKey]*metadata.Mesh)
	if err := e.loadScene(); err != nil {
		core.LogError("scene reload failed: %s", err)
		e.resolver.Release()
		e.resolver.meshes = previous
		return
	}
	for _, m := range previous {
		e.gpu.DeleteVertexArray(m.VertexArray)
	}
}

func (e *Engine) Run() error {
	e.currentStage = EngineStageRunning
	e.isRunning.Store(true)
	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	for e.isRunning.Load() {
		if !e.platform.PumpMessages() {
			e.isRunning.Store(false)
			break
		}
		e.drainChanges()

		if e.isSuspended {
			continue
		}
		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime
		frameStartTime := e.platform.GetAbsoluteTime()

		if len(e.pendingChanges) > 0 && currentTime-e.lastChange >= reloadSettleTime {
			e.reload()
		}

		if err := e.frame(delta); err != nil {
			return err
		}

		frameElapsedTime := e.platform.GetAbsoluteTime() - frameStartTime
		e.metrics.Update(frameElapsedTime)
		e.spinner.Tick()
		if e.fps.Update(e.metrics.FPS(), time.Now()) || e.spinner.Visible() {
			e.platform.SetTitle(e.title())
		}

		e.input.Update()
		e.lastTime = currentTime
	}
	return nil
}

// frame runs one update and draw. Binding errors only cost the current frame.
func (e *Engine) frame(delta float64) error {
	if e.gameInstance.FnUpdate != nil {
		if err := e.gameInstance.FnUpdate(delta); err != nil {
			core.LogError("game update failed, shutting down: %s", err)
			return err
		}
	}

	queue, err := e.scene.Build()
	if err != nil {
		core.LogError("render queue build failed: %s", err)
		return err
	}
	if e.gameInstance.FnRender != nil {
		if err := e.gameInstance.FnRender(queue, delta); err != nil {
			core.LogError("game render failed, shutting down: %s", err)
			return err
		}
	}

	rs := e.systemManager.RendererSystem
	rs.BeginFrame()
	if err := rs.Render(queue); err != nil {
		if !errors.Is(err, core.ErrBinding) {
			return err
		}
		core.LogError("frame %d skipped: %s", rs.Stats().Frame, err)
	}
	e.platform.SwapBuffers()
	return nil
}

// drainChanges collects asset change notifications without blocking.
func (e *Engine) drainChanges() {
	if !e.config.HotReload {
		return
	}
	for {
		select {
		case path := <-e.assetManager.Changes():
			core.LogDebug("asset changed: %s", path)
			e.pendingChanges[path] = true
			e.clock.Update()
			e.lastChange = e.clock.Elapsed()
			e.spinner.Start()
		default:
			return
		}
	}
}

func (e *Engine) title() string {
	title := fmt.Sprintf("%s | %s", e.config.Window.Name, e.fps.Text())
	if frame := e.spinner.Frame(); frame != "" {
		title += " | reloading " + frame
	}
	return title
}

// Stop asks the frame loop to return. Safe to call from any goroutine.
func (e *Engine) Stop() {
	e.isRunning.Store(false)
}

// Shutdown releases everything Initialize created, in reverse order. It must run on
// the thread that called Run.
func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown
	if e.scene != nil {
		e.scene.Clear()
	}
	if e.resolver != nil {
		e.resolver.Release()
	}
	if e.assetManager != nil {
		if err := e.assetManager.Shutdown(); err != nil {
			return err
		}
	}
	if e.systemManager != nil {
		if err := e.systemManager.Shutdown(); err != nil {
			return err
		}
	}
	return e.platform.Shutdown()
}

func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

func (e *Engine) onQuit(core.Event) bool {
	core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
	e.Stop()
	return true
}

func (e *Engine) onKey(ev core.Event) bool {
	switch ev.Key {
	case core.KEY_ESCAPE:
		e.events.Fire(core.Event{Code: core.EVENT_CODE_APPLICATION_QUIT})
		return true
	case core.KEY_R:
		core.LogInfo("manual scene reload requested")
		e.pendingChanges[e.assetManager.Resolve(e.config.Scene)] = true
		return true
	}
	return false
}

func (e *Engine) onResized(ev core.Event) bool {
	if ev.Width == e.width && ev.Height == e.height {
		return false
	}
	e.width, e.height = ev.Width, ev.Height
	core.LogDebug("Window resize: %d, %d", e.width, e.height)

	if e.width == 0 || e.height == 0 {
		core.LogInfo("Window minimized, suspending application.")
		e.isSuspended = true
		return true
	}
	if e.isSuspended {
		core.LogInfo("Window restored, resuming application.")
		e.isSuspended = false
	}
	e.systemManager.OnResize(e.width, e.height)
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(e.width, e.height); err != nil {
			core.LogError(err.Error())
		}
	}
	return true
}
