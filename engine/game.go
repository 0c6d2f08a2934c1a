package engine

import (
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/scene"
	"github.com/spaghettifunk/lumen/engine/systems"
)

// Game is the application plugged into the engine. The engine fills SystemManager,
// Input and Scene before calling FnInitialize; Scene is replaced on every reload.
type Game struct {
	ApplicationConfig *ApplicationConfig
	SystemManager     *systems.SystemManager
	Input             *core.Input
	Scene             *scene.SceneGraph
	State             interface{}
	FnInitialize      Initialize
	FnUpdate          Update
	FnRender          Render
	FnOnResize        OnResize
}

type Initialize func() error
type Update func(deltaTime float64) error

// Render runs after the queue is built and before it is drawn.
type Render func(queue *scene.RenderQueue, deltaTime float64) error
type OnResize func(width uint32, height uint32) error
