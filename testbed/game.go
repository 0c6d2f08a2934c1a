package testbed

import (
	"fmt"
	"strings"

	"github.com/spaghettifunk/lumen/engine"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/components"
	"github.com/spaghettifunk/lumen/engine/scene"
)

// Nodes whose name starts with this prefix rotate around their Y axis.
const spinPrefix = "spin"

// Degrees per second.
const spinSpeed float32 = 45

type TestGame struct {
	*engine.Game
}

type gameState struct {
	WorldCamera *components.Camera

	width       uint32
	height      uint32
	lastEntries int
}

var moveKeys = []struct {
	keys      []core.KeyCode
	direction components.Direction
}{
	{[]core.KeyCode{core.KEY_W, core.KEY_UP}, components.DirectionForward},
	{[]core.KeyCode{core.KEY_S, core.KEY_DOWN}, components.DirectionBackward},
	{[]core.KeyCode{core.KEY_A, core.KEY_LEFT}, components.DirectionLeft},
	{[]core.KeyCode{core.KEY_D, core.KEY_RIGHT}, components.DirectionRight},
	{[]core.KeyCode{core.KEY_E, core.KEY_SPACE}, components.DirectionUp},
	{[]core.KeyCode{core.KEY_Q}, components.DirectionDown},
}

func NewTestGame(config *engine.ApplicationConfig) *TestGame {
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: config,
			State:             &gameState{},
		},
	}
	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnOnResize = tg.OnResize
	return tg
}

func (g *TestGame) Initialize() error {
	core.LogDebug("TestGame Initialize fn....")

	if g.SystemManager == nil || g.Input == nil {
		return fmt.Errorf("the engine is not yet initialized with all the system managers")
	}

	state := g.State.(*gameState)
	state.WorldCamera = g.SystemManager.CameraSystem.GetDefault()
	state.WorldCamera.SetPosition(math.NewVec3(0, 1.5, 6))
	return nil
}

func (g *TestGame) Update(deltaTime float64) error {
	state := g.State.(*gameState)
	dt := float32(deltaTime)

	for _, m := range moveKeys {
		for _, key := range m.keys {
			if g.Input.IsKeyDown(key) {
				state.WorldCamera.KeyMove(m.direction, dt)
				break
			}
		}
	}

	// Look around while the right button is held. Screen y grows downwards.
	if g.Input.IsButtonDown(core.BUTTON_RIGHT) {
		dx, dy := g.Input.MouseDelta()
		state.WorldCamera.MouseMove(float32(dx), float32(-dy))
	}

	if g.Scene != nil {
		g.Scene.Walk(func(n *scene.SceneNode) bool {
			if strings.HasPrefix(n.Name, spinPrefix) && n.Data.Transform != nil {
				spin(n.Data.Transform, spinSpeed*dt)
			}
			return true
		})
	}
	return nil
}

func spin(t *math.Transform, degrees float32) {
	rotation := math.NewVec3Zero()
	if t.Rotation != nil {
		rotation = *t.Rotation
	}
	rotation[1] = math.WrapDegrees(rotation[1] + degrees)
	t.SetRotation(rotation)
}

func (g *TestGame) Render(queue *scene.RenderQueue, deltaTime float64) error {
	state := g.State.(*gameState)
	if n := queue.Len(); n != state.lastEntries {
		core.LogDebug("render queue: %d entries, %d lights", n, len(queue.Lights))
		state.lastEntries = n
	}
	return nil
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	state := g.State.(*gameState)
	state.width = width
	state.height = height
	return nil
}
