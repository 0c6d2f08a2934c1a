package systems

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/components"
	"github.com/spaghettifunk/lumen/engine/renderer/headless"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/renderer/shader"
	"github.com/spaghettifunk/lumen/engine/scene"
)

const flatSource = `
__VERTEX__
layout(location = 0) in vec3 a_position;
uniform mat4 u_model;
void main() { gl_Position = u_model * vec4(a_position, 1.0); }
__FRAGMENT__
uniform vec4 u_colour;
out vec4 fragColor;
void main() { fragColor = u_colour; }
`

func newShaders(t *testing.T, gpu *headless.Context) *ShaderSystem {
	t.Helper()
	ss, err := NewShaderSystem(&ShaderSystemConfig{MaxShaderCount: 4}, gpu)
	require.NoError(t, err)
	return ss
}

func entry(p *shader.Program, mesh string) scene.RenderQueueEntry {
	return scene.RenderQueueEntry{
		Type:   scene.NodeTypeObject,
		Mesh:   &metadata.Mesh{Name: mesh, DrawCount: 3},
		Shader: p,
		Uniforms: scene.UniformData{
			"u_model":  math.NewMat4Identity(),
			"u_colour": math.NewVec4(1, 1, 1, 1),
		},
	}
}

func TestRenderAvoidsRebinds(t *testing.T) {
	gpu := headless.New()
	ss := newShaders(t, gpu)
	a, err := ss.Acquire("a", flatSource)
	require.NoError(t, err)
	b, err := ss.Acquire("b", flatSource)
	require.NoError(t, err)

	r, err := NewRendererSystem(gpu, 640, 480)
	require.NoError(t, err)

	queue := &scene.RenderQueue{Entries: []scene.RenderQueueEntry{
		entry(a, "one"), entry(a, "two"), entry(b, "three"), entry(a, "four"),
	}}
	require.NoError(t, r.Render(queue))

	assert.Equal(t, []metadata.ProgramHandle{a.Handle(), b.Handle(), a.Handle()}, gpu.Binds())
	stats := r.Stats()
	assert.Equal(t, 3, stats.Binds)
	assert.Equal(t, 4, stats.Draws)
	assert.Equal(t, 4, stats.Entries)
	assert.Zero(t, queue.Len())

	var order []string
	for _, d := range gpu.Draws() {
		order = append(order, d.Mesh)
	}
	assert.Equal(t, []string{"one", "two", "three", "four"}, order)
	assert.Equal(t, a.Handle(), gpu.Draws()[3].Program)
}

func TestRenderBindsDistinctProgramsSharingAnID(t *testing.T) {
	gpu := headless.New()
	a, err := shader.Build(gpu, core.NewIDSequence(1), "a", flatSource)
	require.NoError(t, err)
	b, err := shader.Build(gpu, core.NewIDSequence(1), "b", flatSource)
	require.NoError(t, err)
	require.Equal(t, a.ID(), b.ID())
	require.NotEqual(t, a.Handle(), b.Handle())

	r, err := NewRendererSystem(gpu, 640, 480)
	require.NoError(t, err)

	queue := &scene.RenderQueue{Entries: []scene.RenderQueueEntry{entry(a, "one"), entry(b, "two")}}
	require.NoError(t, r.Render(queue))

	assert.Equal(t, []metadata.ProgramHandle{a.Handle(), b.Handle()}, gpu.Binds())
	draws := gpu.Draws()
	require.Len(t, draws, 2)
	assert.Equal(t, b.Handle(), draws[1].Program)
}

func TestRenderTrackingResetsEachFrame(t *testing.T) {
	gpu := headless.New()
	ss := newShaders(t, gpu)
	a, err := ss.Acquire("a", flatSource)
	require.NoError(t, err)
	r, err := NewRendererSystem(gpu, 640, 480)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		queue := &scene.RenderQueue{Entries: []scene.RenderQueueEntry{entry(a, "one")}}
		require.NoError(t, r.Render(queue))
	}
	assert.Len(t, gpu.Binds(), 2)
	assert.EqualValues(t, 2, r.Stats().Frame)
}

func TestRenderUploadsOnlyChangedValues(t *testing.T) {
	gpu := headless.New()
	ss := newShaders(t, gpu)
	a, err := ss.Acquire("a", flatSource)
	require.NoError(t, err)
	r, err := NewRendererSystem(gpu, 640, 480, WithPartialUniforms())
	require.NoError(t, err)

	first := entry(a, "one")
	second := entry(a, "two")
	second.Uniforms = scene.UniformData{"u_colour": math.NewVec4(1, 0, 0, 1)}

	require.NoError(t, r.Render(&scene.RenderQueue{Entries: []scene.RenderQueueEntry{first, second}}))
	assert.Equal(t, 3, r.Stats().Uploads)

	v, ok := gpu.LastUpload(a.Handle(), "u_colour")
	require.True(t, ok)
	assert.Equal(t, math.NewVec4(1, 0, 0, 1), v)
}

func TestRenderStopsOnBindingError(t *testing.T) {
	gpu := headless.New()
	ss := newShaders(t, gpu)
	a, err := ss.Acquire("a", flatSource)
	require.NoError(t, err)
	r, err := NewRendererSystem(gpu, 640, 480)
	require.NoError(t, err)

	broken := entry(a, "two")
	delete(broken.Uniforms, "u_colour")
	queue := &scene.RenderQueue{Entries: []scene.RenderQueueEntry{entry(a, "one"), broken, entry(a, "three")}}

	err = r.Render(queue)
	var berr *core.BindingError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, "u_colour", berr.Name)
	assert.Equal(t, 1, r.Stats().Draws)
	assert.Len(t, gpu.Draws(), 1)
	assert.Zero(t, queue.Len())

	// The next frame renders normally once the data is complete.
	require.NoError(t, r.Render(&scene.RenderQueue{Entries: []scene.RenderQueueEntry{entry(a, "one")}}))
	assert.Equal(t, 1, r.Stats().Draws)
}

func TestRendererRequiresInitializedContext(t *testing.T) {
	gpu := headless.New()
	require.NoError(t, gpu.Shutdown())
	_, err := NewRendererSystem(gpu, 1, 1)
	assert.ErrorIs(t, err, core.ErrNotInitialized)
}

func TestShaderSystem(t *testing.T) {
	gpu := headless.New()
	ss, err := NewShaderSystem(&ShaderSystemConfig{MaxShaderCount: 2}, gpu)
	require.NoError(t, err)

	a, err := ss.Acquire("a", flatSource)
	require.NoError(t, err)
	again, err := ss.Acquire("a", "ignored")
	require.NoError(t, err)
	assert.Same(t, a, again)

	got, err := ss.Get("a")
	require.NoError(t, err)
	assert.Same(t, a, got)
	_, err = ss.Get("missing")
	assert.ErrorIs(t, err, core.ErrAssetNotFound)

	_, err = ss.Acquire("b", flatSource)
	require.NoError(t, err)
	_, err = ss.Acquire("c", flatSource)
	assert.Error(t, err)
	assert.Equal(t, []string{"a", "b"}, ss.Names())

	// A failed reload keeps the current program.
	_, err = ss.Reload("a", "__VERTEX__ in mat4 x; __FRAGMENT__")
	assert.ErrorIs(t, err, core.ErrReflection)
	got, _ = ss.Get("a")
	assert.Same(t, a, got)

	reloaded, err := ss.Reload("a", flatSource)
	require.NoError(t, err)
	assert.NotSame(t, a, reloaded)
	assert.NotEqual(t, a.ID(), reloaded.ID())
	got, _ = ss.Get("a")
	assert.Same(t, reloaded, got)

	require.NoError(t, ss.Shutdown())
	assert.Empty(t, ss.Names())

	_, err = NewShaderSystem(&ShaderSystemConfig{}, gpu)
	assert.ErrorIs(t, err, core.ErrConfiguration)
}

func TestJobSystemRunsCallbacks(t *testing.T) {
	js, err := NewJobSystem(2, 4)
	require.NoError(t, err)

	var wg sync.WaitGroup
	var completed, failed atomic.Int32
	boom := errors.New("boom")

	for i := 0; i < 10; i++ {
		wg.Add(1)
		fail := i%2 == 0
		require.NoError(t, js.Submit(metadata.JobTask{
			Name: "job",
			OnStart: func() (interface{}, error) {
				if fail {
					return nil, boom
				}
				return 42, nil
			},
			OnComplete: func(result interface{}) {
				defer wg.Done()
				if result == 42 {
					completed.Add(1)
				}
			},
			OnFailure: func(err error) {
				defer wg.Done()
				if errors.Is(err, boom) {
					failed.Add(1)
				}
			},
		}))
	}
	wg.Wait()
	assert.EqualValues(t, 5, completed.Load())
	assert.EqualValues(t, 5, failed.Load())

	require.NoError(t, js.Shutdown())
	require.NoError(t, js.Shutdown())
	assert.ErrorIs(t, js.Submit(metadata.JobTask{OnStart: func() (interface{}, error) { return nil, nil }}), ErrJobSystemClosed)
}

func TestJobSystemPrefersHighPriority(t *testing.T) {
	js, err := NewJobSystem(1, 8)
	require.NoError(t, err)

	gate := make(chan struct{})
	started := make(chan struct{})
	var mu sync.Mutex
	var order []string
	record := func(name string) metadata.JobStart {
		return func() (interface{}, error) {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return nil, nil
		}
	}

	// Occupy the only worker until both queues hold work.
	require.NoError(t, js.Submit(metadata.JobTask{Name: "block", OnStart: func() (interface{}, error) {
		close(started)
		<-gate
		return nil, nil
	}}))
	<-started
	require.NoError(t, js.Submit(metadata.JobTask{Name: "normal", OnStart: record("normal")}))
	require.NoError(t, js.Submit(metadata.JobTask{Name: "high", Priority: metadata.JOB_PRIORITY_HIGH, OnStart: record("high")}))
	close(gate)

	require.NoError(t, js.Shutdown())
	assert.Equal(t, []string{"high", "normal"}, order)
}

func TestJobSystemValidation(t *testing.T) {
	_, err := NewJobSystem(0, 1)
	assert.ErrorIs(t, err, ErrNoWorkers)
	_, err = NewJobSystem(1, -1)
	assert.ErrorIs(t, err, ErrNegativeChannelSize)

	js, err := NewJobSystem(1, 0)
	require.NoError(t, err)
	defer js.Shutdown()
	assert.ErrorIs(t, js.Submit(metadata.JobTask{}), ErrNoJobEntry)

	done := make(chan struct{})
	js.AddWorkNonBlocking(metadata.JobTask{OnStart: func() (interface{}, error) { close(done); return nil, nil }})
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("non blocking job never ran")
	}
}

func TestCameraSystem(t *testing.T) {
	cs, err := NewCameraSystem(&CameraSystemConfig{MaxCameraCount: 1})
	require.NoError(t, err)

	def, err := cs.Acquire(components.DEFAULT_CAMERA_NAME)
	require.NoError(t, err)
	assert.Same(t, cs.GetDefault(), def)

	a, err := cs.Acquire("a")
	require.NoError(t, err)
	again, err := cs.Acquire("a")
	require.NoError(t, err)
	assert.Same(t, a, again)

	_, err = cs.Acquire("b")
	assert.Error(t, err)

	cs.Release("a")
	assert.Contains(t, cs.Lookup, "a")
	cs.Release("a")
	assert.NotContains(t, cs.Lookup, "a")

	_, err = NewCameraSystem(&CameraSystemConfig{})
	assert.ErrorIs(t, err, core.ErrConfiguration)
}

func TestSystemManager(t *testing.T) {
	gpu := headless.New()
	sm, err := NewSystemManager(gpu, SystemManagerConfig{
		Workers:        1,
		MaxShaderCount: 8,
		MaxCameraCount: 2,
		Width:          800,
		Height:         600,
	})
	require.NoError(t, err)

	_, err = sm.ShaderSystem.Acquire("flat", flatSource)
	require.NoError(t, err)
	sm.OnResize(1024, 768)
	assert.EqualValues(t, 1024, sm.RendererSystem.FramebufferWidth)

	require.NoError(t, sm.Shutdown())
	assert.False(t, gpu.Initialized())
}
