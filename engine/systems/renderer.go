package systems

import (
	"fmt"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer"
	"github.com/spaghettifunk/lumen/engine/renderer/shader"
	"github.com/spaghettifunk/lumen/engine/scene"
)

// RenderStats describes the last frame handed to Render.
type RenderStats struct {
	Frame   uint64
	Entries int
	Binds   int
	Uploads int
	Draws   int
}

type RendererOption func(*RendererSystem)

// WithPartialUniforms applies entry uniforms with SetSubset instead of Set, so an entry
// may carry fewer values than its program declares.
func WithPartialUniforms() RendererOption {
	return func(r *RendererSystem) { r.partialUniforms = true }
}

func WithClearColour(colour math.Vec4) RendererOption {
	return func(r *RendererSystem) { r.clearColour = colour }
}

// RendererSystem draws render queues. A program is bound only when it is not the same
// program as the previous entry's; tracking restarts with every frame.
type RendererSystem struct {
	gpu renderer.Backend

	partialUniforms bool
	clearColour     math.Vec4

	// The current window framebuffer width.
	FramebufferWidth uint32
	// The current window framebuffer height.
	FramebufferHeight uint32

	frameNumber uint64
	stats       RenderStats
}

func NewRendererSystem(gpu renderer.Backend, width, height uint32, opts ...RendererOption) (*RendererSystem, error) {
	if gpu == nil || !gpu.Initialized() {
		return nil, core.ErrNotInitialized
	}
	r := &RendererSystem{
		gpu:               gpu,
		clearColour:       math.NewVec4(0.0, 0.0, 0.2, 1.0),
		FramebufferWidth:  width,
		FramebufferHeight: height,
	}
	for _, opt := range opts {
		opt(r)
	}
	gpu.Viewport(width, height)
	return r, nil
}

func (r *RendererSystem) OnResize(width, height uint32) {
	r.FramebufferWidth = width
	r.FramebufferHeight = height
	r.gpu.Viewport(width, height)
}

// BeginFrame clears the framebuffer.
func (r *RendererSystem) BeginFrame() {
	r.gpu.Clear(r.clearColour)
}

// Render draws every entry of queue in order and then empties the queue, whether or not
// the frame completed. A BindingError stops the frame at the offending entry.
func (r *RendererSystem) Render(queue *scene.RenderQueue) error {
	defer queue.Reset()

	r.frameNumber++
	r.stats = RenderStats{Frame: r.frameNumber, Entries: queue.Len()}

	var bound *shader.Program
	for i := range queue.Entries {
		entry := &queue.Entries[i]
		if bound != entry.Shader {
			entry.Shader.Bind()
			bound = entry.Shader
			r.stats.Binds++
		}

		apply := entry.Shader.Set
		if r.partialUniforms {
			apply = entry.Shader.SetSubset
		}
		if err := apply(entry.Uniforms); err != nil {
			core.LogError("frame %d: entry %d (%s) with shader '%s': %s", r.frameNumber, i, entry.Type, entry.Shader.Name(), err)
			return fmt.Errorf("entry %d: %w", i, err)
		}
		r.stats.Uploads += entry.Shader.Upload()

		r.gpu.Draw(entry.Mesh)
		r.stats.Draws++
	}
	return nil
}

func (r *RendererSystem) Stats() RenderStats {
	return r.stats
}

func (r *RendererSystem) Shutdown() error {
	return r.gpu.Shutdown()
}
