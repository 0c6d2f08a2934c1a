package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/lumen/engine/assets/loaders"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

// JobSubmitter runs load jobs off the calling goroutine.
type JobSubmitter interface {
	Submit(job metadata.JobTask) error
}

type ShaderResult struct {
	Path   string
	Source string
	Err    error
}

type GeometryResult struct {
	Path     string
	Geometry *metadata.Geometry
	Err      error
}

// AssetManager loads shader and mesh files relative to an asset directory and caches
// them by path. A file watcher evicts entries whose files change and reports the change
// on Changes.
type AssetManager struct {
	root    string
	jobs    JobSubmitter
	loaders map[metadata.ResourceType]Loader

	mutex sync.RWMutex
	cache map[string]*metadata.Resource

	fsnotify *fsnotify.Watcher
	changes  chan string
	done     chan struct{}
	wg       sync.WaitGroup
	started  bool
	isClosed bool
}

func NewAssetManager(jobs JobSubmitter) (*AssetManager, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &AssetManager{
		jobs:     jobs,
		loaders:  make(map[metadata.ResourceType]Loader),
		cache:    make(map[string]*metadata.Resource),
		fsnotify: fsWatch,
		changes:  make(chan string, 64),
		done:     make(chan struct{}),
	}, nil
}

// Initialize registers the loaders and starts watching assetsDir.
func (am *AssetManager) Initialize(assetsDir string) error {
	info, err := os.Stat(assetsDir)
	if err != nil {
		return fmt.Errorf("asset directory %s: %w", assetsDir, core.ErrAssetNotFound)
	}
	if !info.IsDir() {
		return fmt.Errorf("asset directory %s is not a directory", assetsDir)
	}
	am.root = assetsDir

	am.registerLoader(metadata.ResourceTypeShader, &loaders.ShaderLoader{})
	am.registerLoader(metadata.ResourceTypeMesh, &loaders.MeshLoader{})

	if err := am.watchRecursive(assetsDir); err != nil {
		return err
	}
	am.started = true
	am.wg.Add(1)
	go am.start()
	return nil
}

func (am *AssetManager) Root() string {
	return am.root
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType metadata.ResourceType, loader Loader) {
	am.loaders[assetType] = loader
}

// Resolve returns the full path of an asset path relative to the asset directory.
func (am *AssetManager) Resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(am.root, path)
}

// Load returns the resource at path, reading it on first use.
func (am *AssetManager) Load(path string, resourceType metadata.ResourceType) (*metadata.Resource, error) {
	if t := metadata.ResourceTypeFromPath(path); t != resourceType {
		return nil, fmt.Errorf("%s is not a %s file: %w", path, resourceType, core.ErrUnsupportedAsset)
	}
	full := am.Resolve(path)

	am.mutex.RLock()
	res, ok := am.cache[full]
	am.mutex.RUnlock()
	if ok {
		return res, nil
	}

	loader, ok := am.loaders[resourceType]
	if !ok {
		return nil, fmt.Errorf("no loader registered for %s: %w", resourceType, core.ErrUnsupportedAsset)
	}
	res, err := loader.Load(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, core.ErrAssetNotFound)
	}
	if err != nil {
		return nil, err
	}

	am.mutex.Lock()
	am.cache[full] = res
	am.mutex.Unlock()
	core.LogDebug("loaded %s %s (%d)", resourceType, full, res.DataSize)
	return res, nil
}

// LoadShaderSource reads a combined shader source on the job system.
func (am *AssetManager) LoadShaderSource(path string) <-chan ShaderResult {
	out := make(chan ShaderResult, 1)
	am.submit(path, metadata.ResourceTypeShader, func(res *metadata.Resource, err error) {
		r := ShaderResult{Path: path, Err: err}
		if err == nil {
			r.Source = res.Data.(string)
		}
		out <- r
	})
	return out
}

// LoadMeshGeometry parses a mesh file on the job system.
func (am *AssetManager) LoadMeshGeometry(path string) <-chan GeometryResult {
	out := make(chan GeometryResult, 1)
	am.submit(path, metadata.ResourceTypeMesh, func(res *metadata.Resource, err error) {
		r := GeometryResult{Path: path, Err: err}
		if err == nil {
			r.Geometry = res.Data.(*metadata.Geometry)
		}
		out <- r
	})
	return out
}

func (am *AssetManager) submit(path string, resourceType metadata.ResourceType, deliver func(*metadata.Resource, error)) {
	err := am.jobs.Submit(metadata.JobTask{
		Name:     "load " + path,
		Priority: metadata.JOB_PRIORITY_NORMAL,
		OnStart: func() (interface{}, error) {
			return am.Load(path, resourceType)
		},
		OnComplete: func(result interface{}) {
			deliver(result.(*metadata.Resource), nil)
		},
		OnFailure: func(err error) {
			deliver(nil, err)
		},
	})
	if err != nil {
		deliver(nil, err)
	}
}

// Evict drops path from the cache.
func (am *AssetManager) Evict(path string) {
	am.evict(am.Resolve(path))
}

func (am *AssetManager) evict(full string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()
	if res, ok := am.cache[full]; ok {
		if loader, ok := am.loaders[res.Type]; ok {
			loader.Unload(res)
		}
		delete(am.cache, full)
	}
}

// Changes reports the full path of every watched asset file that was written, created,
// renamed or removed.
func (am *AssetManager) Changes() <-chan string {
	return am.changes
}

func (am *AssetManager) Shutdown() error {
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return nil
	}
	am.isClosed = true
	am.mutex.Unlock()

	if !am.started {
		close(am.changes)
		return am.fsnotify.Close()
	}
	close(am.done)
	am.wg.Wait()
	return nil
}

func (am *AssetManager) start() {
	defer am.wg.Done()
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			am.handleEvent(e)

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("asset watcher: %s", err)

		case <-am.done:
			am.fsnotify.Close()
			close(am.changes)
			return
		}
	}
}

func (am *AssetManager) handleEvent(e fsnotify.Event) {
	if e.Op&fsnotify.Create != 0 {
		if s, err := os.Stat(e.Name); err == nil && s.IsDir() {
			if err := am.watchRecursive(e.Name); err != nil {
				core.LogWarn("asset watcher: %s", err)
			}
			return
		}
	}
	if e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	if metadata.ResourceTypeFromPath(e.Name) == metadata.ResourceTypeNone {
		return
	}
	am.evict(filepath.Clean(e.Name))
	core.LogDebug("asset changed: %s (%s)", e.Name, e.Op)

	select {
	case am.changes <- filepath.Clean(e.Name):
	default:
		core.LogWarn("asset change queue full, dropping %s", e.Name)
	}
}

// watchRecursive adds path and every directory below it to the watch list.
func (am *AssetManager) watchRecursive(path string) error {
	return filepath.WalkDir(path, func(walkPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return am.fsnotify.Add(walkPath)
		}
		return nil
	})
}
