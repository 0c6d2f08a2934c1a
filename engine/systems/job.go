package systems

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

// JobSystem runs jobs on a fixed pool of workers. High priority jobs waiting in the
// queue are always picked before normal ones.
type JobSystem struct {
	numWorkers  int
	highQueue   chan metadata.JobTask
	normalQueue chan metadata.JobTask
	wg          sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

var ErrNoWorkers = fmt.Errorf("attempting to create worker pool with less than 1 worker")
var ErrNegativeChannelSize = fmt.Errorf("attempting to create worker pool with a negative channel size")
var ErrJobSystemClosed = fmt.Errorf("job system is shut down")
var ErrNoJobEntry = fmt.Errorf("job has no start function")

func NewJobSystem(numWorkers int, channelSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}

	js := &JobSystem{
		numWorkers:  numWorkers,
		highQueue:   make(chan metadata.JobTask, channelSize),
		normalQueue: make(chan metadata.JobTask, channelSize),
	}

	js.start()

	return js, nil
}

func (js *JobSystem) start() {
	for i := 0; i < js.numWorkers; i++ {
		js.wg.Add(1)
		go js.worker()
	}
}

func (js *JobSystem) worker() {
	defer js.wg.Done()
	high, normal := js.highQueue, js.normalQueue
	for high != nil || normal != nil {
		if high != nil {
			select {
			case job, ok := <-high:
				if !ok {
					high = nil
					continue
				}
				js.run(job)
				continue
			default:
			}
		}
		select {
		case job, ok := <-high:
			if !ok {
				high = nil
				continue
			}
			js.run(job)
		case job, ok := <-normal:
			if !ok {
				normal = nil
				continue
			}
			js.run(job)
		}
	}
}

func (js *JobSystem) run(job metadata.JobTask) {
	result, err := job.OnStart()
	if err != nil {
		core.LogError("job '%s' failed: %s", job.Name, err)
		if job.OnFailure != nil {
			job.OnFailure(err)
		}
		return
	}
	if job.OnComplete != nil {
		job.OnComplete(result)
	}
}

/**
 * @brief Shuts the job system down. Jobs already queued are still run.
 */
func (js *JobSystem) Shutdown() error {
	js.mu.Lock()
	if js.closed {
		js.mu.Unlock()
		return nil
	}
	js.closed = true
	close(js.highQueue)
	close(js.normalQueue)
	js.mu.Unlock()

	js.wg.Wait()
	return nil
}

// AddWorkNonBlocking queues the job from a new goroutine and returns immediately.
func (js *JobSystem) AddWorkNonBlocking(jt metadata.JobTask) {
	go func() {
		if err := js.Submit(jt); err != nil {
			core.LogError("job '%s' dropped: %s", jt.Name, err)
		}
	}()
}

/**
 * @brief Submits the provided job to be queued for execution. Blocks while the
 * queue is full.
 * @param jt The description of the job to be executed.
 */
func (js *JobSystem) Submit(jt metadata.JobTask) error {
	if jt.OnStart == nil {
		return ErrNoJobEntry
	}
	js.mu.RLock()
	defer js.mu.RUnlock()
	if js.closed {
		return ErrJobSystemClosed
	}
	if jt.Priority == metadata.JOB_PRIORITY_HIGH {
		js.highQueue <- jt
	} else {
		js.normalQueue <- jt
	}
	return nil
}
