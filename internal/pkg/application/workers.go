package application

import (
	"sync"

	"github.com/iot-for-tillgenglighet/iot-agent-sigfox/internal/pkg/infrastructure/logging"
)

//TaskRunner executes tasks in the background
type TaskRunner interface {
	Submit(task func())
}

type job struct {
	task func()
}

//WorkerPool runs submitted tasks on a fixed number of goroutines
type WorkerPool struct {
	workers   int
	jobQueue  chan job
	waitGroup sync.WaitGroup
	log       logging.Logger

	mu     sync.RWMutex
	closed bool
}

//NewWorkerPool creates a new WorkerPool with the specified number of workers
func NewWorkerPool(workers int, log logging.Logger) *WorkerPool {
	if workers < 1 {
		workers = 1
	}

	pool := &WorkerPool{
		workers:  workers,
		jobQueue: make(chan job, workers*16),
		log:      log,
	}

	pool.waitGroup.Add(workers)
	for i := 0; i < workers; i++ {
		go pool.worker()
	}

	return pool
}

func (wp *WorkerPool) worker() {
	defer wp.waitGroup.Done()
	for j := range wp.jobQueue {
		wp.run(j)
	}
}

func (wp *WorkerPool) run(j job) {
	defer func() {
		if r := recover(); r != nil {
			wp.log.Errorf("background task panicked: %v", r)
		}
	}()

	j.task()
}

//Submit queues a task. It blocks while the queue is full.
//Tasks submitted after Shutdown are logged and dropped.
func (wp *WorkerPool) Submit(task func()) {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if wp.closed {
		wp.log.Warnf("worker pool is shut down, dropping background task")
		return
	}

	wp.jobQueue <- job{task: task}
}

//Shutdown waits for all queued tasks to finish and stops the workers
func (wp *WorkerPool) Shutdown() {
	wp.mu.Lock()
	if wp.closed {
		wp.mu.Unlock()
		return
	}
	wp.closed = true
	close(wp.jobQueue)
	wp.mu.Unlock()

	wp.waitGroup.Wait()
}
