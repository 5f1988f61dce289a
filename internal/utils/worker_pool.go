package utils

import (
	"sync"
)

// WorkerPool runs submitted tasks on a fixed set of workers. The process
// harvester uses it to fan per-process reads out without spawning a goroutine
// per pid every cycle.
type WorkerPool struct {
	tasks chan func()
	wg    sync.WaitGroup
}

// NewWorkerPool starts a pool with the given number of workers.
func NewWorkerPool(workers int) *WorkerPool {
	pool := &WorkerPool{
		tasks: make(chan func(), workers),
	}

	pool.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go pool.worker()
	}

	return pool
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()
	for task := range wp.tasks {
		task()
	}
}

// Submit queues a task; blocks while all workers are busy and the queue is
// full.
func (wp *WorkerPool) Submit(task func()) {
	wp.tasks <- task
}

// Shutdown stops accepting tasks and waits for in-flight ones to finish.
func (wp *WorkerPool) Shutdown() {
	close(wp.tasks)
	wp.wg.Wait()
}
