package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var _ TaskRunnerInterface = (*Runner)(nil)

const taskQueueSize = 64

// Runner executes build units on a bounded worker pool. Units hold no
// shared mutable state, so no cross-unit synchronization happens here.
type Runner struct {
	workerCount int
	taskQueue   chan TaskInterface
	ctx         context.Context
	cancel      context.CancelFunc
	workers     sync.WaitGroup
	pending     sync.WaitGroup

	mu       sync.Mutex
	failures int
}

func NewRunner(ctx context.Context, workerCount int) *Runner {
	runCtx, cancel := context.WithCancel(ctx)

	return &Runner{
		workerCount: workerCount,
		taskQueue:   make(chan TaskInterface, taskQueueSize),
		ctx:         runCtx,
		cancel:      cancel,
	}
}

func (r *Runner) Start() {
	for i := 0; i < r.workerCount; i++ {
		r.workers.Add(1)
		go r.worker(i)
	}
}

func (r *Runner) Stop() {
	r.cancel()
	r.workers.Wait()
	close(r.taskQueue)
}

// EnqueueTask queues one unit for execution. A rejected unit (queue
// full or runner shut down) counts toward the failure total, so a
// build never reports success for a feed that was never produced.
func (r *Runner) EnqueueTask(task TaskInterface) error {
	if r.ctx.Err() != nil {
		r.recordFailure()
		return r.ctx.Err()
	}

	r.pending.Add(1)

	select {
	case r.taskQueue <- task:
		return nil
	case <-r.ctx.Done():
		r.pending.Done()
		r.recordFailure()
		return r.ctx.Err()
	default:
		r.pending.Done()
		r.recordFailure()
		return fmt.Errorf("task queue is full")
	}
}

// Wait blocks until every enqueued task has finished or been dropped
// and returns the number of units that did not complete.
func (r *Runner) Wait() int {
	r.pending.Wait()

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failures
}

func (r *Runner) worker(id int) {
	defer r.workers.Done()

	for {
		select {
		case task, ok := <-r.taskQueue:
			if !ok {
				return
			}
			r.executeTask(id, task)
			r.pending.Done()

		case <-r.ctx.Done():
			r.drainQueue()
			return
		}
	}
}

// drainQueue releases tasks still queued when the run context is
// cancelled. Their pending counts must be returned or Wait blocks
// forever; each dropped unit counts as failed.
func (r *Runner) drainQueue() {
	for {
		select {
		case task := <-r.taskQueue:
			slog.Warn("Task dropped on shutdown", "lang", task.GetLang())
			r.recordFailure()
			r.pending.Done()
		default:
			return
		}
	}
}

func (r *Runner) recordFailure() {
	r.mu.Lock()
	r.failures++
	r.mu.Unlock()
}

// executeTask runs one unit, retrying with capped exponential backoff.
// A unit that exhausts its retries fails alone; other units proceed.
func (r *Runner) executeTask(workerID int, task TaskInterface) {
	task.Start()

	for {
		taskCtx, cancel := context.WithTimeout(r.ctx, 5*time.Minute)
		err := task.Execute(taskCtx)
		cancel()

		if err == nil {
			return
		}

		slog.Error("Worker task execution failed", "worker_id", workerID, "lang", task.GetLang(), "retry_count", task.GetRetryCount(), "error", err)

		if !task.CanRetry() || r.ctx.Err() != nil {
			slog.Error("Task failed after maximum retries", "lang", task.GetLang(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
			r.recordFailure()
			return
		}

		task.IncrementRetryCount()
		retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
		if retryDelay > 30*time.Second {
			retryDelay = 30 * time.Second
		}

		slog.Warn("Task retry scheduled", "lang", task.GetLang(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

		select {
		case <-time.After(retryDelay):
		case <-r.ctx.Done():
		}
	}
}
