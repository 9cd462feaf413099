package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rcabrera/medtrack-api/pkg/logger"
)

// Job represents a background task
type Job func(ctx context.Context) error

// Worker manages background jobs and scheduled tasks
type Worker struct {
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	queue   chan Job
	stats   WorkerStats
	statsMu sync.RWMutex
}

// WorkerStats holds statistics about the worker
type WorkerStats struct {
	ActiveJobs    int   `json:"active_jobs"`
	CompletedJobs int64 `json:"completed_jobs"`
	FailedJobs    int64 `json:"failed_jobs"`
	QueueLength   int   `json:"queue_length"`
}

// NewWorker creates a worker with N concurrent processors
func NewWorker(numWorkers int) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	w := &Worker{
		ctx:    ctx,
		cancel: cancel,
		queue:  make(chan Job, 100),
	}

	for i := 0; i < numWorkers; i++ {
		w.wg.Add(1)
		go w.process(i)
	}

	return w
}

// Enqueue adds a job to be processed by the worker pool. When the queue is
// full the job runs synchronously instead of being dropped.
func (w *Worker) Enqueue(job Job) {
	select {
	case w.queue <- job:
	default:
		logger.Warn("[Worker] Queue full, running job synchronously")
		w.runJob("inline", job)
	}
}

// process handles jobs from the queue
func (w *Worker) process(workerID int) {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case job, ok := <-w.queue:
			if !ok {
				return
			}
			w.runJob(fmt.Sprintf("worker %d", workerID), job)
		}
	}
}

// ScheduleEvery runs a job at fixed intervals. The first run happens after
// the interval, not at startup.
func (w *Worker) ScheduleEvery(interval time.Duration, job Job) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-w.ctx.Done():
				return
			case <-ticker.C:
				w.runJob("scheduler", job)
			}
		}
	}()
}

func (w *Worker) runJob(source string, job Job) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(fmt.Sprintf("[Worker] %s job panic: %v", source, r))
			sentry.CurrentHub().Recover(r)
			w.trackJobFailure()
			w.trackJobEnd()
		}
	}()

	w.trackJobStart()
	start := time.Now()
	if err := job(w.ctx); err != nil {
		logger.Error(fmt.Sprintf("[Worker] %s job error: %v", source, err))
		sentry.CaptureException(err)
		w.trackJobFailure()
	} else {
		logger.Debug(fmt.Sprintf("[Worker] %s job completed in %v", source, time.Since(start)))
	}
	w.trackJobEnd()
}

// Shutdown stops the worker and waits for running jobs to finish
func (w *Worker) Shutdown() {
	w.cancel()
	w.wg.Wait()
}

// GetStats returns a snapshot of worker statistics
func (w *Worker) GetStats() WorkerStats {
	w.statsMu.RLock()
	defer w.statsMu.RUnlock()
	stats := w.stats
	stats.QueueLength = len(w.queue)
	return stats
}

func (w *Worker) trackJobStart() {
	w.statsMu.Lock()
	w.stats.ActiveJobs++
	w.statsMu.Unlock()
}

func (w *Worker) trackJobEnd() {
	w.statsMu.Lock()
	w.stats.ActiveJobs--
	w.stats.CompletedJobs++
	w.statsMu.Unlock()
}

func (w *Worker) trackJobFailure() {
	w.statsMu.Lock()
	w.stats.FailedJobs++
	w.statsMu.Unlock()
}
