package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/nemanja-m/stylize/internal/pipeline/core"
	"github.com/nemanja-m/stylize/internal/shared/config"
	"github.com/nemanja-m/stylize/internal/shared/logging"
)

var ErrSchedulerStopped = errors.New("scheduler is stopped")

// Scheduler admits jobs from a priority queue in batches of at most
// MaxConcurrent. A batch is joined as a whole before its slots are released.
type Scheduler struct {
	mu                sync.Mutex
	queue             core.JobQueue
	maxConcurrent     int
	currentProcessing int
	isProcessing      bool
	stopped           bool
	nextID            uint64

	runner  core.JobRunner
	baseCtx context.Context
	cancel  context.CancelFunc
	batches sync.WaitGroup
	logger  logging.Logger
	now     func() time.Time
}

func NewScheduler(cfg config.QueueConfig, runner core.JobRunner, logger logging.Logger) *Scheduler {
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		queue:         core.NewJobQueue(),
		maxConcurrent: maxConcurrent,
		runner:        runner,
		baseCtx:       ctx,
		cancel:        cancel,
		logger:        logger,
		now:           time.Now,
	}
}

// Enqueue records a job and starts a scheduling pass. It never waits for the
// job to run.
func (s *Scheduler) Enqueue(imageID int64, style string, userID int64, priority int) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return 0, ErrSchedulerStopped
	}

	s.nextID++
	job := &core.Job{
		ID:        s.nextID,
		ImageID:   imageID,
		Style:     style,
		UserID:    userID,
		Priority:  priority,
		CreatedAt: s.now(),
	}
	if err := s.queue.Push(job); err != nil {
		return 0, err
	}
	s.logger.Debug("Job enqueued", "job_id", job.ID, "image_id", imageID, "style", style, "priority", priority)

	s.scheduleLocked()
	return job.ID, nil
}

func (s *Scheduler) Status() core.QueueStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.QueueStatus{
		PendingCount:      s.queue.Len(),
		IsProcessing:      s.isProcessing,
		CurrentProcessing: s.currentProcessing,
	}
}

// Clear drops every pending job and returns how many were dropped. Running
// jobs are not affected.
func (s *Scheduler) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	dropped := s.queue.Drain()
	s.isProcessing = s.currentProcessing > 0
	if len(dropped) > 0 {
		s.logger.Info("Cleared pending jobs", "count", len(dropped))
	}
	return len(dropped)
}

// Stop rejects new jobs, drops pending ones and waits for running batches.
// When ctx expires first the running jobs are canceled, awaited, and ctx's
// error is returned.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.stopped = true
	dropped := s.queue.Drain()
	s.isProcessing = s.currentProcessing > 0
	s.mu.Unlock()

	if len(dropped) > 0 {
		s.logger.Warn("Dropped pending jobs on shutdown", "count", len(dropped))
	}

	done := make(chan struct{})
	go func() {
		s.batches.Wait()
		close(done)
	}()

	defer s.cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.logger.Warn("Shutdown deadline reached, canceling running jobs")
		s.cancel()
		<-done
		return ctx.Err()
	}
}

// scheduleLocked must be called with s.mu held.
func (s *Scheduler) scheduleLocked() {
	defer func() {
		s.isProcessing = s.currentProcessing > 0 || s.queue.Len() > 0
	}()

	if s.stopped {
		return
	}

	slots := max(0, s.maxConcurrent-s.currentProcessing)
	if slots == 0 {
		return
	}

	batch := make([]*core.Job, 0, slots)
	for len(batch) < slots {
		job, err := s.queue.Pop()
		if err != nil {
			break
		}
		batch = append(batch, job)
	}
	if len(batch) == 0 {
		return
	}

	s.currentProcessing += len(batch)
	s.logger.Debug("Starting batch", "size", len(batch), "processing", s.currentProcessing, "pending", s.queue.Len())

	s.batches.Go(func() {
		s.runBatch(batch)
	})
}

func (s *Scheduler) runBatch(batch []*core.Job) {
	var wg sync.WaitGroup
	for _, job := range batch {
		wg.Go(func() {
			s.runJob(job)
		})
	}
	wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentProcessing -= len(batch)
	s.scheduleLocked()
}

func (s *Scheduler) runJob(job *core.Job) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Job panicked", "job_id", job.ID, "image_id", job.ImageID, "panic", r)
		}
	}()
	s.runner.Run(s.baseCtx, job)
}
