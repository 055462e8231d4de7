package manager

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/kasuboski/shokoz/config"
	"github.com/kasuboski/shokoz/pkg/cache"
	"github.com/kasuboski/shokoz/pkg/logger"
	"github.com/kasuboski/shokoz/pkg/storage"
	"go.uber.org/zap"
)

var ErrUnknownJobType = errors.New("invalid job type")

// JobExecutor runs a job to completion. It should return ctx.Err() once ctx is cancelled.
type JobExecutor func(ctx context.Context, jobID int64) error

// ProgressFunc receives the completed fraction of a job
type ProgressFunc func(done float64)

// ProgressExecutor adapts a task that reports progress into a JobExecutor that
// persists the progress on the job row
func ProgressExecutor(jobs storage.JobStorage, run func(ctx context.Context, progress ProgressFunc) error) JobExecutor {
	return func(ctx context.Context, jobID int64) error {
		log := logger.FromCtx(ctx, zap.Int64("job_id", jobID))
		return run(ctx, func(done float64) {
			if err := jobs.UpdateJobProgress(ctx, jobID, done); err != nil {
				log.Debugw("failed to record job progress", zap.Error(err))
			}
		})
	}
}

type Scheduler struct {
	storage     storage.JobStorage
	config      config.Manager
	executors   map[storage.JobType]JobExecutor
	runningJobs *cache.Cache[int64, context.CancelFunc]
	pollPeriod  time.Duration
}

// NewScheduler creates a new scheduler for jobs
func NewScheduler(store storage.JobStorage, config config.Manager, executors map[storage.JobType]JobExecutor) *Scheduler {
	return &Scheduler{
		storage:     store,
		config:      config,
		executors:   executors,
		runningJobs: cache.New[int64, context.CancelFunc](),
		pollPeriod:  5 * time.Second,
	}
}

func (s *Scheduler) Run(ctx context.Context) error {
	s.failInterruptedJobs(ctx)
	go s.processPendingJobs(ctx)
	return s.runJobScheduling(ctx)
}

// failInterruptedJobs marks jobs left running by a previous process as errored
// so their type can be scheduled again
func (s *Scheduler) failInterruptedJobs(ctx context.Context) {
	log := logger.FromCtx(ctx)

	jobs, err := s.storage.ListJobsByState(ctx, storage.JobStateRunning)
	if err != nil {
		log.Warnw("failed to list running jobs", zap.Error(err))
		return
	}

	msg := "interrupted by restart"
	for _, job := range jobs {
		if _, running := s.runningJobs.Get(job.ID); running {
			continue
		}
		if err := s.storage.UpdateJobState(ctx, job.ID, storage.JobStateError, &msg); err != nil {
			log.Warnw("failed to mark interrupted job", zap.Int64("job_id", job.ID), zap.Error(err))
		}
	}
}

func (s *Scheduler) runJobScheduling(ctx context.Context) error {
	interval := s.config.Jobs.JobScheduleInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return s.shutdownJobs(ctx)
		case <-ticker.C:
			for jobType := range s.executors {
				s.checkAndScheduleJob(ctx, jobType)
			}
		}
	}
}

func (s *Scheduler) shutdownJobs(ctx context.Context) error {
	log := logger.FromCtx(ctx)
	log.Debug("scheduler context cancelled")

	// the scheduler's own context is already done
	ctx = context.WithoutCancel(ctx)
	jobIDs := s.runningJobs.Keys()

	var wg sync.WaitGroup
	for _, id := range jobIDs {
		wg.Add(1)
		go func(jobID int64) {
			defer wg.Done()
			if err := s.CancelJob(ctx, jobID); err != nil {
				log.Warnw("failed to cancel job on shutdown", zap.Int64("job_id", jobID), zap.Error(err))
			}
		}(id)
	}

	wg.Wait()
	log.Debugw("all jobs cancelled on shutdown", zap.Int("count", len(jobIDs)))
	return nil
}

func (s *Scheduler) checkAndScheduleJob(ctx context.Context, jobType storage.JobType) {
	log := logger.FromCtx(ctx, zap.String("job_type", string(jobType)))

	interval := s.intervalFor(jobType)
	if interval <= 0 {
		return
	}

	lastJob, err := s.lastJob(ctx, jobType)
	if err != nil {
		log.Errorw("failed to get last job", zap.Error(err))
		return
	}

	if lastJob == nil {
		log.Debug("no previous jobs found, scheduling immediately")
		if _, err := s.CreateJob(ctx, jobType); err != nil && !errors.Is(err, storage.ErrJobAlreadyPending) {
			log.Errorw("failed to create pending job", zap.Error(err))
		}
		return
	}

	if !lastJob.Finished() {
		log.Debugw("job already pending or running, not scheduling", zap.String("state", string(lastJob.State)))
		return
	}

	sinceLast := time.Since(lastJob.CreatedAt)
	if sinceLast < interval {
		log.Debugw("interval not elapsed yet",
			zap.Duration("time_since_last", sinceLast),
			zap.Duration("time_remaining", interval-sinceLast))
		return
	}

	log.Debugw("interval elapsed, scheduling job", zap.Duration("time_since_last", sinceLast), zap.Duration("interval", interval))
	if _, err := s.CreateJob(ctx, jobType); err != nil && !errors.Is(err, storage.ErrJobAlreadyPending) {
		log.Errorw("failed to create pending job", zap.Error(err))
	}
}

func (s *Scheduler) lastJob(ctx context.Context, jobType storage.JobType) (*storage.Job, error) {
	jobs, err := s.storage.ListJobs(ctx)
	if err != nil {
		return nil, err
	}

	var last *storage.Job
	for _, j := range jobs {
		if j.Type != jobType {
			continue
		}
		if last == nil || j.ID > last.ID {
			last = j
		}
	}
	return last, nil
}

func (s *Scheduler) intervalFor(jobType storage.JobType) time.Duration {
	switch jobType {
	case storage.UserDataSync:
		return s.config.Jobs.UserDataSync
	default:
		return 0
	}
}

// CreateJob queues a pending job of jobType
func (s *Scheduler) CreateJob(ctx context.Context, jobType storage.JobType) (int64, error) {
	log := logger.FromCtx(ctx, zap.String("job_type", string(jobType)))

	if _, ok := s.executors[jobType]; !ok {
		return 0, ErrUnknownJobType
	}

	id, err := s.storage.CreateJob(ctx, jobType, storage.JobStatePending)
	if errors.Is(err, storage.ErrJobAlreadyPending) {
		log.Debug("pending job already exists for type")
		return 0, err
	}
	if err != nil {
		return 0, err
	}

	log.Debugw("created pending job", zap.Int64("id", id))
	return id, nil
}

func (s *Scheduler) processPendingJobs(ctx context.Context) {
	ticker := time.NewTicker(s.pollPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			log := logger.FromCtx(ctx)

			jobs, err := s.storage.ListJobsByState(ctx, storage.JobStatePending)
			if err != nil {
				log.Debugw("failed to list pending jobs", zap.Error(err))
				continue
			}

			for _, job := range jobs {
				if ctx.Err() != nil {
					return
				}
				s.executeJob(ctx, job)
			}
		}
	}
}

func (s *Scheduler) executeJob(ctx context.Context, job *storage.Job) {
	log := logger.FromCtx(ctx, zap.Int64("job_id", job.ID), zap.String("job_type", string(job.Type)))

	executor, ok := s.executors[job.Type]
	if !ok {
		log.Error("no executor found for job type")
		errMsg := "no executor found for job type"
		// a pending job cannot move straight to error
		_ = s.storage.UpdateJobState(ctx, job.ID, storage.JobStateCancelled, &errMsg)
		return
	}

	if err := s.storage.UpdateJobState(ctx, job.ID, storage.JobStateRunning, nil); err != nil {
		log.Errorw("failed to update job state to running", zap.Error(err))
		return
	}

	jobCtx, cancel := context.WithCancel(logger.WithCtx(ctx, log))
	defer cancel()

	s.runningJobs.Set(job.ID, cancel)
	defer s.runningJobs.Delete(job.ID)

	log.Debug("executing job")
	err := executor(jobCtx, job.ID)

	// state updates must land even when the scheduler is shutting down
	stateCtx := context.WithoutCancel(ctx)
	if err != nil {
		if errors.Is(jobCtx.Err(), context.Canceled) {
			log.Info("job cancelled")
			_ = s.storage.UpdateJobState(stateCtx, job.ID, storage.JobStateCancelled, nil)
			return
		}

		log.Errorw("job execution failed", zap.Error(err))
		errMsg := err.Error()
		_ = s.storage.UpdateJobState(stateCtx, job.ID, storage.JobStateError, &errMsg)
		return
	}

	if err := s.storage.UpdateJobState(stateCtx, job.ID, storage.JobStateDone, nil); err != nil {
		log.Errorw("failed to update job state to done", zap.Error(err))
		return
	}

	log.Debug("job completed successfully")
}

// CancelJob cancels a pending job, or signals a running one and waits for it to stop
func (s *Scheduler) CancelJob(ctx context.Context, jobID int64) error {
	log := logger.FromCtx(ctx, zap.Int64("job_id", jobID))

	job, err := s.storage.GetJob(ctx, jobID)
	if err != nil {
		return err
	}

	switch job.State {
	case storage.JobStatePending:
		log.Debug("cancelling pending job")
		return s.storage.UpdateJobState(ctx, jobID, storage.JobStateCancelled, nil)

	case storage.JobStateRunning:
		cancel, ok := s.runningJobs.Get(jobID)
		if !ok {
			log.Debug("job not found in running jobs map")
			return nil
		}

		log.Debug("cancelling running job")
		cancel()

		timeout := time.After(30 * time.Second)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-timeout:
				log.Error("timeout waiting for job to complete cancellation")
				return nil
			case <-ticker.C:
				if _, exists := s.runningJobs.Get(jobID); !exists {
					log.Debug("job was cancelled")
					return nil
				}
			}
		}

	default:
		return nil
	}
}
