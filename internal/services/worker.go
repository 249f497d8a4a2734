package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/resume-ranker/internal/repositories"
)

type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueJob(jobID uuid.UUID)
}

type WorkerOptions struct {
	Concurrency  int
	MaxAttempts  int
	PollInterval time.Duration
}

// worker recomputes the leaderboards of companies that have a queued
// reconcile job. Jobs are picked up from the queue channel and by polling.
type worker struct {
	jobRepo        repositories.ReconcileJobRepository
	rankingService RankingService
	jobQueue       chan uuid.UUID
	opts           WorkerOptions
	wg             sync.WaitGroup
	stopChan       chan struct{}
	stopOnce       sync.Once
	log            *zap.Logger
}

func NewWorker(
	jobRepo repositories.ReconcileJobRepository,
	rankingService RankingService,
	opts WorkerOptions,
	log *zap.Logger,
) Worker {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 10 * time.Second
	}
	return &worker{
		jobRepo:        jobRepo,
		rankingService: rankingService,
		jobQueue:       make(chan uuid.UUID, 100),
		opts:           opts,
		stopChan:       make(chan struct{}),
		log:            log.Named("worker"),
	}
}

func (w *worker) Start(ctx context.Context) {
	for i := 0; i < w.opts.Concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pollPendingJobs(ctx)

	w.log.Info("worker started",
		zap.Int("concurrency", w.opts.Concurrency),
		zap.Duration("poll_interval", w.opts.PollInterval))
}

func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		w.log.Info("stopping worker")
		close(w.stopChan)
		w.wg.Wait()
		w.log.Info("worker stopped")
	})
}

// EnqueueJob never blocks. A job that does not fit is left to the poller.
func (w *worker) EnqueueJob(jobID uuid.UUID) {
	select {
	case <-w.stopChan:
		w.log.Warn("worker stopped, job left queued", zap.String("job_id", jobID.String()))
	case w.jobQueue <- jobID:
		w.log.Debug("job enqueued", zap.String("job_id", jobID.String()))
	default:
		w.log.Debug("queue full, job left to poller", zap.String("job_id", jobID.String()))
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()
	log := w.log.With(zap.Int("worker", workerID))

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case jobID := <-w.jobQueue:
			if err := w.processJob(ctx, jobID); err != nil {
				log.Warn("job failed", zap.String("job_id", jobID.String()), zap.Error(err))
			}
		}
	}
}

func (w *worker) processJob(ctx context.Context, jobID uuid.UUID) error {
	claimed, err := w.jobRepo.Claim(ctx, jobID)
	if err != nil {
		return err
	}
	if !claimed {
		return nil
	}

	job, err := w.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return err
	}
	log := w.log.With(zap.String("job_id", job.ID.String()), zap.String("company_id", job.CompanyID.String()))

	outcome, err := w.rankingService.Reconcile(ctx, job.CompanyID)
	if errors.Is(err, ErrNotFound) {
		// the company is gone, so is its leaderboard
		return w.jobRepo.UpdateError(ctx, job.ID, "company not found")
	}
	if err == nil && len(outcome.Failures) > 0 {
		err = fmt.Errorf("%d resumes could not be scored: %w", len(outcome.Failures), errors.Join(outcome.Failures...))
	}
	if err == nil {
		log.Info("company reconciled", zap.Int("ranked", len(outcome.Standings)))
		return w.jobRepo.MarkCompleted(ctx, job.ID)
	}

	if job.Attempts >= w.opts.MaxAttempts {
		log.Error("reconcile gave up", zap.Int("attempts", job.Attempts), zap.Error(err))
		return w.jobRepo.UpdateError(ctx, job.ID, err.Error())
	}

	log.Warn("reconcile will be retried", zap.Int("attempts", job.Attempts), zap.Error(err))
	return w.jobRepo.Requeue(ctx, job.ID, err.Error())
}

func (w *worker) pollPendingJobs(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			pendingJobs, err := w.jobRepo.FindPendingJobs(ctx, 10)
			if err != nil {
				w.log.Warn("failed to fetch pending jobs", zap.Error(err))
				continue
			}

			if len(pendingJobs) > 0 {
				w.log.Debug("found pending jobs", zap.Int("count", len(pendingJobs)))
			}

			for _, job := range pendingJobs {
				w.EnqueueJob(job.ID)
			}
		}
	}
}
