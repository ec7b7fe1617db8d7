package matcher

import (
	"context"
	"errors"
	"log"
	"time"

	"trade-match/internal/queue"
	"trade-match/internal/usecase"

	"github.com/google/uuid"
)

// Notifier announces a finished matching run to interested clients.
type Notifier interface {
	NotifyMatchesReady(jobID uuid.UUID, count int)
}

// TaskQueue is the queue surface the runner needs; *queue.RedisQueue
// satisfies it.
type TaskQueue interface {
	Dequeue(ctx context.Context) (queue.Task, error)
	Enqueue(ctx context.Context, task queue.Task) error
	AcquireRunLock(ctx context.Context, jobID uuid.UUID, ttl time.Duration) (bool, error)
	ReleaseRunLock(ctx context.Context, jobID uuid.UUID) error
}

// Runner consumes matching tasks off the queue and executes the
// pipeline, so job creation never waits on LLM calls.
type Runner struct {
	queue      TaskQueue
	matching   usecase.MatchingUsecase
	notifier   Notifier
	logger     *log.Logger
	maxRetries int
	lockTTL    time.Duration
}

func NewRunner(q TaskQueue, matching usecase.MatchingUsecase, notifier Notifier, logger *log.Logger, maxRetries int, lockTTL time.Duration) *Runner {
	return &Runner{
		queue:      q,
		matching:   matching,
		notifier:   notifier,
		logger:     logger,
		maxRetries: maxRetries,
		lockTTL:    lockTTL,
	}
}

func (r *Runner) Run(ctx context.Context) {
	for {
		task, err := r.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			r.logf("[Matcher] queue error | err=%v", err)
			time.Sleep(time.Second)
			continue
		}
		r.process(ctx, task)
	}
}

func (r *Runner) process(ctx context.Context, task queue.Task) {
	locked, err := r.queue.AcquireRunLock(ctx, task.JobID, r.lockTTL)
	if err != nil {
		r.logf("[Matcher] lock error, requeueing | job=%s err=%v", task.JobID, err)
		r.retry(ctx, task)
		return
	}
	if !locked {
		r.logf("[Matcher] run already in progress, skipping | job=%s", task.JobID)
		return
	}
	defer func() {
		if err := r.queue.ReleaseRunLock(ctx, task.JobID); err != nil {
			r.logf("[Matcher] lock release error | job=%s err=%v", task.JobID, err)
		}
	}()

	count, err := r.matching.MatchJobToWorkers(ctx, task.JobID)
	if err != nil {
		if retryable(err) {
			r.logf("[Matcher] run failed | job=%s attempt=%d err=%v", task.JobID, task.Attempt, err)
			r.retry(ctx, task)
			return
		}
		r.logf("[Matcher] run failed permanently | job=%s err=%v", task.JobID, err)
		return
	}

	r.logf("[Matcher] run complete | job=%s matches=%d", task.JobID, count)
	if r.notifier != nil {
		r.notifier.NotifyMatchesReady(task.JobID, count)
	}
}

func (r *Runner) retry(ctx context.Context, task queue.Task) {
	if task.Attempt >= r.maxRetries {
		r.logf("[Matcher] retries exhausted | job=%s attempts=%d", task.JobID, task.Attempt)
		return
	}
	task.Attempt++
	if err := r.queue.Enqueue(ctx, task); err != nil {
		r.logf("[Matcher] requeue error | job=%s err=%v", task.JobID, err)
	}
}

// retryable returns true for failures a later attempt could clear.
// Missing jobs and empty worker pools will not fix themselves.
func retryable(err error) bool {
	switch {
	case errors.Is(err, usecase.ErrJobNotFound),
		errors.Is(err, usecase.ErrNoWorkersFound),
		errors.Is(err, usecase.ErrNoEligibleWorkers):
		return false
	default:
		return true
	}
}

func (r *Runner) logf(format string, args ...any) {
	if r.logger != nil {
		r.logger.Printf(format, args...)
	}
}
