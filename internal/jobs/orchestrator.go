package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"tunestream/internal/domain"
)

// Task is the body of a background job. It reports milestones through
// progress and returns either a result payload or an error.
type Task func(ctx context.Context, progress func(int)) (any, error)

// Config tunes job retention behaviour.
type Config struct {
	// Retention is how long a finished job stays pollable after its
	// terminal state has been observed at least once.
	Retention time.Duration
	Logger    *logrus.Logger
}

// Orchestrator runs fire-and-forget background jobs and serves status
// polls. Each job moves pending → processing → completed|failed; the
// terminal entry is deleted a grace period after its first terminal
// poll so slow clients still get one read of the payload.
type Orchestrator struct {
	cfg Config

	mu      sync.RWMutex
	jobs    map[string]*domain.Job
	reaping map[string]struct{}

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

func NewOrchestrator(cfg Config) *Orchestrator {
	if cfg.Retention <= 0 {
		cfg.Retention = 5 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		cfg:     cfg,
		jobs:    make(map[string]*domain.Job),
		reaping: make(map[string]struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Accept registers a new job and starts its task in the background,
// returning the job id immediately.
func (o *Orchestrator) Accept(kind domain.JobKind, params map[string]string, task Task) string {
	job := &domain.Job{
		ID:        uuid.NewString(),
		Kind:      kind,
		Params:    params,
		Status:    domain.JobStatusPending,
		CreatedAt: time.Now(),
	}

	o.mu.Lock()
	o.jobs[job.ID] = job
	o.mu.Unlock()

	o.wg.Add(1)
	go o.run(job.ID, task)
	return job.ID
}

func (o *Orchestrator) run(id string, task Task) {
	defer o.wg.Done()

	logger := o.cfg.Logger.WithField("job_id", id)

	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("job panicked: %v", r)
			o.fail(id, fmt.Sprintf("internal error: %v", r))
		}
	}()

	o.transition(id, func(job *domain.Job) {
		job.Status = domain.JobStatusProcessing
	})

	result, err := task(o.ctx, func(pct int) {
		o.transition(id, func(job *domain.Job) {
			// Progress never moves backwards.
			if pct > job.Progress && pct <= 100 {
				job.Progress = pct
			}
		})
	})
	if err != nil {
		logger.Warnf("job failed: %v", err)
		o.fail(id, err.Error())
		return
	}

	now := time.Now()
	o.transition(id, func(job *domain.Job) {
		job.Status = domain.JobStatusCompleted
		job.Progress = 100
		job.Result = result
		job.CompletedAt = &now
	})
	logger.Info("job completed")
}

func (o *Orchestrator) fail(id, message string) {
	now := time.Now()
	o.transition(id, func(job *domain.Job) {
		if job.Status.Terminal() {
			return
		}
		job.Status = domain.JobStatusFailed
		job.Error = message
		job.CompletedAt = &now
	})
}

func (o *Orchestrator) transition(id string, mutate func(*domain.Job)) {
	o.mu.Lock()
	if job, ok := o.jobs[id]; ok {
		mutate(job)
	}
	o.mu.Unlock()
}

// Status returns a copy of the job, or ErrJobNotFound. The first poll
// that observes a terminal state schedules deletion after the
// configured retention window.
func (o *Orchestrator) Status(id string) (domain.Job, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	job, ok := o.jobs[id]
	if !ok {
		return domain.Job{}, domain.ErrJobNotFound
	}

	snapshot := *job
	if job.Status.Terminal() {
		if _, scheduled := o.reaping[id]; !scheduled {
			o.reaping[id] = struct{}{}
			time.AfterFunc(o.cfg.Retention, func() { o.delete(id) })
		}
	}
	return snapshot, nil
}

func (o *Orchestrator) delete(id string) {
	o.mu.Lock()
	delete(o.jobs, id)
	delete(o.reaping, id)
	o.mu.Unlock()
}

// Shutdown cancels the shared job context and waits for in-flight
// tasks to notice.
func (o *Orchestrator) Shutdown() {
	o.cancel()
	o.wg.Wait()
}
