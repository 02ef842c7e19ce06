// Package digest periodically summarises each learner's workload.
package digest

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/services"
	"github.com/vytor/wordflash/internal/worker"
)

// Digest is the workload summary for one learner at one point in time.
type Digest struct {
	LearnerID string
	Stats     models.StatsSummary
	At        time.Time
}

// Notifier receives computed digests.
type Notifier interface {
	Notify(ctx context.Context, d Digest) error
}

// LogNotifier writes digests to the context logger.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, d Digest) error {
	logger.FromContext(ctx).WithFields(map[string]any{
		"learner_id": d.LearnerID,
		"due":        d.Stats.DueToday,
		"new":        d.Stats.New,
		"total":      d.Stats.Total,
	}).Info("due digest")
	return nil
}

// Scheduler fans a digest job per learner out to a worker pool on a fixed interval.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   services.CardService
	pool      *worker.Pool
	notifier  Notifier
	interval  time.Duration
	ctx       context.Context
	log       *logger.Logger
}

// New creates a digest scheduler. A nil notifier logs digests.
func New(service services.CardService, pool *worker.Pool, interval time.Duration, notifier Notifier) *Scheduler {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		service:   service,
		pool:      pool,
		notifier:  notifier,
		interval:  interval,
		ctx:       context.Background(),
		log:       logger.Default().WithPrefix("digest"),
	}
}

// Start schedules the digest run. The first run happens immediately.
// A zero interval disables the schedule.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.interval <= 0 {
		s.log.Info("digest disabled")
		return nil
	}
	s.ctx = ctx
	if _, err := s.scheduler.Every(s.interval).Do(s.tick); err != nil {
		return fmt.Errorf("schedule digest: %w", err)
	}
	s.scheduler.StartAsync()
	s.log.Info("digest scheduled every %v", s.interval)
	return nil
}

// Stop terminates the schedule. Jobs already handed to the pool are left to the pool.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) tick() {
	if err := s.RunOnce(s.ctx); err != nil {
		s.log.Error("digest run failed: %v", err)
	}
}

// RunOnce submits one digest job per learner and returns once they are queued.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	learners, err := s.service.ListLearners(ctx)
	if err != nil {
		return err
	}
	s.log.Debug("queueing digests for %d learners", len(learners))

	for _, learnerID := range learners {
		job := &learnerJob{service: s.service, notifier: s.notifier, learnerID: learnerID}
		if err := s.pool.TrySubmit(job); err != nil {
			s.log.WithField("learner_id", learnerID).Warn("digest skipped: %v", err)
		}
	}
	return nil
}

type learnerJob struct {
	service   services.CardService
	notifier  Notifier
	learnerID string
}

func (j *learnerJob) Name() string { return "digest:" + j.learnerID }

func (j *learnerJob) Run(ctx context.Context) error {
	stats, err := j.service.GetStats(ctx, j.learnerID)
	if err != nil {
		return fmt.Errorf("stats for %s: %w", j.learnerID, err)
	}
	return j.notifier.Notify(ctx, Digest{
		LearnerID: j.learnerID,
		Stats:     stats,
		At:        time.Now().UTC(),
	})
}
