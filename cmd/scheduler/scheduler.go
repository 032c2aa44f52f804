package main

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	reconcileLockKey = "coursehub:scheduler:reconcile"
	reconcileLockTTL = time.Minute
	tickInterval     = 10 * time.Second
)

// Locker is implemented by *redis.Client
type Locker interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// ReconcileEnqueuer enqueues counters reconciliation runs
type ReconcileEnqueuer interface {
	EnqueueReconcile(ctx context.Context) error
}

// Scheduler enqueues periodic jobs when their cron schedule comes due
type Scheduler struct {
	locker     Locker
	enqueuer   ReconcileEnqueuer
	schedule   cron.Schedule
	next       time.Time
	instanceID string
	logger     *zap.Logger
	ticker     *time.Ticker
	stopChan   chan struct{}
}

// NewScheduler creates a new scheduler instance
func NewScheduler(locker Locker, enqueuer ReconcileEnqueuer, schedule cron.Schedule, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		locker:     locker,
		enqueuer:   enqueuer,
		schedule:   schedule,
		next:       nextSlot(schedule, time.Now()),
		instanceID: uuid.NewString(),
		logger:     logger,
		stopChan:   make(chan struct{}),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.ticker = time.NewTicker(tickInterval)
	s.logger.Info("Scheduler started",
		zap.String("instance_id", s.instanceID),
		zap.Time("next_reconcile", s.next),
	)
	go s.run()
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.ticker.Stop()
	close(s.stopChan)
	s.logger.Info("Scheduler stopped")
}

// run executes the scheduler loop
func (s *Scheduler) run() {
	ctx := context.Background()

	for {
		select {
		case now := <-s.ticker.C:
			s.checkDue(ctx, now)
		case <-s.stopChan:
			return
		}
	}
}

// checkDue enqueues a reconciliation run when the schedule is due.
// The lock is taken per due slot, so only one replica enqueues each run.
func (s *Scheduler) checkDue(ctx context.Context, now time.Time) {
	if now.Before(s.next) {
		return
	}
	slot := s.next
	s.next = nextSlot(s.schedule, now)

	acquired, err := s.locker.SetNX(ctx, lockKey(slot), s.instanceID, reconcileLockTTL).Result()
	if err != nil {
		s.logger.Error("Failed to acquire reconcile lock", zap.Error(err))
		return
	}
	if !acquired {
		s.logger.Debug("Reconcile already scheduled by another instance")
		return
	}

	if err := s.enqueuer.EnqueueReconcile(ctx); err != nil {
		s.logger.Error("Failed to enqueue reconcile task", zap.Error(err))
		return
	}

	s.logger.Info("Reconcile task scheduled", zap.Time("next_reconcile", s.next))
}

// nextSlot returns the next due time after now.
// Fixed-interval schedules are aligned to multiples of the interval so that
// replicas started at different times share the same slots.
func nextSlot(schedule cron.Schedule, now time.Time) time.Time {
	if every, ok := schedule.(cron.ConstantDelaySchedule); ok {
		return now.Truncate(every.Delay).Add(every.Delay)
	}
	return schedule.Next(now)
}

func lockKey(slot time.Time) string {
	return fmt.Sprintf("%s:%d", reconcileLockKey, slot.Unix())
}
