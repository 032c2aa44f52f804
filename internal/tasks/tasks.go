// Package tasks defines the background tasks exchanged between the API, the scheduler and the worker
package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Task types
const (
	TypeEnrollmentCompleted = "enrollment:completed"
	TypeReconcileCounters   = "counters:reconcile"
)

// Queue names and their worker priorities
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
)

// Queues maps queue names to the weights the worker polls them with
var Queues = map[string]int{
	QueueCritical: 5,
	QueueDefault:  1,
}

// EnrollmentCompletedPayload is the payload of an enrollment:completed task
type EnrollmentCompletedPayload struct {
	UserID   int `json:"userId"`
	CourseID int `json:"courseId"`
}

// NewEnrollmentCompletedTask builds the task announcing that a user completed a course
func NewEnrollmentCompletedTask(userID, courseID int) (*asynq.Task, error) {
	payload, err := json.Marshal(EnrollmentCompletedPayload{UserID: userID, CourseID: courseID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypeEnrollmentCompleted, payload), nil
}

// ParseEnrollmentCompletedPayload decodes and checks the payload of an enrollment:completed task
func ParseEnrollmentCompletedPayload(t *asynq.Task) (EnrollmentCompletedPayload, error) {
	var p EnrollmentCompletedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return p, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	if p.UserID <= 0 || p.CourseID <= 0 {
		return p, fmt.Errorf("invalid payload: userId=%d courseId=%d", p.UserID, p.CourseID)
	}
	return p, nil
}

// NewReconcileTask builds the task that recomputes the enrollment counters
func NewReconcileTask() *asynq.Task {
	return asynq.NewTask(TypeReconcileCounters, nil)
}

// Enqueuer is implemented by *asynq.Client
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Publisher enqueues background tasks
type Publisher struct {
	client Enqueuer
	logger *zap.Logger
}

// NewPublisher creates a new task publisher
func NewPublisher(client Enqueuer, logger *zap.Logger) *Publisher {
	return &Publisher{
		client: client,
		logger: logger,
	}
}

// NotifyCourseCompleted enqueues the completion notice for the user
func (p *Publisher) NotifyCourseCompleted(ctx context.Context, userID, courseID int) error {
	task, err := NewEnrollmentCompletedTask(userID, courseID)
	if err != nil {
		return err
	}

	info, err := p.client.EnqueueContext(ctx, task, asynq.Queue(QueueCritical), asynq.MaxRetry(5))
	if err != nil {
		return fmt.Errorf("failed to enqueue %s: %w", TypeEnrollmentCompleted, err)
	}

	p.logger.Debug("task enqueued", zap.String("type", TypeEnrollmentCompleted), zap.String("taskId", taskID(info)))
	return nil
}

// EnqueueReconcile enqueues a counters reconciliation run
func (p *Publisher) EnqueueReconcile(ctx context.Context) error {
	info, err := p.client.EnqueueContext(ctx, NewReconcileTask(),
		asynq.Queue(QueueDefault), asynq.MaxRetry(3), asynq.Timeout(5*time.Minute))
	if err != nil {
		return fmt.Errorf("failed to enqueue %s: %w", TypeReconcileCounters, err)
	}

	p.logger.Info("task enqueued", zap.String("type", TypeReconcileCounters), zap.String("taskId", taskID(info)))
	return nil
}

func taskID(info *asynq.TaskInfo) string {
	if info == nil {
		return ""
	}
	return info.ID
}
