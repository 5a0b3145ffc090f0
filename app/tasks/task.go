package tasks

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

type TaskType string

const (
	TaskTypeWarmCache TaskType = "warm_cache"
)

const (
	DefaultMaxRetries = 3
	maxRetryGap       = 30 * time.Second
)

var taskSeq atomic.Uint64

type TaskInterface interface {
	Execute(ctx context.Context) error
	GetID() string
	GetType() TaskType
	GetTarget() string
	GetRetryCount() int
	// NextRetry records a failed attempt and returns the backoff before the
	// next one. ok is false once the retry budget is spent.
	NextRetry(base time.Duration) (delay time.Duration, ok bool)
	Start()
	GetDuration() time.Duration
}

// Task carries the bookkeeping shared by every task: identity, the cache name
// it targets and its retry budget.
type Task struct {
	ID         string
	Type       TaskType
	Target     string
	RetryCount int
	MaxRetries int
	StartedAt  time.Time
}

func (t *Task) GetID() string {
	return t.ID
}

func (t *Task) GetType() TaskType {
	return t.Type
}

func (t *Task) GetTarget() string {
	return t.Target
}

func (t *Task) GetRetryCount() int {
	return t.RetryCount
}

// NextRetry doubles base per retry already taken, capped at maxRetryGap.
func (t *Task) NextRetry(base time.Duration) (time.Duration, bool) {
	if t.RetryCount >= t.MaxRetries {
		return 0, false
	}
	t.RetryCount++
	return min(base<<(t.RetryCount-1), maxRetryGap), true
}

func (t *Task) Start() {
	t.StartedAt = time.Now()
}

// GetDuration is the time since the latest attempt started.
func (t *Task) GetDuration() time.Duration {
	if t.StartedAt.IsZero() {
		return 0
	}
	return time.Since(t.StartedAt)
}

// NewTask returns a task with a process-unique ID such as "warm_cache-posts-7".
func NewTask(taskType TaskType, target string) Task {
	return Task{
		ID:         fmt.Sprintf("%s-%s-%d", taskType, target, taskSeq.Add(1)),
		Type:       taskType,
		Target:     target,
		MaxRetries: DefaultMaxRetries,
	}
}
