package tasks

import (
	"context"
	"time"
)

const (
	DefaultMaxRetries = 3
)

type TaskInterface interface {
	Execute(ctx context.Context) error
	GetLang() string
	GetRetryCount() int
	GetMaxRetries() int
	IncrementRetryCount()
	CanRetry() bool
	Start()
	GetDuration() time.Duration
}

// Task carries the per-unit execution bookkeeping. Units are one per
// configured language, so the language tag is the unit identity.
type Task struct {
	Lang       string
	RetryCount int
	MaxRetries int
	StartedAt  *time.Time
}

func (t *Task) GetLang() string {
	return t.Lang
}

func (t *Task) GetRetryCount() int {
	return t.RetryCount
}

func (t *Task) GetMaxRetries() int {
	return t.MaxRetries
}

func (t *Task) IncrementRetryCount() {
	t.RetryCount++
}

func (t *Task) CanRetry() bool {
	return t.RetryCount < t.MaxRetries
}

func (t *Task) Start() {
	now := time.Now()
	t.StartedAt = &now
}

func (t *Task) GetDuration() time.Duration {
	if t.StartedAt == nil {
		return 0
	}
	return time.Since(*t.StartedAt)
}

func NewTask(lang string) Task {
	return Task{
		Lang:       lang,
		MaxRetries: DefaultMaxRetries,
	}
}
