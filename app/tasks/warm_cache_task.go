package tasks

import (
	"context"
	"fmt"
	"log/slog"
)

type WarmCacheTask struct {
	Task
	warmer Warmer
}

func NewWarmCacheTask(name string, warmer Warmer) *WarmCacheTask {
	return &WarmCacheTask{
		Task:   NewTask(TaskTypeWarmCache, name),
		warmer: warmer,
	}
}

func (t *WarmCacheTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := t.warmer.Warm(ctx, t.Target); err != nil {
		return fmt.Errorf("failed to warm cache: %w", err)
	}

	slog.Debug("Cache warmed", "name", t.Target, "duration", t.GetDuration())
	return nil
}
