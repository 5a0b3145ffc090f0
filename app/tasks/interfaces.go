package tasks

import "context"

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Example usage:
//
//	scheduler := NewScheduler(service, content.Names, interval, workerCount)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewWarmCacheTask(content.CollectionPosts, service))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}

// Warmer loads a named piece of cached content.
type Warmer interface {
	Warm(ctx context.Context, name string) error
}
