package services

import (
	"context"
	"sync"
)

// Runner owns background execution of campaign pipelines. Exactly one task
// may be active per campaign id; Run reports whether the task was started.
// Tests substitute SyncRunner to drive the pipeline synchronously.
type Runner interface {
	Run(campaignID string, task func(ctx context.Context)) bool
}

// AsyncRunner runs each task on its own goroutine with a per-campaign
// single-flight guard and a completion signal per id.
type AsyncRunner struct {
	mu     sync.Mutex
	active map[string]chan struct{}
}

func NewAsyncRunner() *AsyncRunner {
	return &AsyncRunner{active: make(map[string]chan struct{})}
}

func (r *AsyncRunner) Run(campaignID string, task func(ctx context.Context)) bool {
	r.mu.Lock()
	if _, busy := r.active[campaignID]; busy {
		r.mu.Unlock()
		return false
	}
	done := make(chan struct{})
	r.active[campaignID] = done
	r.mu.Unlock()

	go func() {
		defer func() {
			r.mu.Lock()
			delete(r.active, campaignID)
			r.mu.Unlock()
			close(done)
		}()
		task(context.Background())
	}()
	return true
}

// Wait blocks until the active task for the campaign finishes. Returns
// immediately when none is running.
func (r *AsyncRunner) Wait(campaignID string) {
	r.mu.Lock()
	done := r.active[campaignID]
	r.mu.Unlock()
	if done != nil {
		<-done
	}
}

// SyncRunner executes tasks inline on the calling goroutine
type SyncRunner struct{}

func (SyncRunner) Run(campaignID string, task func(ctx context.Context)) bool {
	task(context.Background())
	return true
}
