package canvas

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrInvalidFrameRate is returned when a non-positive frame rate is requested.
var ErrInvalidFrameRate = errors.New("frame rate must be positive")

// DefaultWarmup is the delay between starting a loop and its first tick.
const DefaultWarmup = time.Second

// Period returns the tick interval for fps, using integer milliseconds.
func Period(fps int) time.Duration {
	p := time.Duration(1000/fps) * time.Millisecond
	if p <= 0 {
		p = time.Millisecond
	}
	return p
}

// Loop runs a tick function on a fixed schedule in its own goroutine.
type Loop struct {
	mu     sync.Mutex
	warmup time.Duration
	cancel context.CancelFunc
	done   chan struct{}
}

// NewLoop returns a stopped loop that waits warmup before its first tick.
func NewLoop(warmup time.Duration) *Loop {
	return &Loop{warmup: warmup}
}

// Start stops any running schedule, waits for it to finish, and starts a
// new one ticking fps times per second.
func (l *Loop) Start(fps int, tick func(ctx context.Context)) error {
	if fps <= 0 {
		return fmt.Errorf("start loop at %d fps: %w", fps, ErrInvalidFrameRate)
	}
	l.Stop()
	l.spawn(fps, tick)
	return nil
}

// Replace cancels any running schedule without waiting for it and starts a
// new one. It is meant for callers running inside the current tick.
func (l *Loop) Replace(fps int, tick func(ctx context.Context)) error {
	if fps <= 0 {
		return fmt.Errorf("start loop at %d fps: %w", fps, ErrInvalidFrameRate)
	}
	l.Cancel()
	l.spawn(fps, tick)
	return nil
}

func (l *Loop) spawn(fps int, tick func(ctx context.Context)) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	l.mu.Lock()
	l.cancel, l.done = cancel, done
	l.mu.Unlock()
	go l.run(ctx, done, Period(fps), tick)
}

func (l *Loop) run(ctx context.Context, done chan struct{}, period time.Duration, tick func(ctx context.Context)) {
	defer close(done)
	if l.warmup > 0 {
		t := time.NewTimer(l.warmup)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		if ctx.Err() != nil {
			return
		}
		tick(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Cancel signals the running schedule to stop and returns a channel closed
// once its goroutine has exited. The channel is already closed when nothing
// was running.
func (l *Loop) Cancel() <-chan struct{} {
	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.cancel, l.done = nil, nil
	l.mu.Unlock()
	if cancel == nil {
		c := make(chan struct{})
		close(c)
		return c
	}
	cancel()
	return done
}

// Stop cancels the running schedule and blocks until its last tick has
// returned. No tick runs after Stop returns.
func (l *Loop) Stop() { <-l.Cancel() }

// Running reports whether a schedule is active.
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cancel != nil
}
