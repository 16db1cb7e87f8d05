package core

// fetch_limiter.go bounds how many sheet exports are downloaded at once.
//
// A refresh fans out one goroutine per sheet; the limiter keeps the number
// of in-flight requests to the spreadsheet host at a configured maximum.
// A goroutine that cannot get a slot within maxWait fails its sheet with
// ErrTooManyFetches. WaitForDrain lets shutdown wait for in-flight fetches.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyFetches is returned when no fetch slot frees up in time.
var ErrTooManyFetches = errors.New("too many concurrent fetches, please try again later")

// DefaultMaxConcurrentFetches is the default limit for parallel fetches.
const DefaultMaxConcurrentFetches = 4

// DefaultFetchWait is how long a fetch waits for a slot.
const DefaultFetchWait = 30 * time.Second

// FetchLimiter is a counting semaphore for sheet downloads.
type FetchLimiter struct {
	slots   chan struct{}
	maxWait time.Duration

	mu     sync.Mutex
	active int
}

// NewFetchLimiter allows at most maxConcurrent fetches at a time.
func NewFetchLimiter(maxConcurrent int, maxWait time.Duration) *FetchLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentFetches
	}
	if maxWait <= 0 {
		maxWait = DefaultFetchWait
	}
	return &FetchLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire blocks until a slot is free, ctx is done or maxWait elapses.
// Every successful Acquire must be paired with Release.
func (l *FetchLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrTooManyFetches
	}
}

// Release frees a slot taken by Acquire.
func (l *FetchLimiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()
	<-l.slots
}

// ActiveCount returns the number of fetches holding a slot.
func (l *FetchLimiter) ActiveCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

// MaxConcurrent returns the slot count.
func (l *FetchLimiter) MaxConcurrent() int {
	return cap(l.slots)
}

// WaitForDrain blocks until no fetch is active or ctx is done.
func (l *FetchLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.ActiveCount() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// FetchLimiterStatus is a point-in-time view of the limiter.
type FetchLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"maxConcurrent"`
}

// Status returns the current limiter state.
func (l *FetchLimiter) Status() FetchLimiterStatus {
	active := l.ActiveCount()
	return FetchLimiterStatus{
		Active:        active,
		Available:     cap(l.slots) - active,
		MaxConcurrent: cap(l.slots),
	}
}
