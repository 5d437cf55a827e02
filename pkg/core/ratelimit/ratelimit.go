// Package ratelimit bounds the outbound request rate against SEC EDGAR.
//
// SEC fair-access guidelines allow at most 10 requests per second per
// client; every EDGAR call in this codebase passes through one shared
// Limiter instance.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter admits at most `limit` calls per trailing `period`, using a
// sliding window of admission timestamps. Wait blocks until the window
// has capacity; it cannot fail, only delay.
type Limiter struct {
	mu         sync.Mutex
	limit      int
	period     time.Duration
	timestamps []time.Time

	// now and sleep are swappable for deterministic tests.
	now   func() time.Time
	sleep func(time.Duration)
}

// New creates a Limiter admitting limit calls per period.
func New(limit int, period time.Duration) *Limiter {
	if limit <= 0 {
		limit = 10
	}
	if period <= 0 {
		period = time.Second
	}
	return &Limiter{
		limit:  limit,
		period: period,
		now:    time.Now,
		sleep:  time.Sleep,
	}
}

// NewWithClock creates a Limiter with an injected clock and sleep function.
func NewWithClock(limit int, period time.Duration, now func() time.Time, sleep func(time.Duration)) *Limiter {
	l := New(limit, period)
	l.now = now
	l.sleep = sleep
	return l
}

// Wait blocks until the trailing window holds fewer than limit entries,
// then records the current time as a new entry. Expired timestamps are
// pruned on every call, so repeated calls do not grow the window beyond
// the limit.
func (l *Limiter) Wait() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.prune(l.now())

	if len(l.timestamps) >= l.limit {
		wait := l.period - l.now().Sub(l.timestamps[0])
		if wait > 0 {
			l.sleep(wait)
		}
		l.prune(l.now())
	}

	l.timestamps = append(l.timestamps, l.now())
}

// prune drops timestamps that have fallen out of the trailing period.
// Caller must hold the mutex.
func (l *Limiter) prune(now time.Time) {
	kept := l.timestamps[:0]
	for _, ts := range l.timestamps {
		if now.Sub(ts) < l.period {
			kept = append(kept, ts)
		}
	}
	l.timestamps = kept
}

// Pending reports how many admissions currently sit inside the window.
func (l *Limiter) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prune(l.now())
	return len(l.timestamps)
}
