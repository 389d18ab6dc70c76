// Package ratelimit throttles login attempts per client IP.
//
// Every key (a client IP) gets a fixed window that opens on its first
// attempt. Up to max attempts are allowed before the window closes; after
// that Allow reports how long the caller has to wait. A successful login
// clears the key. Expired windows are swept by a background goroutine.
//
// Counters live in memory: the service runs as one instance, and a
// database write per login would only add contention.
//
// The package imports nothing from the project, so both handlers and
// middleware can use it.
package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

// window is the attempt count for one key until resetAt.
type window struct {
	count   int
	resetAt time.Time
}

// Limiter counts attempts per key inside a fixed window.
//
//	limiter := ratelimit.New(5, 2*time.Minute)
//	defer limiter.Stop()
//	if ok, wait := limiter.Allow(ip); !ok { ...429, Retry-After: wait... }
//	// after a successful login:
//	limiter.Reset(ip)
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
	max     int
	period  time.Duration
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// New creates a limiter allowing max attempts per period and starts its sweep
// goroutine. Call Stop when done.
func New(max int, period time.Duration) *Limiter {
	l := &Limiter{
		windows: make(map[string]*window),
		max:     max,
		period:  period,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go l.sweepLoop()
	return l
}

// Allow records an attempt for key. When the attempt is over the limit it
// returns false and the time left until the window resets. Every call counts,
// successful or not.
func (l *Limiter) Allow(key string) (bool, time.Duration) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || !now.Before(w.resetAt) {
		l.windows[key] = &window{count: 1, resetAt: now.Add(l.period)}
		return true, 0
	}

	w.count++
	if w.count > l.max {
		return false, w.resetAt.Sub(now)
	}
	return true, 0
}

// Reset forgets key, e.g. after a successful login.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	delete(l.windows, key)
	l.mu.Unlock()
}

// Stop ends the sweep goroutine. Safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *Limiter) sweepLoop() {
	interval := l.period
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.stop:
			return
		}
	}
}

// sweep drops windows that have already reset.
func (l *Limiter) sweep() {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, w := range l.windows {
		if !now.Before(w.resetAt) {
			delete(l.windows, key)
		}
	}
}

// RetryAfterSeconds rounds a wait up to whole seconds for the Retry-After
// header. It is at least 1 for any positive wait.
func RetryAfterSeconds(wait time.Duration) int {
	if wait <= 0 {
		return 0
	}
	return int((wait + time.Second - 1) / time.Second)
}

// FormatRetryMessage renders seconds for humans: 120 -> "2 minute(s)".
func FormatRetryMessage(seconds int) string {
	if seconds >= 60 {
		return fmt.Sprintf("%d minute(s)", (seconds+59)/60)
	}
	return fmt.Sprintf("%d second(s)", seconds)
}
