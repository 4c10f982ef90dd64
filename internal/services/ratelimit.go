package services

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vmetanov/castline/tools/metrics"
)

// rateWindow is the per-address accounting record: how many messages were
// admitted since windowStart.
type rateWindow struct {
	count       int
	windowStart time.Time
}

// RateLimiter admits up to max messages per address within a rolling
// window. The window rolls forward on the first post-expiry message, not
// on a fixed schedule, and a denied message never extends the window.
type RateLimiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	entries map[string]*rateWindow
	now     func() time.Time
	done    chan struct{}
	stop    sync.Once
}

func NewRateLimiter(max int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		max:     max,
		window:  window,
		entries: make(map[string]*rateWindow),
		now:     time.Now,
		done:    make(chan struct{}),
	}
}

// Allow reports whether the address may send one more message now.
func (rl *RateLimiter) Allow(address string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()

	e, ok := rl.entries[address]
	if !ok {
		rl.entries[address] = &rateWindow{count: 1, windowStart: now}
		return true
	}

	if now.Sub(e.windowStart) > rl.window {
		e.count = 1
		e.windowStart = now
		return true
	}

	if e.count < rl.max {
		e.count++
		return true
	}

	// over the limit - the counter is deliberately NOT incremented so
	// repeated denials do not keep the window alive
	metrics.ChRateLimited <- 1
	return false
}

// Run sweeps idle entries every window interval until Stop is called.
// The sweep is advisory cleanup; Allow is correct without it.
func (rl *RateLimiter) Run() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-rl.done:
			return
		}
	}
}

func (rl *RateLimiter) Stop() {
	rl.stop.Do(func() { close(rl.done) })
}

// sweep evicts every address idle for more than twice the window. Entries
// still within 2x window are never touched, so a concurrent in-window
// Allow cannot lose its count.
func (rl *RateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	evicted := 0
	for address, e := range rl.entries {
		if now.Sub(e.windowStart) > 2*rl.window {
			delete(rl.entries, address)
			evicted++
		}
	}
	if evicted > 0 {
		log.Debugf("[ratelimit-sweep] evicted %d idle entries, %d remain", evicted, len(rl.entries))
	}
}

func (rl *RateLimiter) entriesLen() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.entries)
}
