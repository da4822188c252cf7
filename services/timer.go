package services

import (
	"sync"
	"time"
)

// Timer is a wall-clock countdown for one session, ticking once per second.
// When it reaches zero it fires its expiry callback exactly once; a manual
// completion stops it first. Timers live only in memory, so a process restart
// forgets running countdowns (the reaper eventually collects those sessions).
type Timer struct {
	interval time.Duration
	onExpire func()

	mu        sync.Mutex
	remaining int
	fired     bool

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewTimer creates a countdown of the given number of seconds
func NewTimer(seconds int, onExpire func()) *Timer {
	return newTimer(seconds, time.Second, onExpire)
}

func newTimer(seconds int, interval time.Duration, onExpire func()) *Timer {
	return &Timer{
		interval:  interval,
		onExpire:  onExpire,
		remaining: seconds,
		stopCh:    make(chan struct{}),
	}
}

// Start begins ticking in the background
func (t *Timer) Start() {
	go t.run()
}

func (t *Timer) run() {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stopCh:
			return
		case <-ticker.C:
			t.mu.Lock()
			if t.remaining > 0 {
				t.remaining--
			}
			// fired guards against a second tick at zero re-triggering expiry
			expired := t.remaining == 0 && !t.fired
			if expired {
				t.fired = true
			}
			t.mu.Unlock()

			if expired {
				t.onExpire()
				return
			}
		}
	}
}

// Remaining returns the seconds left on the countdown
func (t *Timer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

// Stop cancels the countdown; safe to call more than once
func (t *Timer) Stop() {
	t.stopOnce.Do(func() { close(t.stopCh) })
}

// TimerRegistry holds at most one running timer per session id
type TimerRegistry struct {
	mu     sync.Mutex
	timers map[string]*Timer
}

func NewTimerRegistry() *TimerRegistry {
	return &TimerRegistry{timers: make(map[string]*Timer)}
}

// Arm starts a countdown for the session unless one is already running
func (r *TimerRegistry) Arm(sessionID string, seconds int, onExpire func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.timers[sessionID]; ok {
		return
	}

	t := NewTimer(seconds, func() {
		onExpire()
		r.remove(sessionID)
	})
	r.timers[sessionID] = t
	t.Start()
}

// Disarm stops and removes the session's timer if one is running
func (r *TimerRegistry) Disarm(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.timers[sessionID]; ok {
		t.Stop()
		delete(r.timers, sessionID)
	}
}

func (r *TimerRegistry) remove(sessionID string) {
	r.mu.Lock()
	delete(r.timers, sessionID)
	r.mu.Unlock()
}
