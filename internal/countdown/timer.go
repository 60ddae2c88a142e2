// Package countdown implements the per-question answer timer.
package countdown

import (
	"time"

	"github.com/f3rmion/kanjimon/internal/sched"
)

// DefaultTick is the tick resolution of the answer timer.
const DefaultTick = 50 * time.Millisecond

// Timer counts a duration down in fixed ticks on a scheduler. Only one
// countdown is ever live: Start replaces the previous one, and ticks that
// belong to a replaced or stopped countdown are ignored.
type Timer struct {
	sched sched.Scheduler
	tick  time.Duration

	remaining time.Duration
	running   bool
	gen       uint64
	cancel    sched.Cancel

	onTick   func(remaining time.Duration)
	onExpire func()
}

// New creates a stopped timer. A non-positive tick uses DefaultTick.
func New(s sched.Scheduler, tick time.Duration) *Timer {
	if tick <= 0 {
		tick = DefaultTick
	}
	return &Timer{sched: s, tick: tick}
}

// Start begins counting d down. onTick (optional) runs after every tick
// that leaves time on the clock; onExpire runs exactly once when the
// countdown reaches zero, after the timer has stopped itself.
func (t *Timer) Start(d time.Duration, onTick func(time.Duration), onExpire func()) {
	t.Stop()

	t.gen++
	t.remaining = d
	t.running = true
	t.onTick = onTick
	t.onExpire = onExpire
	t.schedule(t.gen)
}

// Stop halts the countdown. Stopping a stopped timer is a no-op.
func (t *Timer) Stop() {
	if !t.running {
		return
	}
	t.running = false
	t.gen++
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}

// Running reports whether a countdown is live.
func (t *Timer) Running() bool {
	return t.running
}

// Remaining returns the time left on the current or last countdown.
func (t *Timer) Remaining() time.Duration {
	return t.remaining
}

// Tick returns the tick resolution.
func (t *Timer) Tick() time.Duration {
	return t.tick
}

func (t *Timer) schedule(gen uint64) {
	t.cancel = t.sched.After(t.tick, func() { t.fire(gen) })
}

func (t *Timer) fire(gen uint64) {
	if !t.running || gen != t.gen {
		return
	}

	t.remaining -= t.tick
	if t.remaining <= 0 {
		t.remaining = 0
		t.running = false
		t.gen++
		t.cancel = nil
		if t.onExpire != nil {
			t.onExpire()
		}
		return
	}

	t.schedule(gen)
	if t.onTick != nil {
		t.onTick(t.remaining)
	}
}
