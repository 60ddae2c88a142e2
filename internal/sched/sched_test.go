package sched

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManual_RunsInDueOrder(t *testing.T) {
	m := NewManual()
	var got []string

	m.After(300*time.Millisecond, func() { got = append(got, "c") })
	m.After(100*time.Millisecond, func() { got = append(got, "a") })
	m.After(100*time.Millisecond, func() { got = append(got, "b") })

	m.Advance(99 * time.Millisecond)
	assert.Empty(t, got)

	m.Advance(time.Millisecond)
	assert.Equal(t, []string{"a", "b"}, got)

	m.Advance(time.Second)
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Equal(t, 1100*time.Millisecond, m.Now())
}

func TestManual_ChainedCallbacksWithinWindow(t *testing.T) {
	m := NewManual()
	var at []time.Duration

	var tick func()
	tick = func() {
		at = append(at, m.Now())
		if len(at) < 3 {
			m.After(50*time.Millisecond, tick)
		}
	}
	m.After(50*time.Millisecond, tick)

	m.Advance(time.Second)
	assert.Equal(t, []time.Duration{50 * time.Millisecond, 100 * time.Millisecond, 150 * time.Millisecond}, at)
}

func TestManual_Cancel(t *testing.T) {
	m := NewManual()
	ran := false

	cancel := m.After(time.Millisecond, func() { ran = true })
	assert.Equal(t, 1, m.Pending())
	cancel()
	cancel()
	assert.Equal(t, 0, m.Pending())

	m.Advance(time.Second)
	assert.False(t, ran)
}

func TestManual_GoQueuesApply(t *testing.T) {
	m := NewManual()
	worked, applied := false, false

	m.Go(func() func() {
		worked = true
		return func() { applied = true }
	})

	assert.True(t, worked)
	assert.False(t, applied, "apply waits for the scheduler thread")

	m.Flush()
	assert.True(t, applied)
}

func TestManual_NextDue(t *testing.T) {
	m := NewManual()
	_, ok := m.NextDue()
	assert.False(t, ok)

	m.After(250*time.Millisecond, func() {})
	d, ok := m.NextDue()
	require.True(t, ok)
	assert.Equal(t, 250*time.Millisecond, d)
}

func TestLoop_SerializesJobs(t *testing.T) {
	l := NewLoop(16)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	var counter int64
	var inFlight, overlaps int32
	for i := 0; i < 100; i++ {
		l.Go(func() func() {
			return func() {
				if atomic.AddInt32(&inFlight, 1) != 1 {
					atomic.AddInt32(&overlaps, 1)
				}
				counter++
				atomic.AddInt32(&inFlight, -1)
			}
		})
	}

	assert.Eventually(t, func() bool {
		var n int64
		if err := l.Do(ctx, func() { n = counter }); err != nil {
			return false
		}
		return n == 100
	}, time.Second, 5*time.Millisecond)
	assert.Zero(t, atomic.LoadInt32(&overlaps))
}

func TestLoop_AfterAndCancel(t *testing.T) {
	l := NewLoop(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	fired := make(chan struct{})
	l.After(10*time.Millisecond, func() { close(fired) })

	var cancelled atomic.Bool
	stop := l.After(10*time.Millisecond, func() { cancelled.Store(true) })
	stop()

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("callback did not fire")
	}
	time.Sleep(20 * time.Millisecond)
	assert.False(t, cancelled.Load())
}

func TestLoop_PostAfterStop(t *testing.T) {
	l := NewLoop(1)
	ctx, cancel := context.WithCancel(context.Background())
	go l.Run(ctx)
	cancel()

	<-l.Done()
	assert.ErrorIs(t, l.Post(func() {}), ErrStopped)
	assert.ErrorIs(t, l.Do(context.Background(), func() {}), ErrStopped)
}
