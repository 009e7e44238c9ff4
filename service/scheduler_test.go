package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduler_RunsJobsAndStops(t *testing.T) {
	var runs atomic.Int32
	s := NewScheduler()
	s.Add("counter", 10*time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})
	s.Start(context.Background())

	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, time.Second, 5*time.Millisecond)
	s.Stop()
	after := runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, runs.Load(), "no ticks fire after Stop")
}

func TestScheduler_SkipsOverlappingTicks(t *testing.T) {
	var concurrent atomic.Int32
	var maxSeen atomic.Int32
	s := NewScheduler()
	s.Add("slow", 5*time.Millisecond, func(ctx context.Context) error {
		n := concurrent.Add(1)
		if n > maxSeen.Load() {
			maxSeen.Store(n)
		}
		time.Sleep(30 * time.Millisecond)
		concurrent.Add(-1)
		return nil
	})
	s.Start(context.Background())
	time.Sleep(100 * time.Millisecond)
	s.Stop()

	assert.Equal(t, int32(1), maxSeen.Load(), "a tick during a running job is dropped")
}

func TestScheduler_ZeroIntervalDisablesJob(t *testing.T) {
	var runs atomic.Int32
	s := NewScheduler()
	s.Add("disabled", 0, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})
	s.Start(context.Background())
	time.Sleep(20 * time.Millisecond)
	s.Stop()
	assert.Equal(t, int32(0), runs.Load())
}
