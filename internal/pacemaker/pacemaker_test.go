package pacemaker

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPacemaker_TicksRepeatedly(t *testing.T) {
	var beats int32
	p := Start(10*time.Millisecond, func(percent int) {
		atomic.AddInt32(&beats, 1)
	})
	time.Sleep(50 * time.Millisecond)
	p.Stop()

	assert.GreaterOrEqual(t, atomic.LoadInt32(&beats), int32(2))
}

func TestPacemaker_BeatCarriesLatestReportedValue(t *testing.T) {
	var mu sync.Mutex
	var last int
	p := Start(10*time.Millisecond, func(percent int) {
		mu.Lock()
		last = percent
		mu.Unlock()
	})
	p.Report(42)
	time.Sleep(40 * time.Millisecond)
	p.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 42, last)
}

func TestPacemaker_StopIsSynchronous(t *testing.T) {
	p := Start(time.Hour, func(percent int) {})
	done := make(chan struct{})
	go func() {
		p.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return promptly")
	}
}
