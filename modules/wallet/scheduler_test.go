package wallet

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kryptokrona/kryptokrona-wallet-backend-go/persist"
)

func TestMetronomeRunsImmediatelyThenReschedules(t *testing.T) {
	var count int32
	m := NewMetronome("test", 5*time.Millisecond, func() {
		atomic.AddInt32(&count, 1)
	}, persist.NewNopLogger("test"))

	m.Start()
	defer m.Stop()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&count) >= 3
	}, time.Second, time.Millisecond)
}

func TestMetronomeStopAwaitsInFlightTick(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var ticks int32

	m := NewMetronome("test", time.Millisecond, func() {
		atomic.AddInt32(&ticks, 1)
		close(started)
		<-release
	}, persist.NewNopLogger("test"))

	m.Start()
	<-started

	done := make(chan struct{})
	go func() {
		m.Stop()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Stop returned before in-flight tick completed")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	<-done

	finalCount := atomic.LoadInt32(&ticks)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, finalCount, atomic.LoadInt32(&ticks))
}

func TestMetronomeSecondStopResolvesImmediately(t *testing.T) {
	m := NewMetronome("test", time.Millisecond, func() {}, persist.NewNopLogger("test"))
	m.Start()
	m.Stop()

	done := make(chan struct{})
	go func() {
		m.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second Stop did not resolve immediately")
	}
}

func TestMetronomeTickPanicDoesNotHaltLoop(t *testing.T) {
	var count int32
	m := NewMetronome("test", 2*time.Millisecond, func() {
		n := atomic.AddInt32(&count, 1)
		if n == 1 {
			panic("boom")
		}
	}, persist.NewNopLogger("test"))

	m.Start()
	defer m.Stop()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&count) >= 2
	}, time.Second, time.Millisecond)
}
