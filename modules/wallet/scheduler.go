package wallet

import (
	"sync"
	"time"

	"github.com/NebulousLabs/threadgroup"
	"github.com/kryptokrona/kryptokrona-wallet-backend-go/persist"
)

// Metronome is a cooperative periodic task (spec §4.6): it runs immediately
// on start, then reschedules itself after the previous run completes
// rather than at a fixed rate, so ticks never overlap. A failing tick is
// logged at Error and the next tick is still scheduled.
//
// Grounded on rivine's threadgroup.Add/Done bracket around every
// long-running goroutine (modules/wallet/wallet.go's threadedResetSubscriptions
// and friends), generalized here into a reusable timer instead of one-off
// goroutines per subsystem, since the spec names three identically-shaped
// timers rather than three bespoke loops.
type Metronome struct {
	interval time.Duration
	fn       func()
	log      *persist.Logger
	name     string

	tg       threadgroup.ThreadGroup
	stopOnce sync.Once
	timer    *time.Timer
	timerMu  sync.Mutex
}

// NewMetronome builds a Metronome that calls fn every interval, logging
// failures under name via log.
func NewMetronome(name string, interval time.Duration, fn func(), log *persist.Logger) *Metronome {
	return &Metronome{name: name, interval: interval, fn: fn, log: log}
}

// Start spawns a goroutine that runs fn immediately and then keeps
// rescheduling it after each completion until Stop is called; Start itself
// returns without waiting for the first run.
func (m *Metronome) Start() {
	go m.runLoop()
}

func (m *Metronome) runLoop() {
	if err := m.tg.Add(); err != nil {
		return
	}
	defer m.tg.Done()

	m.tick()
	for {
		select {
		case <-m.tg.StopChan():
			return
		case <-m.after():
			m.tick()
		}
	}
}

func (m *Metronome) after() <-chan time.Time {
	m.timerMu.Lock()
	defer m.timerMu.Unlock()
	m.timer = time.NewTimer(m.interval)
	return m.timer.C
}

func (m *Metronome) tick() {
	defer func() {
		if r := recover(); r != nil {
			m.log.Errorln(m.name, "tick panicked:", r)
		}
	}()
	m.fn()
}

// Stop cancels future ticks and blocks until any in-flight tick completes
// (spec §4.6, §8 scenario S6). A second Stop call resolves immediately.
func (m *Metronome) Stop() {
	m.stopOnce.Do(func() {
		_ = m.tg.Stop()
	})
}

// Scheduler owns the three Metronomes the spec names (spec §4.6): sync,
// node-info refresh, and locked-transaction reconciliation. It is a thin
// lifecycle wrapper; all actual work lives in the callbacks passed at
// construction.
type Scheduler struct {
	sync        *Metronome
	nodeInfo    *Metronome
	reconcile   *Metronome
}

// NewScheduler builds a Scheduler with the three cadences from cfg.
func NewScheduler(syncFn, nodeInfoFn, reconcileFn func(), syncInterval, nodeInfoInterval, reconcileInterval time.Duration, log *persist.Logger) *Scheduler {
	return &Scheduler{
		sync:      NewMetronome("sync", syncInterval, syncFn, log),
		nodeInfo:  NewMetronome("nodeInfo", nodeInfoInterval, nodeInfoFn, log),
		reconcile: NewMetronome("reconcile", reconcileInterval, reconcileFn, log),
	}
}

// Start begins all three metronomes.
func (s *Scheduler) Start() {
	s.sync.Start()
	s.nodeInfo.Start()
	s.reconcile.Start()
}

// Stop awaits every in-flight tick and cancels future ones.
func (s *Scheduler) Stop() {
	s.sync.Stop()
	s.nodeInfo.Stop()
	s.reconcile.Stop()
}
