// Package walletevents is the wallet's observer/event surface (spec §6):
// a synchronous fan-out to registered listener callbacks. It mirrors
// rivine's own push-subscription idiom (modules.ConsensusSetSubscriber,
// exercised in modules/wallet/update.go's ProcessConsensusChange) but as a
// plain in-process callback bus instead of a cross-module interface, since
// the core has no other module to subscribe to it.
package walletevents

import "sync"

// Kind identifies one of the event names spec §6 enumerates.
type Kind string

const (
	Transaction    Kind = "transaction"
	IncomingTx     Kind = "incomingtx"
	OutgoingTx     Kind = "outgoingtx"
	FusionTx       Kind = "fusiontx"
	CreatedTx      Kind = "createdtx"
	CreatedFusionTx Kind = "createdfusiontx"
	Sync           Kind = "sync"
	Desync         Kind = "desync"
)

// SyncPayload is the payload for Sync and Desync events.
type SyncPayload struct {
	WalletHeight  uint64
	NetworkHeight uint64
}

// Listener receives events as they are emitted. Per the contract in spec
// §9, listeners must not block: emission is synchronous and a slow
// listener stalls the scheduler tick that triggered it.
type Listener func(kind Kind, payload interface{})

// Emitter is the wallet's synchronous observer bus.
type Emitter struct {
	mu        sync.RWMutex
	listeners []Listener

	lastWasSynced bool
}

// New creates an empty Emitter.
func New() *Emitter {
	return &Emitter{}
}

// On registers a listener for every event kind. There is no per-kind
// subscription: listeners filter by inspecting the Kind argument, matching
// the flat observer surface described in spec §6.
func (e *Emitter) On(l Listener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, l)
}

// Emit synchronously calls every registered listener with kind and payload.
func (e *Emitter) Emit(kind Kind, payload interface{}) {
	e.mu.RLock()
	listeners := make([]Listener, len(e.listeners))
	copy(listeners, e.listeners)
	e.mu.RUnlock()

	for _, l := range listeners {
		l(kind, payload)
	}
}

// EmitSyncState emits Sync on first convergence and again after any
// recovery from desync, and Desync only after a prior Sync, per spec §6.
func (e *Emitter) EmitSyncState(synced bool, walletHeight, networkHeight uint64) {
	e.mu.Lock()
	wasSynced := e.lastWasSynced
	e.lastWasSynced = synced
	e.mu.Unlock()

	payload := SyncPayload{WalletHeight: walletHeight, NetworkHeight: networkHeight}
	if synced && !wasSynced {
		e.Emit(Sync, payload)
	} else if !synced && wasSynced {
		e.Emit(Desync, payload)
	}
}
