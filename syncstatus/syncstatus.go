// Package syncstatus maintains the rolling window of recent block hashes
// and sparse checkpoints the synchronizer sends back to the node so it can
// resume after a reorg without a full rescan (spec §4.3). It has no direct
// rivine analogue (rivine trusts its own consensus set rather than a
// remote checkpoint exchange), so its shape follows the plain, mutex-
// guarded value-type idiom rivine uses throughout modules/wallet for
// similarly small pieces of tracked state (modules/wallet/wallet.go's
// struct-of-slices style).
package syncstatus

import "sync"

const (
	// WindowSize is the maximum number of recent block hashes retained.
	WindowSize = 100
	// CheckpointInterval is the height interval at which a hash is also
	// recorded as a checkpoint.
	CheckpointInterval = 5000
)

// HeightHash pairs a block height with its hash.
type HeightHash struct {
	Height uint64
	Hash   string
}

// Status is the rolling window of recent block hashes plus sparse
// checkpoints. The zero value is ready to use.
type Status struct {
	mu             sync.RWMutex
	lastKnownHashes []HeightHash // ascending height, length <= WindowSize
	checkpoints     []HeightHash // ascending height, strictly monotonic
	lastKnownHeight uint64
}

// StoreBlockHash appends a newly-processed block's hash, evicting the
// oldest entry once the window exceeds WindowSize, and additionally
// recording a checkpoint every CheckpointInterval heights.
func (s *Status) StoreBlockHash(height uint64, hash string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastKnownHashes = append(s.lastKnownHashes, HeightHash{Height: height, Hash: hash})
	if len(s.lastKnownHashes) > WindowSize {
		s.lastKnownHashes = s.lastKnownHashes[len(s.lastKnownHashes)-WindowSize:]
	}
	if height%CheckpointInterval == 0 {
		s.checkpoints = append(s.checkpoints, HeightHash{Height: height, Hash: hash})
	}
	if height > s.lastKnownHeight {
		s.lastKnownHeight = height
	}
}

// LastKnownHeight returns the height of the most recently stored hash.
func (s *Status) LastKnownHeight() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastKnownHeight
}

// TopHash returns the hash at the top of the window, if any.
func (s *Status) TopHash() (hash string, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.lastKnownHashes) == 0 {
		return "", false
	}
	top := s.lastKnownHashes[len(s.lastKnownHashes)-1]
	return top.Hash, true
}

// CheckpointsForRequest returns lastKnownHashes followed by checkpoints, in
// descending height order, exactly as the node expects them on
// /getwalletsyncdata (spec §4.3, §6).
func (s *Status) CheckpointsForRequest() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.lastKnownHashes)+len(s.checkpoints))
	for i := len(s.lastKnownHashes) - 1; i >= 0; i-- {
		out = append(out, s.lastKnownHashes[i].Hash)
	}
	for i := len(s.checkpoints) - 1; i >= 0; i-- {
		out = append(out, s.checkpoints[i].Hash)
	}
	return out
}

// ForkHeight reports the height at which hashes diverge from a block whose
// previousHash does not match the top of the window: the height of the
// first entry in the window whose hash equals parentHash, plus one. If
// parentHash is not found in the window, ok is false and the caller should
// fall back to checkpoint-based resume (fork deeper than the window).
func (s *Status) ForkHeight(parentHash string) (height uint64, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.lastKnownHashes) - 1; i >= 0; i-- {
		if s.lastKnownHashes[i].Hash == parentHash {
			return s.lastKnownHashes[i].Height + 1, true
		}
	}
	return 0, false
}

// Rewind discards every stored hash and checkpoint at or above forkHeight,
// so StoreBlockHash can be called again for the reorganized chain.
func (s *Status) Rewind(forkHeight uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.lastKnownHashes[:0:0]
	for _, hh := range s.lastKnownHashes {
		if hh.Height < forkHeight {
			kept = append(kept, hh)
		}
	}
	s.lastKnownHashes = kept

	keptCP := s.checkpoints[:0:0]
	for _, hh := range s.checkpoints {
		if hh.Height < forkHeight {
			keptCP = append(keptCP, hh)
		}
	}
	s.checkpoints = keptCP

	if len(s.lastKnownHashes) > 0 {
		s.lastKnownHeight = s.lastKnownHashes[len(s.lastKnownHashes)-1].Height
	} else {
		s.lastKnownHeight = 0
	}
}
