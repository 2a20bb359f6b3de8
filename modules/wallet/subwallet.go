package wallet

import (
	"github.com/kryptokrona/kryptokrona-wallet-backend-go/types"
)

// SubWallet is one spend-keypair-addressable account within the store
// (spec §3, §4.5's per-subwallet partition). Its three input partitions
// (unspent/locked/spent) are kept as plain slices, mirroring rivine's
// preference for simple ordered slices over maps where iteration order and
// appends dominate the access pattern (modules/wallet's seedFile/output
// tracking).
//
// Invariant: a given keyImage never appears in more than one of unspent,
// locked, spent simultaneously; the store enforces this by construction,
// never SubWallet alone (the keyImage index lives one level up).
type SubWallet struct {
	KeyPair            types.KeyPair
	ScanStartHeight    uint64
	ScanStartTimestamp uint64
	IsPrimary          bool

	unspent              []types.TransactionInput
	locked               []types.TransactionInput
	spent                []types.TransactionInput
	unconfirmedIncoming  []types.UnconfirmedInput
}

// NewSubWallet constructs a SubWallet rooted at the given scan position.
func NewSubWallet(keys types.KeyPair, scanStartHeight, scanStartTimestamp uint64, isPrimary bool) *SubWallet {
	return &SubWallet{
		KeyPair:            keys,
		ScanStartHeight:    scanStartHeight,
		ScanStartTimestamp: scanStartTimestamp,
		IsPrimary:          isPrimary,
	}
}

// storeInput appends to unspent.
func (w *SubWallet) storeInput(input types.TransactionInput) {
	w.unspent = append(w.unspent, input)
}

// findUnspentIndex returns the index of keyImage in unspent, or -1.
func (w *SubWallet) findUnspentIndex(keyImage types.Hex) int {
	for i, in := range w.unspent {
		if in.KeyImage == keyImage {
			return i
		}
	}
	return -1
}

func (w *SubWallet) findLockedIndex(keyImage types.Hex) int {
	for i, in := range w.locked {
		if in.KeyImage == keyImage {
			return i
		}
	}
	return -1
}

// markSpent moves keyImage from unspent or locked into spent, recording
// spendHeight. Returns false if the key image was not found in either.
func (w *SubWallet) markSpent(keyImage types.Hex, spendHeight uint64) bool {
	if i := w.findUnspentIndex(keyImage); i >= 0 {
		input := w.unspent[i]
		input.SpendHeight = spendHeight
		w.unspent = append(w.unspent[:i], w.unspent[i+1:]...)
		w.spent = append(w.spent, input)
		return true
	}
	if i := w.findLockedIndex(keyImage); i >= 0 {
		input := w.locked[i]
		input.SpendHeight = spendHeight
		w.locked = append(w.locked[:i], w.locked[i+1:]...)
		w.spent = append(w.spent, input)
		return true
	}
	return false
}

// markLocked moves keyImage from unspent into locked.
func (w *SubWallet) markLocked(keyImage types.Hex) bool {
	i := w.findUnspentIndex(keyImage)
	if i < 0 {
		return false
	}
	input := w.unspent[i]
	w.unspent = append(w.unspent[:i], w.unspent[i+1:]...)
	w.locked = append(w.locked, input)
	return true
}

// unlock moves keyImage from locked back into unspent (a cancelled send).
func (w *SubWallet) unlock(keyImage types.Hex) bool {
	i := w.findLockedIndex(keyImage)
	if i < 0 {
		return false
	}
	input := w.locked[i]
	w.locked = append(w.locked[:i], w.locked[i+1:]...)
	w.unspent = append(w.unspent, input)
	return true
}

// revertSpent moves keyImage back from spent into unspent, clearing
// spendHeight, for fork rollback.
func (w *SubWallet) revertSpent(keyImage types.Hex) bool {
	for i, in := range w.spent {
		if in.KeyImage == keyImage {
			in.SpendHeight = 0
			w.spent = append(w.spent[:i], w.spent[i+1:]...)
			w.unspent = append(w.unspent, in)
			return true
		}
	}
	return false
}

// purgeForked removes, across all three partitions, inputs at or above
// forkHeight, and reverts spent marks at or above forkHeight for inputs
// that remain below it (spec §4.4).
func (w *SubWallet) purgeForked(forkHeight uint64) {
	w.unspent = filterInputs(w.unspent, func(in types.TransactionInput) bool {
		return in.BlockHeight < forkHeight
	})
	w.locked = filterInputs(w.locked, func(in types.TransactionInput) bool {
		return in.BlockHeight < forkHeight
	})

	kept := w.spent[:0:0]
	for _, in := range w.spent {
		if in.BlockHeight >= forkHeight {
			continue // created at or after the fork: gone entirely
		}
		if in.SpendHeight >= forkHeight {
			in.SpendHeight = 0
			w.unspent = append(w.unspent, in)
			continue
		}
		kept = append(kept, in)
	}
	w.spent = kept
}

func filterInputs(in []types.TransactionInput, keep func(types.TransactionInput) bool) []types.TransactionInput {
	out := in[:0:0]
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// balance returns unlocked, the sum of unspent inputs whose height lock has
// passed at currentHeight (types.TransactionInput.UnlockedAtHeight), and
// locked, the sum of the remaining unspent inputs plus every input in the
// locked partition. Time-locked inputs are always counted as locked.
func (w *SubWallet) balance(currentHeight uint64) (unlocked, locked uint64) {
	for _, in := range w.unspent {
		if in.UnlockedAtHeight(currentHeight) {
			unlocked += in.Amount
		} else {
			locked += in.Amount
		}
	}
	for _, in := range w.locked {
		locked += in.Amount
	}
	return unlocked, locked
}

// spendableInputs returns a copy of the unspent inputs usable as of
// currentHeight (unlock condition satisfied).
func (w *SubWallet) spendableInputs(currentHeight uint64) []types.TransactionInput {
	out := make([]types.TransactionInput, 0, len(w.unspent))
	for _, in := range w.unspent {
		if in.UnlockedAtHeight(currentHeight) {
			out = append(out, in)
		}
	}
	return out
}
