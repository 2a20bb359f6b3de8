package wallet

import (
	"math/rand"
	"sort"
	"sync"

	"github.com/kryptokrona/kryptokrona-wallet-backend-go/build"
	"github.com/kryptokrona/kryptokrona-wallet-backend-go/types"
)

// SubWalletStore is the authoritative in-memory ledger (spec §4.5): every
// subwallet, the keyImage→publicSpend ownership index, and transaction
// history. It is the single mutable aggregate the cooperative scheduling
// model (spec §5) serializes all mutation through; the mutex here exists
// only so a preemptive Go runtime preserves those semantics, exactly as
// spec §5's "Shared resource policy" directs.
//
// Grounded on rivine's modules/wallet struct-of-slices-plus-RWMutex shape
// (the deleted wallet.go kept confirmedSets/historic output slices behind
// one mu sync.RWMutex guarding the whole aggregate); this store keeps that
// idiom but re-keys everything by public spend key and key image instead
// of unlock hash.
type SubWalletStore struct {
	mu sync.RWMutex

	subWallets map[types.Hex]*SubWallet // keyed by publicSpend
	order      []types.Hex              // insertion order, for deterministic iteration

	keyImageIndex map[types.Hex]types.Hex // keyImage -> publicSpend

	transactions       []types.Transaction  // newest-last; exposed newest-first
	lockedTransactions []types.Transaction  // staged, unconfirmed outgoing
	txIndex            map[types.Hex]int    // tx hash -> index in transactions
	lockedTxIndex      map[types.Hex]int    // tx hash -> index in lockedTransactions
}

// NewSubWalletStore constructs an empty store.
func NewSubWalletStore() *SubWalletStore {
	return &SubWalletStore{
		subWallets:    make(map[types.Hex]*SubWallet),
		keyImageIndex: make(map[types.Hex]types.Hex),
		txIndex:       make(map[types.Hex]int),
		lockedTxIndex: make(map[types.Hex]int),
	}
}

// AddSubWallet registers a new subwallet. Subwallets are never removed
// while the store lives (spec §3's lifecycle note).
func (s *SubWalletStore) AddSubWallet(sw *SubWallet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.subWallets[sw.KeyPair.PublicSpend]; exists {
		build.Critical("duplicate public spend key added to subwallet store")
		return
	}
	s.subWallets[sw.KeyPair.PublicSpend] = sw
	s.order = append(s.order, sw.KeyPair.PublicSpend)
}

// PublicSpendKeys returns every known public spend key.
func (s *SubWalletStore) PublicSpendKeys() map[types.Hex]struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[types.Hex]struct{}, len(s.order))
	for _, k := range s.order {
		out[k] = struct{}{}
	}
	return out
}

// SubWallet returns the subwallet for a public spend key, if known.
func (s *SubWalletStore) SubWallet(publicSpend types.Hex) (*SubWallet, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sw, ok := s.subWallets[publicSpend]
	return sw, ok
}

// PrimarySubWallet returns the subwallet added with isPrimary set, if any.
// The synchronizer anchors its initial scan position on it (spec §3, §4.4).
func (s *SubWalletStore) PrimarySubWallet() (*SubWallet, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, k := range s.order {
		if sw := s.subWallets[k]; sw.IsPrimary {
			return sw, true
		}
	}
	return nil, false
}

// AddTransaction appends tx to history, deduplicating by hash (spec §8's
// idempotence property), and drops any matching locked transaction (it
// just confirmed).
func (s *SubWalletStore) AddTransaction(tx types.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addTransactionLocked(tx)
}

func (s *SubWalletStore) addTransactionLocked(tx types.Transaction) {
	if i, ok := s.txIndex[tx.Hash]; ok {
		s.transactions[i] = tx
		return
	}
	s.txIndex[tx.Hash] = len(s.transactions)
	s.transactions = append(s.transactions, tx)

	if i, ok := s.lockedTxIndex[tx.Hash]; ok {
		s.removeLockedAtLocked(i)
	}
}

// AddUnconfirmedTransaction stages a locally-created outgoing transaction.
func (s *SubWalletStore) AddUnconfirmedTransaction(tx types.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lockedTxIndex[tx.Hash]; ok {
		return
	}
	s.lockedTxIndex[tx.Hash] = len(s.lockedTransactions)
	s.lockedTransactions = append(s.lockedTransactions, tx)
}

// RemoveCancelledTransaction drops a locked (unconfirmed) transaction's
// entry. It does not unlock the inputs that were locked for it (the store
// keeps no record of which inputs those were; callers revert them with
// UnlockInput) and it does not remove unconfirmed-incoming entries.
func (s *SubWalletStore) RemoveCancelledTransaction(hash types.Hex) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.lockedTxIndex[hash]; ok {
		s.removeLockedAtLocked(i)
	}
}

func (s *SubWalletStore) removeLockedAtLocked(i int) {
	hash := s.lockedTransactions[i].Hash
	s.lockedTransactions = append(s.lockedTransactions[:i], s.lockedTransactions[i+1:]...)
	delete(s.lockedTxIndex, hash)
	for h, idx := range s.lockedTxIndex {
		if idx > i {
			s.lockedTxIndex[h] = idx - 1
		}
	}
}

// StoreTransactionInput inserts input into publicSpend's unspent list and
// updates the key image index.
func (s *SubWalletStore) StoreTransactionInput(publicSpend types.Hex, input types.TransactionInput) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sw, ok := s.subWallets[publicSpend]
	if !ok {
		build.Critical("storeTransactionInput: unknown public spend key")
		return
	}
	sw.storeInput(input)
	if !input.KeyImage.IsNull() {
		s.keyImageIndex[input.KeyImage] = publicSpend
	}
}

// MarkInputAsSpent moves an input from unspent|locked to spent.
func (s *SubWalletStore) MarkInputAsSpent(publicSpend, keyImage types.Hex, spendHeight uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sw, ok := s.subWallets[publicSpend]
	if !ok {
		return false
	}
	return sw.markSpent(keyImage, spendHeight)
}

// MarkInputAsLocked moves an input from unspent to locked, pending our own
// outgoing transaction.
func (s *SubWalletStore) MarkInputAsLocked(publicSpend, keyImage types.Hex) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sw, ok := s.subWallets[publicSpend]
	if !ok {
		return false
	}
	return sw.markLocked(keyImage)
}

// UnlockInput reverts a locked input back to unspent (a cancelled send).
func (s *SubWalletStore) UnlockInput(publicSpend, keyImage types.Hex) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sw, ok := s.subWallets[publicSpend]
	if !ok {
		return false
	}
	return sw.unlock(keyImage)
}

// GetKeyImageOwner reports the owning public spend key for a key image.
func (s *SubWalletStore) GetKeyImageOwner(keyImage types.Hex) (publicSpend types.Hex, found bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	publicSpend, found = s.keyImageIndex[keyImage]
	return
}

// RemoveForkedTransactions reverts all state at or above forkHeight (spec
// §4.4, §8 invariant 3): inputs and transactions created at or after the
// fork are purged, and spent marks at or after the fork are reverted.
func (s *SubWalletStore) RemoveForkedTransactions(forkHeight uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, pub := range s.order {
		s.subWallets[pub].purgeForked(forkHeight)
	}

	// Rebuild the key image index from scratch: simplest way to guarantee
	// it reflects exactly what purgeForked left behind.
	s.keyImageIndex = make(map[types.Hex]types.Hex)
	for _, pub := range s.order {
		sw := s.subWallets[pub]
		for _, in := range append(append([]types.TransactionInput{}, sw.unspent...), append(sw.locked, sw.spent...)...) {
			if !in.KeyImage.IsNull() {
				s.keyImageIndex[in.KeyImage] = pub
			}
		}
	}

	kept := s.transactions[:0:0]
	s.txIndex = make(map[types.Hex]int)
	for _, tx := range s.transactions {
		if tx.BlockHeight != 0 && tx.BlockHeight >= forkHeight {
			continue
		}
		s.txIndex[tx.Hash] = len(kept)
		kept = append(kept, tx)
	}
	s.transactions = kept
}

// ApplyTransactionData commits one block's processing result: owned
// outputs are stored before key images are marked spent (spec §5's
// ordering guarantee), then every produced transaction is appended.
func (s *SubWalletStore) ApplyTransactionData(data types.TransactionData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, owned := range data.InputsToAdd {
		sw, ok := s.subWallets[owned.PublicSpend]
		if !ok {
			build.Critical("storeTransactionInput: unknown public spend key")
			continue
		}
		sw.storeInput(owned.Input)
		if !owned.Input.KeyImage.IsNull() {
			s.keyImageIndex[owned.Input.KeyImage] = owned.PublicSpend
		}
	}
	for _, spent := range data.KeyImagesToMarkSpent {
		if sw, ok := s.subWallets[spent.PublicSpend]; ok {
			sw.markSpent(spent.KeyImage, spent.SpendHeight)
		}
	}
	for _, tx := range data.TxsToAdd {
		s.addTransactionLocked(tx)
	}
}

// GetBalance sums unlocked and locked balances across sources (or all
// subwallets if sources is nil), per spec §4.5.
func (s *SubWalletStore) GetBalance(currentHeight uint64, sources []types.Hex) (unlocked, locked uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := sources
	if keys == nil {
		keys = s.order
	}
	for _, k := range keys {
		sw, ok := s.subWallets[k]
		if !ok {
			continue
		}
		u, l := sw.balance(currentHeight)
		unlocked += u
		locked += l
	}
	return unlocked, locked
}

// GetTransactionInputsForAmount selects unspent inputs from sources (or
// all subwallets) whose unlock condition is satisfied at currentHeight,
// shuffling candidates before accumulating so repeated selections don't
// always drain the same inputs first, then returns them once their sum
// reaches amount (spec §4.5). Fails if no sufficient combination exists.
func (s *SubWalletStore) GetTransactionInputsForAmount(amount uint64, sources []types.Hex, currentHeight uint64) (selected []types.OwnedInput, total uint64, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := sources
	if keys == nil {
		keys = s.order
	}

	var candidates []types.OwnedInput
	for _, k := range keys {
		sw, exists := s.subWallets[k]
		if !exists {
			continue
		}
		for _, in := range sw.spendableInputs(currentHeight) {
			candidates = append(candidates, types.OwnedInput{PublicSpend: k, Input: in})
		}
	}

	rand.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	for _, c := range candidates {
		selected = append(selected, c)
		total += c.Input.Amount
		if total >= amount {
			return selected, total, true
		}
	}
	return nil, 0, false
}

// GetTransactions returns transaction history newest-first, with locked
// (unconfirmed) transactions always ahead of confirmed ones regardless of
// timestamp (spec §4.5).
func (s *SubWalletStore) GetTransactions() []types.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Transaction, 0, len(s.transactions)+len(s.lockedTransactions))
	for i := len(s.lockedTransactions) - 1; i >= 0; i-- {
		out = append(out, s.lockedTransactions[i])
	}
	confirmed := append([]types.Transaction{}, s.transactions...)
	sort.SliceStable(confirmed, func(i, j int) bool {
		return confirmed[i].BlockHeight > confirmed[j].BlockHeight
	})
	return append(out, confirmed...)
}
