// Package types holds the data model shared by the synchronizer, the
// subwallet store, and the node client: hex-encoded key material, blocks as
// decoded off the wire, and the transient batches the block processor hands
// to the store.
package types

import "strings"

// Hex is a lower-case hex-encoded 32-byte value: a public key, a private
// key, a key image, or a hash, depending on context. CryptoNote-family
// wallets pass these around as plain hex strings rather than fixed-size byte
// arrays, so the core follows suit instead of inventing a byte-array wrapper
// the wire format doesn't have.
type Hex string

// NullKey is the 64 zero hex characters returned by a CryptoPrimitives
// operation that failed internally; downstream classification treats it as
// "not mine" rather than surfacing an error.
const NullKey Hex = "0000000000000000000000000000000000000000000000000000000000000000"

// IsNull reports whether h is the null key.
func (h Hex) IsNull() bool {
	return h == NullKey || h == ""
}

// String implements fmt.Stringer.
func (h Hex) String() string {
	return string(h)
}

// Valid reports whether h looks like a 64-character lower-case hex string.
func (h Hex) Valid() bool {
	if len(h) != 64 {
		return false
	}
	return strings.IndexFunc(string(h), func(r rune) bool {
		return !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f')
	}) == -1
}

// KeyPair is a spend keypair. PrivateSpend may be the null key, denoting a
// view-only subwallet that can detect incoming funds but never spend them.
type KeyPair struct {
	PublicSpend  Hex
	PrivateSpend Hex
}

// IsViewOnly reports whether this keypair carries no usable private spend
// key.
func (kp KeyPair) IsViewOnly() bool {
	return kp.PrivateSpend.IsNull()
}

// TransactionInput is a single owned output, tracked from the moment it is
// first seen until it is spent (or reverted by a fork).
type TransactionInput struct {
	KeyImage          Hex
	Amount            uint64
	BlockHeight       uint64
	TxPublicKey       Hex
	IndexInTx         int
	GlobalOutputIndex *uint64
	OneTimePublicKey  Hex
	SpendHeight       uint64
	UnlockTime        uint64
	ParentTxHash      Hex
}

// IsSpent reports whether this input has been marked spent.
func (in TransactionInput) IsSpent() bool {
	return in.SpendHeight > 0
}

// TimestampUnlockThreshold separates the two kinds of unlockTime: a value
// below it is a block-height offset, a value at or above it is a unix
// timestamp.
const TimestampUnlockThreshold = 1_000_000_000

// UnlockedAtHeight reports whether a height-locked input has matured by the
// given chain height. A time-locked input always reports false: no
// timestamp comparison is made.
func (in TransactionInput) UnlockedAtHeight(currentHeight uint64) bool {
	if in.UnlockTime >= TimestampUnlockThreshold {
		return false
	}
	return in.BlockHeight+in.UnlockTime <= currentHeight
}

// IsTimeLocked reports whether this input's unlock condition is a unix
// timestamp rather than a block height offset.
func (in TransactionInput) IsTimeLocked() bool {
	return in.UnlockTime >= TimestampUnlockThreshold
}

// UnconfirmedInput is an output observed for the wallet in a transaction
// that has not yet reached full confirmation lock.
type UnconfirmedInput struct {
	Amount           uint64
	OneTimePublicKey Hex
	ParentTxHash     Hex
}

// Transaction is a wallet-relevant transaction: the signed per-subwallet
// transfer amounts it produced, plus its chain metadata.
type Transaction struct {
	Transfers   map[Hex]int64
	Hash        Hex
	Fee         uint64
	BlockHeight uint64
	Timestamp   uint64
	PaymentID   string
	UnlockTime  uint64
	IsCoinbase  bool
}

// TotalAmount returns the net amount this transaction moved: the sum of all
// transfers, plus the fee when the transaction is outgoing (has at least one
// negative transfer).
func (t Transaction) TotalAmount() int64 {
	var total int64
	var outgoing bool
	for _, amount := range t.Transfers {
		total += amount
		if amount < 0 {
			outgoing = true
		}
	}
	if outgoing {
		total += int64(t.Fee)
	}
	return total
}

// IsFusion reports whether this is a zero-fee, net-zero-transfer fusion
// transaction.
func (t Transaction) IsFusion() bool {
	if t.Fee != 0 {
		return false
	}
	var sum int64
	for _, amount := range t.Transfers {
		sum += amount
	}
	return sum == 0
}

// Unconfirmed reports whether this transaction has not yet been confirmed
// (no block height assigned).
func (t Transaction) Unconfirmed() bool {
	return t.BlockHeight == 0
}

// SpentInputEvent records that an owned input was observed being spent
// while processing a block.
type SpentInputEvent struct {
	PublicSpend Hex
	KeyImage    Hex
	SpendHeight uint64
	Amount      uint64
}

// OwnedInput pairs a freshly-discovered TransactionInput with the public
// spend key of the subwallet that owns it.
type OwnedInput struct {
	PublicSpend Hex
	Input       TransactionInput
}

// TransactionData is the transient output of processing one block: new
// transactions, new owned inputs, and inputs observed being spent. The
// SubWalletStore applies it under one lock, outputs before spends (§4.4).
type TransactionData struct {
	TxsToAdd             []Transaction
	InputsToAdd          []OwnedInput
	KeyImagesToMarkSpent []SpentInputEvent
}

// Destination is a single payment target for an outgoing transaction.
type Destination struct {
	Address string
	Amount  uint64
}
