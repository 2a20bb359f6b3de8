package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kryptokrona/kryptokrona-wallet-backend-go/types"
)

func TestSubWalletMarkSpentFromUnspent(t *testing.T) {
	sw := NewSubWallet(testKeyPair("aa"), 0, 0, true)
	sw.storeInput(types.TransactionInput{KeyImage: "ki1", Amount: 100})

	require.True(t, sw.markSpent("ki1", 50))
	assert.Len(t, sw.unspent, 0)
	require.Len(t, sw.spent, 1)
	assert.Equal(t, uint64(50), sw.spent[0].SpendHeight)
}

func TestSubWalletMarkSpentFromLocked(t *testing.T) {
	sw := NewSubWallet(testKeyPair("aa"), 0, 0, true)
	sw.storeInput(types.TransactionInput{KeyImage: "ki1", Amount: 100})
	require.True(t, sw.markLocked("ki1"))

	require.True(t, sw.markSpent("ki1", 50))
	assert.Len(t, sw.locked, 0)
	require.Len(t, sw.spent, 1)
}

func TestSubWalletMarkSpentUnknownKeyImage(t *testing.T) {
	sw := NewSubWallet(testKeyPair("aa"), 0, 0, true)
	assert.False(t, sw.markSpent("nope", 1))
}

func TestSubWalletLockAndUnlockRoundTrip(t *testing.T) {
	sw := NewSubWallet(testKeyPair("aa"), 0, 0, true)
	sw.storeInput(types.TransactionInput{KeyImage: "ki1", Amount: 100})

	require.True(t, sw.markLocked("ki1"))
	assert.Len(t, sw.unspent, 0)
	assert.Len(t, sw.locked, 1)

	require.True(t, sw.unlock("ki1"))
	assert.Len(t, sw.unspent, 1)
	assert.Len(t, sw.locked, 0)
}

func TestSubWalletRevertSpent(t *testing.T) {
	sw := NewSubWallet(testKeyPair("aa"), 0, 0, true)
	sw.storeInput(types.TransactionInput{KeyImage: "ki1", Amount: 100})
	sw.markSpent("ki1", 20)

	require.True(t, sw.revertSpent("ki1"))
	require.Len(t, sw.unspent, 1)
	assert.Equal(t, uint64(0), sw.unspent[0].SpendHeight)
	assert.Len(t, sw.spent, 0)
}

func TestSubWalletPurgeForkedDropsNewInputsRevertsNewSpends(t *testing.T) {
	sw := NewSubWallet(testKeyPair("aa"), 0, 0, true)
	sw.storeInput(types.TransactionInput{KeyImage: "old", Amount: 100, BlockHeight: 5})
	sw.storeInput(types.TransactionInput{KeyImage: "new", Amount: 200, BlockHeight: 15})
	sw.markSpent("old", 15)

	sw.purgeForked(10)

	assert.Len(t, sw.unspent, 1)
	assert.Equal(t, types.Hex("old"), sw.unspent[0].KeyImage)
	assert.Equal(t, uint64(0), sw.unspent[0].SpendHeight)
	assert.Len(t, sw.spent, 0)
	assert.Len(t, sw.locked, 0)
}

func TestSubWalletBalanceSplitsLockedAndUnlocked(t *testing.T) {
	sw := NewSubWallet(testKeyPair("aa"), 0, 0, true)
	sw.storeInput(types.TransactionInput{KeyImage: "unlocked", Amount: 100, UnlockTime: 0})
	sw.storeInput(types.TransactionInput{KeyImage: "future", Amount: 50, UnlockTime: 1000})
	sw.markLocked("future")

	unlocked, locked := sw.balance(500)
	assert.Equal(t, uint64(100), unlocked)
	assert.Equal(t, uint64(50), locked)
}

func TestSubWalletSpendableInputsExcludesLockedByTime(t *testing.T) {
	sw := NewSubWallet(testKeyPair("aa"), 0, 0, true)
	sw.storeInput(types.TransactionInput{KeyImage: "ready", Amount: 100, UnlockTime: 0})
	sw.storeInput(types.TransactionInput{KeyImage: "waiting", Amount: 100, UnlockTime: 999999999999})

	spendable := sw.spendableInputs(500)
	require.Len(t, spendable, 1)
	assert.Equal(t, types.Hex("ready"), spendable[0].KeyImage)
}
