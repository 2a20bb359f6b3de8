package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kryptokrona/kryptokrona-wallet-backend-go/config"
	kcrypto "github.com/kryptokrona/kryptokrona-wallet-backend-go/crypto"
	"github.com/kryptokrona/kryptokrona-wallet-backend-go/types"
)

func noOwner(types.Hex) (types.Hex, bool) { return "", false }

func TestProcessBlockClassifiesOwnedOutput(t *testing.T) {
	cfg := config.Default()
	p := NewBlockProcessor(kcrypto.Default{}, cfg)

	privateView := types.Hex("1111111111111111111111111111111111111111111111111111111111111111")
	keys := types.KeyPair{
		PublicSpend:  types.Hex("2222222222222222222222222222222222222222222222222222222222222222"),
		PrivateSpend: types.Hex("3333333333333333333333333333333333333333333333333333333333333333"),
	}
	txPub := types.Hex("4444444444444444444444444444444444444444444444444444444444444444")

	derivation := kcrypto.Default{}.KeyDerivation(txPub, privateView)
	outKey := kcrypto.Default{}.PublicEphemeral(derivation, 0, keys.PublicSpend)

	block := types.Block{
		Height: 5,
		Transactions: []types.BlockTransaction{
			{
				Hash:      "deadbeef",
				PublicKey: txPub,
				Outputs:   []types.Output{{Amount: 1000, Key: outKey}},
			},
		},
	}

	data := p.ProcessBlock(block, privateView, map[types.Hex]types.KeyPair{keys.PublicSpend: keys}, noOwner)

	require.Len(t, data.InputsToAdd, 1)
	assert.Equal(t, keys.PublicSpend, data.InputsToAdd[0].PublicSpend)
	assert.Equal(t, uint64(1000), data.InputsToAdd[0].Input.Amount)
	require.Len(t, data.TxsToAdd, 1)
	assert.Equal(t, int64(1000), data.TxsToAdd[0].Transfers[keys.PublicSpend])
}

func TestProcessBlockIgnoresUnownedOutput(t *testing.T) {
	cfg := config.Default()
	p := NewBlockProcessor(kcrypto.Default{}, cfg)

	privateView := types.Hex("1111111111111111111111111111111111111111111111111111111111111111")
	keys := types.KeyPair{
		PublicSpend:  types.Hex("2222222222222222222222222222222222222222222222222222222222222222"),
		PrivateSpend: types.Hex("3333333333333333333333333333333333333333333333333333333333333333"),
	}
	txPub := types.Hex("4444444444444444444444444444444444444444444444444444444444444444")

	block := types.Block{
		Height: 5,
		Transactions: []types.BlockTransaction{
			{
				Hash:      "deadbeef",
				PublicKey: txPub,
				Outputs:   []types.Output{{Amount: 1000, Key: types.Hex("6666666666666666666666666666666666666666666666666666666666666666")}},
			},
		},
	}

	data := p.ProcessBlock(block, privateView, map[types.Hex]types.KeyPair{keys.PublicSpend: keys}, noOwner)
	assert.Len(t, data.InputsToAdd, 0)
	assert.Len(t, data.TxsToAdd, 0)
}

func TestProcessBlockDebitsSpentInput(t *testing.T) {
	cfg := config.Default()
	p := NewBlockProcessor(kcrypto.Default{}, cfg)

	privateView := types.Hex("1111111111111111111111111111111111111111111111111111111111111111")
	owner := types.Hex("2222222222222222222222222222222222222222222222222222222222222222")

	block := types.Block{
		Height: 9,
		Transactions: []types.BlockTransaction{
			{
				Hash:      "spendtx",
				PublicKey: types.Hex("5555555555555555555555555555555555555555555555555555555555555555"),
				KeyInputs: []types.KeyInput{{Amount: 500, KeyImage: "ki-known"}},
			},
		},
	}

	ownerOf := func(ki types.Hex) (types.Hex, bool) {
		if ki == "ki-known" {
			return owner, true
		}
		return "", false
	}

	data := p.ProcessBlock(block, privateView, nil, ownerOf)
	require.Len(t, data.TxsToAdd, 1)
	assert.Equal(t, int64(-500), data.TxsToAdd[0].Transfers[owner])
	require.Len(t, data.KeyImagesToMarkSpent, 1)
	assert.Equal(t, owner, data.KeyImagesToMarkSpent[0].PublicSpend)
}

func TestProcessBlockCreditsOwnedCoinbaseOutput(t *testing.T) {
	cfg := config.Default()
	cfg.ScanCoinbaseTransactions = true
	p := NewBlockProcessor(kcrypto.Default{}, cfg)

	privateView := types.Hex("1111111111111111111111111111111111111111111111111111111111111111")
	keys := types.KeyPair{
		PublicSpend:  types.Hex("2222222222222222222222222222222222222222222222222222222222222222"),
		PrivateSpend: types.Hex("3333333333333333333333333333333333333333333333333333333333333333"),
	}
	txPub := types.Hex("4444444444444444444444444444444444444444444444444444444444444444")

	derivation := kcrypto.Default{}.KeyDerivation(txPub, privateView)
	outKey := kcrypto.Default{}.PublicEphemeral(derivation, 0, keys.PublicSpend)

	block := types.Block{
		Height:    5,
		Timestamp: 1000,
		Coinbase: &types.BlockTransaction{
			Hash:      "coinbasehash",
			PublicKey: txPub,
			Outputs:   []types.Output{{Amount: 5000, Key: outKey}},
		},
	}

	data := p.ProcessBlock(block, privateView, map[types.Hex]types.KeyPair{keys.PublicSpend: keys}, noOwner)

	require.Len(t, data.InputsToAdd, 1)
	assert.Equal(t, keys.PublicSpend, data.InputsToAdd[0].PublicSpend)
	assert.Equal(t, uint64(5000), data.InputsToAdd[0].Input.Amount)
	require.Len(t, data.TxsToAdd, 1)
	assert.Equal(t, int64(5000), data.TxsToAdd[0].Transfers[keys.PublicSpend])
	assert.True(t, data.TxsToAdd[0].IsCoinbase)
	assert.Equal(t, uint64(0), data.TxsToAdd[0].Fee)
}

func TestProcessBlockSkipsCoinbaseWhenDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.ScanCoinbaseTransactions = false
	p := NewBlockProcessor(kcrypto.Default{}, cfg)

	privateView := types.Hex("1111111111111111111111111111111111111111111111111111111111111111")
	keys := types.KeyPair{
		PublicSpend:  types.Hex("2222222222222222222222222222222222222222222222222222222222222222"),
		PrivateSpend: types.Hex("3333333333333333333333333333333333333333333333333333333333333333"),
	}
	txPub := types.Hex("4444444444444444444444444444444444444444444444444444444444444444")

	derivation := kcrypto.Default{}.KeyDerivation(txPub, privateView)
	outKey := kcrypto.Default{}.PublicEphemeral(derivation, 0, keys.PublicSpend)

	block := types.Block{
		Height: 5,
		Coinbase: &types.BlockTransaction{
			Hash:      "coinbasehash",
			PublicKey: txPub,
			Outputs:   []types.Output{{Amount: 5000, Key: outKey}},
		},
	}

	data := p.ProcessBlock(block, privateView, map[types.Hex]types.KeyPair{keys.PublicSpend: keys}, noOwner)
	assert.Len(t, data.InputsToAdd, 0)
	assert.Len(t, data.TxsToAdd, 0)
}
