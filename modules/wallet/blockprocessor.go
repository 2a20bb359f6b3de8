package wallet

import (
	"github.com/kryptokrona/kryptokrona-wallet-backend-go/config"
	kcrypto "github.com/kryptokrona/kryptokrona-wallet-backend-go/crypto"
	"github.com/kryptokrona/kryptokrona-wallet-backend-go/types"
)

// BlockProcessor decrypts block outputs against the wallet's view key,
// classifies inputs, and produces a TransactionData batch per block (spec
// §4.4). It holds no mutable state of its own; SubWalletStore.ApplyTransactionData is
// where classification results take effect, matching rivine's separation
// between a stateless consensus-change handler and the persistent wallet
// state it feeds (the deleted update.go).
type BlockProcessor struct {
	primitives kcrypto.Primitives
	cfg        config.Config
}

// NewBlockProcessor builds a BlockProcessor using the given crypto
// primitives (built-in default if nil) and configuration.
func NewBlockProcessor(primitives kcrypto.Primitives, cfg config.Config) *BlockProcessor {
	if primitives == nil {
		primitives = kcrypto.Default{}
	}
	return &BlockProcessor{primitives: primitives, cfg: cfg}
}

// KeyImageOwner resolves a previously-seen key image to the subwallet that
// owns it, consulting the store's index (spec §4.4 step 4).
type KeyImageOwner func(keyImage types.Hex) (publicSpend types.Hex, found bool)

// ProcessBlock classifies every transaction in block against privateView
// and the given key pairs (spec §4.4 steps 1-6). ownerOf resolves key
// images spent by this block back to the subwallet that previously
// received them, so the outgoing transfer can be debited from the right
// subwallet in the same pass that credits incoming transfers.
func (p *BlockProcessor) ProcessBlock(block types.Block, privateView types.Hex, keyPairs map[types.Hex]types.KeyPair, ownerOf KeyImageOwner) types.TransactionData {
	var data types.TransactionData

	if block.Coinbase != nil && p.cfg.ScanCoinbaseTransactions {
		p.classifyCoinbase(block.Height, block.Timestamp, *block.Coinbase, privateView, keyPairs, &data)
	}

	for _, btx := range block.Transactions {
		p.processTransaction(block.Height, block.Timestamp, btx, privateView, keyPairs, ownerOf, &data)
	}

	return data
}

// classifyCoinbase decrypts a block's miner transaction the same way an
// ordinary transaction's outputs are decrypted (spec §4.4 item 1): it
// carries no key inputs and no fee, so any owned output is pure income.
func (p *BlockProcessor) classifyCoinbase(height, timestamp uint64, btx types.BlockTransaction, privateView types.Hex, keyPairs map[types.Hex]types.KeyPair, data *types.TransactionData) {
	derivation := p.primitives.KeyDerivation(btx.PublicKey, privateView)
	transfers, _ := p.classifyOutputs(height, btx, derivation, keyPairs, data)
	if len(transfers) == 0 {
		return
	}

	data.TxsToAdd = append(data.TxsToAdd, types.Transaction{
		Transfers:   transfers,
		Hash:        btx.Hash,
		Fee:         0,
		BlockHeight: height,
		Timestamp:   timestamp,
		PaymentID:   btx.PaymentID,
		UnlockTime:  btx.UnlockTime,
		IsCoinbase:  true,
	})
}

// classifyOutputs underives and credits every output in btx that belongs
// to one of keyPairs, staging the resulting TransactionInputs on data and
// returning the per-subwallet transfer credits plus the output total, for
// fee computation by callers that also track spent key inputs.
func (p *BlockProcessor) classifyOutputs(height uint64, btx types.BlockTransaction, derivation types.Hex, keyPairs map[types.Hex]types.KeyPair, data *types.TransactionData) (transfers map[types.Hex]int64, outputSum uint64) {
	transfers = make(map[types.Hex]int64)

	for i, out := range btx.Outputs {
		outputSum += out.Amount
		publicSpend := p.primitives.UnderivePublicKey(derivation, uint64(i), out.Key)
		if publicSpend.IsNull() {
			continue
		}
		keys, known := keyPairs[publicSpend]
		if !known {
			continue
		}

		keyImage := kcrypto.DeriveKeyImage(p.primitives, derivation, uint64(i), keys)
		input := types.TransactionInput{
			KeyImage:          keyImage,
			Amount:            out.Amount,
			BlockHeight:       height,
			TxPublicKey:       btx.PublicKey,
			IndexInTx:         i,
			GlobalOutputIndex: out.GlobalOutputIndex,
			OneTimePublicKey:  out.Key,
			UnlockTime:        btx.UnlockTime,
			ParentTxHash:      btx.Hash,
		}
		data.InputsToAdd = append(data.InputsToAdd, types.OwnedInput{PublicSpend: publicSpend, Input: input})
		transfers[publicSpend] += int64(out.Amount)
	}

	return transfers, outputSum
}

func (p *BlockProcessor) processTransaction(height, timestamp uint64, btx types.BlockTransaction, privateView types.Hex, keyPairs map[types.Hex]types.KeyPair, ownerOf KeyImageOwner, data *types.TransactionData) {
	derivation := p.primitives.KeyDerivation(btx.PublicKey, privateView)

	transfers, outputSum := p.classifyOutputs(height, btx, derivation, keyPairs, data)

	var inputSum uint64
	for _, ki := range btx.KeyInputs {
		inputSum += ki.Amount
		owner, found := ownerOf(ki.KeyImage)
		if !found {
			continue // not one of ours
		}
		transfers[owner] -= int64(ki.Amount)
		data.KeyImagesToMarkSpent = append(data.KeyImagesToMarkSpent, types.SpentInputEvent{
			PublicSpend: owner,
			KeyImage:    ki.KeyImage,
			SpendHeight: height,
			Amount:      ki.Amount,
		})
	}

	if len(transfers) == 0 {
		return
	}

	var fee uint64
	if inputSum > outputSum {
		fee = inputSum - outputSum
	}

	data.TxsToAdd = append(data.TxsToAdd, types.Transaction{
		Transfers:   transfers,
		Hash:        btx.Hash,
		Fee:         fee,
		BlockHeight: height,
		Timestamp:   timestamp,
		PaymentID:   btx.PaymentID,
		UnlockTime:  btx.UnlockTime,
		IsCoinbase:  false,
	})
}
