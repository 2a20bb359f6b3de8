package wallet

import (
	"context"
	"sync/atomic"

	"github.com/kryptokrona/kryptokrona-wallet-backend-go/config"
	"github.com/kryptokrona/kryptokrona-wallet-backend-go/pkg/nodeclient"
	"github.com/kryptokrona/kryptokrona-wallet-backend-go/types"
)

// TransactionBuilder is the external collaborator that turns selected
// inputs, destinations, and decoy outputs into a signed raw transaction
// (spec §1's Non-goals: the builder itself, beyond input selection and the
// node handshake, is out of scope for this core).
type TransactionBuilder interface {
	Build(ctx context.Context, req BuildRequest) (rawHex string, tx types.Transaction, err error)
}

// BuildRequest carries everything a TransactionBuilder needs to assemble
// and sign a transaction.
type BuildRequest struct {
	Inputs       []types.OwnedInput
	Destinations []types.Destination
	ChangeAddress string
	Fee          uint64
	Mixin        uint64
	PaymentID    string
	DecoyOutputs map[uint64][]types.RandomOutput
	Fusion       bool
}

// TransferEngine implements sendBasic/sendAdvanced/sendFusion* (spec §4.7):
// input selection, fee/mixin validation, the random-output handshake with
// the node, and handoff to the external TransactionBuilder.
type TransferEngine struct {
	store      *SubWalletStore
	node       *nodeclient.Client
	validators *Validators
	builder    TransactionBuilder
	cfg        config.Config

	transacting int32 // atomic flag: exactly one send/fusion in flight
}

// NewTransferEngine wires a TransferEngine to its collaborators.
func NewTransferEngine(store *SubWalletStore, node *nodeclient.Client, validators *Validators, builder TransactionBuilder, cfg config.Config) *TransferEngine {
	return &TransferEngine{store: store, node: node, validators: validators, builder: builder, cfg: cfg}
}

// beginTransacting atomically claims the in-flight flag (spec §4.7, §5:
// "send* serializes through the currently transacting flag").
func (e *TransferEngine) beginTransacting() bool {
	return atomic.CompareAndSwapInt32(&e.transacting, 0, 1)
}

func (e *TransferEngine) endTransacting() {
	atomic.StoreInt32(&e.transacting, 0)
}

// SendBasic sends amount to a single destination using the default mixin
// and minimum fee (spec §4.7).
func (e *TransferEngine) SendBasic(ctx context.Context, currentHeight uint64, destination string, amount uint64, paymentID string) (types.Hex, *WalletError) {
	var mixin uint64
	for _, limit := range e.cfg.MixinLimits {
		if currentHeight >= limit.Height {
			mixin = limit.DefaultMixin
		}
	}
	return e.SendAdvanced(ctx, currentHeight, []types.Destination{{Address: destination, Amount: amount}}, mixin, e.cfg.MinimumFee, paymentID, nil, "")
}

// SendAdvanced is the full spend flow (spec §4.7 steps 1-5).
func (e *TransferEngine) SendAdvanced(ctx context.Context, currentHeight uint64, destinations []types.Destination, mixin, fee uint64, paymentID string, sources []types.Hex, change string) (types.Hex, *WalletError) {
	if !e.beginTransacting() {
		return "", newErr(TRANSACTION_IN_PROGRESS, "a transaction is already in progress")
	}
	defer e.endTransacting()

	if err := e.validators.ValidateDestinations(destinations, paymentID); err != nil {
		return "", err
	}
	if err := e.validators.ValidatePaymentID(paymentID); err != nil {
		return "", err
	}
	if err := e.validators.ValidateFee(fee, false); err != nil {
		return "", err
	}
	if err := e.validators.ValidateMixin(mixin, currentHeight); err != nil {
		return "", err
	}

	var amount uint64
	for _, d := range destinations {
		amount += d.Amount
	}

	unlocked, _ := e.store.GetBalance(currentHeight, sources)
	if err := e.validators.ValidateSufficientBalance(unlocked, amount, fee); err != nil {
		return "", err
	}

	inputs, total, ok := e.store.GetTransactionInputsForAmount(amount+fee, sources, currentHeight)
	if !ok {
		return "", newErr(NOT_ENOUGH_BALANCE, "could not assemble sufficient unlocked inputs")
	}
	changeAmount := total - amount - fee

	amounts := make([]uint64, 0, len(destinations)+1)
	for _, d := range destinations {
		amounts = append(amounts, d.Amount)
	}
	if changeAmount > 0 {
		amounts = append(amounts, changeAmount)
	}

	decoys, err := e.node.GetRandomOutputs(ctx, amounts, mixin+1)
	if err != nil {
		return "", newErr(NOT_ENOUGH_BALANCE, "could not fetch decoy outputs: "+err.Error())
	}

	rawHex, tx, buildErr := e.builder.Build(ctx, BuildRequest{
		Inputs:        inputs,
		Destinations:  destinations,
		ChangeAddress: change,
		Fee:           fee,
		Mixin:         mixin,
		PaymentID:     paymentID,
		DecoyOutputs:  decoys,
	})
	if buildErr != nil {
		return "", newErr(ADDRESS_NOT_VALID, "transaction build failed: "+buildErr.Error())
	}

	for _, in := range inputs {
		e.store.MarkInputAsLocked(in.PublicSpend, in.Input.KeyImage)
	}
	e.store.AddUnconfirmedTransaction(tx)

	sent, sendErr := e.node.SendRawTransaction(ctx, rawHex)
	if sendErr != nil || !sent {
		for _, in := range inputs {
			e.store.UnlockInput(in.PublicSpend, in.Input.KeyImage)
		}
		e.store.RemoveCancelledTransaction(tx.Hash)
		return "", newErr(ADDRESS_NOT_VALID, "node rejected the transaction")
	}

	return tx.Hash, nil
}

// SendFusionBasic combines small inputs into one, at zero fee, using the
// default mixin (spec §4.7).
func (e *TransferEngine) SendFusionBasic(ctx context.Context, currentHeight uint64, destination string) (types.Hex, *WalletError) {
	var mixin uint64
	for _, limit := range e.cfg.MixinLimits {
		if currentHeight >= limit.Height {
			mixin = limit.DefaultMixin
		}
	}
	return e.SendFusionAdvanced(ctx, currentHeight, destination, mixin, nil)
}

// SendFusionAdvanced selects up to maxFusionInputs spendable inputs (see
// selectFusionInputs) and sends them back to destination as a single
// zero-fee transaction (spec §4.7).
func (e *TransferEngine) SendFusionAdvanced(ctx context.Context, currentHeight uint64, destination string, mixin uint64, sources []types.Hex) (types.Hex, *WalletError) {
	if !e.beginTransacting() {
		return "", newErr(TRANSACTION_IN_PROGRESS, "a transaction is already in progress")
	}
	defer e.endTransacting()

	if err := e.validators.ValidateAddress(destination, false); err != nil {
		return "", err
	}
	if err := e.validators.ValidateFee(0, true); err != nil {
		return "", err
	}
	if err := e.validators.ValidateMixin(mixin, currentHeight); err != nil {
		return "", err
	}

	inputs := e.selectFusionInputs(currentHeight, sources)
	if len(inputs) < 2 {
		return "", newErr(NOT_ENOUGH_BALANCE, "not enough suitable inputs for a fusion transaction")
	}

	var total uint64
	for _, in := range inputs {
		total += in.Input.Amount
	}

	decoys, err := e.node.GetRandomOutputs(ctx, []uint64{total}, mixin+1)
	if err != nil {
		return "", newErr(NOT_ENOUGH_BALANCE, "could not fetch decoy outputs: "+err.Error())
	}

	rawHex, tx, buildErr := e.builder.Build(ctx, BuildRequest{
		Inputs:       inputs,
		Destinations: []types.Destination{{Address: destination, Amount: total}},
		Fee:          0,
		Mixin:        mixin,
		DecoyOutputs: decoys,
		Fusion:       true,
	})
	if buildErr != nil {
		return "", newErr(ADDRESS_NOT_VALID, "fusion build failed: "+buildErr.Error())
	}

	for _, in := range inputs {
		e.store.MarkInputAsLocked(in.PublicSpend, in.Input.KeyImage)
	}
	e.store.AddUnconfirmedTransaction(tx)

	sent, sendErr := e.node.SendRawTransaction(ctx, rawHex)
	if sendErr != nil || !sent {
		for _, in := range inputs {
			e.store.UnlockInput(in.PublicSpend, in.Input.KeyImage)
		}
		e.store.RemoveCancelledTransaction(tx.Hash)
		return "", newErr(ADDRESS_NOT_VALID, "node rejected the fusion transaction")
	}

	return tx.Hash, nil
}

// selectFusionInputs picks up to maxFusionInputs spendable inputs in the
// random order GetTransactionInputsForAmount returns them. It does not
// prefer small inputs and does not compare the resulting output-denomination
// count with the input count.
func (e *TransferEngine) selectFusionInputs(currentHeight uint64, sources []types.Hex) []types.OwnedInput {
	unlocked, _ := e.store.GetBalance(currentHeight, sources)
	if unlocked == 0 {
		return nil
	}
	inputs, _, ok := e.store.GetTransactionInputsForAmount(unlocked, sources, currentHeight)
	if !ok {
		return nil
	}
	if len(inputs) > e.cfg.MaxFusionInputs {
		inputs = inputs[:e.cfg.MaxFusionInputs]
	}
	return inputs
}
