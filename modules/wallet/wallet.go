// Package wallet implements the four tightly-coupled subsystems spec.md
// calls "the core" of a CryptoNote-family light-client wallet backend: the
// subwallet store, the block processor, the scheduler, and the transfer
// engine, wired together by the Wallet type in this file. It is grounded
// throughout on rivine's modules/wallet package (the RWMutex-guarded
// aggregate, threadgroup-based goroutine lifecycle, persist.Logger
// structured logging) generalized from an account/UTXO model to
// CryptoNote's view-key/spend-key/key-image model.
package wallet

import (
	"context"
	"fmt"

	"github.com/kryptokrona/kryptokrona-wallet-backend-go/addresscodec"
	"github.com/kryptokrona/kryptokrona-wallet-backend-go/config"
	kcrypto "github.com/kryptokrona/kryptokrona-wallet-backend-go/crypto"
	"github.com/kryptokrona/kryptokrona-wallet-backend-go/persist"
	"github.com/kryptokrona/kryptokrona-wallet-backend-go/pkg/nodeclient"
	"github.com/kryptokrona/kryptokrona-wallet-backend-go/syncstatus"
	"github.com/kryptokrona/kryptokrona-wallet-backend-go/types"
	"github.com/kryptokrona/kryptokrona-wallet-backend-go/walletevents"
)

// Wallet is the top-level orchestrator: it owns the subwallet store, talks
// to the node client on the scheduler's cadences, feeds block results
// through the block processor into the store, and emits wallet events.
type Wallet struct {
	cfg    config.Config
	log    *persist.Logger
	events *walletevents.Emitter

	node       *nodeclient.Client
	store      *SubWalletStore
	processor  *BlockProcessor
	validators *Validators
	transfer   *TransferEngine
	scheduler  *Scheduler
	sync       syncstatus.Status

	privateView types.Hex

	lastKnownNetworkHeight uint64
}

// Options configures optional collaborators when constructing a Wallet.
type Options struct {
	Primitives kcrypto.Primitives
	Codec      addresscodec.Codec
	Logger     *persist.Logger
	Builder    TransactionBuilder
}

// New constructs a Wallet around a single primary subwallet keypair and a
// private view key shared across the container (spec §3). privateSpend may
// be the null key for a view-only wallet.
func New(node *nodeclient.Client, cfg config.Config, privateView types.Hex, primary types.KeyPair, scanStartHeight, scanStartTimestamp uint64, opts Options) *Wallet {
	if opts.Logger == nil {
		opts.Logger = persist.NewNopLogger("wallet")
	}
	if opts.Codec == nil {
		opts.Codec = addresscodec.Default{}
	}

	store := NewSubWalletStore()
	store.AddSubWallet(NewSubWallet(primary, scanStartHeight, scanStartTimestamp, true))

	validators := NewValidators(cfg, opts.Codec)
	processor := NewBlockProcessor(opts.Primitives, cfg)

	w := &Wallet{
		cfg:         cfg,
		log:         opts.Logger,
		events:      walletevents.New(),
		node:        node,
		store:       store,
		processor:   processor,
		validators:  validators,
		privateView: privateView,
	}

	if opts.Builder != nil {
		w.transfer = NewTransferEngine(store, node, validators, opts.Builder, cfg)
	}

	w.scheduler = NewScheduler(w.syncTick, w.nodeInfoTick, w.reconcileTick,
		cfg.SyncThreadInterval, cfg.DaemonUpdateInterval, cfg.LockedTransactionsCheckInterval, opts.Logger)

	return w
}

// Events returns the wallet's event emitter, for registering listeners.
func (w *Wallet) Events() *walletevents.Emitter {
	return w.events
}

// AddSubWallet registers an additional subwallet in the store.
func (w *Wallet) AddSubWallet(keys types.KeyPair, scanStartHeight, scanStartTimestamp uint64) {
	w.store.AddSubWallet(NewSubWallet(keys, scanStartHeight, scanStartTimestamp, false))
}

// Start begins the scheduler's three metronomes.
func (w *Wallet) Start() {
	w.scheduler.Start()
}

// Stop awaits any in-flight tick and halts future ones (spec §5, §8 S6).
func (w *Wallet) Stop() {
	w.scheduler.Stop()
}

// keyPairs snapshots every known subwallet's keypair, for the block
// processor.
func (w *Wallet) keyPairs() map[types.Hex]types.KeyPair {
	out := make(map[types.Hex]types.KeyPair)
	for pub := range w.store.PublicSpendKeys() {
		if sw, ok := w.store.SubWallet(pub); ok {
			out[pub] = sw.KeyPair
		}
	}
	return out
}

// syncTick fetches up to blocksPerTick blocks and applies them to the
// store, in ascending height order (spec §4.6, §5's ordering guarantee).
func (w *Wallet) syncTick() {
	ctx, cancel := context.WithTimeout(context.Background(), w.cfg.RequestTimeout)
	defer cancel()

	checkpoints := w.sync.CheckpointsForRequest()
	startHeight, startTimestamp := w.scanPosition()

	blocks, topBlock, err := w.node.GetBlocks(ctx, checkpoints, startHeight, startTimestamp, w.cfg.BlocksPerTick)
	if err != nil {
		w.log.Info("sync tick: getBlocks failed: ", err)
		return
	}

	keyPairs := w.keyPairs()
	for _, block := range blocks {
		w.applyBlock(block, keyPairs)
	}

	if topBlock != nil {
		w.lastKnownNetworkHeight = topBlock.Height
	}
}

// scanPosition reports where syncTick should resume from: the sync
// window's own last-known height once it has one, otherwise the primary
// subwallet's scan-start position (spec §3's "resume from known
// height/timestamp").
func (w *Wallet) scanPosition() (startHeight, startTimestamp uint64) {
	if height := w.sync.LastKnownHeight(); height > 0 {
		return height, 0
	}
	if sw, ok := w.store.PrimarySubWallet(); ok {
		return sw.ScanStartHeight, sw.ScanStartTimestamp
	}
	return 0, 0
}

// applyBlock handles fork detection, then classification and storage of
// one block (spec §4.4).
func (w *Wallet) applyBlock(block types.Block, keyPairs map[types.Hex]types.KeyPair) {
	if topHash, ok := w.sync.TopHash(); ok && block.PreviousHash != types.Hex(topHash) {
		forkHeight, found := w.sync.ForkHeight(string(block.PreviousHash))
		if !found {
			// Deeper than the window: fall back to the last checkpoint: the
			// next getBlocks call already carries checkpoints, so simply
			// rewinding to the block's own height lets the node resend.
			forkHeight = block.Height
		}
		w.store.RemoveForkedTransactions(forkHeight)
		w.sync.Rewind(forkHeight)
	}

	data := w.processor.ProcessBlock(block, w.privateView, keyPairs, w.store.GetKeyImageOwner)
	w.store.ApplyTransactionData(data)
	w.sync.StoreBlockHash(block.Height, string(block.Hash))
	w.anchorScanPosition(block.Height)

	for _, tx := range data.TxsToAdd {
		w.emitTransactionEvents(tx)
	}

	w.emitSyncState()
}

// anchorScanPosition implements the timestamp anchor (spec §4.4): once the
// first block has been processed, every subwallet that still carries a
// nonzero scanStartTimestamp has it cleared and its scanStartHeight pinned
// to the height just observed, so a
// later resume (after a restart, not just mid-run) uses height only.
func (w *Wallet) anchorScanPosition(height uint64) {
	for pub := range w.store.PublicSpendKeys() {
		sw, ok := w.store.SubWallet(pub)
		if !ok || sw.ScanStartTimestamp == 0 {
			continue
		}
		sw.ScanStartTimestamp = 0
		sw.ScanStartHeight = height
	}
}

func (w *Wallet) emitTransactionEvents(tx types.Transaction) {
	w.events.Emit(walletevents.Transaction, tx)
	switch {
	case tx.IsFusion():
		w.events.Emit(walletevents.FusionTx, tx)
	case tx.TotalAmount() < 0:
		w.events.Emit(walletevents.OutgoingTx, tx)
	default:
		w.events.Emit(walletevents.IncomingTx, tx)
	}
}

func (w *Wallet) emitSyncState() {
	walletHeight := w.sync.LastKnownHeight()
	networkHeight := w.lastKnownNetworkHeight
	synced := networkHeight == 0 || walletHeight >= networkHeight
	w.events.EmitSyncState(synced, walletHeight, networkHeight)
}

// nodeInfoTick refreshes the remote node's reported height and difficulty
// (spec §4.6).
func (w *Wallet) nodeInfoTick() {
	ctx, cancel := context.WithTimeout(context.Background(), w.cfg.RequestTimeout)
	defer cancel()

	info, err := w.node.GetInfo(ctx)
	if err != nil {
		w.log.Info("node info tick: ", err)
		return
	}
	w.lastKnownNetworkHeight = info.NetworkHeight
	w.emitSyncState()
}

// reconcileTick checks locked (unconfirmed) transactions against the node
// and drops any the node no longer knows about (spec §4.6).
func (w *Wallet) reconcileTick() {
	ctx, cancel := context.WithTimeout(context.Background(), w.cfg.RequestTimeout)
	defer cancel()

	pending := w.store.GetTransactions()
	var hashes []types.Hex
	for _, tx := range pending {
		if tx.Unconfirmed() {
			hashes = append(hashes, tx.Hash)
		}
	}
	if len(hashes) == 0 {
		return
	}

	unknown, err := w.node.GetTransactionStatus(ctx, hashes)
	if err != nil {
		w.log.Info("reconcile tick: ", err)
		return
	}
	for _, hash := range unknown {
		w.store.RemoveCancelledTransaction(hash)
	}
}

// GetBalance reports unlocked and locked balance across every subwallet.
func (w *Wallet) GetBalance(currentHeight uint64) (unlocked, locked uint64) {
	return w.store.GetBalance(currentHeight, nil)
}

// GetTransactions returns transaction history newest-first.
func (w *Wallet) GetTransactions() []types.Transaction {
	return w.store.GetTransactions()
}

// SendBasic delegates to the transfer engine.
func (w *Wallet) SendBasic(ctx context.Context, currentHeight uint64, destination string, amount uint64, paymentID string) (types.Hex, *WalletError) {
	if w.transfer == nil {
		return "", newErr(ADDRESS_NOT_VALID, "no transaction builder configured")
	}
	return w.transfer.SendBasic(ctx, currentHeight, destination, amount, paymentID)
}

// GetNodeFee returns the remote node's advertised fee policy, if any.
func (w *Wallet) GetNodeFee(ctx context.Context) (types.FeeInfo, bool) {
	return w.node.GetFee(ctx, func(address string) bool {
		return w.validators.ValidateAddress(address, false) == nil
	})
}

// GetWalletHeight reports the height the store has synced to.
func (w *Wallet) GetWalletHeight() uint64 {
	return w.sync.LastKnownHeight()
}

// GetSyncStatusText renders a human-readable sync progress string.
func (w *Wallet) GetSyncStatusText() string {
	height := w.sync.LastKnownHeight()
	if w.lastKnownNetworkHeight == 0 {
		return fmt.Sprintf("%d", height)
	}
	return fmt.Sprintf("%d / %d", height, w.lastKnownNetworkHeight)
}

// Reset clears all synced state and rewinds to the given height, for a
// rescan.
func (w *Wallet) Reset(scanHeight, scanTimestamp uint64) {
	w.store.RemoveForkedTransactions(0)
	w.sync.Rewind(0)
	for pub := range w.store.PublicSpendKeys() {
		if sw, ok := w.store.SubWallet(pub); ok {
			sw.ScanStartHeight = scanHeight
			sw.ScanStartTimestamp = scanTimestamp
		}
	}
}
