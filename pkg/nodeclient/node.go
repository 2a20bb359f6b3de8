// Package nodeclient is the unified remote-node contract (spec §4.2): one
// polymorphic Client abstracting a direct chain node and a pre-indexed
// cache service behind the same interface, with automatic protocol and
// transport discovery. Grounded on rivine's pkg/client.HTTPClient
// (status-code-checked GET/POST wrapping a root URL) and its
// BaseClient/LazyBaseClient split between "how to talk to a node" and
// "what to ask it" (pkg/client/baseclient.go), generalized here to a
// single Client whose underlying variant is a tagged union selected once
// at construction, exactly as spec §9's design notes prescribe.
package nodeclient

import (
	"context"
	"errors"
	"time"

	"github.com/kryptokrona/kryptokrona-wallet-backend-go/addresscodec"
	"github.com/kryptokrona/kryptokrona-wallet-backend-go/persist"
	"github.com/kryptokrona/kryptokrona-wallet-backend-go/types"
)

// Variant identifies which remote protocol a Client speaks.
type Variant int

const (
	// Auto probes the remote on first use and settles on CacheService or
	// ChainNode depending on what it advertises.
	Auto Variant = iota
	CacheService
	ChainNode
)

// ErrNotSupported is returned by operations a variant does not implement
// (spec §4.2: "The CacheService variant refuses" getGlobalIndexesForRange).
var ErrNotSupported = errors.New("nodeclient: operation not supported by this node variant")

// Client is the single contract the synchronizer talks to, regardless of
// which remote protocol backs it.
type Client struct {
	log    *persist.Logger
	codec  addresscodec.Codec
	host   string

	requestTimeout         time.Duration
	maxBodyResponseSize    uint64
	blocksPerDaemonRequest int

	variant   Variant
	transport *httpTransport
	probed    bool

	lastInfo types.NodeInfo
}

// Option configures a Client at construction time.
type Option func(*Client)

// WithLogger overrides the default no-op logger.
func WithLogger(log *persist.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithAddressCodec overrides the Client's default base58 codec. GetFee does
// not use it: the fee address is checked by the validateAddress function
// passed to GetFee.
func WithAddressCodec(codec addresscodec.Codec) Option {
	return func(c *Client) { c.codec = codec }
}

// WithVariant pins the client to a known variant, skipping auto-discovery.
func WithVariant(v Variant) Option {
	return func(c *Client) { c.variant = v }
}

// WithMaxBodyResponseSize overrides the default getBlocks back-pressure
// threshold.
func WithMaxBodyResponseSize(n uint64) Option {
	return func(c *Client) { c.maxBodyResponseSize = n }
}

// New creates a Client pointed at host ("ip:port" or "host:port", no
// scheme), defaulting to Auto variant discovery.
func New(host string, requestTimeout time.Duration, opts ...Option) *Client {
	c := &Client{
		log:                    persist.NewNopLogger("nodeclient"),
		codec:                  addresscodec.Default{},
		host:                   host,
		requestTimeout:         requestTimeout,
		maxBodyResponseSize:    50 * 1024 * 1024,
		blocksPerDaemonRequest: 100,
		variant:                Auto,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ensureTransport performs the HTTPS-then-HTTP probe on first use and
// settles on a scheme; subsequent calls reuse the chosen transport (spec
// §4.2: "On first successful getInfo, persist the chosen transport").
func (c *Client) ensureTransport(ctx context.Context) (*httpTransport, error) {
	if c.probed {
		return c.transport, nil
	}

	for _, scheme := range []string{"https", "http"} {
		t := newHTTPTransport(c.host, scheme, c.requestTimeout)
		var resp infoResponse
		err := t.get(ctx, "/info", &resp)
		if err != nil {
			continue
		}
		if resp.Height == nil {
			// Parses, but semantically empty: fall through to plain HTTP.
			continue
		}
		c.transport = t
		c.probed = true
		if resp.IsCacheAPI != nil && *resp.IsCacheAPI {
			if c.variant == Auto {
				c.variant = CacheService
			}
		} else if c.variant == Auto {
			c.variant = ChainNode
		}
		return t, nil
	}
	return nil, errors.New("nodeclient: unable to reach remote node over https or http")
}

// GetInfo reports the remote node's height, network height, peer counts
// and difficulty (spec §4.2). Failures log at Info and leave lastInfo
// unchanged, per §7's I/O-error taxonomy.
func (c *Client) GetInfo(ctx context.Context) (types.NodeInfo, error) {
	t, err := c.ensureTransport(ctx)
	if err != nil {
		c.log.Info("getInfo: ", err)
		return c.lastInfo, err
	}

	var resp infoResponse
	if err := t.get(ctx, "/info", &resp); err != nil {
		c.log.Info("getInfo: ", err)
		return c.lastInfo, err
	}
	if resp.Height == nil {
		err := errors.New("nodeclient: /info response missing height")
		c.log.Info("getInfo: ", err)
		return c.lastInfo, err
	}

	networkHeight := resp.NetworkHeight
	if networkHeight > 0 {
		// The remote protocol reports networkHeight off-by-one high.
		networkHeight--
	}

	info := types.NodeInfo{
		Height:              *resp.Height,
		NetworkHeight:       networkHeight,
		IncomingConnections: resp.IncomingConnections,
		OutgoingConnections: resp.OutgoingConnections,
		Difficulty:          resp.Difficulty,
		IsCacheAPI:          resp.IsCacheAPI != nil && *resp.IsCacheAPI,
	}
	c.lastInfo = info
	return info, nil
}

// Hashrate computes the network hashrate from the last known difficulty
// and the configured target block time, per spec §4.2.
func Hashrate(difficulty uint64, targetBlockSeconds float64) float64 {
	if targetBlockSeconds <= 0 {
		return 0
	}
	return float64(difficulty) / targetBlockSeconds
}

// GetFee fetches the remote's transaction fee policy, discarding it with a
// Warning log if the address fails validation (spec §4.2). validateAddress
// should reject integrated addresses.
func (c *Client) GetFee(ctx context.Context, validateAddress func(address string) bool) (types.FeeInfo, bool) {
	t, err := c.ensureTransport(ctx)
	if err != nil {
		c.log.Info("getFee: ", err)
		return types.FeeInfo{}, false
	}

	var resp feeResponse
	if err := t.get(ctx, "/fee", &resp); err != nil {
		c.log.Info("getFee: ", err)
		return types.FeeInfo{}, false
	}
	if resp.Address == "" || resp.Amount == 0 {
		return types.FeeInfo{}, false
	}
	if validateAddress != nil && !validateAddress(resp.Address) {
		c.log.Warn("getFee: node-provided fee address failed validation, discarding")
		return types.FeeInfo{}, false
	}
	return types.FeeInfo{Address: resp.Address, Amount: resp.Amount}, true
}

// SendRawTransaction submits a raw transaction hex blob, returning true iff
// the remote acknowledges status=="OK" (spec §4.2).
func (c *Client) SendRawTransaction(ctx context.Context, rawHex string) (bool, error) {
	t, err := c.ensureTransport(ctx)
	if err != nil {
		return false, err
	}
	var resp sendRawTransactionResponse
	if err := t.post(ctx, "/sendrawtransaction", sendRawTransactionRequest{TxAsHex: rawHex}, &resp); err != nil {
		return false, err
	}
	return resp.Status == "OK", nil
}

// GetTransactionStatus reports which of the given hashes are unknown to
// the remote node.
func (c *Client) GetTransactionStatus(ctx context.Context, hashes []types.Hex) ([]types.Hex, error) {
	t, err := c.ensureTransport(ctx)
	if err != nil {
		return nil, err
	}
	req := transactionsStatusRequest{TransactionHashes: hexSliceToString(hashes)}
	var resp transactionsStatusResponse
	if err := t.post(ctx, "/get_transactions_status", req, &resp); err != nil {
		return nil, err
	}
	return stringSliceToHex(resp.TransactionsUnknown), nil
}

// GetGlobalIndexesForRange is only supported by the ChainNode variant; the
// CacheService variant embeds this information directly in getBlocks
// (spec §4.2).
func (c *Client) GetGlobalIndexesForRange(ctx context.Context, start, end uint64) (map[types.Hex][]uint64, error) {
	if c.variant == CacheService {
		return nil, ErrNotSupported
	}
	t, err := c.ensureTransport(ctx)
	if err != nil {
		return nil, err
	}
	var resp globalIndexesResponse
	if err := t.post(ctx, "/get_global_indexes_for_range", globalIndexesRequest{StartHeight: start, EndHeight: end}, &resp); err != nil {
		return nil, err
	}
	out := make(map[types.Hex][]uint64, len(resp.Indexes))
	for _, entry := range resp.Indexes {
		out[types.Hex(entry.Key)] = entry.Value
	}
	return out, nil
}

// GetRandomOutputs returns, per amount, an ordered-by-global-index list of
// decoy outputs, for ring construction (spec §4.2).
func (c *Client) GetRandomOutputs(ctx context.Context, amounts []uint64, mixin uint64) (map[uint64][]types.RandomOutput, error) {
	t, err := c.ensureTransport(ctx)
	if err != nil {
		return nil, err
	}

	var raw []randomOutputsResponseEntry
	switch c.variant {
	case CacheService:
		if err := t.post(ctx, "/randomOutputs", randomOutputsRequestCache{Amounts: amounts, Mixin: mixin}, &raw); err != nil {
			return nil, err
		}
	default: // ChainNode or unresolved Auto defaults to chain wire shape
		if err := t.post(ctx, "/getrandom_outs", randomOutputsRequestChain{Amounts: amounts, OutsCount: mixin}, &raw); err != nil {
			return nil, err
		}
	}

	out := make(map[uint64][]types.RandomOutput, len(raw))
	for _, entry := range raw {
		outs := make([]types.RandomOutput, 0, len(entry.Outs))
		for _, o := range entry.Outs {
			outs = append(outs, types.RandomOutput{GlobalIndex: o.GlobalAmountIndex, OneTimeKey: types.Hex(o.OutKey)})
		}
		// Required ordering by global index to avoid leaking the position
		// of the real mix input.
		sortRandomOutputs(outs)
		out[entry.Amount] = outs
	}
	return out, nil
}

// GetBlocks fetches the next batch of blocks after the synchronizer's
// current checkpoints, applying the cache variant's body-size
// back-pressure (spec §4.2). A returned topBlock lets the scheduler
// re-align its target height when the node reports it is synced.
func (c *Client) GetBlocks(ctx context.Context, checkpoints []string, startHeight, startTimestamp uint64, count int) (blocks []types.Block, topBlock *types.Block, err error) {
	t, err := c.ensureTransport(ctx)
	if err != nil {
		return nil, nil, err
	}

	for {
		req := walletSyncDataRequest{
			BlockHashCheckpoints:    checkpoints,
			StartHeight:             startHeight,
			StartTimestamp:          startTimestamp,
			BlockCount:              count,
			SkipCoinbaseTransactions: false,
		}
		var resp walletSyncDataResponse
		size, err := t.postMeasured(ctx, "/getwalletsyncdata", req, &resp)
		if err != nil {
			return nil, nil, err
		}
		if size > c.maxBodyResponseSize && count > 1 {
			count /= 2
			continue
		}

		blocks = make([]types.Block, 0, len(resp.Items))
		for _, b := range resp.Items {
			blocks = append(blocks, convertBlock(b))
		}
		if resp.TopBlock != nil {
			top := convertBlock(*resp.TopBlock)
			topBlock = &top
		}
		return blocks, topBlock, nil
	}
}

func convertBlock(b wireBlock) types.Block {
	out := types.Block{
		Height:       b.Height,
		Hash:         types.Hex(b.Hash),
		PreviousHash: types.Hex(b.PreviousHash),
		Timestamp:    b.Timestamp,
	}
	if b.Coinbase != nil {
		tx := convertTransaction(*b.Coinbase)
		out.Coinbase = &tx
	}
	out.Transactions = make([]types.BlockTransaction, 0, len(b.Transactions))
	for _, t := range b.Transactions {
		out.Transactions = append(out.Transactions, convertTransaction(t))
	}
	return out
}

func convertTransaction(t wireTransaction) types.BlockTransaction {
	outputs := make([]types.Output, 0, len(t.Outputs))
	for _, o := range t.Outputs {
		outputs = append(outputs, types.Output{Amount: o.Amount, Key: types.Hex(o.Key), GlobalOutputIndex: o.GlobalOutputIndex})
	}
	inputs := make([]types.KeyInput, 0, len(t.KeyInputs))
	for _, i := range t.KeyInputs {
		inputs = append(inputs, types.KeyInput{Amount: i.Amount, KeyImage: types.Hex(i.KeyImage)})
	}
	return types.BlockTransaction{
		Hash:       types.Hex(t.Hash),
		PublicKey:  types.Hex(t.PublicKey),
		PaymentID:  t.PaymentID,
		UnlockTime: t.UnlockTime,
		Outputs:    outputs,
		KeyInputs:  inputs,
	}
}

func hexSliceToString(in []types.Hex) []string {
	out := make([]string, len(in))
	for i, h := range in {
		out[i] = string(h)
	}
	return out
}

func stringSliceToHex(in []string) []types.Hex {
	out := make([]types.Hex, len(in))
	for i, s := range in {
		out[i] = types.Hex(s)
	}
	return out
}

func sortRandomOutputs(outs []types.RandomOutput) {
	for i := 1; i < len(outs); i++ {
		for j := i; j > 0 && outs[j-1].GlobalIndex > outs[j].GlobalIndex; j-- {
			outs[j-1], outs[j] = outs[j], outs[j-1]
		}
	}
}

