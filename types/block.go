package types

// Block is a decoded block as returned by /getwalletsyncdata, lazily
// consumed one at a time by the block processor.
type Block struct {
	Height       uint64
	Hash         Hex
	PreviousHash Hex
	Timestamp    uint64
	Coinbase     *BlockTransaction // nil if there is no miner transaction in this payload
	Transactions []BlockTransaction
}

// BlockTransaction is one transaction inside a Block (the coinbase uses the
// same shape, with no key inputs), in the shape the block processor needs: its public key, its outputs (ours or
// not, determined during processing) and the key images it spends.
type BlockTransaction struct {
	Hash        Hex
	PublicKey   Hex
	PaymentID   string
	UnlockTime  uint64
	Outputs     []Output
	KeyInputs   []KeyInput
}

// Output is a single transaction output as seen on the wire: an amount and
// a one-time public key, at a given index within the transaction.
type Output struct {
	Amount            uint64
	Key               Hex
	GlobalOutputIndex *uint64
}

// KeyInput is a single key (ring) input as seen on the wire: the amount it
// claims to spend and the key image that nullifies its real input.
type KeyInput struct {
	Amount   uint64
	KeyImage Hex
}

// WalletSyncData is the decoded response of /getwalletsyncdata.
type WalletSyncData struct {
	Items    []Block
	Synced   bool
	TopBlock *Block
}

// NodeInfo is the decoded response of /info, with networkHeight already
// corrected for the off-by-one the wire protocol reports (spec §4.2).
type NodeInfo struct {
	Height              uint64
	NetworkHeight       uint64
	IncomingConnections int
	OutgoingConnections int
	Difficulty          uint64
	IsCacheAPI          bool
}

// FeeInfo is the decoded response of /fee.
type FeeInfo struct {
	Address string
	Amount  uint64
}

// RandomOutput is one decoy candidate for a given amount, ordered by
// global output index to avoid leaking the position of the real input.
type RandomOutput struct {
	GlobalIndex uint64
	OneTimeKey  Hex
}
