package nodeclient

// Wire-format decode targets for the node's JSON endpoints (spec §6). Kept
// separate from the types package's Block/NodeInfo/etc. so the on-wire
// field names (snake_case, optional fields) never leak past this package.

type infoResponse struct {
	Height              *uint64 `json:"height"`
	NetworkHeight       uint64  `json:"network_height"`
	IncomingConnections int     `json:"incoming_connections_count"`
	OutgoingConnections int     `json:"outgoing_connections_count"`
	Difficulty          uint64  `json:"difficulty"`
	IsCacheAPI          *bool   `json:"isCacheApi"`
}

type feeResponse struct {
	Address string `json:"address"`
	Amount  uint64 `json:"amount"`
	Status  string `json:"status"`
}

type walletSyncDataRequest struct {
	BlockHashCheckpoints      []string `json:"blockHashCheckpoints"`
	StartHeight               uint64   `json:"startHeight"`
	StartTimestamp             uint64   `json:"startTimestamp"`
	BlockCount                 int      `json:"blockCount"`
	SkipCoinbaseTransactions   bool     `json:"skipCoinbaseTransactions,omitempty"`
}

type walletSyncDataResponse struct {
	Items    []wireBlock `json:"items"`
	Synced   bool        `json:"synced"`
	TopBlock *wireBlock  `json:"topBlock"`
}

type wireBlock struct {
	Height       uint64            `json:"height"`
	Hash         string            `json:"hash"`
	PreviousHash string            `json:"previousHash"`
	Timestamp    uint64            `json:"timestamp"`
	Coinbase     *wireTransaction   `json:"coinbaseTransaction"`
	Transactions []wireTransaction `json:"transactions"`
}

type wireTransaction struct {
	Hash       string       `json:"hash"`
	PublicKey  string       `json:"transactionPublicKey"`
	PaymentID  string       `json:"paymentId"`
	UnlockTime uint64       `json:"unlockTime"`
	Outputs    []wireOutput `json:"outputs"`
	KeyInputs  []wireInput  `json:"keyInputs"`
}

type wireOutput struct {
	Amount            uint64  `json:"amount"`
	Key               string  `json:"key"`
	GlobalOutputIndex *uint64 `json:"globalIndex,omitempty"`
}

type wireInput struct {
	Amount   uint64 `json:"amount"`
	KeyImage string `json:"keyImage"`
}

type globalIndexesRequest struct {
	StartHeight uint64 `json:"startHeight"`
	EndHeight   uint64 `json:"endHeight"`
}

type globalIndexesResponse struct {
	Indexes []struct {
		Key   string   `json:"key"`
		Value []uint64 `json:"value"`
	} `json:"indexes"`
}

type transactionsStatusRequest struct {
	TransactionHashes []string `json:"transactionHashes"`
}

type transactionsStatusResponse struct {
	TransactionsUnknown []string `json:"transactionsUnknown"`
}

type randomOutputsRequestCache struct {
	Amounts []uint64 `json:"amounts"`
	Mixin    uint64   `json:"mixin"`
}

type randomOutputsRequestChain struct {
	Amounts   []uint64 `json:"amounts"`
	OutsCount uint64   `json:"outs_count"`
}

type randomOutputsResponseEntry struct {
	Amount uint64 `json:"amount"`
	Outs   []struct {
		GlobalAmountIndex uint64 `json:"global_amount_index"`
		OutKey            string `json:"out_key"`
	} `json:"outs"`
}

type sendRawTransactionRequest struct {
	TxAsHex string `json:"tx_as_hex"`
}

type sendRawTransactionResponse struct {
	Status string `json:"status"`
}
