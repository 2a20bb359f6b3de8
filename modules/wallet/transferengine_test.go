package wallet

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kryptokrona/kryptokrona-wallet-backend-go/addresscodec"
	"github.com/kryptokrona/kryptokrona-wallet-backend-go/config"
	"github.com/kryptokrona/kryptokrona-wallet-backend-go/pkg/nodeclient"
	"github.com/kryptokrona/kryptokrona-wallet-backend-go/types"
)

type fakeBuilder struct {
	sentHash types.Hex
}

func (b *fakeBuilder) Build(ctx context.Context, req BuildRequest) (string, types.Transaction, error) {
	transfers := make(map[types.Hex]int64)
	for _, in := range req.Inputs {
		transfers[in.PublicSpend] -= int64(in.Input.Amount)
	}
	tx := types.Transaction{Hash: "builtTxHash", Fee: req.Fee, Transfers: transfers}
	return "deadbeefhex", tx, nil
}

func testNodeServer(t *testing.T, height uint64) (*nodeclient.Client, func()) {
	mux := http.NewServeMux()
	mux.HandleFunc("/info", func(w http.ResponseWriter, r *http.Request) {
		isCache := true
		json.NewEncoder(w).Encode(map[string]interface{}{
			"height":                         height,
			"network_height":                 height + 1,
			"incoming_connections_count":     0,
			"outgoing_connections_count":     0,
			"difficulty":                     1000,
			"isCacheApi":                     isCache,
		})
	})
	mux.HandleFunc("/randomOutputs", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]interface{}{
			{"amount": 100, "outs": []map[string]interface{}{{"global_amount_index": 1, "out_key": strings.Repeat("a", 64)}}},
		})
	})
	mux.HandleFunc("/sendrawtransaction", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "OK"})
	})

	srv := httptest.NewServer(mux)
	host := strings.TrimPrefix(srv.URL, "http://")
	client := nodeclient.New(host, 2*time.Second)
	return client, srv.Close
}

func TestSendAdvancedHappyPath(t *testing.T) {
	node, closeFn := testNodeServer(t, 100)
	defer closeFn()

	store := NewSubWalletStore()
	kp := testKeyPair("aa")
	store.AddSubWallet(NewSubWallet(kp, 0, 0, true))
	store.StoreTransactionInput(kp.PublicSpend, types.TransactionInput{KeyImage: "ki1", Amount: 1000})

	cfg := config.Default()
	cfg.StandardAddressLength = 10
	cfg.IntegratedAddressLength = 10 + 64
	cfg.AddressPrefix = 42

	validators := NewValidators(cfg, fakeCodec{prefixByte: 42})
	builder := &fakeBuilder{}
	engine := NewTransferEngine(store, node, validators, builder, cfg)

	hash, err := engine.SendAdvanced(context.Background(), 100, []types.Destination{{Address: "abcdefghij", Amount: 500}}, 3, cfg.MinimumFee, "", nil, "")
	require.Nil(t, err)
	assert.Equal(t, types.Hex("builtTxHash"), hash)

	sw, _ := store.SubWallet(kp.PublicSpend)
	assert.Len(t, sw.unspent, 0)
	assert.Len(t, sw.locked, 1)
}

func TestSendAdvancedRejectsSecondConcurrentCall(t *testing.T) {
	node, closeFn := testNodeServer(t, 100)
	defer closeFn()

	store := NewSubWalletStore()
	cfg := config.Default()
	validators := NewValidators(cfg, addresscodec.Default{})
	engine := NewTransferEngine(store, node, validators, &fakeBuilder{}, cfg)

	require.True(t, engine.beginTransacting())
	defer engine.endTransacting()

	_, err := engine.SendAdvanced(context.Background(), 100, []types.Destination{{Address: "x", Amount: 1}}, 0, cfg.MinimumFee, "", nil, "")
	require.NotNil(t, err)
	assert.Equal(t, TRANSACTION_IN_PROGRESS, err.Code)
}
