package wallet

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kryptokrona/kryptokrona-wallet-backend-go/config"
	kcrypto "github.com/kryptokrona/kryptokrona-wallet-backend-go/crypto"
	"github.com/kryptokrona/kryptokrona-wallet-backend-go/pkg/nodeclient"
	"github.com/kryptokrona/kryptokrona-wallet-backend-go/types"
)

func walletTestServer(t *testing.T, syncBody interface{}) (*nodeclient.Client, func()) {
	mux := http.NewServeMux()
	mux.HandleFunc("/info", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"height":                     1,
			"network_height":             2,
			"incoming_connections_count": 0,
			"outgoing_connections_count": 0,
			"difficulty":                 1000,
			"isCacheApi":                 true,
		})
	})
	mux.HandleFunc("/getwalletsyncdata", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(syncBody)
	})
	srv := httptest.NewServer(mux)
	host := strings.TrimPrefix(srv.URL, "http://")
	client := nodeclient.New(host, 2*time.Second)
	return client, srv.Close
}

func TestWalletSyncTickCreditsOwnedOutput(t *testing.T) {
	privateView := types.Hex(strings.Repeat("1", 64))
	keys := types.KeyPair{
		PublicSpend:  types.Hex(strings.Repeat("2", 64)),
		PrivateSpend: types.Hex(strings.Repeat("3", 64)),
	}
	txPub := types.Hex(strings.Repeat("4", 64))

	derivation := kcrypto.Default{}.KeyDerivation(txPub, privateView)
	outKey := kcrypto.Default{}.PublicEphemeral(derivation, 0, keys.PublicSpend)

	syncBody := map[string]interface{}{
		"items": []map[string]interface{}{
			{
				"height":       1,
				"hash":         strings.Repeat("a", 64),
				"previousHash": strings.Repeat("0", 64),
				"timestamp":    1000,
				"transactions": []map[string]interface{}{
					{
						"hash":                 "deadbeef",
						"transactionPublicKey": string(txPub),
						"paymentId":            "",
						"unlockTime":           0,
						"outputs": []map[string]interface{}{
							{"amount": 500, "key": string(outKey)},
						},
						"keyInputs": []map[string]interface{}{},
					},
				},
			},
		},
		"synced": true,
	}

	node, closeFn := walletTestServer(t, syncBody)
	defer closeFn()

	cfg := config.Default()
	cfg.BlocksPerTick = 10
	w := New(node, cfg, privateView, keys, 0, 0, Options{})

	w.syncTick()

	unlocked, _ := w.GetBalance(1)
	assert.Equal(t, uint64(500), unlocked)

	txs := w.GetTransactions()
	require.Len(t, txs, 1)
	assert.Equal(t, int64(500), txs[0].Transfers[keys.PublicSpend])
}

func TestWalletSendBasicWithoutBuilderFails(t *testing.T) {
	node, closeFn := walletTestServer(t, map[string]interface{}{"items": []interface{}{}})
	defer closeFn()

	cfg := config.Default()
	w := New(node, cfg, types.Hex(strings.Repeat("1", 64)), types.KeyPair{PublicSpend: types.Hex(strings.Repeat("2", 64))}, 0, 0, Options{})

	_, err := w.SendBasic(nil, 0, "somewhere", 100, "")
	require.NotNil(t, err)
	assert.Equal(t, ADDRESS_NOT_VALID, err.Code)
}

func TestWalletSyncTickResumesFromSubWalletScanStart(t *testing.T) {
	var gotHeight, gotTimestamp uint64

	mux := http.NewServeMux()
	mux.HandleFunc("/info", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"height": 1, "network_height": 2, "isCacheApi": true,
		})
	})
	mux.HandleFunc("/getwalletsyncdata", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			StartHeight    uint64 `json:"startHeight"`
			StartTimestamp uint64 `json:"startTimestamp"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotHeight, gotTimestamp = req.StartHeight, req.StartTimestamp
		json.NewEncoder(w).Encode(map[string]interface{}{"items": []interface{}{}, "synced": true})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	node := nodeclient.New(strings.TrimPrefix(srv.URL, "http://"), 2*time.Second)

	cfg := config.Default()
	kp := types.KeyPair{PublicSpend: types.Hex(strings.Repeat("2", 64))}
	w := New(node, cfg, types.Hex(strings.Repeat("1", 64)), kp, 12345, 987654321, Options{})

	w.syncTick()

	assert.Equal(t, uint64(12345), gotHeight)
	assert.Equal(t, uint64(987654321), gotTimestamp)
}

func TestWalletSyncTickAnchorsScanStartAfterFirstBlock(t *testing.T) {
	privateView := types.Hex(strings.Repeat("1", 64))
	keys := types.KeyPair{
		PublicSpend:  types.Hex(strings.Repeat("2", 64)),
		PrivateSpend: types.Hex(strings.Repeat("3", 64)),
	}

	syncBody := map[string]interface{}{
		"items": []map[string]interface{}{
			{
				"height":       500,
				"hash":         strings.Repeat("a", 64),
				"previousHash": strings.Repeat("0", 64),
				"timestamp":    1000,
				"transactions": []interface{}{},
			},
		},
		"synced": true,
	}
	node, closeFn := walletTestServer(t, syncBody)
	defer closeFn()

	cfg := config.Default()
	w := New(node, cfg, privateView, keys, 100, 999999, Options{})

	w.syncTick()

	sw, ok := w.store.SubWallet(keys.PublicSpend)
	require.True(t, ok)
	assert.Equal(t, uint64(500), sw.ScanStartHeight)
	assert.Equal(t, uint64(0), sw.ScanStartTimestamp)
}

func TestWalletResetClearsSyncedState(t *testing.T) {
	node, closeFn := walletTestServer(t, map[string]interface{}{"items": []interface{}{}})
	defer closeFn()

	cfg := config.Default()
	kp := types.KeyPair{PublicSpend: types.Hex(strings.Repeat("2", 64))}
	w := New(node, cfg, types.Hex(strings.Repeat("1", 64)), kp, 100, 5000, Options{})

	w.Reset(0, 0)

	sw, ok := w.store.SubWallet(kp.PublicSpend)
	require.True(t, ok)
	assert.Equal(t, uint64(0), sw.ScanStartHeight)
	assert.Equal(t, uint64(0), w.GetWalletHeight())
}
