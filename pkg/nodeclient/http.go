package nodeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/kryptokrona/kryptokrona-wallet-backend-go/build"
)

// errNon2xx is returned when the remote responded with a non-2xx status.
var errNon2xx = errors.New("nodeclient: non-2xx response from remote node")

// userAgent identifies this client's protocol version to the remote node.
var userAgent = "kryptokrona-wallet-backend-go/" + build.Version.String()

// httpTransport wraps net/http the way rivine's pkg/client.HTTPClient wraps
// its own calls to a rivine daemon (pkg/client/http.go): a small root URL
// plus status-code-checked GET/POST helpers, adapted here to JSON bodies, a
// per-request timeout, and an HTTP-vs-HTTPS scheme that can be swapped
// after construction once auto-discovery (§4.2) has picked one.
type httpTransport struct {
	scheme         string // "http" or "https"
	host           string
	requestTimeout time.Duration
	client         *http.Client
}

func newHTTPTransport(host string, scheme string, requestTimeout time.Duration) *httpTransport {
	return &httpTransport{
		scheme:         scheme,
		host:           host,
		requestTimeout: requestTimeout,
		client:         &http.Client{},
	}
}

func (t *httpTransport) url(path string) string {
	return t.scheme + "://" + t.host + path
}

// get performs a GET request and decodes a 2xx JSON response into out.
func (t *httpTransport) get(ctx context.Context, path string, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, t.requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.url(path), nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	return t.do(req, out)
}

// post performs a POST request with a JSON-encoded body and decodes a 2xx
// JSON response into out.
func (t *httpTransport) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, t.requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url(path), bytes.NewReader(encoded))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	return t.do(req, out)
}

// postMeasured behaves like post but also reports the decoded response
// body's byte size, so the cache variant's maxBodyResponseSize
// back-pressure (spec §4.2) can react to an oversized getwalletsyncdata
// response without a second round trip.
func (t *httpTransport) postMeasured(ctx context.Context, path string, body interface{}, out interface{}) (uint64, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, t.requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url(path), bytes.NewReader(encoded))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := t.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, errNon2xx
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, err
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return uint64(len(raw)), err
		}
	}
	return uint64(len(raw)), nil
}

func (t *httpTransport) do(req *http.Request, out interface{}) error {
	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errNon2xx
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
