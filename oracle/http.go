package oracle

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"
)

// PaddingHandler serves o.CheckPadding over HTTP. The IV and the ciphertext
// are sent hex encoded in the iv and c query parameters. It answers 200 for
// valid padding, 403 for invalid padding and 400 for a malformed request.
func PaddingHandler(o *Padding, l *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		args := r.URL.Query()
		iv, err := hex.DecodeString(args.Get("iv"))
		if err != nil {
			http.Error(w, "malformed iv", http.StatusBadRequest)
			return
		}
		c, err := hex.DecodeString(args.Get("c"))
		if err != nil {
			http.Error(w, "malformed ciphertext", http.StatusBadRequest)
			return
		}
		ok, err := o.CheckPadding(iv, c)
		if err != nil {
			if l != nil {
				l.Printf("padding oracle: %v", err)
			}
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if !ok {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
}

// HTTPChecker queries a padding oracle served by PaddingHandler. Each query
// blocks until the server answers or the client times out.
type HTTPChecker struct {
	URL    string
	Client *http.Client
}

// MaxIdleConns is the number of keep-alive connections an HTTPChecker keeps
// to the oracle. It should not be lower than the attack's workers.
var MaxIdleConns = 32

// NewHTTPChecker returns a checker for the oracle at rawURL whose queries
// time out after timeout.
func NewHTTPChecker(rawURL string, timeout time.Duration) *HTTPChecker {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConnsPerHost = MaxIdleConns
	return &HTTPChecker{URL: rawURL, Client: &http.Client{Timeout: timeout, Transport: t}}
}

// CheckPadding implements blockbreak.PaddingChecker.
func (h *HTTPChecker) CheckPadding(iv, c []byte) (bool, error) {
	return h.CheckPaddingContext(context.Background(), iv, c)
}

// CheckPaddingContext is CheckPadding with a context.
func (h *HTTPChecker) CheckPaddingContext(ctx context.Context, iv, c []byte) (bool, error) {
	u, err := url.Parse(h.URL)
	if err != nil {
		return false, err
	}
	q := u.Query()
	q.Set("iv", hex.EncodeToString(iv))
	q.Set("c", hex.EncodeToString(c))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return false, err
	}
	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusForbidden:
		return false, nil
	}
	return false, fmt.Errorf("padding oracle: unexpected status %s", resp.Status)
}
