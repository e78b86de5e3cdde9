// Package serving provides HTTP clients for the out-of-process model servers
// (sentence encoder and entailment cross-encoder).  Models are served behind
// a small JSON API; this package owns the wire format and maps transport
// failures onto the platform error taxonomy.
package serving

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ravi-ivar-7/hilabs/internal/infrastructure/monitoring/logging"
	"github.com/ravi-ivar-7/hilabs/pkg/errors"
)

// Options configures a model-serving client.
type Options struct {
	// BaseURL of the model server, e.g. "http://encoder:8501".
	BaseURL string

	// Model is the model identifier sent with every request.
	Model string

	// Timeout bounds a single inference round trip.  Zero means 30s.
	Timeout time.Duration

	// HTTPClient overrides the transport; used by tests.  Nil builds one from
	// Timeout.
	HTTPClient *http.Client
}

func (o *Options) applyDefaults() {
	if o.Timeout == 0 {
		o.Timeout = 30 * time.Second
	}
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{Timeout: o.Timeout}
	}
}

// postJSON issues one JSON-in/JSON-out request and decodes the response into
// out.  Non-2xx responses become typed errors carrying the response body.
func postJSON(ctx context.Context, hc *http.Client, url string, in, out interface{}, unavailableCode errors.ErrorCode, log logging.Logger) error {
	body, err := json.Marshal(in)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode model request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to build model request")
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		return errors.Wrap(err, unavailableCode, "model server unreachable").
			WithDetail(url)
	}
	defer resp.Body.Close()

	log.Debug("model inference round trip",
		logging.String("url", url),
		logging.Int("status", resp.StatusCode),
		logging.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.Newf(unavailableCode, "model server returned %d", resp.StatusCode).
			WithDetail(string(snippet))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode model response")
	}
	return nil
}

// healthCheck probes the server's health endpoint.
func healthCheck(ctx context.Context, hc *http.Client, baseURL string, unavailableCode errors.ErrorCode) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/health", baseURL), nil)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to build health request")
	}
	resp, err := hc.Do(req)
	if err != nil {
		return errors.Wrap(err, unavailableCode, "model server unreachable")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.Newf(unavailableCode, "model server health returned %d", resp.StatusCode)
	}
	return nil
}
