package serving

import (
	"context"
	"fmt"

	"github.com/ravi-ivar-7/hilabs/internal/infrastructure/monitoring/logging"
	"github.com/ravi-ivar-7/hilabs/pkg/errors"
)

// EncoderClient calls the sentence-encoder server, which maps texts to dense
// embedding vectors.
type EncoderClient struct {
	opts Options
	log  logging.Logger
}

// NewEncoderClient constructs an EncoderClient.
func NewEncoderClient(opts Options, log logging.Logger) (*EncoderClient, error) {
	if opts.BaseURL == "" {
		return nil, errors.New(errors.ErrCodeBadRequest, "encoder base URL is required")
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	opts.applyDefaults()
	return &EncoderClient{opts: opts, log: log.Named("encoder")}, nil
}

type embedRequest struct {
	Model string   `json:"model,omitempty"`
	Texts []string `json:"texts"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Embed returns one embedding per input text, in input order.
func (c *EncoderClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var resp embedResponse
	url := fmt.Sprintf("%s/embed", c.opts.BaseURL)
	req := embedRequest{Model: c.opts.Model, Texts: texts}
	if err := postJSON(ctx, c.opts.HTTPClient, url, req, &resp, errors.ErrCodeEncoderUnavailable, c.log); err != nil {
		return nil, err
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, errors.Newf(errors.ErrCodeEncoderUnavailable,
			"encoder returned %d embeddings for %d texts", len(resp.Embeddings), len(texts))
	}
	return resp.Embeddings, nil
}

// Healthy probes the encoder server.
func (c *EncoderClient) Healthy(ctx context.Context) error {
	return healthCheck(ctx, c.opts.HTTPClient, c.opts.BaseURL, errors.ErrCodeEncoderUnavailable)
}
