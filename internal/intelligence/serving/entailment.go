package serving

import (
	"context"
	"fmt"

	"github.com/ravi-ivar-7/hilabs/internal/infrastructure/monitoring/logging"
	"github.com/ravi-ivar-7/hilabs/pkg/errors"
)

// EntailmentClient calls the NLI cross-encoder server, which scores how
// strongly a premise entails a hypothesis.
type EntailmentClient struct {
	opts Options
	log  logging.Logger
}

// NewEntailmentClient constructs an EntailmentClient.
func NewEntailmentClient(opts Options, log logging.Logger) (*EntailmentClient, error) {
	if opts.BaseURL == "" {
		return nil, errors.New(errors.ErrCodeBadRequest, "entailment base URL is required")
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	opts.applyDefaults()
	return &EntailmentClient{opts: opts, log: log.Named("entailment")}, nil
}

type entailRequest struct {
	Model      string `json:"model,omitempty"`
	Premise    string `json:"premise"`
	Hypothesis string `json:"hypothesis"`
}

type entailResponse struct {
	Entailment float64 `json:"entailment"`
}

// Score returns the entailment probability in [0, 1].
func (c *EntailmentClient) Score(ctx context.Context, premise, hypothesis string) (float64, error) {
	var resp entailResponse
	url := fmt.Sprintf("%s/entail", c.opts.BaseURL)
	req := entailRequest{Model: c.opts.Model, Premise: premise, Hypothesis: hypothesis}
	if err := postJSON(ctx, c.opts.HTTPClient, url, req, &resp, errors.ErrCodeEntailmentUnavailable, c.log); err != nil {
		return 0, err
	}

	if resp.Entailment < 0 || resp.Entailment > 1 {
		return 0, errors.Newf(errors.ErrCodeEntailmentUnavailable,
			"entailment server returned out-of-range probability %v", resp.Entailment)
	}
	return resp.Entailment, nil
}

// Healthy probes the entailment server.
func (c *EntailmentClient) Healthy(ctx context.Context) error {
	return healthCheck(ctx, c.opts.HTTPClient, c.opts.BaseURL, errors.ErrCodeEntailmentUnavailable)
}
