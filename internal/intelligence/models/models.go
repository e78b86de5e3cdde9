// Package models wraps the serving clients in process-lifetime handles that
// implement the cascade's scorer interfaces.  A handle is created once per
// process, initialises lazily on first use, and is safe for concurrent use;
// there is deliberately no package-level singleton.
package models

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/ravi-ivar-7/hilabs/internal/domain/classification"
	"github.com/ravi-ivar-7/hilabs/internal/infrastructure/monitoring/logging"
	"github.com/ravi-ivar-7/hilabs/internal/intelligence/serving"
)

// EmbeddingCache stores embeddings keyed by exact text.  A nil cache is
// valid and means every lookup misses.  Implementations must be safe for
// concurrent use; the Redis-backed one lives in the infrastructure layer.
type EmbeddingCache interface {
	GetEmbedding(ctx context.Context, text string) ([]float32, bool)
	PutEmbedding(ctx context.Context, text string, vec []float32)
}

// SemanticModel implements classification.SemanticScorer over the encoder
// server with read-through embedding caching.  Concurrent requests for the
// same text are collapsed via singleflight so a cold cache does not stampede
// the encoder.
type SemanticModel struct {
	client *serving.EncoderClient
	cache  EmbeddingCache
	log    logging.Logger

	initOnce sync.Once
	initErr  error
	group    singleflight.Group
}

var _ classification.SemanticScorer = (*SemanticModel)(nil)

// NewSemanticModel constructs the handle; the encoder is not contacted until
// the first Similarity call.
func NewSemanticModel(client *serving.EncoderClient, cache EmbeddingCache, log logging.Logger) *SemanticModel {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &SemanticModel{client: client, cache: cache, log: log.Named("semantic_model")}
}

// init verifies the encoder once per process lifetime.  A failed probe is
// remembered so every caller sees the same error instead of re-probing on
// the hot path.
func (m *SemanticModel) init(ctx context.Context) error {
	m.initOnce.Do(func() {
		m.initErr = m.client.Healthy(ctx)
		if m.initErr != nil {
			m.log.Error("encoder health probe failed", logging.Err(m.initErr))
			return
		}
		m.log.Info("encoder ready")
	})
	return m.initErr
}

// Similarity embeds both texts (through the cache) and returns their cosine
// similarity.
func (m *SemanticModel) Similarity(ctx context.Context, a, b string) (float64, error) {
	if err := m.init(ctx); err != nil {
		return 0, err
	}

	va, err := m.embed(ctx, a)
	if err != nil {
		return 0, err
	}
	vb, err := m.embed(ctx, b)
	if err != nil {
		return 0, err
	}
	return classification.Cosine(va, vb), nil
}

func (m *SemanticModel) embed(ctx context.Context, text string) ([]float32, error) {
	if m.cache != nil {
		if vec, ok := m.cache.GetEmbedding(ctx, text); ok {
			return vec, nil
		}
	}

	v, err, _ := m.group.Do(text, func() (interface{}, error) {
		vecs, err := m.client.Embed(ctx, []string{text})
		if err != nil {
			return nil, err
		}
		if m.cache != nil {
			m.cache.PutEmbedding(ctx, text, vecs[0])
		}
		return vecs[0], nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]float32), nil
}

// EntailmentModel implements classification.EntailmentScorer over the
// cross-encoder server, with the same lazy one-shot initialisation.
type EntailmentModel struct {
	client *serving.EntailmentClient
	log    logging.Logger

	initOnce sync.Once
	initErr  error
}

var _ classification.EntailmentScorer = (*EntailmentModel)(nil)

// NewEntailmentModel constructs the handle.
func NewEntailmentModel(client *serving.EntailmentClient, log logging.Logger) *EntailmentModel {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &EntailmentModel{client: client, log: log.Named("entailment_model")}
}

func (m *EntailmentModel) init(ctx context.Context) error {
	m.initOnce.Do(func() {
		m.initErr = m.client.Healthy(ctx)
		if m.initErr != nil {
			m.log.Error("entailment health probe failed", logging.Err(m.initErr))
			return
		}
		m.log.Info("cross-encoder ready")
	})
	return m.initErr
}

// EntailmentProbability scores premise against hypothesis.
func (m *EntailmentModel) EntailmentProbability(ctx context.Context, premise, hypothesis string) (float64, error) {
	if err := m.init(ctx); err != nil {
		return 0, err
	}
	return m.client.Score(ctx, premise, hypothesis)
}
