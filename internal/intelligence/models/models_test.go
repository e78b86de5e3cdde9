package models

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ravi-ivar-7/hilabs/internal/infrastructure/monitoring/logging"
	"github.com/ravi-ivar-7/hilabs/internal/intelligence/serving"
)

type memoryCache struct {
	mu   sync.Mutex
	data map[string][]float32
	hits int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]float32{}}
}

func (c *memoryCache) GetEmbedding(_ context.Context, text string) ([]float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	vec, ok := c.data[text]
	if ok {
		c.hits++
	}
	return vec, ok
}

func (c *memoryCache) PutEmbedding(_ context.Context, text string, vec []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[text] = vec
}

// fakeEncoderServer returns a deterministic embedding per text and counts
// /embed calls.
func fakeEncoderServer(t *testing.T) (*httptest.Server, *int) {
	t.Helper()
	calls := 0
	vectors := map[string][]float32{
		"alpha": {1, 0, 0},
		"beta":  {0, 1, 0},
		"gamma": {1, 1, 0},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		calls++
		var req struct {
			Texts []string `json:"texts"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		out := struct {
			Embeddings [][]float32 `json:"embeddings"`
		}{}
		for _, text := range req.Texts {
			vec, ok := vectors[text]
			if !ok {
				vec = []float32{0, 0, 1}
			}
			out.Embeddings = append(out.Embeddings, vec)
		}
		json.NewEncoder(w).Encode(out)
	}))
	return srv, &calls
}

func TestSemanticModel_Similarity(t *testing.T) {
	srv, _ := fakeEncoderServer(t)
	defer srv.Close()

	client, err := serving.NewEncoderClient(serving.Options{BaseURL: srv.URL}, logging.NewNopLogger())
	require.NoError(t, err)
	m := NewSemanticModel(client, nil, logging.NewNopLogger())

	sim, err := m.Similarity(context.Background(), "alpha", "beta")
	require.NoError(t, err)
	assert.InDelta(t, 0.0, sim, 1e-6)

	sim, err = m.Similarity(context.Background(), "alpha", "alpha")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, sim, 1e-6)
}

func TestSemanticModel_CacheReadThrough(t *testing.T) {
	srv, calls := fakeEncoderServer(t)
	defer srv.Close()

	client, err := serving.NewEncoderClient(serving.Options{BaseURL: srv.URL}, logging.NewNopLogger())
	require.NoError(t, err)
	cache := newMemoryCache()
	m := NewSemanticModel(client, cache, logging.NewNopLogger())

	_, err = m.Similarity(context.Background(), "alpha", "beta")
	require.NoError(t, err)
	firstCalls := *calls

	// Same pair again: both embeddings served from cache.
	_, err = m.Similarity(context.Background(), "alpha", "beta")
	require.NoError(t, err)
	assert.Equal(t, firstCalls, *calls)
	assert.GreaterOrEqual(t, cache.hits, 2)
}

func TestSemanticModel_InitFailureIsSticky(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client, err := serving.NewEncoderClient(serving.Options{BaseURL: srv.URL}, logging.NewNopLogger())
	require.NoError(t, err)
	m := NewSemanticModel(client, nil, logging.NewNopLogger())

	_, err1 := m.Similarity(context.Background(), "a", "b")
	require.Error(t, err1)
	_, err2 := m.Similarity(context.Background(), "a", "b")
	require.Error(t, err2)
	// Health is probed once; the failure is remembered.
	assert.Equal(t, err1, err2)
}

func TestEntailmentModel_Probability(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		json.NewEncoder(w).Encode(map[string]float64{"entailment": 0.73})
	}))
	defer srv.Close()

	client, err := serving.NewEntailmentClient(serving.Options{BaseURL: srv.URL}, logging.NewNopLogger())
	require.NoError(t, err)
	m := NewEntailmentModel(client, logging.NewNopLogger())

	p, err := m.EntailmentProbability(context.Background(), "premise", "hypothesis")
	require.NoError(t, err)
	assert.InDelta(t, 0.73, p, 1e-9)
}
