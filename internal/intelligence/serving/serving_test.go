package serving

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ravi-ivar-7/hilabs/internal/infrastructure/monitoring/logging"
	"github.com/ravi-ivar-7/hilabs/pkg/errors"
)

func TestEncoderClient_Embed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/embed", r.URL.Path)
		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "all-MiniLM-L6-v2", req.Model)

		out := embedResponse{Embeddings: make([][]float32, len(req.Texts))}
		for i := range req.Texts {
			out.Embeddings[i] = []float32{1, 0, 0}
		}
		json.NewEncoder(w).Encode(out)
	}))
	defer srv.Close()

	c, err := NewEncoderClient(Options{BaseURL: srv.URL, Model: "all-MiniLM-L6-v2"}, logging.NewNopLogger())
	require.NoError(t, err)

	got, err := c.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []float32{1, 0, 0}, got[0])
}

func TestEncoderClient_EmptyInput(t *testing.T) {
	c, err := NewEncoderClient(Options{BaseURL: "http://unused"}, logging.NewNopLogger())
	require.NoError(t, err)

	got, err := c.Embed(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestEncoderClient_CountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(embedResponse{Embeddings: [][]float32{{1}}})
	}))
	defer srv.Close()

	c, err := NewEncoderClient(Options{BaseURL: srv.URL}, logging.NewNopLogger())
	require.NoError(t, err)

	_, err = c.Embed(context.Background(), []string{"a", "b"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeEncoderUnavailable))
}

func TestEncoderClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, err := NewEncoderClient(Options{BaseURL: srv.URL}, logging.NewNopLogger())
	require.NoError(t, err)

	_, err = c.Embed(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeEncoderUnavailable))
}

func TestEncoderClient_Unreachable(t *testing.T) {
	c, err := NewEncoderClient(Options{BaseURL: "http://127.0.0.1:1"}, logging.NewNopLogger())
	require.NoError(t, err)

	_, err = c.Embed(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeEncoderUnavailable))
}

func TestEntailmentClient_Score(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/entail", r.URL.Path)
		var req entailRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.NotEmpty(t, req.Premise)
		assert.NotEmpty(t, req.Hypothesis)
		json.NewEncoder(w).Encode(entailResponse{Entailment: 0.87})
	}))
	defer srv.Close()

	c, err := NewEntailmentClient(Options{BaseURL: srv.URL}, logging.NewNopLogger())
	require.NoError(t, err)

	got, err := c.Score(context.Background(), "clause text", "template text")
	require.NoError(t, err)
	assert.InDelta(t, 0.87, got, 1e-9)
}

func TestEntailmentClient_OutOfRangeRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(entailResponse{Entailment: 1.4})
	}))
	defer srv.Close()

	c, err := NewEntailmentClient(Options{BaseURL: srv.URL}, logging.NewNopLogger())
	require.NoError(t, err)

	_, err = c.Score(context.Background(), "p", "h")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeEntailmentUnavailable))
}

func TestHealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	enc, err := NewEncoderClient(Options{BaseURL: srv.URL}, logging.NewNopLogger())
	require.NoError(t, err)
	assert.NoError(t, enc.Healthy(context.Background()))

	ent, err := NewEntailmentClient(Options{BaseURL: srv.URL}, logging.NewNopLogger())
	require.NoError(t, err)
	assert.NoError(t, ent.Healthy(context.Background()))
}

func TestClientConstruction_RequiresBaseURL(t *testing.T) {
	_, err := NewEncoderClient(Options{}, logging.NewNopLogger())
	assert.Error(t, err)
	_, err = NewEntailmentClient(Options{}, logging.NewNopLogger())
	assert.Error(t, err)
}
