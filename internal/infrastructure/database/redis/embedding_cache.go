package redis

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"time"

	"github.com/ravi-ivar-7/hilabs/internal/infrastructure/monitoring/logging"
	"github.com/ravi-ivar-7/hilabs/internal/intelligence/models"
)

// EmbeddingCache persists encoder output in Redis so repeated runs over the
// same clause text skip the model server.  Cache failures degrade to misses;
// the encoder remains the source of truth.
type EmbeddingCache struct {
	cache Cache
	log   logging.Logger
	ttl   time.Duration
	model string
}

var _ models.EmbeddingCache = (*EmbeddingCache)(nil)

// NewEmbeddingCache builds the cache.  Keys carry the model identity so a
// model swap can never serve stale vectors.
func NewEmbeddingCache(cache Cache, model string, ttl time.Duration, log logging.Logger) *EmbeddingCache {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &EmbeddingCache{
		cache: cache,
		log:   log.Named("embedding_cache"),
		ttl:   ttl,
		model: model,
	}
}

func (c *EmbeddingCache) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "emb:" + c.model + ":" + hex.EncodeToString(sum[:])
}

// GetEmbedding returns the cached vector for the exact text, if present.
func (c *EmbeddingCache) GetEmbedding(ctx context.Context, text string) ([]float32, bool) {
	data, err := c.cache.Get(ctx, c.key(text))
	if err != nil {
		if err != ErrCacheMiss {
			c.log.Warn("embedding lookup failed", logging.Err(err))
		}
		return nil, false
	}
	vec, ok := decodeVector(data)
	if !ok {
		c.log.Warn("discarding malformed cached embedding")
		return nil, false
	}
	return vec, true
}

// PutEmbedding stores the vector.  Write failures are logged and swallowed.
func (c *EmbeddingCache) PutEmbedding(ctx context.Context, text string, vec []float32) {
	if len(vec) == 0 {
		return
	}
	if err := c.cache.Set(ctx, c.key(text), encodeVector(vec), c.ttl); err != nil {
		c.log.Warn("embedding store failed", logging.Err(err))
	}
}

// encodeVector packs float32s little-endian.  Binary keeps 384-dim vectors an
// order of magnitude smaller than their JSON form.
func encodeVector(vec []float32) []byte {
	out := make([]byte, 4*len(vec))
	for i, f := range vec {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(f))
	}
	return out
}

func decodeVector(data []byte) ([]float32, bool) {
	if len(data) == 0 || len(data)%4 != 0 {
		return nil, false
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, true
}
