// Package idempotency de-duplicates requests carrying an
// X-Idempotency-Key header: a replay within the TTL window returns the
// cached response byte-for-byte, regardless of the current system state.
package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	cn "github.com/padak/keboola-storage-duckdb-sub001/common/constant"
)

// DefaultTTL is the idempotency window named throughout the spec.
const DefaultTTL = 10 * time.Minute

// CachedResponse is what gets replayed verbatim on a hit.
type CachedResponse struct {
	StatusCode int               `json:"statusCode"`
	Body       []byte            `json:"body"`
	Headers    map[string]string `json:"headers,omitempty"`
	BodyHash   string            `json:"bodyHash"`
}

// Backend is the minimal key-value contract both the Redis-backed and the
// in-process fallback store implement.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Store de-duplicates (idempotency-key, method, path, body-hash) tuples
// against a Backend.
type Store struct {
	backend Backend
	ttl     time.Duration
}

// New builds a Store backed by backend with the given TTL (DefaultTTL when
// ttl <= 0).
func New(backend Backend, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Store{backend: backend, ttl: ttl}
}

// HashBody returns the SHA-256 hex digest of a request body, used as part of
// the composite key and to detect key reuse across different bodies.
func HashBody(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

func compositeKey(idempotencyKey, method, path string) string {
	return "idempotency:" + method + ":" + path + ":" + idempotencyKey
}

// Lookup returns the cached response for (idempotencyKey, method, path) if
// present. If present but stored under a different bodyHash, the key was
// reused for a genuinely different request within the TTL window, which is
// a conflict, not a replay.
func (s *Store) Lookup(ctx context.Context, idempotencyKey, method, path, bodyHash string) (*CachedResponse, error) {
	raw, ok, err := s.backend.Get(ctx, compositeKey(idempotencyKey, method, path))
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, nil
	}

	var cached CachedResponse
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, err
	}

	if cached.BodyHash != bodyHash {
		return nil, common.ValidateBusinessError(cn.ErrIdempotencyKeyReplayConflict, "IdempotencyKey")
	}

	return &cached, nil
}

// Save caches resp under (idempotencyKey, method, path, bodyHash) for the
// store's TTL. Non-2xx responses are cached too: the upstream request
// genuinely failed, and replaying it must not silently "fix" it into a
// success.
func (s *Store) Save(ctx context.Context, idempotencyKey, method, path, bodyHash string, resp CachedResponse) error {
	resp.BodyHash = bodyHash

	raw, err := json.Marshal(resp)
	if err != nil {
		return err
	}

	return s.backend.Set(ctx, compositeKey(idempotencyKey, method, path), raw, s.ttl)
}

// RedisBackend is the distributed Backend used when a Redis DSN is
// configured, giving idempotency de-duplication correctness across
// multiple server processes.
type RedisBackend struct {
	Client *redis.Client
}

// Get implements Backend.
func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := b.Client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, err
	}

	return val, true, nil
}

// Set implements Backend.
func (b *RedisBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return b.Client.Set(ctx, key, value, ttl).Err()
}

// LocalBackend is the in-process fallback used when no Redis DSN is
// configured (single-instance MVP mode per the spec's open question on the
// idempotency cache).
type LocalBackend struct {
	cache *gocache.Cache
}

// NewLocalBackend builds a LocalBackend with the given default TTL and
// cleanup interval.
func NewLocalBackend(defaultTTL time.Duration) *LocalBackend {
	return &LocalBackend{cache: gocache.New(defaultTTL, defaultTTL*2)}
}

// Get implements Backend.
func (b *LocalBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	val, ok := b.cache.Get(key)
	if !ok {
		return nil, false, nil
	}

	return val.([]byte), true, nil
}

// Set implements Backend.
func (b *LocalBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	b.cache.Set(key, value, ttl)
	return nil
}
