package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup_MissReturnsNil(t *testing.T) {
	s := New(NewLocalBackend(time.Minute), 0)

	cached, err := s.Lookup(context.Background(), "key-1", "POST", "/v1/projects/p1/buckets/in/tables", "hash-a")
	require.NoError(t, err)
	assert.Nil(t, cached)
}

func TestSaveThenLookup_ReplaysSameBody(t *testing.T) {
	s := New(NewLocalBackend(time.Minute), time.Minute)
	ctx := context.Background()

	err := s.Save(ctx, "key-1", "POST", "/v1/projects/p1/buckets/in/tables", "hash-a", CachedResponse{
		StatusCode: 201,
		Body:       []byte(`{"name":"orders"}`),
	})
	require.NoError(t, err)

	cached, err := s.Lookup(ctx, "key-1", "POST", "/v1/projects/p1/buckets/in/tables", "hash-a")
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, 201, cached.StatusCode)
	assert.Equal(t, `{"name":"orders"}`, string(cached.Body))
}

func TestLookup_DifferentBodyUnderSameKeyConflicts(t *testing.T) {
	s := New(NewLocalBackend(time.Minute), time.Minute)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "key-1", "POST", "/v1/projects/p1/buckets/in/tables", "hash-a", CachedResponse{StatusCode: 201}))

	_, err := s.Lookup(ctx, "key-1", "POST", "/v1/projects/p1/buckets/in/tables", "hash-b")
	require.Error(t, err)
}

func TestSave_CachesNonSuccessResponsesToo(t *testing.T) {
	s := New(NewLocalBackend(time.Minute), time.Minute)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "key-1", "POST", "/v1/projects/p1/buckets/in/tables", "hash-a", CachedResponse{StatusCode: 409}))

	cached, err := s.Lookup(ctx, "key-1", "POST", "/v1/projects/p1/buckets/in/tables", "hash-a")
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, 409, cached.StatusCode)
}
