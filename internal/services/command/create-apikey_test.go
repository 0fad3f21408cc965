package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAPIKey_IssuesProjectKeyWithHashOnly(t *testing.T) {
	h := newTestHarness(t)

	out, err := h.UseCase.CreateAPIKey(context.Background(), "req-1", "p1")
	require.NoError(t, err)

	assert.NotEmpty(t, out.Key)
	assert.Equal(t, hashKey(out.Key), out.APIKey.KeyHash)

	require.Len(t, h.APIKeyRepo.keys, 1)
}

func TestRevokeAPIKey_SetsRevokedAt(t *testing.T) {
	h := newTestHarness(t)

	out, err := h.UseCase.CreateAPIKey(context.Background(), "req-1", "p1")
	require.NoError(t, err)

	err = h.UseCase.RevokeAPIKey(context.Background(), "req-2", "p1", out.APIKey.ID)
	require.NoError(t, err)

	got, ok := h.APIKeyRepo.keys[out.APIKey.ID]
	require.True(t, ok)
	assert.NotNil(t, got.RevokedAt)
}
