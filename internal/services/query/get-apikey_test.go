package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

func TestListAPIKeys_ReturnsOnlyProjectKeys(t *testing.T) {
	h := newTestHarness(t)

	p1 := "p1"
	p2 := "p2"
	_, err := h.APIKeyRepo.Create(context.Background(), &mmodel.APIKey{ProjectID: &p1, KeyHash: "hash-one"})
	require.NoError(t, err)
	_, err = h.APIKeyRepo.Create(context.Background(), &mmodel.APIKey{ProjectID: &p2, KeyHash: "hash-two"})
	require.NoError(t, err)

	keys, err := h.UseCase.ListAPIKeys(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, "hash-one", keys[0].KeyHash)
}
