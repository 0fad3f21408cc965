package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

func TestGetFile_ReturnsRow(t *testing.T) {
	h := newTestHarness(t)

	created, err := h.FileRepo.Create(context.Background(), &mmodel.File{ProjectID: "p1", Name: "orders.csv", Path: "/tmp/orders.csv"})
	require.NoError(t, err)

	file, err := h.UseCase.GetFile(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "orders.csv", file.Name)
}
