package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

func TestListAuditLog_FiltersByProjectAndLimit(t *testing.T) {
	h := newTestHarness(t)

	require.NoError(t, h.AuditRepo.Create(context.Background(), &mmodel.AuditRecord{ID: "a1", ProjectID: "p1", Operation: "create"}))
	require.NoError(t, h.AuditRepo.Create(context.Background(), &mmodel.AuditRecord{ID: "a2", ProjectID: "p1", Operation: "update"}))
	require.NoError(t, h.AuditRepo.Create(context.Background(), &mmodel.AuditRecord{ID: "a3", ProjectID: "p2", Operation: "create"}))

	records, err := h.UseCase.ListAuditLog(context.Background(), "p1", 0)
	require.NoError(t, err)
	require.Len(t, records, 2)

	limited, err := h.UseCase.ListAuditLog(context.Background(), "p1", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
}
