package command

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/enginefile"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/importexport"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

func TestExportTable_RegistersNonStagingFile(t *testing.T) {
	h := newTestHarness(t)
	createTestTable(t, h, "p1", mmodel.DefaultBranchID, "sales", "orders")

	err := h.UseCase.Overlay.Write(context.Background(), "p1", mmodel.DefaultBranchID, "sales", "orders", func(ctx context.Context, conn *enginefile.Conn) error {
		_, err := conn.DB.ExecContext(ctx, "INSERT INTO orders (id) VALUES (1), (2)")
		return err
	})
	require.NoError(t, err)

	file, err := h.UseCase.ExportTable(context.Background(), "req-1", importexport.ExportRequest{
		Project: "p1", Branch: mmodel.DefaultBranchID, Bucket: "sales", Table: "orders",
		Format:          importexport.ExportFormatCSV,
		DestinationPath: filepath.Join(t.TempDir(), "orders-export.csv"),
	})
	require.NoError(t, err)
	assert.False(t, file.Staging)
	assert.Positive(t, file.SizeBytes)
}
