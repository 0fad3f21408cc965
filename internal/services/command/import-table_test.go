package command

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/importexport"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

func TestImportTable_LoadsRowsAndUpdatesCounters(t *testing.T) {
	h := newTestHarness(t)
	createTestTable(t, h, "p1", mmodel.DefaultBranchID, "sales", "orders")

	dir := t.TempDir()
	csvPath := filepath.Join(dir, "orders.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("id\n1\n2\n3\n"), 0o644))

	result, err := h.UseCase.ImportTable(context.Background(), "req-1", importexport.ImportRequest{
		Project: "p1", Branch: mmodel.DefaultBranchID, Bucket: "sales", Table: "orders",
		SourcePath: csvPath, Format: importexport.FormatDelimited,
		Delimited: importexport.DelimitedOptions{Delimiter: ",", HeaderPresent: true},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.RowsImported)

	table, err := h.TableRepo.Find(context.Background(), "p1", mmodel.DefaultBranchID, "sales", "orders")
	require.NoError(t, err)
	assert.Equal(t, int64(3), table.RowCount)
}
