package command

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadFile_StagesContentAndRegistersRow(t *testing.T) {
	h := newTestHarness(t)

	file, err := h.UseCase.UploadFile(context.Background(), "req-1", "p1", "orders.csv", "text/csv", strings.NewReader("id,name\n1,a\n"))
	require.NoError(t, err)

	assert.True(t, file.Staging)
	assert.Equal(t, int64(len("id,name\n1,a\n")), file.SizeBytes)
	assert.NotEmpty(t, file.SHA256)

	data, err := os.ReadFile(file.Path)
	require.NoError(t, err)
	assert.Equal(t, "id,name\n1,a\n", string(data))
}

func TestPromoteFile_ClearsStagingFlag(t *testing.T) {
	h := newTestHarness(t)

	file, err := h.UseCase.UploadFile(context.Background(), "req-1", "p1", "orders.csv", "text/csv", strings.NewReader("a"))
	require.NoError(t, err)

	err = h.UseCase.PromoteFile(context.Background(), "req-2", "p1", file.ID)
	require.NoError(t, err)

	got, err := h.FileRepo.Find(context.Background(), file.ID)
	require.NoError(t, err)
	assert.False(t, got.Staging)
}

func TestDeleteFile_RemovesRowAndBlob(t *testing.T) {
	h := newTestHarness(t)

	file, err := h.UseCase.UploadFile(context.Background(), "req-1", "p1", "orders.csv", "text/csv", strings.NewReader("a"))
	require.NoError(t, err)

	err = h.UseCase.DeleteFile(context.Background(), "req-2", "p1", file.ID)
	require.NoError(t, err)

	_, err = h.FileRepo.Find(context.Background(), file.ID)
	assert.ErrorIs(t, err, errNotFound)

	_, statErr := os.Stat(file.Path)
	assert.True(t, os.IsNotExist(statErr))
}
