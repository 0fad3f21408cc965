package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

func TestUpdateProject_PatchesNameAndMetadata(t *testing.T) {
	h := newTestHarness(t)

	_, err := h.UseCase.CreateProject(context.Background(), "req-1", &mmodel.CreateProjectInput{ID: "p1", Name: "Original"})
	require.NoError(t, err)

	newName := "Renamed"
	updated, err := h.UseCase.UpdateProject(context.Background(), "req-2", "p1", &mmodel.UpdateProjectInput{
		Name:     &newName,
		Metadata: map[string]any{"team": "data"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "data", updated.Metadata["team"])
}

func TestDeleteProject_RemovesCatalogRow(t *testing.T) {
	h := newTestHarness(t)

	_, err := h.UseCase.CreateProject(context.Background(), "req-1", &mmodel.CreateProjectInput{ID: "p1", Name: "Original"})
	require.NoError(t, err)

	err = h.UseCase.DeleteProject(context.Background(), "req-2", "p1")
	require.NoError(t, err)

	_, err = h.ProjectRepo.Find(context.Background(), "p1")
	assert.ErrorIs(t, err, errNotFound)
}
