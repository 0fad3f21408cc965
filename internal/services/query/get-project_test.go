package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

func TestGetProjectByID_ReturnsExistingRow(t *testing.T) {
	h := newTestHarness(t)

	_, err := h.ProjectRepo.Create(context.Background(), &mmodel.Project{ID: "p1", Name: "One"})
	require.NoError(t, err)

	project, err := h.UseCase.GetProjectByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "One", project.Name)
}

func TestGetProjectByID_NotFound(t *testing.T) {
	h := newTestHarness(t)

	_, err := h.UseCase.GetProjectByID(context.Background(), "missing")
	assert.ErrorIs(t, err, errNotFound)
}

func TestListProjects_ReturnsAllRows(t *testing.T) {
	h := newTestHarness(t)

	_, err := h.ProjectRepo.Create(context.Background(), &mmodel.Project{ID: "p1", Name: "One"})
	require.NoError(t, err)
	_, err = h.ProjectRepo.Create(context.Background(), &mmodel.Project{ID: "p2", Name: "Two"})
	require.NoError(t, err)

	projects, err := h.UseCase.ListProjects(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Len(t, projects, 2)
}
