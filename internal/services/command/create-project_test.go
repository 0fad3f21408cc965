package command

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

func TestCreateProject_CreatesDefaultBranchAndAdminKey(t *testing.T) {
	h := newTestHarness(t)

	out, err := h.UseCase.CreateProject(context.Background(), "req-1", &mmodel.CreateProjectInput{
		ID:   "p1",
		Name: "Project One",
	})
	require.NoError(t, err)

	assert.Equal(t, "p1", out.Project.ID)
	assert.Equal(t, mmodel.ProjectStatusActive, out.Project.Status)
	assert.True(t, strings.HasPrefix(out.APIKey, mmodel.APIKeyPrefixProjectAdmin))

	branch, err := h.BranchRepo.GetBranch(context.Background(), "p1", mmodel.DefaultBranchID)
	require.NoError(t, err)
	assert.Equal(t, mmodel.DefaultBranchID, branch.ID)

	keys, err := h.APIKeyRepo.FindAllForProject(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, hashKey(out.APIKey), keys[0].KeyHash)

	require.Len(t, h.AuditRepo.records, 1)
	assert.Equal(t, mmodel.AuditStatusSuccess, h.AuditRepo.records[0].Status)
}

func TestCreateProject_RejectsOversizedMetadataValue(t *testing.T) {
	h := newTestHarness(t)

	_, err := h.UseCase.CreateProject(context.Background(), "req-1", &mmodel.CreateProjectInput{
		ID:       "p1",
		Name:     "Project One",
		Metadata: map[string]any{"note": strings.Repeat("x", 3000)},
	})
	require.Error(t, err)

	require.Len(t, h.AuditRepo.records, 1)
	assert.Equal(t, mmodel.AuditStatusFailure, h.AuditRepo.records[0].Status)
}
