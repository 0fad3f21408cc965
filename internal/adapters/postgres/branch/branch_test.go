package branch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

func TestModel_ToEntity_DecodesEmptySets(t *testing.T) {
	m := &Model{
		ID:        mmodel.DefaultBranchID,
		ProjectID: "proj-1",
		CreatedBy: "key-1",
		CreatedAt: time.Now(),
		Copied:    []byte(`[]`),
		Deleted:   []byte(`[]`),
	}

	entity := m.ToEntity()

	require.NotNil(t, entity)
	assert.Equal(t, mmodel.DefaultBranchID, entity.ID)
	assert.Empty(t, entity.Copied)
	assert.Empty(t, entity.Deleted)
}

func TestModel_ToEntity_DecodesPopulatedSets(t *testing.T) {
	m := &Model{
		ID:        "feature-1",
		ProjectID: "proj-1",
		Copied:    []byte(`[{"bucket":"in.raw","table":"orders"}]`),
		Deleted:   []byte(`[{"bucket":"in.raw","table":"customers"}]`),
	}

	entity := m.ToEntity()

	require.Len(t, entity.Copied, 1)
	assert.Equal(t, mmodel.TableRef{Bucket: "in.raw", Table: "orders"}, entity.Copied[0])

	require.Len(t, entity.Deleted, 1)
	assert.Equal(t, mmodel.TableRef{Bucket: "in.raw", Table: "customers"}, entity.Deleted[0])
}

func TestModel_ToEntity_NilSetsWhenEmptyBytes(t *testing.T) {
	m := &Model{ID: "feature-2", ProjectID: "proj-1"}

	entity := m.ToEntity()

	assert.Nil(t, entity.Copied)
	assert.Nil(t, entity.Deleted)
}
