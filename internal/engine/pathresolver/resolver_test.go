package pathresolver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cn "github.com/padak/keboola-storage-duckdb-sub001/common/constant"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

type fakeBuckets map[string]*mmodel.Bucket

func (f fakeBuckets) GetBucket(_ context.Context, project, branch, bucket string) (*mmodel.Bucket, error) {
	b, ok := f[project+"/"+branch+"/"+bucket]
	if !ok {
		return nil, cn.ErrBucketNotFound
	}

	return b, nil
}

type fakeBranches map[string]*mmodel.Branch

func (f fakeBranches) GetBranch(_ context.Context, project, branch string) (*mmodel.Branch, error) {
	b, ok := f[project+"/"+branch]
	if !ok {
		return nil, cn.ErrBranchNotFound
	}

	return b, nil
}

func TestResolve_DefaultBranchDirectPath(t *testing.T) {
	buckets := fakeBuckets{"p1/default/sales": {Name: "sales"}}
	r := New("/data", buckets, fakeBranches{})

	path, err := r.Resolve(context.Background(), "p1", "default", "sales", "orders")
	require.NoError(t, err)
	assert.Equal(t, "/data/p1/sales/orders.duckdb", path)
}

func TestResolve_LinkedBucketRecursesOnce(t *testing.T) {
	buckets := fakeBuckets{
		"p1/default/sales": {Name: "sales", LinkedFrom: &mmodel.BucketLink{ProjectID: "p0", Bucket: "sales_src"}},
		"p0/default/sales_src": {Name: "sales_src"},
	}
	r := New("/data", buckets, fakeBranches{})

	path, err := r.Resolve(context.Background(), "p1", "default", "sales", "orders")
	require.NoError(t, err)
	assert.Equal(t, "/data/p0/sales_src/orders.duckdb", path)
}

func TestResolve_LinkChainTooDeepFails(t *testing.T) {
	buckets := fakeBuckets{
		"p2/default/a": {Name: "a", LinkedFrom: &mmodel.BucketLink{ProjectID: "p1", Bucket: "b"}},
		"p1/default/b": {Name: "b", LinkedFrom: &mmodel.BucketLink{ProjectID: "p0", Bucket: "c"}},
		"p0/default/c": {Name: "c"},
	}
	r := New("/data", buckets, fakeBranches{})

	_, err := r.Resolve(context.Background(), "p2", "default", "a", "orders")
	require.Error(t, err)
}

func TestResolve_BranchDeletedIsNotFound(t *testing.T) {
	buckets := fakeBuckets{"p1/dev1/sales": {Name: "sales"}}
	branches := fakeBranches{"p1/dev1": {ID: "dev1", Deleted: []mmodel.TableRef{{Bucket: "sales", Table: "orders"}}}}
	r := New("/data", buckets, branches)

	_, err := r.Resolve(context.Background(), "p1", "dev1", "sales", "orders")
	require.Error(t, err)
}

func TestResolve_BranchCopiedUsesBranchLocalPath(t *testing.T) {
	buckets := fakeBuckets{"p1/dev1/sales": {Name: "sales"}}
	branches := fakeBranches{"p1/dev1": {ID: "dev1", Copied: []mmodel.TableRef{{Bucket: "sales", Table: "orders"}}}}
	r := New("/data", buckets, branches)

	path, err := r.Resolve(context.Background(), "p1", "dev1", "sales", "orders")
	require.NoError(t, err)
	assert.Equal(t, "/data/p1_branch_dev1/sales/orders.duckdb", path)
}

func TestResolve_BranchReadThroughUsesDefaultPath(t *testing.T) {
	buckets := fakeBuckets{
		"p1/dev1/sales":   {Name: "sales"},
		"p1/default/sales": {Name: "sales"},
	}
	branches := fakeBranches{"p1/dev1": {ID: "dev1"}}
	r := New("/data", buckets, branches)

	path, err := r.Resolve(context.Background(), "p1", "dev1", "sales", "orders")
	require.NoError(t, err)
	assert.Equal(t, "/data/p1/sales/orders.duckdb", path)
}
