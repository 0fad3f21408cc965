package importexport

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padak/keboola-storage-duckdb-sub001/common/mlog"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/branchoverlay"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/enginefile"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/pathresolver"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/tablelock"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

type fakeBuckets struct{}

func (fakeBuckets) GetBucket(context.Context, string, string, string) (*mmodel.Bucket, error) {
	return &mmodel.Bucket{}, nil
}

type fakeBranches struct {
	branches map[string]*mmodel.Branch
}

func (f *fakeBranches) GetBranch(_ context.Context, project, branch string) (*mmodel.Branch, error) {
	b, ok := f.branches[project+"/"+branch]
	if !ok {
		b = &mmodel.Branch{ID: branch}
		f.branches[project+"/"+branch] = b
	}

	return b, nil
}

func (f *fakeBranches) MarkCopied(_ context.Context, project, branch string, ref mmodel.TableRef) error {
	b, _ := f.GetBranch(context.Background(), project, branch)
	b.Copied = append(b.Copied, ref)

	return nil
}

func (f *fakeBranches) MarkDeleted(_ context.Context, project, branch string, ref mmodel.TableRef) error {
	b, _ := f.GetBranch(context.Background(), project, branch)
	b.Deleted = append(b.Deleted, ref)

	return nil
}

func (f *fakeBranches) UnmarkDeleted(_ context.Context, project, branch string, ref mmodel.TableRef) error {
	b, _ := f.GetBranch(context.Background(), project, branch)

	kept := b.Deleted[:0]

	for _, r := range b.Deleted {
		if r != ref {
			kept = append(kept, r)
		}
	}

	b.Deleted = kept

	return nil
}

type noopRegistrar struct{}

func (noopRegistrar) Register(context.Context) error { return nil }
func (noopRegistrar) Rollback(context.Context) error { return nil }

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()

	root := t.TempDir()
	branches := &fakeBranches{branches: map[string]*mmodel.Branch{}}
	resolver := pathresolver.New(root, fakeBuckets{}, branches)
	locks := tablelock.NewManager(&mlog.NoneLogger{})
	files := enginefile.New(&mlog.NoneLogger{}, filepath.Join(root, "_staging"))

	overlay := &branchoverlay.Overlay{Resolver: resolver, Locks: locks, Files: files, Branches: branches}

	require.NoError(t, overlay.Create(context.Background(), "p1", mmodel.DefaultBranchID, "sales", "orders", noopRegistrar{}, func(ctx context.Context, conn *enginefile.Conn) error {
		_, err := conn.DB.ExecContext(ctx, "CREATE TABLE orders (id INTEGER, amount INTEGER)")
		return err
	}))

	return New(overlay, files, locks)
}

func TestRun_FullReplaceInsertsFromStaging(t *testing.T) {
	p := newTestPipeline(t)

	dir := t.TempDir()
	csvPath := filepath.Join(dir, "orders.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("id,amount\n1,100\n2,200\n"), 0o644))

	result, err := p.Run(context.Background(), ImportRequest{
		Project: "p1", Branch: mmodel.DefaultBranchID, Bucket: "sales", Table: "orders",
		SourcePath: csvPath, Format: FormatDelimited,
		Delimited: DelimitedOptions{Delimiter: ",", HeaderPresent: true},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(2), result.RowsImported)
	assert.Equal(t, int64(2), result.RowsAfter)
}

func TestRun_RejectsUnrecognizedFormat(t *testing.T) {
	p := newTestPipeline(t)

	_, err := p.Run(context.Background(), ImportRequest{
		Project: "p1", Branch: mmodel.DefaultBranchID, Bucket: "sales", Table: "orders",
		SourcePath: "/tmp/whatever", Format: "xml",
	})

	require.Error(t, err)
}
