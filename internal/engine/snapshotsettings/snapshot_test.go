package snapshotsettings

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padak/keboola-storage-duckdb-sub001/common/mlog"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/enginefile"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/pathresolver"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/tablelock"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

type fakeBuckets struct{}

func (fakeBuckets) GetBucket(context.Context, string, string, string) (*mmodel.Bucket, error) {
	return &mmodel.Bucket{}, nil
}

type fakeBranches struct{}

func (fakeBranches) GetBranch(context.Context, string, string) (*mmodel.Branch, error) {
	return &mmodel.Branch{}, nil
}

type fakeCatalog struct {
	registered []mmodel.Snapshot
	expired    []mmodel.Snapshot
	deleted    []string
}

func (f *fakeCatalog) RegisterSnapshot(_ context.Context, snap *mmodel.Snapshot) error {
	f.registered = append(f.registered, *snap)
	return nil
}

func (f *fakeCatalog) GetSnapshot(_ context.Context, id string) (*mmodel.Snapshot, error) {
	for _, s := range f.registered {
		if s.ID == id {
			return &s, nil
		}
	}

	return nil, nil
}

func (f *fakeCatalog) ListExpiredSnapshots(context.Context, time.Time) ([]mmodel.Snapshot, error) {
	return f.expired, nil
}

func (f *fakeCatalog) DeleteSnapshotRow(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func newTestManager(t *testing.T) (*Manager, *fakeCatalog) {
	t.Helper()

	root := t.TempDir()
	resolver := pathresolver.New(root, fakeBuckets{}, fakeBranches{})
	locks := tablelock.NewManager(&mlog.NoneLogger{})
	files := enginefile.New(&mlog.NoneLogger{}, filepath.Join(root, "_staging"))
	catalog := &fakeCatalog{}

	return New(resolver, locks, files, catalog, filepath.Join(root, "_snapshots"), &mlog.NoneLogger{}), catalog
}

func TestSweepExpired_MissingFileStillDeletesCatalogRow(t *testing.T) {
	m, catalog := newTestManager(t)

	snap := mmodel.Snapshot{ID: "snap_orders_1", Path: filepath.Join(t.TempDir(), "missing.parquet")}
	catalog.expired = []mmodel.Snapshot{snap}

	m.SweepExpired(context.Background(), time.Now())

	assert.Contains(t, catalog.deleted, "snap_orders_1")
}

func TestSweepExpired_MissingFilesStillDeleteEveryRow(t *testing.T) {
	m, catalog := newTestManager(t)

	catalog.expired = []mmodel.Snapshot{
		{ID: "snap_a", Path: filepath.Join(t.TempDir(), "a.parquet")},
		{ID: "snap_b", Path: filepath.Join(t.TempDir(), "b.parquet")},
	}

	require.NotPanics(t, func() { m.SweepExpired(context.Background(), time.Now()) })
	assert.Len(t, catalog.deleted, 2)
}
