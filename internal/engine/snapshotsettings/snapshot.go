package snapshotsettings

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	cn "github.com/padak/keboola-storage-duckdb-sub001/common/constant"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mlog"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/enginefile"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/pathresolver"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/tablelock"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

// CatalogRepository is the slice of the Metadata Catalog the snapshot
// manager needs to register, look up, and sweep snapshot rows.
type CatalogRepository interface {
	RegisterSnapshot(ctx context.Context, snap *mmodel.Snapshot) error
	GetSnapshot(ctx context.Context, id string) (*mmodel.Snapshot, error)
	ListExpiredSnapshots(ctx context.Context, now time.Time) ([]mmodel.Snapshot, error)
	DeleteSnapshotRow(ctx context.Context, id string) error
}

// Manager creates, restores, and sweeps columnar snapshots.
type Manager struct {
	Resolver     *pathresolver.Resolver
	Locks        *tablelock.Manager
	Files        *enginefile.Manager
	Catalog      CatalogRepository
	SnapshotRoot string
	Logger       mlog.Logger
}

// New builds a snapshot Manager rooted at snapshotRoot (e.g.
// "<data-root>/_snapshots").
func New(resolver *pathresolver.Resolver, locks *tablelock.Manager, files *enginefile.Manager, catalog CatalogRepository, snapshotRoot string, logger mlog.Logger) *Manager {
	return &Manager{Resolver: resolver, Locks: locks, Files: files, Catalog: catalog, SnapshotRoot: snapshotRoot, Logger: logger}
}

func (m *Manager) path(project, bucket, table string, at time.Time) string {
	name := fmt.Sprintf("snap_%s_%d.parquet", table, at.UnixNano())
	return filepath.Join(m.SnapshotRoot, project, bucket, name)
}

// Create exports the target table's relation to a columnar file within the
// table's write lock and registers the snapshot in the catalog with an
// expires-at derived from retention. The column schema is recorded as JSON
// in the catalog row's SchemaJSON; no sidecar file is written beside the
// columnar file.
func (m *Manager) Create(ctx context.Context, project, branch, bucket, table, snapType, description, createdBy string, retention mmodel.EffectiveRetentionConfig, now time.Time) (*mmodel.Snapshot, error) {
	lockID := tablelock.LockID(project, branch, bucket, table)

	lease, err := m.Locks.AcquireWrite(ctx, lockID, 0)
	if err != nil {
		return nil, err
	}
	defer lease.Release()

	srcPath, err := m.Resolver.Resolve(ctx, project, branch, bucket, table)
	if err != nil {
		return nil, err
	}

	conn, err := m.Files.OpenRead(ctx, srcPath)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	dstPath := m.path(project, bucket, table, now)

	if err := os.MkdirAll(filepath.Dir(dstPath), 0o750); err != nil {
		return nil, common.ValidateBusinessError(cn.ErrEngineIO, "Snapshot")
	}

	var rowCount int64

	if err := conn.DB.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&rowCount); err != nil {
		return nil, common.ValidateBusinessError(cn.ErrEngineIO, "Snapshot")
	}

	if _, err := conn.DB.ExecContext(ctx, fmt.Sprintf("COPY %s TO '%s' (FORMAT PARQUET, COMPRESSION ZSTD)", table, dstPath)); err != nil {
		return nil, common.ValidateBusinessError(cn.ErrEngineIO, "Snapshot")
	}

	schemaJSON, err := m.describeSchema(ctx, conn, table)
	if err != nil {
		os.Remove(dstPath)
		return nil, err
	}

	info, err := os.Stat(dstPath)
	if err != nil {
		return nil, common.ValidateBusinessError(cn.ErrEngineIO, "Snapshot")
	}

	days := retention.AutoDays
	if snapType == mmodel.SnapshotTypeManual {
		days = retention.ManualDays
	}

	expiresAt := now.AddDate(0, 0, days)

	snap := &mmodel.Snapshot{
		ID:          fmt.Sprintf("snap_%s_%d", table, now.UnixNano()),
		ProjectID:   project,
		Bucket:      bucket,
		Table:       table,
		Type:        snapType,
		Path:        dstPath,
		RowCount:    rowCount,
		SizeBytes:   info.Size(),
		SchemaJSON:  schemaJSON,
		Description: description,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		ExpiresAt:   &expiresAt,
	}

	if err := m.Catalog.RegisterSnapshot(ctx, snap); err != nil {
		os.Remove(dstPath)
		return nil, err
	}

	return snap, nil
}

func (m *Manager) describeSchema(ctx context.Context, conn *enginefile.Conn, table string) (string, error) {
	rows, err := conn.DB.QueryContext(ctx, fmt.Sprintf("DESCRIBE %s", table))
	if err != nil {
		return "", common.ValidateBusinessError(cn.ErrEngineIO, "Snapshot")
	}
	defer rows.Close()

	var columns []mmodel.Column

	for rows.Next() {
		var (
			name, colType, null string
			key, def, extra     any
		)

		if err := rows.Scan(&name, &colType, &null, &key, &def, &extra); err != nil {
			return "", common.ValidateBusinessError(cn.ErrEngineIO, "Snapshot")
		}

		columns = append(columns, mmodel.Column{Name: name, Type: colType, Nullable: null == "YES"})
	}

	raw, err := json.Marshal(columns)
	if err != nil {
		return "", common.ValidateBusinessError(cn.ErrEngineIO, "Snapshot")
	}

	return string(raw), nil
}

type snapshotRestoreRegistrar struct {
	catalog CatalogRepository
	snap    *mmodel.Snapshot
}

func (r *snapshotRestoreRegistrar) Register(context.Context) error { return nil }
func (r *snapshotRestoreRegistrar) Rollback(context.Context) error { return nil }

// Restore builds a fresh engine file at (targetProject, targetBranch,
// targetBucket, targetTable) loaded from snap's columnar file, under the
// target's table write-lock. registrar lets the caller register or
// replace the catalog table row as part of the same atomic step.
func (m *Manager) Restore(ctx context.Context, snap *mmodel.Snapshot, targetProject, targetBranch, targetBucket, targetTable string, registrar enginefile.CatalogRegistrar) error {
	lockID := tablelock.LockID(targetProject, targetBranch, targetBucket, targetTable)

	lease, err := m.Locks.AcquireWrite(ctx, lockID, 0)
	if err != nil {
		return err
	}
	defer lease.Release()

	var targetPath string
	if targetBranch == mmodel.DefaultBranchID {
		targetPath = m.Resolver.DefaultPath(targetProject, targetBucket, targetTable)
	} else {
		targetPath = m.Resolver.BranchPath(targetProject, targetBranch, targetBucket, targetTable)
	}

	if registrar == nil {
		registrar = &snapshotRestoreRegistrar{catalog: m.Catalog, snap: snap}
	}

	return m.Files.CreateAtomic(ctx, targetPath, registrar, func(ctx context.Context, staging *enginefile.Conn) error {
		_, err := staging.DB.ExecContext(ctx, fmt.Sprintf(
			"CREATE TABLE %s AS SELECT * FROM read_parquet('%s')", targetTable, snap.Path))

		return err
	})
}

// SweepExpired deletes every snapshot whose expires-at has passed, file
// first then catalog row, logging failures and continuing rather than
// aborting the sweep.
func (m *Manager) SweepExpired(ctx context.Context, now time.Time) {
	expired, err := m.Catalog.ListExpiredSnapshots(ctx, now)
	if err != nil {
		m.Logger.Errorf("snapshot sweeper: failed to list expired snapshots: %s", err)
		return
	}

	for _, snap := range expired {
		if err := os.Remove(snap.Path); err != nil && !os.IsNotExist(err) {
			m.Logger.Errorf("snapshot sweeper: failed to remove file for %s: %s", snap.ID, err)
			continue
		}

		if err := m.Catalog.DeleteSnapshotRow(ctx, snap.ID); err != nil {
			m.Logger.Errorf("snapshot sweeper: failed to delete catalog row for %s: %s", snap.ID, err)
		}
	}
}
