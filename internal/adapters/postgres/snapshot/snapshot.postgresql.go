// Package snapshot implements the Postgres-backed catalog store for
// columnar snapshots: the rows the snapshot/restore manager registers,
// looks up, and sweeps on expiry.
package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	cn "github.com/padak/keboola-storage-duckdb-sub001/common/constant"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mopentelemetry"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mpostgres"
	pgerr "github.com/padak/keboola-storage-duckdb-sub001/internal/adapters/postgres"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

// Repository provides operations for snapshot catalog rows, and also
// satisfies snapshotsettings.CatalogRepository.
type Repository interface {
	RegisterSnapshot(ctx context.Context, snap *mmodel.Snapshot) error
	GetSnapshot(ctx context.Context, id string) (*mmodel.Snapshot, error)
	ListExpiredSnapshots(ctx context.Context, now time.Time) ([]mmodel.Snapshot, error)
	ListForTable(ctx context.Context, projectID, bucket, table string) ([]mmodel.Snapshot, error)
	DeleteSnapshotRow(ctx context.Context, id string) error
}

// PostgreSQLRepository is a Postgres-specific implementation of Repository.
type PostgreSQLRepository struct {
	connection *mpostgres.PostgresConnection
}

// NewPostgreSQLRepository returns a new PostgreSQLRepository using the given connection.
func NewPostgreSQLRepository(pc *mpostgres.PostgresConnection) *PostgreSQLRepository {
	return &PostgreSQLRepository{connection: pc}
}

func scanRow(row interface{ Scan(...any) error }) (*mmodel.Snapshot, error) {
	s := &mmodel.Snapshot{}

	var expiresAt sql.NullTime

	if err := row.Scan(&s.ID, &s.ProjectID, &s.Bucket, &s.Table, &s.Type, &s.Path, &s.RowCount, &s.SizeBytes,
		&s.SchemaJSON, &s.Description, &s.CreatedBy, &s.CreatedAt, &expiresAt); err != nil {
		return nil, err
	}

	if expiresAt.Valid {
		e := expiresAt.Time
		s.ExpiresAt = &e
	}

	return s, nil
}

// RegisterSnapshot inserts a new snapshot catalog row.
func (r *PostgreSQLRepository) RegisterSnapshot(ctx context.Context, snap *mmodel.Snapshot) error {
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "postgres.register_snapshot")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get database connection", err)
		return err
	}

	var expiresAt sql.NullTime
	if snap.ExpiresAt != nil {
		expiresAt = sql.NullTime{Time: *snap.ExpiresAt, Valid: true}
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO snapshot (id, project_id, bucket, "table", type, path, row_count, size_bytes, schema_json, description, created_by, created_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		snap.ID, snap.ProjectID, snap.Bucket, snap.Table, snap.Type, snap.Path, snap.RowCount, snap.SizeBytes,
		snap.SchemaJSON, snap.Description, snap.CreatedBy, snap.CreatedAt, expiresAt)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to execute insert query", err)

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			return pgerr.ValidatePGError(pgErr, reflect.TypeOf(mmodel.Snapshot{}).Name())
		}

		return err
	}

	return nil
}

// GetSnapshot retrieves a snapshot row by id.
func (r *PostgreSQLRepository) GetSnapshot(ctx context.Context, id string) (*mmodel.Snapshot, error) {
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "postgres.get_snapshot")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get database connection", err)
		return nil, err
	}

	row := db.QueryRowContext(ctx,
		`SELECT id, project_id, bucket, "table", type, path, row_count, size_bytes, schema_json, description, created_by, created_at, expires_at
		 FROM snapshot WHERE id = $1`, id)

	snap, err := scanRow(row)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to scan row", err)

		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ValidateBusinessError(cn.ErrSnapshotNotFound, reflect.TypeOf(mmodel.Snapshot{}).Name())
		}

		return nil, err
	}

	return snap, nil
}

// ListExpiredSnapshots lists every snapshot whose expires_at has passed.
func (r *PostgreSQLRepository) ListExpiredSnapshots(ctx context.Context, now time.Time) ([]mmodel.Snapshot, error) {
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "postgres.list_expired_snapshots")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get database connection", err)
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		`SELECT id, project_id, bucket, "table", type, path, row_count, size_bytes, schema_json, description, created_by, created_at, expires_at
		 FROM snapshot WHERE expires_at IS NOT NULL AND expires_at <= $1`, now)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to execute query", err)
		return nil, err
	}
	defer rows.Close()

	var snaps []mmodel.Snapshot

	for rows.Next() {
		snap, err := scanRow(rows)
		if err != nil {
			mopentelemetry.HandleSpanError(&span, "Failed to scan row", err)
			return nil, err
		}

		snaps = append(snaps, *snap)
	}

	return snaps, rows.Err()
}

// ListForTable lists every snapshot taken of (project, bucket, table),
// newest first.
func (r *PostgreSQLRepository) ListForTable(ctx context.Context, projectID, bucket, table string) ([]mmodel.Snapshot, error) {
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "postgres.list_snapshots_for_table")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get database connection", err)
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		`SELECT id, project_id, bucket, "table", type, path, row_count, size_bytes, schema_json, description, created_by, created_at, expires_at
		 FROM snapshot WHERE project_id = $1 AND bucket = $2 AND "table" = $3 ORDER BY created_at DESC`,
		projectID, bucket, table)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to execute query", err)
		return nil, err
	}
	defer rows.Close()

	var snaps []mmodel.Snapshot

	for rows.Next() {
		snap, err := scanRow(rows)
		if err != nil {
			mopentelemetry.HandleSpanError(&span, "Failed to scan row", err)
			return nil, err
		}

		snaps = append(snaps, *snap)
	}

	return snaps, rows.Err()
}

// DeleteSnapshotRow removes a snapshot catalog row after its file has been
// swept.
func (r *PostgreSQLRepository) DeleteSnapshotRow(ctx context.Context, id string) error {
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "postgres.delete_snapshot_row")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get database connection", err)
		return err
	}

	_, err = db.ExecContext(ctx, `DELETE FROM snapshot WHERE id = $1`, id)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to execute delete query", err)
	}

	return err
}
