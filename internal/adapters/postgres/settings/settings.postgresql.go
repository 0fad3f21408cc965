// Package settings implements the Postgres-backed store for snapshot
// settings overrides at the project, bucket and table levels. A stored
// NULL column clears an override and restores inheritance from the level
// above, matching the hierarchical resolver's merge rule.
package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mopentelemetry"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mpostgres"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

// Repository provides per-level read/write access to snapshot settings
// overrides. A nil *mmodel.SnapshotSettings return means no override is
// stored at that level, and the resolver should simply inherit.
type Repository interface {
	GetProjectSettings(ctx context.Context, projectID string) (*mmodel.SnapshotSettings, error)
	GetBucketSettings(ctx context.Context, projectID, branchID, bucket string) (*mmodel.SnapshotSettings, error)
	GetTableSettings(ctx context.Context, projectID, branchID, bucket, table string) (*mmodel.SnapshotSettings, error)
	PutProjectSettings(ctx context.Context, projectID string, s *mmodel.SnapshotSettings) error
	PutBucketSettings(ctx context.Context, projectID, branchID, bucket string, s *mmodel.SnapshotSettings) error
	PutTableSettings(ctx context.Context, projectID, branchID, bucket, table string, s *mmodel.SnapshotSettings) error
}

// PostgreSQLRepository is a Postgres-specific implementation of Repository.
type PostgreSQLRepository struct {
	connection *mpostgres.PostgresConnection
}

// NewPostgreSQLRepository returns a new PostgreSQLRepository using the given connection.
func NewPostgreSQLRepository(pc *mpostgres.PostgresConnection) *PostgreSQLRepository {
	return &PostgreSQLRepository{connection: pc}
}

func decode(raw []byte) (*mmodel.SnapshotSettings, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	s := &mmodel.SnapshotSettings{}
	if err := json.Unmarshal(raw, s); err != nil {
		return nil, err
	}

	return s, nil
}

// GetProjectSettings reads the project-level override row, if any.
func (r *PostgreSQLRepository) GetProjectSettings(ctx context.Context, projectID string) (*mmodel.SnapshotSettings, error) {
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "postgres.get_project_settings")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get database connection", err)
		return nil, err
	}

	var raw []byte

	err = db.QueryRowContext(ctx, `SELECT snapshot_settings FROM project_settings WHERE project_id = $1`, projectID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to scan row", err)
		return nil, err
	}

	return decode(raw)
}

// GetBucketSettings reads the bucket-level override row, if any.
func (r *PostgreSQLRepository) GetBucketSettings(ctx context.Context, projectID, branchID, bucket string) (*mmodel.SnapshotSettings, error) {
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "postgres.get_bucket_settings")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get database connection", err)
		return nil, err
	}

	var raw []byte

	err = db.QueryRowContext(ctx,
		`SELECT snapshot_settings FROM bucket_settings WHERE project_id = $1 AND branch_id = $2 AND bucket = $3`,
		projectID, branchID, bucket).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to scan row", err)
		return nil, err
	}

	return decode(raw)
}

// GetTableSettings reads the table-level override row, if any.
func (r *PostgreSQLRepository) GetTableSettings(ctx context.Context, projectID, branchID, bucket, table string) (*mmodel.SnapshotSettings, error) {
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "postgres.get_table_settings")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get database connection", err)
		return nil, err
	}

	var raw []byte

	err = db.QueryRowContext(ctx,
		`SELECT snapshot_settings FROM table_settings WHERE project_id = $1 AND branch_id = $2 AND bucket = $3 AND "table" = $4`,
		projectID, branchID, bucket, table).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to scan row", err)
		return nil, err
	}

	return decode(raw)
}

// PutProjectSettings upserts the project-level override; a nil s stores
// an explicit NULL, clearing the override and restoring inheritance.
func (r *PostgreSQLRepository) PutProjectSettings(ctx context.Context, projectID string, s *mmodel.SnapshotSettings) error {
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "postgres.put_project_settings")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get database connection", err)
		return err
	}

	payload, err := encode(s)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to marshal settings", err)
		return err
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO project_settings (project_id, snapshot_settings) VALUES ($1, $2)
		 ON CONFLICT (project_id) DO UPDATE SET snapshot_settings = EXCLUDED.snapshot_settings`,
		projectID, payload)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to execute upsert query", err)
	}

	return err
}

// PutBucketSettings upserts the bucket-level override.
func (r *PostgreSQLRepository) PutBucketSettings(ctx context.Context, projectID, branchID, bucket string, s *mmodel.SnapshotSettings) error {
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "postgres.put_bucket_settings")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get database connection", err)
		return err
	}

	payload, err := encode(s)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to marshal settings", err)
		return err
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO bucket_settings (project_id, branch_id, bucket, snapshot_settings) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (project_id, branch_id, bucket) DO UPDATE SET snapshot_settings = EXCLUDED.snapshot_settings`,
		projectID, branchID, bucket, payload)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to execute upsert query", err)
	}

	return err
}

// PutTableSettings upserts the table-level override.
func (r *PostgreSQLRepository) PutTableSettings(ctx context.Context, projectID, branchID, bucket, table string, s *mmodel.SnapshotSettings) error {
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "postgres.put_table_settings")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get database connection", err)
		return err
	}

	payload, err := encode(s)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to marshal settings", err)
		return err
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO table_settings (project_id, branch_id, bucket, "table", snapshot_settings) VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (project_id, branch_id, bucket, "table") DO UPDATE SET snapshot_settings = EXCLUDED.snapshot_settings`,
		projectID, branchID, bucket, table, payload)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to execute upsert query", err)
	}

	return err
}

func encode(s *mmodel.SnapshotSettings) ([]byte, error) {
	if s == nil {
		return nil, nil
	}

	return json.Marshal(s)
}
