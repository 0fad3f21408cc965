// Package file implements the Postgres-backed store for uploaded blob
// files, distinct from the engine-file tables the importexport pipeline
// stages into. Staged files carry an expiry and are swept if never
// registered against a table.
package file

import (
	"context"
	"database/sql"
	"errors"
	"reflect"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	cn "github.com/padak/keboola-storage-duckdb-sub001/common/constant"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mopentelemetry"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mpostgres"
	pgerr "github.com/padak/keboola-storage-duckdb-sub001/internal/adapters/postgres"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

// Repository provides operations for uploaded-file catalog rows.
type Repository interface {
	Create(ctx context.Context, f *mmodel.File) (*mmodel.File, error)
	Find(ctx context.Context, id string) (*mmodel.File, error)
	Promote(ctx context.Context, id string) error
	ListAbandonedStaging(ctx context.Context) ([]*mmodel.File, error)
	Delete(ctx context.Context, id string) error
}

// PostgreSQLRepository is a Postgres-specific implementation of Repository.
type PostgreSQLRepository struct {
	connection *mpostgres.PostgresConnection
}

// NewPostgreSQLRepository returns a new PostgreSQLRepository using the given connection.
func NewPostgreSQLRepository(pc *mpostgres.PostgresConnection) *PostgreSQLRepository {
	return &PostgreSQLRepository{connection: pc}
}

func scanFile(row interface{ Scan(...any) error }) (*mmodel.File, error) {
	f := &mmodel.File{}

	var expiresAt sql.NullTime

	if err := row.Scan(&f.ID, &f.ProjectID, &f.Name, &f.Path, &f.SizeBytes, &f.SHA256, &f.ContentType, &f.Staging, &expiresAt, &f.CreatedAt); err != nil {
		return nil, err
	}

	if expiresAt.Valid {
		t := expiresAt.Time
		f.ExpiresAt = &t
	}

	return f, nil
}

// Create inserts a new file catalog row.
func (r *PostgreSQLRepository) Create(ctx context.Context, f *mmodel.File) (*mmodel.File, error) {
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "postgres.create_file")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get database connection", err)
		return nil, err
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO file (id, project_id, name, path, size_bytes, sha256, content_type, staging, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		f.ID, f.ProjectID, f.Name, f.Path, f.SizeBytes, f.SHA256, f.ContentType, f.Staging, f.ExpiresAt, f.CreatedAt)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to execute insert query", err)

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			return nil, pgerr.ValidatePGError(pgErr, reflect.TypeOf(mmodel.File{}).Name())
		}

		return nil, err
	}

	return f, nil
}

// Find retrieves a file catalog row by id.
func (r *PostgreSQLRepository) Find(ctx context.Context, id string) (*mmodel.File, error) {
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "postgres.find_file")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get database connection", err)
		return nil, err
	}

	row := db.QueryRowContext(ctx,
		`SELECT id, project_id, name, path, size_bytes, sha256, content_type, staging, expires_at, created_at FROM file WHERE id = $1`, id)

	f, err := scanFile(row)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to scan row", err)

		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ValidateBusinessError(cn.ErrFileNotFound, reflect.TypeOf(mmodel.File{}).Name())
		}

		return nil, err
	}

	return f, nil
}

// Promote clears a file's staging flag and expiry once it has been
// registered against a table import.
func (r *PostgreSQLRepository) Promote(ctx context.Context, id string) error {
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "postgres.promote_file")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get database connection", err)
		return err
	}

	_, err = db.ExecContext(ctx, `UPDATE file SET staging = false, expires_at = NULL WHERE id = $1`, id)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to execute update query", err)
	}

	return err
}

// ListAbandonedStaging lists staged files past their expiry; nothing in this
// tree calls it.
func (r *PostgreSQLRepository) ListAbandonedStaging(ctx context.Context) ([]*mmodel.File, error) {
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "postgres.list_abandoned_staging")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get database connection", err)
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		`SELECT id, project_id, name, path, size_bytes, sha256, content_type, staging, expires_at, created_at
		 FROM file WHERE staging = true AND expires_at IS NOT NULL AND expires_at <= now()`)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to execute query", err)
		return nil, err
	}
	defer rows.Close()

	var files []*mmodel.File

	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			mopentelemetry.HandleSpanError(&span, "Failed to scan row", err)
			return nil, err
		}

		files = append(files, f)
	}

	return files, rows.Err()
}

// Delete removes a file catalog row.
func (r *PostgreSQLRepository) Delete(ctx context.Context, id string) error {
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "postgres.delete_file")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get database connection", err)
		return err
	}

	_, err = db.ExecContext(ctx, `DELETE FROM file WHERE id = $1`, id)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to execute delete query", err)
	}

	return err
}
