// Package apikey implements the Postgres-backed store for issued bearer
// API keys. Only the SHA-256 hash of a key is ever persisted.
package apikey

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

// Repository provides operations for API key catalog rows.
type Repository interface {
	Create(ctx context.Context, key *mmodel.APIKey) (*mmodel.APIKey, error)
	FindByHash(ctx context.Context, hash string) (*mmodel.APIKey, error)
	FindAllForProject(ctx context.Context, projectID string) ([]*mmodel.APIKey, error)
	Revoke(ctx context.Context, id string) error
}

// PostgreSQLRepository is a Postgres-specific implementation of Repository.
type PostgreSQLRepository struct {
	connection *mpostgres.PostgresConnection
}

// NewPostgreSQLRepository returns a new PostgreSQLRepository using the given connection.
func NewPostgreSQLRepository(pc *mpostgres.PostgresConnection) *PostgreSQLRepository {
	return &PostgreSQLRepository{connection: pc}
}

func scanKey(row interface{ Scan(...any) error }) (*mmodel.APIKey, error) {
	k := &mmodel.APIKey{}

	var projectID sql.NullString

	var revokedAt sql.NullTime

	if err := row.Scan(&k.ID, &projectID, &k.IsAdmin, &k.KeyHash, &k.KeyHint, &k.CreatedAt, &revokedAt); err != nil {
		return nil, err
	}

	if projectID.Valid {
		k.ProjectID = &projectID.String
	}

	if revokedAt.Valid {
		t := revokedAt.Time
		k.RevokedAt = &t
	}

	return k, nil
}

// Create inserts a new API key row.
func (r *PostgreSQLRepository) Create(ctx context.Context, key *mmodel.APIKey) (*mmodel.APIKey, error) {
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "postgres.create_apikey")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get database connection", err)
		return nil, err
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO apikey (id, project_id, is_admin, key_hash, key_hint, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		key.ID, key.ProjectID, key.IsAdmin, key.KeyHash, key.KeyHint, key.CreatedAt)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to execute insert query", err)

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			return nil, pgerr.ValidatePGError(pgErr, reflect.TypeOf(mmodel.APIKey{}).Name())
		}

		return nil, err
	}

	return key, nil
}

// FindByHash looks up an active key by its SHA-256 hash, the hot path the
// auth middleware calls on every request.
func (r *PostgreSQLRepository) FindByHash(ctx context.Context, hash string) (*mmodel.APIKey, error) {
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "postgres.find_apikey_by_hash")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get database connection", err)
		return nil, err
	}

	row := db.QueryRowContext(ctx,
		`SELECT id, project_id, is_admin, key_hash, key_hint, created_at, revoked_at FROM apikey WHERE key_hash = $1 AND revoked_at IS NULL`, hash)

	key, err := scanKey(row)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to scan row", err)

		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ValidateBusinessError(cn.ErrInvalidAPIKey, reflect.TypeOf(mmodel.APIKey{}).Name())
		}

		return nil, err
	}

	return key, nil
}

// FindAllForProject lists every key (admin or project-scoped) issued under
// a project.
func (r *PostgreSQLRepository) FindAllForProject(ctx context.Context, projectID string) ([]*mmodel.APIKey, error) {
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "postgres.find_all_apikeys")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get database connection", err)
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		`SELECT id, project_id, is_admin, key_hash, key_hint, created_at, revoked_at FROM apikey WHERE project_id = $1 ORDER BY created_at DESC`,
		projectID)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to execute query", err)
		return nil, err
	}
	defer rows.Close()

	var keys []*mmodel.APIKey

	for rows.Next() {
		key, err := scanKey(rows)
		if err != nil {
			mopentelemetry.HandleSpanError(&span, "Failed to scan row", err)
			return nil, err
		}

		keys = append(keys, key)
	}

	return keys, rows.Err()
}

// Revoke marks a key revoked; FindByHash will no longer return it.
func (r *PostgreSQLRepository) Revoke(ctx context.Context, id string) error {
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "postgres.revoke_apikey")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get database connection", err)
		return err
	}

	result, err := db.ExecContext(ctx, `UPDATE apikey SET revoked_at = now() WHERE id = $1 AND revoked_at IS NULL`, id)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to execute update query", err)
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get rows affected", err)
		return err
	}

	if rowsAffected == 0 {
		err := common.ValidateBusinessError(cn.ErrAPIKeyNotFound, reflect.TypeOf(mmodel.APIKey{}).Name())
		mopentelemetry.HandleSpanError(&span, "Failed to revoke key. Rows affected is 0", err)

		return err
	}

	return nil
}
