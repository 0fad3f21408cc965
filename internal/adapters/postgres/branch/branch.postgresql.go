// Package branch implements the Postgres-backed store for branches,
// including the copied/deleted table-ref sets the copy-on-write overlay
// reads and mutates on every write.
package branch

import (
	"context"
	"database/sql"
	"encoding/json"
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

// Repository provides operations for branch entities, including the
// copied/deleted table-ref bookkeeping the branch overlay depends on.
type Repository interface {
	Create(ctx context.Context, b *mmodel.Branch) (*mmodel.Branch, error)
	GetBranch(ctx context.Context, project, branchID string) (*mmodel.Branch, error)
	FindAll(ctx context.Context, project string) ([]*mmodel.Branch, error)
	MarkCopied(ctx context.Context, project, branchID string, ref mmodel.TableRef) error
	MarkDeleted(ctx context.Context, project, branchID string, ref mmodel.TableRef) error
	UnmarkDeleted(ctx context.Context, project, branchID string, ref mmodel.TableRef) error
	Delete(ctx context.Context, project, branchID string) error
}

// PostgreSQLRepository is a Postgres-specific implementation of Repository.
type PostgreSQLRepository struct {
	connection *mpostgres.PostgresConnection
}

// NewPostgreSQLRepository returns a new PostgreSQLRepository using the given connection.
func NewPostgreSQLRepository(pc *mpostgres.PostgresConnection) *PostgreSQLRepository {
	return &PostgreSQLRepository{connection: pc}
}

// Model is the Postgres row shape for a branch.
type Model struct {
	ID        string
	ProjectID string
	CreatedBy string
	CreatedAt time.Time
	Copied    []byte
	Deleted   []byte
}

// ToEntity converts m to its domain entity.
func (m *Model) ToEntity() *mmodel.Branch {
	b := &mmodel.Branch{ID: m.ID, ProjectID: m.ProjectID, CreatedBy: m.CreatedBy, CreatedAt: m.CreatedAt}

	if len(m.Copied) > 0 {
		_ = json.Unmarshal(m.Copied, &b.Copied)
	}

	if len(m.Deleted) > 0 {
		_ = json.Unmarshal(m.Deleted, &b.Deleted)
	}

	return b
}

// Create inserts a new branch row with empty copied/deleted sets.
func (r *PostgreSQLRepository) Create(ctx context.Context, b *mmodel.Branch) (*mmodel.Branch, error) {
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "postgres.create_branch")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get database connection", err)
		return nil, err
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO branch (id, project_id, created_by, created_at, copied, deleted) VALUES ($1, $2, $3, $4, '[]', '[]')`,
		b.ID, b.ProjectID, b.CreatedBy, b.CreatedAt)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to execute insert query", err)

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			return nil, pgerr.ValidatePGError(pgErr, reflect.TypeOf(mmodel.Branch{}).Name(), b.ID)
		}

		return nil, err
	}

	return b, nil
}

// GetBranch retrieves a branch by (project, id), the entry point the
// branch overlay uses to inspect the copied/deleted sets.
func (r *PostgreSQLRepository) GetBranch(ctx context.Context, project, branchID string) (*mmodel.Branch, error) {
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "postgres.get_branch")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get database connection", err)
		return nil, err
	}

	record := &Model{}

	row := db.QueryRowContext(ctx,
		`SELECT id, project_id, created_by, created_at, copied, deleted FROM branch WHERE project_id = $1 AND id = $2`,
		project, branchID)

	if err := row.Scan(&record.ID, &record.ProjectID, &record.CreatedBy, &record.CreatedAt, &record.Copied, &record.Deleted); err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to scan row", err)

		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ValidateBusinessError(cn.ErrBranchNotFound, reflect.TypeOf(mmodel.Branch{}).Name())
		}

		return nil, err
	}

	return record.ToEntity(), nil
}

// FindAll lists every branch registered under a project.
func (r *PostgreSQLRepository) FindAll(ctx context.Context, project string) ([]*mmodel.Branch, error) {
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "postgres.find_all_branches")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get database connection", err)
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		`SELECT id, project_id, created_by, created_at, copied, deleted FROM branch WHERE project_id = $1 ORDER BY created_at`, project)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to execute query", err)
		return nil, err
	}
	defer rows.Close()

	var branches []*mmodel.Branch

	for rows.Next() {
		record := &Model{}
		if err := rows.Scan(&record.ID, &record.ProjectID, &record.CreatedBy, &record.CreatedAt, &record.Copied, &record.Deleted); err != nil {
			mopentelemetry.HandleSpanError(&span, "Failed to scan row", err)
			return nil, err
		}

		branches = append(branches, record.ToEntity())
	}

	return branches, rows.Err()
}

// MarkCopied records that (bucket, table) now has a branch-local copy.
func (r *PostgreSQLRepository) MarkCopied(ctx context.Context, project, branchID string, ref mmodel.TableRef) error {
	return r.appendRef(ctx, project, branchID, "copied", ref)
}

// MarkDeleted records that (bucket, table) is hidden on this branch.
func (r *PostgreSQLRepository) MarkDeleted(ctx context.Context, project, branchID string, ref mmodel.TableRef) error {
	return r.appendRef(ctx, project, branchID, "deleted", ref)
}

// UnmarkDeleted removes (bucket, table) from the deleted set, e.g. when a
// create recreates a table a branch had previously dropped.
func (r *PostgreSQLRepository) UnmarkDeleted(ctx context.Context, project, branchID string, ref mmodel.TableRef) error {
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "postgres.unmark_deleted")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get database connection", err)
		return err
	}

	_, err = db.ExecContext(ctx,
		`UPDATE branch SET deleted = (SELECT COALESCE(jsonb_agg(elem), '[]') FROM jsonb_array_elements(deleted) elem
		 WHERE NOT (elem->>'bucket' = $3 AND elem->>'table' = $4)) WHERE project_id = $1 AND id = $2`,
		project, branchID, ref.Bucket, ref.Table)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to execute update query", err)
	}

	return err
}

func (r *PostgreSQLRepository) appendRef(ctx context.Context, project, branchID, column string, ref mmodel.TableRef) error {
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "postgres.append_ref")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get database connection", err)
		return err
	}

	payload, err := json.Marshal(ref)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to marshal table ref", err)
		return err
	}

	query := `UPDATE branch SET ` + column + ` = ` + column + ` || $3::jsonb WHERE project_id = $1 AND id = $2`

	_, err = db.ExecContext(ctx, query, project, branchID, payload)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to execute update query", err)
	}

	return err
}

// Delete removes a branch row. The overlay directory removal is the
// caller's responsibility.
func (r *PostgreSQLRepository) Delete(ctx context.Context, project, branchID string) error {
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "postgres.delete_branch")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get database connection", err)
		return err
	}

	result, err := db.ExecContext(ctx, `DELETE FROM branch WHERE project_id = $1 AND id = $2`, project, branchID)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to execute delete query", err)
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get rows affected", err)
		return err
	}

	if rowsAffected == 0 {
		err := common.ValidateBusinessError(cn.ErrBranchNotFound, reflect.TypeOf(mmodel.Branch{}).Name())
		mopentelemetry.HandleSpanError(&span, "Failed to delete branch. Rows affected is 0", err)

		return err
	}

	return nil
}
