// Package project implements the Postgres-backed store for the Project
// entity: the top-level tenant row every branch, bucket, table and file
// hangs off of.
package project

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	cn "github.com/padak/keboola-storage-duckdb-sub001/common/constant"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mopentelemetry"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mpostgres"
	pgerr "github.com/padak/keboola-storage-duckdb-sub001/internal/adapters/postgres"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

// Repository provides operations for project entities.
type Repository interface {
	Create(ctx context.Context, project *mmodel.Project) (*mmodel.Project, error)
	Find(ctx context.Context, id string) (*mmodel.Project, error)
	FindAll(ctx context.Context, limit, offset int) ([]*mmodel.Project, error)
	Update(ctx context.Context, id string, project *mmodel.Project) (*mmodel.Project, error)
	Delete(ctx context.Context, id string) error
}

// PostgreSQLRepository is a Postgres-specific implementation of Repository.
type PostgreSQLRepository struct {
	connection *mpostgres.PostgresConnection
	tableName  string
}

// NewPostgreSQLRepository returns a new PostgreSQLRepository using the given connection.
func NewPostgreSQLRepository(pc *mpostgres.PostgresConnection) *PostgreSQLRepository {
	return &PostgreSQLRepository{connection: pc, tableName: "project"}
}

// Model is the Postgres row shape for a project.
type Model struct {
	ID        string
	Name      string
	Status    string
	Metadata  []byte
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt sql.NullTime
}

// FromEntity populates m from p.
func (m *Model) FromEntity(p *mmodel.Project) {
	m.ID = p.ID
	m.Name = p.Name
	m.Status = p.Status
	m.CreatedAt = p.CreatedAt
	m.UpdatedAt = p.UpdatedAt

	if p.Metadata != nil {
		m.Metadata, _ = json.Marshal(p.Metadata)
	}
}

// ToEntity converts m to its domain entity.
func (m *Model) ToEntity() *mmodel.Project {
	p := &mmodel.Project{
		ID:        m.ID,
		Name:      m.Name,
		Status:    m.Status,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}

	if len(m.Metadata) > 0 {
		_ = json.Unmarshal(m.Metadata, &p.Metadata)
	}

	if m.DeletedAt.Valid {
		deletedAt := m.DeletedAt.Time
		p.DeletedAt = &deletedAt
	}

	return p
}

// Create inserts a new project row.
func (r *PostgreSQLRepository) Create(ctx context.Context, project *mmodel.Project) (*mmodel.Project, error) {
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "postgres.create_project")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get database connection", err)
		return nil, err
	}

	record := &Model{}
	record.FromEntity(project)

	_, err = db.ExecContext(ctx,
		`INSERT INTO project (id, name, status, metadata, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		record.ID, record.Name, record.Status, record.Metadata, record.CreatedAt, record.UpdatedAt)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to execute insert query", err)

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			return nil, pgerr.ValidatePGError(pgErr, reflect.TypeOf(mmodel.Project{}).Name())
		}

		return nil, err
	}

	return record.ToEntity(), nil
}

// Find retrieves a project by id.
func (r *PostgreSQLRepository) Find(ctx context.Context, id string) (*mmodel.Project, error) {
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "postgres.find_project")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get database connection", err)
		return nil, err
	}

	record := &Model{}

	row := db.QueryRowContext(ctx,
		`SELECT id, name, status, metadata, created_at, updated_at, deleted_at FROM project WHERE id = $1 AND deleted_at IS NULL`, id)

	if err := row.Scan(&record.ID, &record.Name, &record.Status, &record.Metadata, &record.CreatedAt, &record.UpdatedAt, &record.DeletedAt); err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to scan row", err)

		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ValidateBusinessError(cn.ErrProjectNotFound, reflect.TypeOf(mmodel.Project{}).Name())
		}

		return nil, err
	}

	return record.ToEntity(), nil
}

// FindAll lists non-deleted projects, paginated.
func (r *PostgreSQLRepository) FindAll(ctx context.Context, limit, offset int) ([]*mmodel.Project, error) {
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "postgres.find_all_projects")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get database connection", err)
		return nil, err
	}

	builder := mpostgres.NewSQLQueryBuilder(r.tableName, mpostgres.WithLimitOffset(int64(limit), int64(offset)))
	builder.Where = append(builder.Where, "deleted_at IS NULL")
	builder.Sorts = append(builder.Sorts, "created_at DESC")

	query := fmt.Sprintf("SELECT id, name, status, metadata, created_at, updated_at, deleted_at FROM %s", builder.Table)
	if len(builder.Where) > 0 {
		query += " WHERE " + strings.Join(builder.Where, " AND ")
	}

	if len(builder.Sorts) > 0 {
		query += " ORDER BY " + strings.Join(builder.Sorts, ", ")
	}

	query += " " + builder.Limit + " " + builder.Offset

	rows, err := db.QueryContext(ctx, query, builder.Params...)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to execute query", err)
		return nil, err
	}
	defer rows.Close()

	var projects []*mmodel.Project

	for rows.Next() {
		record := &Model{}
		if err := rows.Scan(&record.ID, &record.Name, &record.Status, &record.Metadata, &record.CreatedAt, &record.UpdatedAt, &record.DeletedAt); err != nil {
			mopentelemetry.HandleSpanError(&span, "Failed to scan row", err)
			return nil, err
		}

		projects = append(projects, record.ToEntity())
	}

	return projects, rows.Err()
}

// Update patches a project's mutable fields.
func (r *PostgreSQLRepository) Update(ctx context.Context, id string, project *mmodel.Project) (*mmodel.Project, error) {
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "postgres.update_project")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get database connection", err)
		return nil, err
	}

	record := &Model{}
	record.FromEntity(project)
	record.UpdatedAt = time.Now()

	result, err := db.ExecContext(ctx,
		`UPDATE project SET name = $1, metadata = $2, updated_at = $3 WHERE id = $4 AND deleted_at IS NULL`,
		record.Name, record.Metadata, record.UpdatedAt, id)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to execute update query", err)
		return nil, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get rows affected", err)
		return nil, err
	}

	if rowsAffected == 0 {
		err := common.ValidateBusinessError(cn.ErrProjectNotFound, reflect.TypeOf(mmodel.Project{}).Name())
		mopentelemetry.HandleSpanError(&span, "Failed to update project. Rows affected is 0", err)

		return nil, err
	}

	record.ID = id

	return record.ToEntity(), nil
}

// Delete soft-deletes a project.
func (r *PostgreSQLRepository) Delete(ctx context.Context, id string) error {
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "postgres.delete_project")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get database connection", err)
		return err
	}

	result, err := db.ExecContext(ctx, `UPDATE project SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
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
		err := common.ValidateBusinessError(cn.ErrProjectNotFound, reflect.TypeOf(mmodel.Project{}).Name())
		mopentelemetry.HandleSpanError(&span, "Failed to delete project. Rows affected is 0", err)

		return err
	}

	return nil
}
