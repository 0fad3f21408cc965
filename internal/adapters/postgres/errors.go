// Package postgres holds the Postgres-backed Metadata Catalog: one
// sub-package per entity (project, branch, bucket, table, file, snapshot,
// apikey, settings), each following the same model/repository shape, plus
// the constraint-to-business-error mapping shared by all of them.
package postgres

import (
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	cn "github.com/padak/keboola-storage-duckdb-sub001/common/constant"
)

// ValidatePGError maps a Postgres constraint violation onto the matching
// business sentinel. Any other foreign-key constraint maps to
// ErrProjectNotFound; any other constraint falls back to the raw driver
// error.
func ValidatePGError(pgErr *pgconn.PgError, entityType string, args ...any) error {
	switch pgErr.ConstraintName {
	case "project_pkey":
		return common.ValidateBusinessError(cn.ErrDuplicateProject, entityType, args...)
	case "branch_pkey":
		return common.ValidateBusinessError(cn.ErrDuplicateBranch, entityType, args...)
	case "branch_project_id_fkey":
		return common.ValidateBusinessError(cn.ErrProjectNotFound, entityType, args...)
	case "bucket_pkey":
		return common.ValidateBusinessError(cn.ErrDuplicateBucketName, entityType, args...)
	case "bucket_project_id_branch_id_fkey":
		return common.ValidateBusinessError(cn.ErrBranchNotFound, entityType, args...)
	case "table_pkey":
		return common.ValidateBusinessError(cn.ErrDuplicateTableName, entityType, args...)
	case "table_project_id_branch_id_bucket_fkey":
		return common.ValidateBusinessError(cn.ErrBucketNotFound, entityType, args...)
	case "apikey_pkey":
		return common.ValidateBusinessError(cn.ErrAPIKeyNotFound, entityType, args...)
	default:
		if strings.Contains(pgErr.ConstraintName, "fkey") {
			return common.ValidateBusinessError(cn.ErrProjectNotFound, entityType, args...)
		}

		return pgErr
	}
}
