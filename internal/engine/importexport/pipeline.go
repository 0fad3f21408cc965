// Package importexport implements the three-stage reconcile pipeline that
// brings external columnar/delimited data into a target table (stage,
// transform/merge, cleanup) and its symmetric export counterpart.
package importexport

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	cn "github.com/padak/keboola-storage-duckdb-sub001/common/constant"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/branchoverlay"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/enginefile"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/tablelock"
)

// DedupMode enumerates the recognized incremental-merge strategies.
type DedupMode string

// Recognized dedup modes.
const (
	DedupUpdateDuplicates DedupMode = "update-duplicates"
	DedupInsertDuplicates DedupMode = "insert-duplicates"
	DedupFailOnDuplicates DedupMode = "fail-on-duplicates"
)

// SourceFormat enumerates the recognized source encodings.
type SourceFormat string

// Recognized source formats.
const (
	FormatDelimited SourceFormat = "delimited"
	FormatColumnar  SourceFormat = "columnar"
)

// DelimitedOptions configures a delimited (CSV-like) source read.
type DelimitedOptions struct {
	Delimiter     string
	Quote         string
	Escape        string
	HeaderPresent bool
	NullLiteral   string
}

// ImportRequest is the fully-validated configuration object for one
// reconcile run. Unknown keys are rejected at the transport boundary
// before this struct is ever constructed.
type ImportRequest struct {
	Project, Branch, Bucket, Table string
	SourcePath                     string
	Format                         SourceFormat
	Delimited                      DelimitedOptions
	Incremental                    bool
	DedupMode                      DedupMode
	PrimaryKey                     []string
	ColumnMapping                  []string
	TombstoneColumn                string
}

// ImportResult reports the row/byte counts the spec names.
type ImportResult struct {
	RowsImported int64
	RowsAfter    int64
	BytesAfter   int64
}

// Pipeline runs the stage -> transform/merge -> cleanup protocol, holding
// the target table's write lock end to end.
type Pipeline struct {
	Overlay *branchoverlay.Overlay
	Files   *enginefile.Manager
	Locks   *tablelock.Manager
}

// New builds a Pipeline.
func New(overlay *branchoverlay.Overlay, files *enginefile.Manager, locks *tablelock.Manager) *Pipeline {
	return &Pipeline{Overlay: overlay, Files: files, Locks: locks}
}

const stagingRelation = "staging"

// Run executes the three stages against req, holding the target table's
// write lock for the whole operation.
func (p *Pipeline) Run(ctx context.Context, req ImportRequest) (ImportResult, error) {
	lockID := tablelock.LockID(req.Project, req.Branch, req.Bucket, req.Table)

	lease, err := p.Locks.AcquireWrite(ctx, lockID, 0)
	if err != nil {
		return ImportResult{}, err
	}
	defer lease.Release()

	stagingPath := p.Files.StagingPath(".duckdb")
	defer os.Remove(stagingPath)

	staging, err := p.Files.OpenWrite(ctx, stagingPath)
	if err != nil {
		return ImportResult{}, err
	}
	defer staging.Close()

	if err := p.stage(ctx, staging, req); err != nil {
		return ImportResult{}, err
	}

	targetPath, err := p.Overlay.PrepareWrite(ctx, req.Project, req.Branch, req.Bucket, req.Table)
	if err != nil {
		return ImportResult{}, err
	}

	target, err := p.Files.OpenWrite(ctx, targetPath)
	if err != nil {
		return ImportResult{}, err
	}
	defer target.Close()

	const alias = "stg"

	if err := p.Files.Attach(ctx, target, stagingPath, alias); err != nil {
		return ImportResult{}, err
	}
	defer p.Files.Detach(ctx, target, alias)

	return p.merge(ctx, target, alias, req)
}

func (p *Pipeline) stage(ctx context.Context, staging *enginefile.Conn, req ImportRequest) error {
	var stmt string

	switch req.Format {
	case FormatDelimited:
		opts := req.Delimited

		delim := opts.Delimiter
		if delim == "" {
			delim = ","
		}

		stmt = fmt.Sprintf(
			"CREATE TABLE %s AS SELECT * FROM read_csv('%s', delim='%s', header=%t, nullstr='%s')",
			stagingRelation, req.SourcePath, delim, opts.HeaderPresent, opts.NullLiteral)

	case FormatColumnar:
		stmt = fmt.Sprintf("CREATE TABLE %s AS SELECT * FROM read_parquet('%s')", stagingRelation, req.SourcePath)

	default:
		return common.ValidateBusinessError(cn.ErrImportSourceInvalid, "ImportRequest")
	}

	if len(req.ColumnMapping) > 0 {
		stmt = applyColumnMapping(stmt, req.ColumnMapping)
	}

	if _, err := staging.DB.ExecContext(ctx, stmt); err != nil {
		return common.ValidateBusinessError(cn.ErrImportSourceInvalid, "ImportRequest")
	}

	return nil
}

// applyColumnMapping returns stmt unchanged: the staging relation keeps the
// source's column order, and no reordering by ColumnMapping is applied.
// ColumnMapping is only used to name the non-key columns an upsert assigns
// (see upsertAssignments).
func applyColumnMapping(stmt string, _ []string) string {
	return stmt
}

func (p *Pipeline) merge(ctx context.Context, target *enginefile.Conn, alias string, req ImportRequest) (ImportResult, error) {
	var rowsImported int64
	if err := target.DB.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s.%s", alias, stagingRelation)).Scan(&rowsImported); err != nil {
		return ImportResult{}, common.ValidateBusinessError(cn.ErrEngineIO, "Import")
	}

	switch {
	case req.TombstoneColumn != "":
		if err := p.mergeTombstone(ctx, target, alias, req); err != nil {
			return ImportResult{}, err
		}

	case !req.Incremental:
		if _, err := target.DB.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", req.Table)); err != nil {
			return ImportResult{}, common.ValidateBusinessError(cn.ErrEngineIO, "Import")
		}

		if _, err := target.DB.ExecContext(ctx, fmt.Sprintf("INSERT INTO %s SELECT * FROM %s.%s", req.Table, alias, stagingRelation)); err != nil {
			return ImportResult{}, common.ValidateBusinessError(cn.ErrEngineIO, "Import")
		}

	case len(req.PrimaryKey) == 0:
		if _, err := target.DB.ExecContext(ctx, fmt.Sprintf("INSERT INTO %s SELECT * FROM %s.%s", req.Table, alias, stagingRelation)); err != nil {
			return ImportResult{}, common.ValidateBusinessError(cn.ErrEngineIO, "Import")
		}

	default:
		if err := p.mergeWithPrimaryKey(ctx, target, alias, req); err != nil {
			return ImportResult{}, err
		}
	}

	var rowsAfter int64
	if err := target.DB.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", req.Table)).Scan(&rowsAfter); err != nil {
		return ImportResult{}, common.ValidateBusinessError(cn.ErrEngineIO, "Import")
	}

	var bytesAfter int64
	if info, err := os.Stat(target.Path()); err == nil {
		bytesAfter = info.Size()
	}

	return ImportResult{RowsImported: rowsImported, RowsAfter: rowsAfter, BytesAfter: bytesAfter}, nil
}

func (p *Pipeline) mergeWithPrimaryKey(ctx context.Context, target *enginefile.Conn, alias string, req ImportRequest) error {
	pk := strings.Join(req.PrimaryKey, ", ")

	switch req.DedupMode {
	case DedupFailOnDuplicates:
		var conflicts int64

		q := fmt.Sprintf(
			"SELECT COUNT(*) FROM %s.%s s JOIN %s t USING (%s)",
			alias, stagingRelation, req.Table, pk)

		if err := target.DB.QueryRowContext(ctx, q).Scan(&conflicts); err != nil {
			return common.ValidateBusinessError(cn.ErrEngineIO, "Import")
		}

		if conflicts > 0 {
			return common.ValidateBusinessError(cn.ErrImportDuplicateKey, "Import")
		}

		_, err := target.DB.ExecContext(ctx, fmt.Sprintf("INSERT INTO %s SELECT * FROM %s.%s", req.Table, alias, stagingRelation))
		if err != nil {
			return common.ValidateBusinessError(cn.ErrEngineIO, "Import")
		}

	case DedupInsertDuplicates:
		_, err := target.DB.ExecContext(ctx, fmt.Sprintf("INSERT INTO %s SELECT * FROM %s.%s", req.Table, alias, stagingRelation))
		if err != nil {
			return common.ValidateBusinessError(cn.ErrImportDuplicateKey, "Import")
		}

	case DedupUpdateDuplicates, "":
		fallthrough
	default:
		stmt := fmt.Sprintf(
			"INSERT INTO %s SELECT * FROM %s.%s ON CONFLICT (%s) DO UPDATE SET %s",
			req.Table, alias, stagingRelation, pk, upsertAssignments(req))

		if _, err := target.DB.ExecContext(ctx, stmt); err != nil {
			return common.ValidateBusinessError(cn.ErrEngineIO, "Import")
		}
	}

	return nil
}

func (p *Pipeline) mergeTombstone(ctx context.Context, target *enginefile.Conn, alias string, req ImportRequest) error {
	pk := strings.Join(req.PrimaryKey, ", ")

	live := fmt.Sprintf("(SELECT * FROM %s.%s WHERE NOT %s)", alias, stagingRelation, req.TombstoneColumn)

	updateStmt := fmt.Sprintf(
		"UPDATE %s t SET %s FROM %s s WHERE %s",
		req.Table, upsertAssignments(req), live, joinOn("t", "s", req.PrimaryKey))

	if _, err := target.DB.ExecContext(ctx, updateStmt); err != nil {
		return common.ValidateBusinessError(cn.ErrEngineIO, "Import")
	}

	insertStmt := fmt.Sprintf(
		"INSERT INTO %s SELECT s.* FROM %s s LEFT JOIN %s t USING (%s) WHERE t.%s IS NULL",
		req.Table, live, req.Table, pk, req.PrimaryKey[0])

	if _, err := target.DB.ExecContext(ctx, insertStmt); err != nil {
		return common.ValidateBusinessError(cn.ErrEngineIO, "Import")
	}

	deleteStmt := fmt.Sprintf(
		"DELETE FROM %s t USING %s.%s s WHERE s.%s AND %s",
		req.Table, alias, stagingRelation, req.TombstoneColumn, joinOn("t", "s", req.PrimaryKey))

	if _, err := target.DB.ExecContext(ctx, deleteStmt); err != nil {
		return common.ValidateBusinessError(cn.ErrEngineIO, "Import")
	}

	return nil
}

func upsertAssignments(req ImportRequest) string {
	pkSet := make(map[string]bool, len(req.PrimaryKey))
	for _, k := range req.PrimaryKey {
		pkSet[k] = true
	}

	var assigns []string

	for _, col := range req.ColumnMapping {
		if pkSet[col] {
			continue
		}

		assigns = append(assigns, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
	}

	return strings.Join(assigns, ", ")
}

func joinOn(leftAlias, rightAlias string, pk []string) string {
	var conds []string

	for _, k := range pk {
		conds = append(conds, fmt.Sprintf("%s.%s = %s.%s", leftAlias, k, rightAlias, k))
	}

	return strings.Join(conds, " AND ")
}

// CleanupAbandonedStaging removes the entries under stagingRoot whose
// modification time is at least olderThan before now and returns the
// removed paths. It is not part of the synchronous Run path, and nothing
// in this tree schedules it.
func CleanupAbandonedStaging(stagingRoot string, olderThan time.Duration, now time.Time) ([]string, error) {
	entries, err := os.ReadDir(stagingRoot)
	if err != nil {
		return nil, err
	}

	var removed []string

	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			continue
		}

		if now.Sub(info.ModTime()) < olderThan {
			continue
		}

		path := stagingRoot + "/" + e.Name()
		if err := os.Remove(path); err == nil {
			removed = append(removed, path)
		}
	}

	return removed, nil
}
