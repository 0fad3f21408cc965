package query

import (
	"context"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mopentelemetry"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

// GetTable retrieves a table's catalog row, resolving to the default
// branch's row when branch never copied or created it.
func (uc *UseCase) GetTable(ctx context.Context, projectID, branchID, bucket, name string) (*mmodel.Table, error) {
	logger := common.NewLoggerFromContext(ctx)
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "query.get_table")
	defer span.End()

	logger.Infof("Retrieving table for name: %s", name)

	owningBranch, err := uc.effectiveCatalogBranch(ctx, projectID, branchID, bucket, name)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to resolve owning branch", err)
		return nil, err
	}

	table, err := uc.TableRepo.Find(ctx, projectID, owningBranch, bucket, name)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get table", err)
		return nil, err
	}

	return table, nil
}

// ListTables returns every table visible in a bucket on a branch, optionally
// narrowed to names matching nameFilter.
func (uc *UseCase) ListTables(ctx context.Context, projectID, branchID, bucket, nameFilter string) ([]*mmodel.Table, error) {
	logger := common.NewLoggerFromContext(ctx)
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "query.list_tables")
	defer span.End()

	logger.Infof("Retrieving tables for bucket %s", bucket)

	defaultTables, err := uc.TableRepo.FindAll(ctx, projectID, mmodel.DefaultBranchID, bucket, nameFilter)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to list default branch tables", err)
		return nil, err
	}

	if branchID == mmodel.DefaultBranchID {
		return defaultTables, nil
	}

	branchTables, err := uc.TableRepo.FindAll(ctx, projectID, branchID, bucket, nameFilter)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to list branch tables", err)
		return nil, err
	}

	branchRow, err := uc.BranchRepo.GetBranch(ctx, projectID, branchID)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get branch", err)
		return nil, err
	}

	return mergeBranchTables(defaultTables, branchTables, branchRow), nil
}

// mergeBranchTables combines the default branch's tables with a branch's
// own copied/created tables, letting the branch's row shadow the default's
// and dropping anything the branch has deleted.
func mergeBranchTables(defaultTables, branchTables []*mmodel.Table, branchRow *mmodel.Branch) []*mmodel.Table {
	deleted := make(map[mmodel.TableRef]bool, len(branchRow.Deleted))
	for _, ref := range branchRow.Deleted {
		deleted[ref] = true
	}

	shadowed := make(map[mmodel.TableRef]bool, len(branchTables))
	for _, t := range branchTables {
		shadowed[mmodel.TableRef{Bucket: t.Bucket, Table: t.Name}] = true
	}

	merged := make([]*mmodel.Table, 0, len(defaultTables)+len(branchTables))

	for _, t := range defaultTables {
		ref := mmodel.TableRef{Bucket: t.Bucket, Table: t.Name}
		if deleted[ref] || shadowed[ref] {
			continue
		}

		merged = append(merged, t)
	}

	return append(merged, branchTables...)
}
