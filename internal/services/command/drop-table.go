package command

import (
	"context"
	"time"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mopentelemetry"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/snapshotsettings"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

// DropTable removes a table's engine file and catalog row, taking a
// pre-drop snapshot first if the effective settings enable it.
func (uc *UseCase) DropTable(ctx context.Context, requestID, projectID, branchID, bucket, table string) error {
	logger := common.NewLoggerFromContext(ctx)
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "command.drop_table")
	defer span.End()

	start := time.Now()

	logger.Infof("Trying to drop table %s in bucket %s", table, bucket)

	if err := uc.maybeAutoSnapshot(ctx, projectID, branchID, bucket, table, snapshotsettings.OpDropTable, mmodel.SnapshotTypeAutoPreDrop); err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to take pre-drop snapshot", err)
		uc.emitAudit(ctx, requestID, projectID, "drop", "table", bucket+"/"+table, start, err)

		return err
	}

	owningBranch, err := uc.effectiveCatalogBranch(ctx, projectID, branchID, bucket, table)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to resolve owning branch", err)
		uc.emitAudit(ctx, requestID, projectID, "drop", "table", bucket+"/"+table, start, err)

		return err
	}

	if err := uc.Overlay.Drop(ctx, projectID, branchID, bucket, table); err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to drop table file", err)
		uc.emitAudit(ctx, requestID, projectID, "drop", "table", bucket+"/"+table, start, err)

		return err
	}

	// On a non-default branch that never copied or created this table, only
	// the deleted-set entry changes; the default branch's row is untouched.
	if owningBranch == mmodel.DefaultBranchID && branchID != mmodel.DefaultBranchID {
		uc.emitAudit(ctx, requestID, projectID, "drop", "table", bucket+"/"+table, start, nil)
		return nil
	}

	err = uc.TableRepo.Delete(ctx, projectID, owningBranch, bucket, table)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to delete table row", err)
	}

	uc.emitAudit(ctx, requestID, projectID, "drop", "table", bucket+"/"+table, start, err)

	return err
}
