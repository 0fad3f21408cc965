package command

import (
	"context"
	"fmt"
	"time"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mopentelemetry"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/enginefile"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/snapshotsettings"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

// TruncateTable removes every row from a table while keeping its schema,
// taking a pre-truncate snapshot first if the effective settings enable it.
func (uc *UseCase) TruncateTable(ctx context.Context, requestID, projectID, branchID, bucket, table string) error {
	logger := common.NewLoggerFromContext(ctx)
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "command.truncate_table")
	defer span.End()

	start := time.Now()

	logger.Infof("Trying to truncate table %s in bucket %s", table, bucket)

	if err := uc.maybeAutoSnapshot(ctx, projectID, branchID, bucket, table, snapshotsettings.OpTruncateTable, mmodel.SnapshotTypeAutoPreTruncate); err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to take pre-truncate snapshot", err)
		uc.emitAudit(ctx, requestID, projectID, "truncate", "table", bucket+"/"+table, start, err)

		return err
	}

	err := uc.Overlay.Write(ctx, projectID, branchID, bucket, table, func(ctx context.Context, conn *enginefile.Conn) error {
		_, err := conn.DB.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", table))
		return err
	})
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to truncate table", err)
		uc.emitAudit(ctx, requestID, projectID, "truncate", "table", bucket+"/"+table, start, err)

		return err
	}

	owningBranch, err := uc.effectiveCatalogBranch(ctx, projectID, branchID, bucket, table)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to resolve owning branch", err)
		uc.emitAudit(ctx, requestID, projectID, "truncate", "table", bucket+"/"+table, start, err)

		return err
	}

	err = uc.TableRepo.UpdateCounters(ctx, projectID, owningBranch, bucket, table, 0, 0)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to reset table counters", err)
	}

	uc.emitAudit(ctx, requestID, projectID, "truncate", "table", bucket+"/"+table, start, err)

	return err
}
