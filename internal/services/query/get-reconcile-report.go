package query

import (
	"context"
	"os"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mopentelemetry"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

// DryRunReconcile computes what a reconcile pass would do without mutating
// any catalog row, for callers that want to preview drift before acting.
func (uc *UseCase) DryRunReconcile(ctx context.Context, projectID string) (*mmodel.ReconcileReport, error) {
	logger := common.NewLoggerFromContext(ctx)
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "query.dry_run_reconcile")
	defer span.End()

	logger.Infof("Computing reconcile preview for project %s", projectID)

	branches, err := uc.BranchRepo.FindAll(ctx, projectID)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to list branches", err)
		return nil, err
	}

	report := &mmodel.ReconcileReport{ProjectID: projectID}

	for _, b := range branches {
		buckets, err := uc.BucketRepo.FindAll(ctx, projectID, b.ID, "")
		if err != nil {
			mopentelemetry.HandleSpanError(&span, "Failed to list buckets", err)
			return nil, err
		}

		for _, bk := range buckets {
			tables, err := uc.TableRepo.FindAll(ctx, projectID, b.ID, bk.Name, "")
			if err != nil {
				mopentelemetry.HandleSpanError(&span, "Failed to list tables", err)
				return nil, err
			}

			for _, t := range tables {
				path, err := uc.Resolver.Resolve(ctx, projectID, b.ID, bk.Name, t.Name)
				if err != nil {
					mopentelemetry.HandleSpanError(&span, "Failed to resolve table path", err)
					return nil, err
				}

				_, statErr := os.Stat(path)
				exists := statErr == nil
				ref := bk.Name + "/" + t.Name

				switch {
				case t.Status == mmodel.TableStatusOrphaned && exists:
					report.RebuiltRows = append(report.RebuiltRows, ref)
				case t.Status != mmodel.TableStatusOrphaned && !exists:
					report.RemovedRows = append(report.RemovedRows, ref)
				case t.Status == mmodel.TableStatusOrphaned && !exists:
					report.StillOrphaned = append(report.StillOrphaned, ref)
				}
			}
		}
	}

	return report, nil
}
