package command

import (
	"context"
	"os"
	"time"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mopentelemetry"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

// ReconcileProject walks every table catalog row under a project and
// compares it against its engine file on disk: a row marked orphaned whose
// file is back is marked active again (rebuilt); an active row whose file
// has gone missing is deleted and counted as removed, or, if that delete
// fails, marked orphaned and reported as still orphaned; an orphaned row
// whose file is still missing is reported as still orphaned.
func (uc *UseCase) ReconcileProject(ctx context.Context, requestID, projectID string) (*mmodel.ReconcileReport, error) {
	logger := common.NewLoggerFromContext(ctx)
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "command.reconcile_project")
	defer span.End()

	start := time.Now()

	logger.Infof("Trying to reconcile project: %s", projectID)

	report := &mmodel.ReconcileReport{ProjectID: projectID}

	branches, err := uc.BranchRepo.FindAll(ctx, projectID)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to list branches", err)
		uc.emitAudit(ctx, requestID, projectID, "reconcile", "project", projectID, start, err)

		return nil, err
	}

	for _, b := range branches {
		buckets, err := uc.BucketRepo.FindAll(ctx, projectID, b.ID, "")
		if err != nil {
			mopentelemetry.HandleSpanError(&span, "Failed to list buckets", err)
			uc.emitAudit(ctx, requestID, projectID, "reconcile", "project", projectID, start, err)

			return nil, err
		}

		for _, bk := range buckets {
			tables, err := uc.TableRepo.FindAll(ctx, projectID, b.ID, bk.Name, "")
			if err != nil {
				mopentelemetry.HandleSpanError(&span, "Failed to list tables", err)
				uc.emitAudit(ctx, requestID, projectID, "reconcile", "project", projectID, start, err)

				return nil, err
			}

			for _, t := range tables {
				uc.reconcileTable(ctx, projectID, b.ID, bk.Name, t, report)
			}
		}
	}

	uc.emitAudit(ctx, requestID, projectID, "reconcile", "project", projectID, start, nil)

	return report, nil
}

func (uc *UseCase) reconcileTable(ctx context.Context, projectID, branchID, bucket string, t *mmodel.Table, report *mmodel.ReconcileReport) {
	logger := common.NewLoggerFromContext(ctx)

	key := bucket + "/" + t.Name

	path, err := uc.Resolver.Resolve(ctx, projectID, branchID, bucket, t.Name)
	if err != nil {
		logger.Errorf("Error resolving path for %s: %v", key, err)
		report.StillOrphaned = append(report.StillOrphaned, key)

		return
	}

	_, statErr := os.Stat(path)
	fileExists := statErr == nil

	switch {
	case t.Status == mmodel.TableStatusOrphaned && fileExists:
		if err := uc.TableRepo.MarkActive(ctx, projectID, branchID, bucket, t.Name); err != nil {
			logger.Errorf("Error rebuilding %s: %v", key, err)
			report.StillOrphaned = append(report.StillOrphaned, key)

			return
		}

		report.RebuiltRows = append(report.RebuiltRows, key)
	case t.Status != mmodel.TableStatusOrphaned && !fileExists:
		if err := uc.TableRepo.Delete(ctx, projectID, branchID, bucket, t.Name); err != nil {
			if err := uc.TableRepo.MarkOrphaned(ctx, projectID, branchID, bucket, t.Name); err != nil {
				logger.Errorf("Error orphaning %s: %v", key, err)
			}

			report.StillOrphaned = append(report.StillOrphaned, key)

			return
		}

		report.RemovedRows = append(report.RemovedRows, key)
	case t.Status == mmodel.TableStatusOrphaned && !fileExists:
		report.StillOrphaned = append(report.StillOrphaned, key)
	}
}
