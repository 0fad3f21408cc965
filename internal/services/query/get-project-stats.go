package query

import (
	"context"
	"fmt"
	"os"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mopentelemetry"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

// GetProjectStats recomputes row counts and sizes directly from the engine
// files on disk, one table at a time, rather than trusting the catalog's
// cached counters.
func (uc *UseCase) GetProjectStats(ctx context.Context, projectID string) (*mmodel.ProjectStats, error) {
	logger := common.NewLoggerFromContext(ctx)
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "query.get_project_stats")
	defer span.End()

	logger.Infof("Computing stats for project %s", projectID)

	branches, err := uc.BranchRepo.FindAll(ctx, projectID)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to list branches", err)
		return nil, err
	}

	stats := &mmodel.ProjectStats{ProjectID: projectID}

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
				row, err := uc.statTable(ctx, projectID, b.ID, bk.Name, t.Name)
				if err != nil {
					mopentelemetry.HandleSpanError(&span, "Failed to stat table", err)
					return nil, err
				}

				stats.TableCount++
				stats.TotalRows += row.RowCount
				stats.TotalBytes += row.Bytes
				stats.Tables = append(stats.Tables, row)
			}
		}
	}

	return stats, nil
}

func (uc *UseCase) statTable(ctx context.Context, projectID, branchID, bucket, table string) (mmodel.TableStats, error) {
	path, err := uc.Resolver.Resolve(ctx, projectID, branchID, bucket, table)
	if err != nil {
		return mmodel.TableStats{}, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return mmodel.TableStats{}, err
	}

	conn, err := uc.Files.OpenRead(ctx, path)
	if err != nil {
		return mmodel.TableStats{}, err
	}
	defer conn.Close()

	var rowCount int64

	err = conn.DB.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&rowCount)
	if err != nil {
		return mmodel.TableStats{}, err
	}

	return mmodel.TableStats{Bucket: bucket, Table: table, RowCount: rowCount, Bytes: info.Size()}, nil
}
