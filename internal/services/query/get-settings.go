package query

import (
	"context"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mopentelemetry"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/snapshotsettings"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

// GetEffectiveSettings deep-merges the stored project/bucket/table overrides
// against the system defaults, the same resolver the command side consults
// before an auto-snapshot decision. Bucket or table may be empty to resolve
// at a coarser level.
func (uc *UseCase) GetEffectiveSettings(ctx context.Context, projectID, branchID, bucket, table string) (mmodel.EffectiveSnapshotSettings, error) {
	logger := common.NewLoggerFromContext(ctx)
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "query.get_effective_settings")
	defer span.End()

	logger.Infof("Resolving effective snapshot settings for project %s", projectID)

	projectSettings, err := uc.SettingsRepo.GetProjectSettings(ctx, projectID)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to load project settings", err)
		return mmodel.EffectiveSnapshotSettings{}, err
	}

	var bucketSettings, tableSettings *mmodel.SnapshotSettings

	if bucket != "" {
		bucketSettings, err = uc.SettingsRepo.GetBucketSettings(ctx, projectID, branchID, bucket)
		if err != nil {
			mopentelemetry.HandleSpanError(&span, "Failed to load bucket settings", err)
			return mmodel.EffectiveSnapshotSettings{}, err
		}
	}

	if bucket != "" && table != "" {
		tableSettings, err = uc.SettingsRepo.GetTableSettings(ctx, projectID, branchID, bucket, table)
		if err != nil {
			mopentelemetry.HandleSpanError(&span, "Failed to load table settings", err)
			return mmodel.EffectiveSnapshotSettings{}, err
		}
	}

	return snapshotsettings.Resolve(projectSettings, bucketSettings, tableSettings), nil
}
