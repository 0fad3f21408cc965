package command

import (
	"context"
	"time"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/snapshotsettings"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

// resolveEffectiveSettings fetches the per-level overrides stored for a
// (project, branch, bucket) and deep-merges them against the system
// defaults, mirroring the read path snapshotsettings.Resolve expects.
func (uc *UseCase) resolveEffectiveSettings(ctx context.Context, projectID, branchID, bucket, table string) (mmodel.EffectiveSnapshotSettings, error) {
	projectSettings, err := uc.SettingsRepo.GetProjectSettings(ctx, projectID)
	if err != nil {
		return mmodel.EffectiveSnapshotSettings{}, err
	}

	bucketSettings, err := uc.SettingsRepo.GetBucketSettings(ctx, projectID, branchID, bucket)
	if err != nil {
		return mmodel.EffectiveSnapshotSettings{}, err
	}

	var tableSettings *mmodel.SnapshotSettings

	if table != "" {
		tableSettings, err = uc.SettingsRepo.GetTableSettings(ctx, projectID, branchID, bucket, table)
		if err != nil {
			return mmodel.EffectiveSnapshotSettings{}, err
		}
	}

	return snapshotsettings.Resolve(projectSettings, bucketSettings, tableSettings), nil
}

// maybeAutoSnapshot takes a pre-operation snapshot of (bucket, table) when
// the effective settings enable the auto-snapshot trigger for op. A
// disabled trigger is not an error; it simply skips the snapshot.
func (uc *UseCase) maybeAutoSnapshot(ctx context.Context, projectID, branchID, bucket, table, op, snapType string) error {
	eff, err := uc.resolveEffectiveSettings(ctx, projectID, branchID, bucket, table)
	if err != nil {
		return err
	}

	if !snapshotsettings.TriggerEnabled(eff, op) {
		return nil
	}

	_, err = uc.Snapshots.Create(ctx, projectID, branchID, bucket, table, snapType, "auto-snapshot before "+op, "system", eff.Retention, time.Now())

	return err
}
