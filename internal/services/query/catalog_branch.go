package query

import (
	"context"

	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

// effectiveCatalogBranch returns the branch id whose table catalog row
// should be read for (bucket, table) on branch, mirroring the same
// copied-set resolution the path resolver applies to files.
func (uc *UseCase) effectiveCatalogBranch(ctx context.Context, projectID, branchID, bucket, table string) (string, error) {
	if branchID == mmodel.DefaultBranchID {
		return mmodel.DefaultBranchID, nil
	}

	branchRow, err := uc.BranchRepo.GetBranch(ctx, projectID, branchID)
	if err != nil {
		return "", err
	}

	ref := mmodel.TableRef{Bucket: bucket, Table: table}

	for _, r := range branchRow.Copied {
		if r == ref {
			return branchID, nil
		}
	}

	return mmodel.DefaultBranchID, nil
}
