package command

import (
	"context"

	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

// effectiveCatalogBranch returns the branch id whose table catalog row
// should be read or written for (bucket, table) on branch: the branch
// itself once a table has been copied or created there, otherwise the
// default branch's row is the one read-through applies to. Mirrors the
// same copied/deleted resolution the path resolver performs for files.
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
