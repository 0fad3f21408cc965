// Package pathresolver maps a logical (project, branch, bucket, table)
// identity onto the filesystem path of its engine file, honoring branch
// overlay read-through and bucket link redirection.
package pathresolver

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	cn "github.com/padak/keboola-storage-duckdb-sub001/common/constant"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

// EngineFileExtension is the suffix given to every engine file on disk.
const EngineFileExtension = ".duckdb"

// BucketReader is the narrow slice of the Metadata Catalog the resolver
// needs to look up a bucket's link target.
type BucketReader interface {
	GetBucket(ctx context.Context, projectID, branchID, bucket string) (*mmodel.Bucket, error)
}

// BranchReader is the narrow slice of the Metadata Catalog the resolver
// needs to inspect a branch's copied/deleted overlay sets.
type BranchReader interface {
	GetBranch(ctx context.Context, projectID, branchID string) (*mmodel.Branch, error)
}

// maxLinkHops bounds bucket-link chaining: a linked bucket may point at a
// direct bucket, but never at another linked bucket.
const maxLinkHops = 1

// Resolver is a pure function from logical identity to filesystem path,
// parameterized only by the catalog.
type Resolver struct {
	Root    string
	Buckets BucketReader
	Branches BranchReader
}

// New builds a Resolver rooted at root (e.g. the configured data directory).
func New(root string, buckets BucketReader, branches BranchReader) *Resolver {
	return &Resolver{Root: root, Buckets: buckets, Branches: branches}
}

// Resolve returns the effective file path for (project, branch, bucket,
// table) after applying branch overlay and bucket linking.
func (r *Resolver) Resolve(ctx context.Context, project, branch, bucket, table string) (string, error) {
	return r.resolve(ctx, project, branch, bucket, table, 0)
}

func (r *Resolver) resolve(ctx context.Context, project, branch, bucket, table string, linkHops int) (string, error) {
	bucketRow, err := r.Buckets.GetBucket(ctx, project, branch, bucket)
	if err != nil {
		return "", err
	}

	if branch == mmodel.DefaultBranchID {
		if bucketRow.LinkedFrom != nil {
			if linkHops >= maxLinkHops {
				return "", cn.ErrLinkChainTooDeep
			}

			return r.resolve(ctx, bucketRow.LinkedFrom.ProjectID, mmodel.DefaultBranchID, bucketRow.LinkedFrom.Bucket, table, linkHops+1)
		}

		return r.defaultPath(project, bucket, table), nil
	}

	branchRow, err := r.Branches.GetBranch(ctx, project, branch)
	if err != nil {
		return "", err
	}

	ref := mmodel.TableRef{Bucket: bucket, Table: table}

	if containsRef(branchRow.Deleted, ref) {
		return "", common.ValidateBusinessError(cn.ErrTableNotFound, "Table")
	}

	if containsRef(branchRow.Copied, ref) {
		return r.branchPath(project, branch, bucket, table), nil
	}

	// Read-through: the (bucket, table) was never copied into this branch,
	// so resolve it against default. This is not a link hop.
	return r.resolve(ctx, project, mmodel.DefaultBranchID, bucket, table, linkHops)
}

func (r *Resolver) defaultPath(project, bucket, table string) string {
	return r.DefaultPath(project, bucket, table)
}

func (r *Resolver) branchPath(project, branch, bucket, table string) string {
	return r.BranchPath(project, branch, bucket, table)
}

// DefaultPath returns the default-branch path for (project, bucket, table),
// bypassing branch-overlay and link resolution. Used by the Branch Overlay
// to locate the copy-on-write source file directly.
func (r *Resolver) DefaultPath(project, bucket, table string) string {
	return filepath.Join(r.Root, project, bucket, table+EngineFileExtension)
}

// BranchPath returns the branch-local path for (project, branch, bucket,
// table), regardless of whether the branch actually holds a copy yet.
func (r *Resolver) BranchPath(project, branch, bucket, table string) string {
	return filepath.Join(r.BranchDir(project, branch), bucket, table+EngineFileExtension)
}

// BranchDir returns the root directory materializing a branch's
// copied-on-write tables, removed wholesale on branch deletion.
func (r *Resolver) BranchDir(project, branch string) string {
	return filepath.Join(r.Root, fmt.Sprintf("%s_branch_%s", project, branch))
}

// StagingPath returns a fresh staging path for building a new engine file
// before it is atomically renamed into place.
func (r *Resolver) StagingPath(uuid string) string {
	return filepath.Join(r.Root, "_staging", uuid+EngineFileExtension)
}

func containsRef(refs []mmodel.TableRef, ref mmodel.TableRef) bool {
	for _, r := range refs {
		if r.Bucket == ref.Bucket && r.Table == ref.Table {
			return true
		}
	}

	return false
}
