// Package branchoverlay implements copy-on-write semantics for non-default
// branches: read-through from the default branch, lazy per-table copy on
// first write, and isolated delete-tracking that never touches the
// default-branch file.
package branchoverlay

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	cn "github.com/padak/keboola-storage-duckdb-sub001/common/constant"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/enginefile"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/pathresolver"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/tablelock"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

// BranchRepository is the slice of the Metadata Catalog the overlay needs
// to read and mutate a branch's copied/deleted table sets.
type BranchRepository interface {
	GetBranch(ctx context.Context, project, branchID string) (*mmodel.Branch, error)
	MarkCopied(ctx context.Context, project, branchID string, ref mmodel.TableRef) error
	MarkDeleted(ctx context.Context, project, branchID string, ref mmodel.TableRef) error
	UnmarkDeleted(ctx context.Context, project, branchID string, ref mmodel.TableRef) error
}

// Mutator applies a change to an open engine-file connection.
type Mutator func(ctx context.Context, conn *enginefile.Conn) error

// Overlay wires the Path Resolver, Table-Lock Manager, and Engine File
// Manager together to implement branch read/write/create/drop.
type Overlay struct {
	Resolver *pathresolver.Resolver
	Locks    *tablelock.Manager
	Files    *enginefile.Manager
	Branches BranchRepository

	// LeaseTimeout bounds how long a write waits for its table lock; zero
	// uses the Table-Lock Manager's default.
	LeaseTimeout time.Duration
}

type branchRegistrar struct {
	repo    BranchRepository
	project string
	branch  string
	ref     mmodel.TableRef
	unmark  bool
}

func (r *branchRegistrar) Register(ctx context.Context) error {
	if r.unmark {
		return r.repo.UnmarkDeleted(ctx, r.project, r.branch, r.ref)
	}

	return r.repo.MarkCopied(ctx, r.project, r.branch, r.ref)
}

func (r *branchRegistrar) Rollback(ctx context.Context) error {
	if r.unmark {
		return r.repo.MarkDeleted(ctx, r.project, r.branch, r.ref)
	}
	// Best effort: the copied-set entry is simply not added, nothing to
	// undo beyond what CreateAtomic already unwound.
	return nil
}

// Read opens a read-only connection to the effective file for (project,
// branch, bucket, table), honoring delete/copy/read-through resolution.
func (o *Overlay) Read(ctx context.Context, project, branch, bucket, table string) (*enginefile.Conn, error) {
	path, err := o.Resolver.Resolve(ctx, project, branch, bucket, table)
	if err != nil {
		return nil, err
	}

	return o.Files.OpenRead(ctx, path)
}

// Write applies mutator to the effective writable file for (project,
// branch, bucket, table), triggering copy-on-write the first time a
// non-default branch writes a table it has not yet copied or deleted.
// It acquires the table's write lock itself; callers that already hold
// it (the import/export pipeline, which must hold the lock across its
// stage step too) should call PrepareWrite directly instead.
func (o *Overlay) Write(ctx context.Context, project, branch, bucket, table string, mutator Mutator) error {
	lockID := tablelock.LockID(project, branch, bucket, table)

	lease, err := o.Locks.AcquireWrite(ctx, lockID, o.LeaseTimeout)
	if err != nil {
		return err
	}
	defer lease.Release()

	targetPath, err := o.PrepareWrite(ctx, project, branch, bucket, table)
	if err != nil {
		return err
	}

	return o.writeAt(ctx, targetPath, mutator)
}

// PrepareWrite resolves (and, on a non-default branch's first write,
// performs the copy-on-write) the writable path for (project, branch,
// bucket, table), without acquiring the table lock. The caller must
// already hold the write lease for tablelock.LockID(project, branch,
// bucket, table) for the duration of any write against the returned path.
func (o *Overlay) PrepareWrite(ctx context.Context, project, branch, bucket, table string) (string, error) {
	if branch == mmodel.DefaultBranchID {
		return o.Resolver.DefaultPath(project, bucket, table), nil
	}

	branchRow, err := o.Branches.GetBranch(ctx, project, branch)
	if err != nil {
		return "", err
	}

	ref := mmodel.TableRef{Bucket: bucket, Table: table}
	targetPath := o.Resolver.BranchPath(project, branch, bucket, table)

	switch {
	case containsRef(branchRow.Deleted, ref):
		registrar := &branchRegistrar{repo: o.Branches, project: project, branch: branch, ref: ref, unmark: true}

		if err := o.Files.CreateAtomic(ctx, targetPath, registrar, func(context.Context, *enginefile.Conn) error {
			return nil
		}); err != nil {
			return "", err
		}

		return targetPath, nil

	case containsRef(branchRow.Copied, ref):
		return targetPath, nil

	default:
		if err := o.copyOnWrite(ctx, project, branch, bucket, table, targetPath); err != nil {
			return "", err
		}

		return targetPath, nil
	}
}

func (o *Overlay) copyOnWrite(ctx context.Context, project, branch, bucket, table, targetPath string) error {
	defaultPath, err := o.Resolver.Resolve(ctx, project, mmodel.DefaultBranchID, bucket, table)
	if err != nil {
		return err
	}

	ref := mmodel.TableRef{Bucket: bucket, Table: table}
	registrar := &branchRegistrar{repo: o.Branches, project: project, branch: branch, ref: ref}

	return o.Files.CreateAtomic(ctx, targetPath, registrar, func(ctx context.Context, staging *enginefile.Conn) error {
		alias := "base"

		if err := o.Files.Attach(ctx, staging, defaultPath, alias); err != nil {
			return err
		}
		defer o.Files.Detach(ctx, staging, alias)

		_, err := staging.DB.ExecContext(ctx, fmt.Sprintf("CREATE TABLE %s AS SELECT * FROM %s.%s", table, alias, table))

		return err
	})
}

func (o *Overlay) writeAt(ctx context.Context, path string, mutator Mutator) error {
	conn, err := o.Files.OpenWrite(ctx, path)
	if err != nil {
		return err
	}
	defer conn.Close()

	return mutator(ctx, conn)
}

// Create always creates a branch-local table (on the default branch this is
// simply the default path); build constructs the new file's contents.
func (o *Overlay) Create(ctx context.Context, project, branch, bucket, table string, registrar enginefile.CatalogRegistrar, build enginefile.BuildFunc) error {
	lockID := tablelock.LockID(project, branch, bucket, table)

	lease, err := o.Locks.AcquireWrite(ctx, lockID, o.LeaseTimeout)
	if err != nil {
		return err
	}
	defer lease.Release()

	var targetPath string
	if branch == mmodel.DefaultBranchID {
		targetPath = o.Resolver.DefaultPath(project, bucket, table)
	} else {
		targetPath = o.Resolver.BranchPath(project, branch, bucket, table)
	}

	if err := o.Files.CreateAtomic(ctx, targetPath, registrar, build); err != nil {
		return err
	}

	if branch != mmodel.DefaultBranchID {
		ref := mmodel.TableRef{Bucket: bucket, Table: table}
		if err := o.Branches.MarkCopied(ctx, project, branch, ref); err != nil {
			return err
		}
	}

	return nil
}

// Drop removes a table. On the default branch the file is deleted outright.
// On a non-default branch the (bucket, table) is recorded in the deleted
// set and any branch-local copy is removed; the default-branch file is
// never touched.
func (o *Overlay) Drop(ctx context.Context, project, branch, bucket, table string) error {
	lockID := tablelock.LockID(project, branch, bucket, table)

	lease, err := o.Locks.AcquireWrite(ctx, lockID, o.LeaseTimeout)
	if err != nil {
		return err
	}
	defer lease.Release()

	if branch == mmodel.DefaultBranchID {
		return o.Files.Drop(ctx, o.Resolver.DefaultPath(project, bucket, table))
	}

	ref := mmodel.TableRef{Bucket: bucket, Table: table}

	if err := o.Files.Drop(ctx, o.Resolver.BranchPath(project, branch, bucket, table)); err != nil {
		return err
	}

	return o.Branches.MarkDeleted(ctx, project, branch, ref)
}

// DeleteBranch removes a branch's entire overlay directory. Branch-local
// changes are lost; callers requiring preservation must export before
// delete. Catalog cascade is the caller's responsibility.
func (o *Overlay) DeleteBranch(_ context.Context, project, branch string) error {
	if branch == mmodel.DefaultBranchID {
		return common.ValidateBusinessError(cn.ErrDefaultBranchImmutable, "Branch")
	}

	dir := o.Resolver.BranchDir(project, branch)

	if err := os.RemoveAll(dir); err != nil {
		return common.ValidateBusinessError(cn.ErrEngineIO, "Branch")
	}

	return nil
}

func containsRef(refs []mmodel.TableRef, ref mmodel.TableRef) bool {
	for _, r := range refs {
		if r.Bucket == ref.Bucket && r.Table == ref.Table {
			return true
		}
	}

	return false
}
