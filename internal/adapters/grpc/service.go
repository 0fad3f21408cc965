package grpc

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc/metadata"

	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/importexport"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/services/command"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/services/query"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

// CreateBranchRequest names the project a branch is created under; the
// branch id and metadata travel in Input, same as the REST body.
type CreateBranchRequest struct {
	ProjectID string
	Input     *mmodel.CreateBranchInput
}

// CreateBucketRequest scopes a bucket creation to a project and branch.
type CreateBucketRequest struct {
	ProjectID string
	BranchID  string
	Input     *mmodel.CreateBucketInput
}

// CreateTableRequest scopes a table creation to a project, branch, and
// bucket.
type CreateTableRequest struct {
	ProjectID string
	BranchID  string
	Bucket    string
	Input     *mmodel.CreateTableInput
}

// CreateSnapshotRequest names the table a manual snapshot is taken of.
type CreateSnapshotRequest struct {
	ProjectID   string
	BranchID    string
	Bucket      string
	Table       string
	Description string
}

// RestoreSnapshotRequest names the snapshot to restore and, optionally, the
// branch/bucket/table to restore it into in place of its origin.
type RestoreSnapshotRequest struct {
	ProjectID    string
	SnapshotID   string
	TargetBranch string
	TargetBucket string
	TargetTable  string
}

// storageControlServer is the write-heavy RPC surface: the handful of
// mutating operations worth a programmatic client beyond curl against the
// REST transport. Reads stay REST-only; this keeps the hand-written
// ServiceDesc small.
type storageControlServer interface {
	CreateProject(ctx context.Context, input *mmodel.CreateProjectInput) (*mmodel.CreateProjectOutput, error)
	CreateBranch(ctx context.Context, req *CreateBranchRequest) (*mmodel.Branch, error)
	CreateBucket(ctx context.Context, req *CreateBucketRequest) (*mmodel.Bucket, error)
	CreateTable(ctx context.Context, req *CreateTableRequest) (*mmodel.Table, error)
	ImportTable(ctx context.Context, req *importexport.ImportRequest) (*importexport.ImportResult, error)
	CreateSnapshot(ctx context.Context, req *CreateSnapshotRequest) (*mmodel.Snapshot, error)
	RestoreSnapshot(ctx context.Context, req *RestoreSnapshotRequest) (*mmodel.Table, error)
}

// StorageControlService implements storageControlServer against the same
// command.UseCase the REST transport dispatches onto.
type StorageControlService struct {
	Command *command.UseCase
	Query   *query.UseCase
}

func (s *StorageControlService) CreateProject(ctx context.Context, input *mmodel.CreateProjectInput) (*mmodel.CreateProjectOutput, error) {
	return s.Command.CreateProject(ctx, requestIDFromContext(ctx), input)
}

func (s *StorageControlService) CreateBranch(ctx context.Context, req *CreateBranchRequest) (*mmodel.Branch, error) {
	if err := requireProject(ctx, req.ProjectID); err != nil {
		return nil, err
	}

	principal, _ := principalFromContext(ctx)

	return s.Command.CreateBranch(ctx, requestIDFromContext(ctx), req.ProjectID, principal.KeyID, req.Input)
}

func (s *StorageControlService) CreateBucket(ctx context.Context, req *CreateBucketRequest) (*mmodel.Bucket, error) {
	if err := requireProject(ctx, req.ProjectID); err != nil {
		return nil, err
	}

	return s.Command.CreateBucket(ctx, requestIDFromContext(ctx), req.ProjectID, req.BranchID, req.Input)
}

func (s *StorageControlService) CreateTable(ctx context.Context, req *CreateTableRequest) (*mmodel.Table, error) {
	if err := requireProject(ctx, req.ProjectID); err != nil {
		return nil, err
	}

	return s.Command.CreateTable(ctx, requestIDFromContext(ctx), req.ProjectID, req.BranchID, req.Bucket, req.Input)
}

func (s *StorageControlService) ImportTable(ctx context.Context, req *importexport.ImportRequest) (*importexport.ImportResult, error) {
	if err := requireProject(ctx, req.Project); err != nil {
		return nil, err
	}

	result, err := s.Command.ImportTable(ctx, requestIDFromContext(ctx), *req)
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (s *StorageControlService) CreateSnapshot(ctx context.Context, req *CreateSnapshotRequest) (*mmodel.Snapshot, error) {
	if err := requireProject(ctx, req.ProjectID); err != nil {
		return nil, err
	}

	principal, _ := principalFromContext(ctx)

	return s.Command.CreateSnapshot(ctx, requestIDFromContext(ctx), req.ProjectID, req.BranchID, req.Bucket, req.Table, req.Description, principal.KeyID)
}

func (s *StorageControlService) RestoreSnapshot(ctx context.Context, req *RestoreSnapshotRequest) (*mmodel.Table, error) {
	if err := requireProject(ctx, req.ProjectID); err != nil {
		return nil, err
	}

	return s.Command.RestoreSnapshot(ctx, requestIDFromContext(ctx), req.ProjectID, req.SnapshotID, req.TargetBranch, req.TargetBucket, req.TargetTable)
}

// requestIDFromContext reads the caller's x-request-id metadata if present,
// falling back to a fresh one so every call still carries one into audit
// logging and idempotency-adjacent tracing.
func requestIDFromContext(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get("x-request-id"); len(values) > 0 && values[0] != "" {
			return values[0]
		}
	}

	return uuid.NewString()
}
