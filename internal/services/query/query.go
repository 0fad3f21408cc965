// Package query implements the read side of every module: one file per
// lookup or listing operation, each method on the shared UseCase aggregator.
package query

import (
	"github.com/padak/keboola-storage-duckdb-sub001/internal/adapters/mongodb/audit"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/adapters/postgres/apikey"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/adapters/postgres/branch"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/adapters/postgres/bucket"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/adapters/postgres/file"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/adapters/postgres/project"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/adapters/postgres/settings"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/adapters/postgres/snapshot"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/adapters/postgres/table"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/branchoverlay"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/enginefile"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/pathresolver"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/tablelock"
)

// UseCase aggregates every repository and engine component the read side
// needs.
type UseCase struct {
	// ProjectRepo provides an abstraction on top of the project data source.
	ProjectRepo project.Repository

	// BranchRepo provides an abstraction on top of the branch data source.
	BranchRepo branch.Repository

	// BucketRepo provides an abstraction on top of the bucket data source.
	BucketRepo bucket.Repository

	// TableRepo provides an abstraction on top of the table catalog data source.
	TableRepo table.Repository

	// FileRepo provides an abstraction on top of the uploaded-file data source.
	FileRepo file.Repository

	// SnapshotRepo provides an abstraction on top of the snapshot catalog data source.
	SnapshotRepo snapshot.Repository

	// SettingsRepo provides an abstraction on top of the snapshot-settings overrides.
	SettingsRepo settings.Repository

	// APIKeyRepo provides an abstraction on top of the API key catalog data source.
	APIKeyRepo apikey.Repository

	// AuditRepo provides an abstraction on top of the append-only audit collection.
	AuditRepo audit.Repository

	// Resolver computes the effective file path for a (project, branch, bucket, table).
	Resolver *pathresolver.Resolver

	// Locks reports live lock metrics for the /metrics endpoint.
	Locks *tablelock.Manager

	// Files opens engine files read-only for table previews.
	Files *enginefile.Manager

	// Overlay resolves copy-on-write reads across branches.
	Overlay *branchoverlay.Overlay
}
