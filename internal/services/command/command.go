// Package command implements the write side of every module: one file per
// state-changing operation, each method on the shared UseCase aggregator.
package command

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
	"github.com/padak/keboola-storage-duckdb-sub001/internal/adapters/rabbitmq"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/branchoverlay"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/enginefile"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/idempotency"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/importexport"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/pathresolver"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/snapshotsettings"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/tablelock"
)

// UseCase aggregates every repository and engine component the write side
// needs, so that each operation file can declare a method on the same
// receiver instead of threading a dozen constructor arguments through.
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

	// AuditPublisher fans audit records out to the storage.audit topic exchange.
	AuditPublisher rabbitmq.Publisher

	// Idempotency replays cached responses for repeated keys on state-changing requests.
	Idempotency *idempotency.Store

	// Resolver computes the effective file path for a (project, branch, bucket, table).
	Resolver *pathresolver.Resolver

	// Locks serializes writers against a single (project, branch, bucket, table).
	Locks *tablelock.Manager

	// Files opens, attaches and atomically publishes engine files.
	Files *enginefile.Manager

	// Overlay implements copy-on-write reads and writes across branches.
	Overlay *branchoverlay.Overlay

	// ImportExport stages and merges external data into engine files.
	ImportExport *importexport.Pipeline

	// Snapshots creates, restores and sweeps columnar snapshots.
	Snapshots *snapshotsettings.Manager
}
