package in

import (
	"github.com/gofiber/fiber/v2"

	"github.com/padak/keboola-storage-duckdb-sub001/common/mlog"
	libhttp "github.com/padak/keboola-storage-duckdb-sub001/common/net/http"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mopentelemetry"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/idempotency"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/middleware"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/services/command"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/services/query"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

// NewRouter builds the fiber app for the REST transport: every route the
// Management API names, carrying the same command/query UseCase pair the
// gRPC transport dispatches onto.
func NewRouter(logger mlog.Logger, tl *mopentelemetry.Telemetry, staticAdminKey string, keyLookup libhttp.KeyLookup, cmd *command.UseCase, qry *query.UseCase) *fiber.App {
	f := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			return libhttp.WithError(ctx, err)
		},
	})

	tlMid := libhttp.NewTelemetryMiddleware(tl)

	f.Use(tlMid.WithTelemetry(tl))
	f.Use(libhttp.WithCORS())
	f.Use(libhttp.WithCorrelationID())
	f.Use(libhttp.WithHTTPLogging(libhttp.WithCustomLogger(logger)))

	f.Get("/health", libhttp.Ping)
	f.Get("/version", libhttp.Version("dev"))

	metrics := &MetricsHandler{Query: qry}
	f.Get("/metrics", metrics.Metrics)

	auth := libhttp.WithAPIKeyAuth(staticAdminKey, keyLookup)
	idem := middleware.WithIdempotency(idempotency.New(nil, 0))

	if cmd.Idempotency != nil {
		idem = middleware.WithIdempotency(cmd.Idempotency)
	}

	api := f.Group("/", auth)

	registerProjectRoutes(api, idem, &ProjectHandler{Command: cmd, Query: qry})
	registerProjectOpsRoutes(api, &ProjectOpsHandler{Command: cmd, Query: qry})
	registerBranchRoutes(api, idem, &BranchHandler{Command: cmd, Query: qry})
	registerBucketRoutes(api, idem, &BucketHandler{Command: cmd, Query: qry})
	registerTableRoutes(api, idem, &TableHandler{Command: cmd, Query: qry})
	registerFileRoutes(api, idem, &FileHandler{Command: cmd, Query: qry})
	registerImportExportRoutes(api, idem, &ImportExportHandler{Command: cmd, Query: qry})
	registerSnapshotRoutes(api, idem, &SnapshotHandler{Command: cmd, Query: qry})
	registerSettingsRoutes(api, idem, &SettingsHandler{Command: cmd, Query: qry})
	registerAPIKeyRoutes(api, idem, &APIKeyHandler{Command: cmd, Query: qry})
	registerAuditRoutes(api, &AuditHandler{Query: qry})

	f.Use(tlMid.EndTracingSpans)

	return f
}

func registerProjectRoutes(api fiber.Router, idem fiber.Handler, h *ProjectHandler) {
	api.Post("projects", idem, libhttp.WithBody(new(mmodel.CreateProjectInput), h.CreateProject))
	api.Get("projects", h.ListProjects)
	api.Get("projects/:id", h.GetProjectByID)
	api.Patch("projects/:id", idem, libhttp.WithBody(new(mmodel.UpdateProjectInput), h.UpdateProject))
	api.Delete("projects/:id", idem, h.DeleteProject)
}

func registerProjectOpsRoutes(api fiber.Router, h *ProjectOpsHandler) {
	api.Get("projects/:id/stats", h.GetProjectStats)
	api.Post("projects/:id/reconcile", h.ReconcileProject)
	api.Get("projects/:id/reconcile/dry-run", h.DryRunReconcile)
}

func registerBranchRoutes(api fiber.Router, idem fiber.Handler, h *BranchHandler) {
	api.Post("projects/:id/branches", idem, libhttp.WithBody(new(mmodel.CreateBranchInput), h.CreateBranch))
	api.Get("projects/:id/branches", h.ListBranches)
	api.Get("projects/:id/branches/:bid", h.GetBranch)
	api.Delete("projects/:id/branches/:bid", idem, h.DeleteBranch)
}

func registerBucketRoutes(api fiber.Router, idem fiber.Handler, h *BucketHandler) {
	const base = "projects/:id/branches/:bid/buckets"

	api.Post(base, idem, libhttp.WithBody(new(mmodel.CreateBucketInput), h.CreateBucket))
	api.Get(base, h.ListBuckets)
	api.Get(base+"/:bucket", h.GetBucket)
	api.Patch(base+"/:bucket", idem, libhttp.WithBody(new(mmodel.UpdateBucketInput), h.UpdateBucket))
	api.Delete(base+"/:bucket", idem, h.DeleteBucket)
}

func registerTableRoutes(api fiber.Router, idem fiber.Handler, h *TableHandler) {
	const base = "projects/:id/branches/:bid/buckets/:bucket/tables"

	api.Post(base, idem, libhttp.WithBody(new(mmodel.CreateTableInput), h.CreateTable))
	api.Get(base, h.ListTables)
	api.Get(base+"/:table", h.GetTable)
	api.Delete(base+"/:table", idem, h.DropTable)
	api.Post(base+"/:table/truncate", idem, h.TruncateTable)
	api.Get(base+"/:table/preview", h.PreviewTable)
	api.Post(base+"/:table/columns", idem, libhttp.WithBody(new(mmodel.AlterTableAddColumnInput), h.AlterTableAddColumn))
	api.Patch(base+"/:table/columns/not-null", idem, libhttp.WithBody(new(mmodel.AlterTableSetNotNullInput), h.AlterTableSetNotNull))
	api.Delete(base+"/:table/columns", idem, libhttp.WithBody(new(mmodel.AlterTableDropColumnInput), h.AlterTableDropColumn))
}

func registerFileRoutes(api fiber.Router, idem fiber.Handler, h *FileHandler) {
	api.Post("projects/:id/files", idem, h.UploadFile)
	api.Post("projects/:id/files/:fid/promote", idem, h.PromoteFile)
	api.Delete("projects/:id/files/:fid", idem, h.DeleteFile)
	api.Get("projects/:id/files/:fid", h.GetFile)
}

func registerImportExportRoutes(api fiber.Router, idem fiber.Handler, h *ImportExportHandler) {
	const base = "projects/:id/branches/:bid/buckets/:bucket/tables/:table"

	api.Post(base+"/import/file", idem, h.ImportTable)
	api.Post(base+"/export", idem, libhttp.WithBody(new(ExportTableInput), h.ExportTable))
}

func registerSnapshotRoutes(api fiber.Router, idem fiber.Handler, h *SnapshotHandler) {
	api.Post("projects/:id/snapshots", idem, libhttp.WithBody(new(mmodel.CreateSnapshotInput), h.CreateSnapshot))
	api.Get("projects/:id/snapshots/:sid", h.GetSnapshot)
	api.Delete("projects/:id/snapshots/:sid", idem, h.DeleteSnapshot)
	api.Post("projects/:id/snapshots/:sid/restore", idem, libhttp.WithBody(new(mmodel.RestoreSnapshotInput), h.RestoreSnapshot))
	api.Get("projects/:id/branches/:bid/buckets/:bucket/tables/:table/snapshots", h.ListSnapshotsForTable)
}

func registerSettingsRoutes(api fiber.Router, idem fiber.Handler, h *SettingsHandler) {
	api.Get("projects/:id/settings/snapshots", h.GetProjectSettings)
	api.Put("projects/:id/settings/snapshots", idem, libhttp.WithBody(new(mmodel.SnapshotSettings), h.PutProjectSettings))
	api.Delete("projects/:id/settings/snapshots", idem, h.DeleteProjectSettings)

	const bucketBase = "projects/:id/branches/:bid/buckets/:bucket/settings/snapshots"

	api.Get(bucketBase, h.GetBucketSettings)
	api.Put(bucketBase, idem, libhttp.WithBody(new(mmodel.SnapshotSettings), h.PutBucketSettings))
	api.Delete(bucketBase, idem, h.DeleteBucketSettings)

	const tableBase = "projects/:id/branches/:bid/buckets/:bucket/tables/:table/settings/snapshots"

	api.Get(tableBase, h.GetTableSettings)
	api.Put(tableBase, idem, libhttp.WithBody(new(mmodel.SnapshotSettings), h.PutTableSettings))
	api.Delete(tableBase, idem, h.DeleteTableSettings)
}

func registerAPIKeyRoutes(api fiber.Router, idem fiber.Handler, h *APIKeyHandler) {
	api.Post("projects/:id/keys", idem, h.CreateAPIKey)
	api.Get("projects/:id/keys", h.ListAPIKeys)
	api.Delete("projects/:id/keys/:kid", idem, h.RevokeAPIKey)
}

func registerAuditRoutes(api fiber.Router, h *AuditHandler) {
	api.Get("projects/:id/audit", h.ListAuditLog)
}
