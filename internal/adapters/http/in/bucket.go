package in

import (
	"github.com/gofiber/fiber/v2"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mopentelemetry"
	libhttp "github.com/padak/keboola-storage-duckdb-sub001/common/net/http"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/services/command"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/services/query"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

// BucketHandler exposes namespaces within a branch: in/out/sys stages,
// cross-project links and shared-with grants.
type BucketHandler struct {
	Command *command.UseCase
	Query   *query.UseCase
}

// CreateBucket creates a bucket directory under a project branch.
func (handler *BucketHandler) CreateBucket(p any, c *fiber.Ctx) error {
	ctx := c.UserContext()
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.create_bucket")
	defer span.End()

	projectID := c.Params("id")
	if err := libhttp.RequireProject(c, projectID); err != nil {
		return err
	}

	payload := p.(*mmodel.CreateBucketInput)

	bucket, err := handler.Command.CreateBucket(ctx, requestIDFromContext(c), projectID, c.Params("bid"), payload)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to create bucket", err)
		return libhttp.WithError(c, err)
	}

	return libhttp.Created(c, bucket)
}

// UpdateBucket applies a partial update to a bucket's sharing/metadata.
func (handler *BucketHandler) UpdateBucket(p any, c *fiber.Ctx) error {
	ctx := c.UserContext()
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.update_bucket")
	defer span.End()

	projectID := c.Params("id")
	if err := libhttp.RequireProject(c, projectID); err != nil {
		return err
	}

	payload := p.(*mmodel.UpdateBucketInput)

	bucket, err := handler.Command.UpdateBucket(ctx, requestIDFromContext(c), projectID, c.Params("bid"), c.Params("bucket"), payload)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to update bucket", err)
		return libhttp.WithError(c, err)
	}

	return libhttp.OK(c, bucket)
}

// DeleteBucket removes an empty bucket directory.
func (handler *BucketHandler) DeleteBucket(c *fiber.Ctx) error {
	ctx := c.UserContext()
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.delete_bucket")
	defer span.End()

	projectID := c.Params("id")
	if err := libhttp.RequireProject(c, projectID); err != nil {
		return err
	}

	err := handler.Command.DeleteBucket(ctx, requestIDFromContext(c), projectID, c.Params("bid"), c.Params("bucket"))
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to delete bucket", err)
		return libhttp.WithError(c, err)
	}

	return libhttp.NoContent(c)
}

// GetBucket retrieves one bucket.
func (handler *BucketHandler) GetBucket(c *fiber.Ctx) error {
	ctx := c.UserContext()
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.get_bucket")
	defer span.End()

	projectID := c.Params("id")
	if err := libhttp.RequireProject(c, projectID); err != nil {
		return err
	}

	bucket, err := handler.Query.GetBucket(ctx, projectID, c.Params("bid"), c.Params("bucket"))
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to retrieve bucket", err)
		return libhttp.WithError(c, err)
	}

	return libhttp.OK(c, bucket)
}

// ListBuckets lists every bucket of a project branch, optionally narrowed
// with a `name` query parameter (accent-insensitive substring match).
func (handler *BucketHandler) ListBuckets(c *fiber.Ctx) error {
	ctx := c.UserContext()
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "handler.list_buckets")
	defer span.End()

	projectID := c.Params("id")
	if err := libhttp.RequireProject(c, projectID); err != nil {
		return err
	}

	buckets, err := handler.Query.ListBuckets(ctx, projectID, c.Params("bid"), c.Query("name"))
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to list buckets", err)
		return libhttp.WithError(c, err)
	}

	return libhttp.OK(c, buckets)
}
