package query

import (
	"context"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mopentelemetry"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

// GetProjectByID retrieves a project by its id.
func (uc *UseCase) GetProjectByID(ctx context.Context, id string) (*mmodel.Project, error) {
	logger := common.NewLoggerFromContext(ctx)
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "query.get_project_by_id")
	defer span.End()

	logger.Infof("Retrieving project for id: %s", id)

	project, err := uc.ProjectRepo.Find(ctx, id)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get project", err)
		return nil, err
	}

	return project, nil
}

// ListProjects returns a page of projects.
func (uc *UseCase) ListProjects(ctx context.Context, limit, offset int) ([]*mmodel.Project, error) {
	logger := common.NewLoggerFromContext(ctx)
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "query.list_projects")
	defer span.End()

	logger.Info("Retrieving projects")

	projects, err := uc.ProjectRepo.FindAll(ctx, limit, offset)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to list projects", err)
		return nil, err
	}

	return projects, nil
}
