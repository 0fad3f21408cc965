package command

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"time"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mopentelemetry"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

// stagingTTL sets an uploaded file's ExpiresAt; nothing in this tree sweeps
// staged files once they expire.
const stagingTTL = 24 * time.Hour

// UploadFile stages raw content to disk and registers a File catalog row
// marked Staging until a later import references it.
func (uc *UseCase) UploadFile(ctx context.Context, requestID, projectID, name, contentType string, content io.Reader) (*mmodel.File, error) {
	logger := common.NewLoggerFromContext(ctx)
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "command.upload_file")
	defer span.End()

	start := time.Now()

	logger.Infof("Trying to upload file %s for project %s", name, projectID)

	stagingPath := uc.Files.StagingPath(filepathExt(name))

	dest, err := os.Create(stagingPath)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to create staging file", err)
		uc.emitAudit(ctx, requestID, projectID, "upload", "file", name, start, err)

		return nil, err
	}
	defer dest.Close()

	hasher := sha256.New()

	size, err := io.Copy(dest, io.TeeReader(content, hasher))
	if err != nil {
		os.Remove(stagingPath)
		mopentelemetry.HandleSpanError(&span, "Failed to write staging file", err)
		uc.emitAudit(ctx, requestID, projectID, "upload", "file", name, start, err)

		return nil, err
	}

	expiresAt := time.Now().Add(stagingTTL)

	file := &mmodel.File{
		ProjectID:   projectID,
		Name:        name,
		Path:        stagingPath,
		SizeBytes:   size,
		SHA256:      hex.EncodeToString(hasher.Sum(nil)),
		ContentType: contentType,
		Staging:     true,
		ExpiresAt:   &expiresAt,
		CreatedAt:   time.Now(),
	}

	created, err := uc.FileRepo.Create(ctx, file)
	if err != nil {
		os.Remove(stagingPath)
		mopentelemetry.HandleSpanError(&span, "Failed to register file", err)
	}

	uc.emitAudit(ctx, requestID, projectID, "upload", "file", name, start, err)

	if err != nil {
		return nil, err
	}

	return created, nil
}

func filepathExt(name string) string {
	for i := len(name) - 1; i >= 0 && name[i] != '/'; i-- {
		if name[i] == '.' {
			return name[i:]
		}
	}

	return ""
}
