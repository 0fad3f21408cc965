// Package enginefile owns all direct interaction with engine files: open,
// attach, and the atomic staging-then-rename construction protocol used by
// every component that creates a new file (branch copy-on-write, import,
// snapshot restore).
package enginefile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // registers the "duckdb" database/sql driver

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	cn "github.com/padak/keboola-storage-duckdb-sub001/common/constant"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mlog"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mopentelemetry"
)

// attachFanoutLimit is the practical ceiling on concurrent read-only
// attaches per connection named in the spec; beyond it the manager reports
// resource-exhausted instead of letting the driver's file-descriptor limit
// surface as an opaque engine error.
const attachFanoutLimit = 4096

// Conn wraps a single engine-file *sql.DB together with the attach aliases
// registered against it, so attach fan-out can be bounded per connection.
type Conn struct {
	DB          *sql.DB
	path        string
	readOnly    bool
	attachCount int
}

// Path returns the filesystem path backing this connection.
func (c *Conn) Path() string { return c.path }

// Close releases the underlying database/sql pool.
func (c *Conn) Close() error { return c.DB.Close() }

// Manager opens, attaches, and atomically constructs engine files. It never
// enforces mutual exclusion itself: the caller is expected to hold the
// corresponding table-lock manager lease around OpenWrite and CreateAtomic.
type Manager struct {
	logger      mlog.Logger
	stagingRoot string
}

// New builds a Manager that stages new files under stagingRoot (a
// process-private directory, typically "<data-root>/_staging").
func New(logger mlog.Logger, stagingRoot string) *Manager {
	return &Manager{logger: logger, stagingRoot: stagingRoot}
}

func dsn(path string, readOnly bool) string {
	if readOnly {
		return fmt.Sprintf("%s?access_mode=READ_ONLY", path)
	}

	return path
}

// OpenWrite opens path for exclusive read/write. The caller must already
// hold the table-lock write lease for the table this file backs.
func (m *Manager) OpenWrite(ctx context.Context, path string) (*Conn, error) {
	db, err := sql.Open("duckdb", dsn(path, false))
	if err != nil {
		return nil, common.ValidateBusinessError(cn.ErrEngineIO, "EngineFile")
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, common.ValidateBusinessError(cn.ErrEngineIO, "EngineFile")
	}

	return &Conn{DB: db, path: path}, nil
}

// OpenRead opens path read-only. Any number of concurrent readers is
// allowed; this never contends with the table-lock manager.
func (m *Manager) OpenRead(ctx context.Context, path string) (*Conn, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, common.ValidateBusinessError(cn.ErrTableNotFound, "EngineFile")
		}

		return nil, common.ValidateBusinessError(cn.ErrEngineIO, "EngineFile")
	}

	db, err := sql.Open("duckdb", dsn(path, true))
	if err != nil {
		return nil, common.ValidateBusinessError(cn.ErrEngineIO, "EngineFile")
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, common.ValidateBusinessError(cn.ErrEngineIO, "EngineFile")
	}

	return &Conn{DB: db, path: path, readOnly: true}, nil
}

// Attach exposes otherPath as a read-only relation namespace aliased under
// alias on conn, used for cross-file joins and for reading base-branch data
// during copy-on-write.
func (m *Manager) Attach(ctx context.Context, conn *Conn, otherPath, alias string) error {
	if conn.attachCount >= attachFanoutLimit {
		return common.ValidateBusinessError(cn.ErrAttachLimitExceeded, "EngineFile")
	}

	stmt := fmt.Sprintf("ATTACH '%s' AS %s (READ_ONLY)", otherPath, alias)
	if _, err := conn.DB.ExecContext(ctx, stmt); err != nil {
		return common.ValidateBusinessError(cn.ErrEngineIO, "EngineFile")
	}

	conn.attachCount++

	return nil
}

// Detach removes a previously attached alias.
func (m *Manager) Detach(ctx context.Context, conn *Conn, alias string) error {
	if _, err := conn.DB.ExecContext(ctx, fmt.Sprintf("DETACH %s", alias)); err != nil {
		return common.ValidateBusinessError(cn.ErrEngineIO, "EngineFile")
	}

	conn.attachCount--

	return nil
}

// CatalogRegistrar lets CreateAtomic register and roll back the logical
// catalog row in the same protocol step that builds the physical file,
// keeping the two kinds of state from diverging on partial failure.
type CatalogRegistrar interface {
	Register(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// BuildFunc constructs the desired file contents against a connection to a
// fresh staging path.
type BuildFunc func(ctx context.Context, staging *Conn) error

// CreateAtomic runs the five-step atomic construction protocol: stage,
// build, register, rename, and (on any failure) unlink-and-roll-back.
func (m *Manager) CreateAtomic(ctx context.Context, targetPath string, registrar CatalogRegistrar, build BuildFunc) (err error) {
	tracer := common.NewTracerFromContext(ctx)
	ctx, span := tracer.Start(ctx, "enginefile.create_atomic")
	defer span.End()

	if err := os.MkdirAll(m.stagingRoot, 0o750); err != nil {
		return common.ValidateBusinessError(cn.ErrEngineIO, "EngineFile")
	}

	stagingPath := filepath.Join(m.stagingRoot, fmt.Sprintf("%d.duckdb", time.Now().UnixNano()))

	staging, err := m.OpenWrite(ctx, stagingPath)
	if err != nil {
		return err
	}

	cleanupStaging := func() {
		staging.Close()
		os.Remove(stagingPath)
	}

	if err := build(ctx, staging); err != nil {
		cleanupStaging()
		mopentelemetry.HandleSpanError(&span, "failed to build staging file", err)

		return common.ValidateBusinessError(cn.ErrEngineIO, "EngineFile")
	}

	if err := registrar.Register(ctx); err != nil {
		cleanupStaging()
		return err
	}

	staging.Close()

	if err := os.MkdirAll(filepath.Dir(targetPath), 0o750); err != nil {
		os.Remove(stagingPath)

		if rbErr := registrar.Rollback(ctx); rbErr != nil {
			m.logger.Errorf("enginefile: catalog rollback failed after mkdir error: %s", rbErr)
		}

		return common.ValidateBusinessError(cn.ErrEngineIO, "EngineFile")
	}

	if err := os.Rename(stagingPath, targetPath); err != nil {
		os.Remove(stagingPath)

		if rbErr := registrar.Rollback(ctx); rbErr != nil {
			m.logger.Errorf("enginefile: catalog rollback failed after rename error: %s", rbErr)
		}

		return common.ValidateBusinessError(cn.ErrEngineIO, "EngineFile")
	}

	return nil
}

// Drop removes path. Idempotent: a missing file is not an error.
func (m *Manager) Drop(_ context.Context, path string) error {
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return common.ValidateBusinessError(cn.ErrEngineIO, "EngineFile")
	}

	return nil
}

// StagingPath returns a fresh staging file path under the manager's
// staging root, for callers that need one outside CreateAtomic (the
// import pipeline's stage step).
func (m *Manager) StagingPath(ext string) string {
	return filepath.Join(m.stagingRoot, fmt.Sprintf("%d%s", time.Now().UnixNano(), ext))
}
