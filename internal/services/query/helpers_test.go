package query

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/padak/keboola-storage-duckdb-sub001/common/mlog"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/branchoverlay"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/enginefile"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/pathresolver"
	"github.com/padak/keboola-storage-duckdb-sub001/internal/engine/tablelock"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

type fakeProjectRepo struct {
	projects map[string]*mmodel.Project
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{projects: map[string]*mmodel.Project{}}
}

func (f *fakeProjectRepo) Create(_ context.Context, p *mmodel.Project) (*mmodel.Project, error) {
	cp := *p
	f.projects[p.ID] = &cp

	return &cp, nil
}

func (f *fakeProjectRepo) Find(_ context.Context, id string) (*mmodel.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, errNotFound
	}

	return p, nil
}

func (f *fakeProjectRepo) FindAll(_ context.Context, _, _ int) ([]*mmodel.Project, error) {
	out := make([]*mmodel.Project, 0, len(f.projects))
	for _, p := range f.projects {
		out = append(out, p)
	}

	return out, nil
}

func (f *fakeProjectRepo) Update(_ context.Context, id string, p *mmodel.Project) (*mmodel.Project, error) {
	f.projects[id] = p
	return p, nil
}

func (f *fakeProjectRepo) Delete(_ context.Context, id string) error {
	delete(f.projects, id)
	return nil
}

type fakeBranchRepo struct {
	branches map[string]*mmodel.Branch
}

func newFakeBranchRepo() *fakeBranchRepo {
	return &fakeBranchRepo{branches: map[string]*mmodel.Branch{}}
}

func (f *fakeBranchRepo) key(project, branch string) string { return project + "/" + branch }

func (f *fakeBranchRepo) Create(_ context.Context, b *mmodel.Branch) (*mmodel.Branch, error) {
	cp := *b
	f.branches[f.key(b.ProjectID, b.ID)] = &cp

	return &cp, nil
}

func (f *fakeBranchRepo) GetBranch(_ context.Context, project, branch string) (*mmodel.Branch, error) {
	b, ok := f.branches[f.key(project, branch)]
	if !ok {
		b = &mmodel.Branch{ID: branch, ProjectID: project}
		f.branches[f.key(project, branch)] = b
	}

	return b, nil
}

func (f *fakeBranchRepo) FindAll(_ context.Context, project string) ([]*mmodel.Branch, error) {
	var out []*mmodel.Branch

	for _, b := range f.branches {
		if b.ProjectID == project {
			out = append(out, b)
		}
	}

	return out, nil
}

func (f *fakeBranchRepo) MarkCopied(ctx context.Context, project, branch string, ref mmodel.TableRef) error {
	b, _ := f.GetBranch(ctx, project, branch)
	b.Copied = append(b.Copied, ref)

	return nil
}

func (f *fakeBranchRepo) MarkDeleted(ctx context.Context, project, branch string, ref mmodel.TableRef) error {
	b, _ := f.GetBranch(ctx, project, branch)
	b.Deleted = append(b.Deleted, ref)

	return nil
}

func (f *fakeBranchRepo) UnmarkDeleted(ctx context.Context, project, branch string, ref mmodel.TableRef) error {
	b, _ := f.GetBranch(ctx, project, branch)

	kept := b.Deleted[:0]

	for _, r := range b.Deleted {
		if r != ref {
			kept = append(kept, r)
		}
	}

	b.Deleted = kept

	return nil
}

func (f *fakeBranchRepo) Delete(_ context.Context, project, branch string) error {
	delete(f.branches, f.key(project, branch))
	return nil
}

type fakeBucketRepo struct {
	buckets map[string]*mmodel.Bucket
}

func newFakeBucketRepo() *fakeBucketRepo {
	return &fakeBucketRepo{buckets: map[string]*mmodel.Bucket{}}
}

func (f *fakeBucketRepo) key(project, branch, name string) string {
	return project + "/" + branch + "/" + name
}

func (f *fakeBucketRepo) Create(_ context.Context, b *mmodel.Bucket) (*mmodel.Bucket, error) {
	cp := *b
	f.buckets[f.key(b.ProjectID, b.BranchID, b.Name)] = &cp

	return &cp, nil
}

func (f *fakeBucketRepo) GetBucket(_ context.Context, project, branch, name string) (*mmodel.Bucket, error) {
	b, ok := f.buckets[f.key(project, branch, name)]
	if !ok {
		return nil, errNotFound
	}

	return b, nil
}

func (f *fakeBucketRepo) FindAll(_ context.Context, project, branch, nameFilter string) ([]*mmodel.Bucket, error) {
	var out []*mmodel.Bucket

	for _, b := range f.buckets {
		if b.ProjectID == project && b.BranchID == branch && matchesNameFilter(b.Name, nameFilter) {
			out = append(out, b)
		}
	}

	return out, nil
}

func (f *fakeBucketRepo) Update(_ context.Context, project, branch, name string, b *mmodel.Bucket) (*mmodel.Bucket, error) {
	f.buckets[f.key(project, branch, name)] = b
	return b, nil
}

func (f *fakeBucketRepo) Delete(_ context.Context, project, branch, name string) error {
	delete(f.buckets, f.key(project, branch, name))
	return nil
}

type fakeTableRepo struct {
	tables map[string]*mmodel.Table
}

func newFakeTableRepo() *fakeTableRepo {
	return &fakeTableRepo{tables: map[string]*mmodel.Table{}}
}

func (f *fakeTableRepo) key(project, branch, bucket, name string) string {
	return project + "/" + branch + "/" + bucket + "/" + name
}

func (f *fakeTableRepo) Create(_ context.Context, t *mmodel.Table) (*mmodel.Table, error) {
	cp := *t
	f.tables[f.key(t.ProjectID, t.BranchID, t.Bucket, t.Name)] = &cp

	return &cp, nil
}

func (f *fakeTableRepo) Find(_ context.Context, project, branch, bucket, name string) (*mmodel.Table, error) {
	t, ok := f.tables[f.key(project, branch, bucket, name)]
	if !ok {
		return nil, errNotFound
	}

	return t, nil
}

func (f *fakeTableRepo) FindAll(_ context.Context, project, branch, bucket, nameFilter string) ([]*mmodel.Table, error) {
	var out []*mmodel.Table

	for _, t := range f.tables {
		if t.ProjectID == project && t.BranchID == branch && t.Bucket == bucket && matchesNameFilter(t.Name, nameFilter) {
			out = append(out, t)
		}
	}

	return out, nil
}

// matchesNameFilter is the fake-repository stand-in for the Postgres
// accent-insensitive regex match the real repositories perform.
func matchesNameFilter(name, nameFilter string) bool {
	if nameFilter == "" {
		return true
	}

	return strings.Contains(strings.ToLower(name), strings.ToLower(nameFilter))
}

func (f *fakeTableRepo) UpdateSchema(_ context.Context, project, branch, bucket, name string, columns []mmodel.Column) error {
	t, ok := f.tables[f.key(project, branch, bucket, name)]
	if !ok {
		return errNotFound
	}

	t.Columns = columns

	return nil
}

func (f *fakeTableRepo) UpdateCounters(_ context.Context, project, branch, bucket, name string, rowCount, sizeBytes int64) error {
	t, ok := f.tables[f.key(project, branch, bucket, name)]
	if !ok {
		return errNotFound
	}

	t.RowCount = rowCount
	t.SizeBytes = sizeBytes

	return nil
}

func (f *fakeTableRepo) MarkOrphaned(_ context.Context, project, branch, bucket, name string) error {
	t, ok := f.tables[f.key(project, branch, bucket, name)]
	if !ok {
		return errNotFound
	}

	t.Status = mmodel.TableStatusOrphaned

	return nil
}

func (f *fakeTableRepo) MarkActive(_ context.Context, project, branch, bucket, name string) error {
	t, ok := f.tables[f.key(project, branch, bucket, name)]
	if !ok {
		return errNotFound
	}

	t.Status = mmodel.TableStatusActive

	return nil
}

func (f *fakeTableRepo) Delete(_ context.Context, project, branch, bucket, name string) error {
	delete(f.tables, f.key(project, branch, bucket, name))
	return nil
}

type fakeFileRepo struct {
	files map[string]*mmodel.File
}

func newFakeFileRepo() *fakeFileRepo {
	return &fakeFileRepo{files: map[string]*mmodel.File{}}
}

func (f *fakeFileRepo) Create(_ context.Context, file *mmodel.File) (*mmodel.File, error) {
	cp := *file
	cp.ID = filepath.Base(file.Path) + "-id"
	f.files[cp.ID] = &cp

	return &cp, nil
}

func (f *fakeFileRepo) Find(_ context.Context, id string) (*mmodel.File, error) {
	file, ok := f.files[id]
	if !ok {
		return nil, errNotFound
	}

	return file, nil
}

func (f *fakeFileRepo) Promote(_ context.Context, id string) error {
	file, ok := f.files[id]
	if !ok {
		return errNotFound
	}

	file.Staging = false

	return nil
}

func (f *fakeFileRepo) ListAbandonedStaging(context.Context) ([]*mmodel.File, error) {
	return nil, nil
}

func (f *fakeFileRepo) Delete(_ context.Context, id string) error {
	delete(f.files, id)
	return nil
}

type fakeSnapshotRepo struct {
	snapshots map[string]*mmodel.Snapshot
}

func newFakeSnapshotRepo() *fakeSnapshotRepo {
	return &fakeSnapshotRepo{snapshots: map[string]*mmodel.Snapshot{}}
}

func (f *fakeSnapshotRepo) RegisterSnapshot(_ context.Context, snap *mmodel.Snapshot) error {
	f.snapshots[snap.ID] = snap
	return nil
}

func (f *fakeSnapshotRepo) GetSnapshot(_ context.Context, id string) (*mmodel.Snapshot, error) {
	snap, ok := f.snapshots[id]
	if !ok {
		return nil, errNotFound
	}

	return snap, nil
}

func (f *fakeSnapshotRepo) ListForTable(_ context.Context, project, bucket, table string) ([]mmodel.Snapshot, error) {
	var out []mmodel.Snapshot

	for _, s := range f.snapshots {
		if s.ProjectID == project && s.Bucket == bucket && s.Table == table {
			out = append(out, *s)
		}
	}

	return out, nil
}

func (f *fakeSnapshotRepo) ListExpiredSnapshots(context.Context, time.Time) ([]mmodel.Snapshot, error) {
	return nil, nil
}

func (f *fakeSnapshotRepo) DeleteSnapshotRow(_ context.Context, id string) error {
	delete(f.snapshots, id)
	return nil
}

type fakeSettingsRepo struct {
	project map[string]*mmodel.SnapshotSettings
	bucket  map[string]*mmodel.SnapshotSettings
	table   map[string]*mmodel.SnapshotSettings
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{
		project: map[string]*mmodel.SnapshotSettings{},
		bucket:  map[string]*mmodel.SnapshotSettings{},
		table:   map[string]*mmodel.SnapshotSettings{},
	}
}

func (f *fakeSettingsRepo) GetProjectSettings(_ context.Context, project string) (*mmodel.SnapshotSettings, error) {
	return f.project[project], nil
}

func (f *fakeSettingsRepo) GetBucketSettings(_ context.Context, project, branch, bucket string) (*mmodel.SnapshotSettings, error) {
	return f.bucket[project+"/"+branch+"/"+bucket], nil
}

func (f *fakeSettingsRepo) GetTableSettings(_ context.Context, project, branch, bucket, table string) (*mmodel.SnapshotSettings, error) {
	return f.table[project+"/"+branch+"/"+bucket+"/"+table], nil
}

func (f *fakeSettingsRepo) PutProjectSettings(_ context.Context, project string, s *mmodel.SnapshotSettings) error {
	f.project[project] = s
	return nil
}

func (f *fakeSettingsRepo) PutBucketSettings(_ context.Context, project, branch, bucket string, s *mmodel.SnapshotSettings) error {
	f.bucket[project+"/"+branch+"/"+bucket] = s
	return nil
}

func (f *fakeSettingsRepo) PutTableSettings(_ context.Context, project, branch, bucket, table string, s *mmodel.SnapshotSettings) error {
	f.table[project+"/"+branch+"/"+bucket+"/"+table] = s
	return nil
}

type fakeAPIKeyRepo struct {
	keys map[string]*mmodel.APIKey
}

func newFakeAPIKeyRepo() *fakeAPIKeyRepo {
	return &fakeAPIKeyRepo{keys: map[string]*mmodel.APIKey{}}
}

func (f *fakeAPIKeyRepo) Create(_ context.Context, k *mmodel.APIKey) (*mmodel.APIKey, error) {
	cp := *k
	cp.ID = k.KeyHash[:8]
	f.keys[cp.ID] = &cp

	return &cp, nil
}

func (f *fakeAPIKeyRepo) FindByHash(_ context.Context, hash string) (*mmodel.APIKey, error) {
	for _, k := range f.keys {
		if k.KeyHash == hash {
			return k, nil
		}
	}

	return nil, errNotFound
}

func (f *fakeAPIKeyRepo) FindAllForProject(_ context.Context, project string) ([]*mmodel.APIKey, error) {
	var out []*mmodel.APIKey

	for _, k := range f.keys {
		if k.ProjectID != nil && *k.ProjectID == project {
			out = append(out, k)
		}
	}

	return out, nil
}

func (f *fakeAPIKeyRepo) Revoke(_ context.Context, id string) error {
	k, ok := f.keys[id]
	if !ok {
		return errNotFound
	}

	now := time.Now()
	k.RevokedAt = &now

	return nil
}

type fakeAuditRepo struct {
	records []*mmodel.AuditRecord
}

func (f *fakeAuditRepo) Create(_ context.Context, record *mmodel.AuditRecord) error {
	f.records = append(f.records, record)
	return nil
}

func (f *fakeAuditRepo) FindByID(context.Context, string) (*mmodel.AuditRecord, error) {
	return nil, errNotFound
}

func (f *fakeAuditRepo) FindByProject(_ context.Context, project string, limit int64) ([]*mmodel.AuditRecord, error) {
	var out []*mmodel.AuditRecord

	for _, r := range f.records {
		if r.ProjectID == project {
			out = append(out, r)
		}

		if limit > 0 && int64(len(out)) >= limit {
			break
		}
	}

	return out, nil
}

type staticErr string

func (e staticErr) Error() string { return string(e) }

const errNotFound = staticErr("not found")

// testHarness bundles a UseCase wired with real engine components (rooted
// under a temp directory) and fake catalog repositories, mirroring the
// read-side aggregator's actual dependency set.
type testHarness struct {
	UseCase      *UseCase
	BranchRepo   *fakeBranchRepo
	BucketRepo   *fakeBucketRepo
	TableRepo    *fakeTableRepo
	ProjectRepo  *fakeProjectRepo
	FileRepo     *fakeFileRepo
	SnapshotRepo *fakeSnapshotRepo
	SettingsRepo *fakeSettingsRepo
	APIKeyRepo   *fakeAPIKeyRepo
	AuditRepo    *fakeAuditRepo
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()

	root := t.TempDir()

	branchRepo := newFakeBranchRepo()
	bucketRepo := newFakeBucketRepo()
	tableRepo := newFakeTableRepo()

	resolver := pathresolver.New(root, bucketAdapter{bucketRepo}, branchRepo)
	locks := tablelock.NewManager(&mlog.NoneLogger{})
	files := enginefile.New(&mlog.NoneLogger{}, filepath.Join(root, "_staging"))
	overlay := &branchoverlay.Overlay{Resolver: resolver, Locks: locks, Files: files, Branches: branchRepo}

	projectRepo := newFakeProjectRepo()
	fileRepo := newFakeFileRepo()
	snapshotRepo := newFakeSnapshotRepo()
	settingsRepo := newFakeSettingsRepo()
	apiKeyRepo := newFakeAPIKeyRepo()
	auditRepo := &fakeAuditRepo{}

	uc := &UseCase{
		ProjectRepo:  projectRepo,
		BranchRepo:   branchRepo,
		BucketRepo:   bucketRepo,
		TableRepo:    tableRepo,
		FileRepo:     fileRepo,
		SnapshotRepo: snapshotRepo,
		SettingsRepo: settingsRepo,
		APIKeyRepo:   apiKeyRepo,
		AuditRepo:    auditRepo,
		Resolver:     resolver,
		Locks:        locks,
		Files:        files,
		Overlay:      overlay,
	}

	return &testHarness{
		UseCase:      uc,
		BranchRepo:   branchRepo,
		BucketRepo:   bucketRepo,
		TableRepo:    tableRepo,
		ProjectRepo:  projectRepo,
		FileRepo:     fileRepo,
		SnapshotRepo: snapshotRepo,
		SettingsRepo: settingsRepo,
		APIKeyRepo:   apiKeyRepo,
		AuditRepo:    auditRepo,
	}
}

type bucketAdapter struct {
	repo *fakeBucketRepo
}

func (b bucketAdapter) GetBucket(ctx context.Context, project, branch, name string) (*mmodel.Bucket, error) {
	return b.repo.GetBucket(ctx, project, branch, name)
}

// createTable registers a table catalog row and its engine file directly,
// bypassing the command side so query-package tests stay self-contained.
func createTable(t *testing.T, h *testHarness, project, branch, bucket, name string, columns []mmodel.Column) *mmodel.Table {
	t.Helper()

	noop := noopRegistrar{}

	err := h.UseCase.Overlay.Create(context.Background(), project, branch, bucket, name, noop, func(ctx context.Context, conn *enginefile.Conn) error {
		_, err := conn.DB.ExecContext(ctx, buildCreateTableSQL(name, columns))
		return err
	})
	if err != nil {
		t.Fatalf("create table engine file: %v", err)
	}

	table := &mmodel.Table{
		Name:      name,
		ProjectID: project,
		BranchID:  branch,
		Bucket:    bucket,
		Columns:   columns,
		Status:    mmodel.TableStatusActive,
		CreatedAt: time.Now(),
	}

	created, err := h.TableRepo.Create(context.Background(), table)
	if err != nil {
		t.Fatalf("create table row: %v", err)
	}

	return created
}

type noopRegistrar struct{}

func (noopRegistrar) Register(context.Context) error { return nil }
func (noopRegistrar) Rollback(context.Context) error  { return nil }

func buildCreateTableSQL(name string, columns []mmodel.Column) string {
	stmt := "CREATE TABLE " + name + " ("

	for i, c := range columns {
		if i > 0 {
			stmt += ", "
		}

		stmt += c.Name + " " + c.Type
	}

	return stmt + ")"
}
