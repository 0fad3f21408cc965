// Package audit persists AuditRecord entries to the append-only audit
// collection in Mongo. Every state-changing operation writes exactly one
// record here before (or regardless of) being fanned out to the
// storage.audit topic exchange for external consumers.
package audit

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mmongo"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mopentelemetry"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

// Collection is the Mongo collection audit records are stored under.
const Collection = "audit_records"

// Repository provides audit-record persistence and lookup.
//
//go:generate mockgen --destination=audit.mock.go --package=audit . Repository
type Repository interface {
	Create(ctx context.Context, record *mmodel.AuditRecord) error
	FindByID(ctx context.Context, id string) (*mmodel.AuditRecord, error)
	FindByProject(ctx context.Context, projectID string, limit int64) ([]*mmodel.AuditRecord, error)
}

// MongoDBRepository is a Mongo-specific implementation of Repository.
type MongoDBRepository struct {
	connection *mmongo.MongoConnection
	Database   string
}

// NewMongoDBRepository returns a new instance of MongoDBRepository using the
// given Mongo connection.
func NewMongoDBRepository(mc *mmongo.MongoConnection) *MongoDBRepository {
	r := &MongoDBRepository{
		connection: mc,
		Database:   mc.Database,
	}

	if _, err := r.connection.GetDB(context.Background()); err != nil {
		panic("Failed to connect mongodb")
	}

	return r
}

// Create inserts a new audit record.
func (mr *MongoDBRepository) Create(ctx context.Context, record *mmodel.AuditRecord) error {
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "mongodb.create_audit_record")
	defer span.End()

	db, err := mr.connection.GetDB(ctx)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get database connection", err)
		return err
	}

	coll := db.Database(strings.ToLower(mr.Database)).Collection(Collection)

	if _, err := coll.InsertOne(ctx, record); err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to insert audit record", err)
		return err
	}

	return nil
}

// FindByID retrieves a single audit record by its id.
func (mr *MongoDBRepository) FindByID(ctx context.Context, id string) (*mmodel.AuditRecord, error) {
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "mongodb.find_audit_record_by_id")
	defer span.End()

	db, err := mr.connection.GetDB(ctx)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get database connection", err)
		return nil, err
	}

	coll := db.Database(strings.ToLower(mr.Database)).Collection(Collection)

	var record mmodel.AuditRecord

	if err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&record); err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to find audit record", err)
		return nil, err
	}

	return &record, nil
}

// FindByProject returns the most recent audit records for a project, newest
// first, capped at limit.
func (mr *MongoDBRepository) FindByProject(ctx context.Context, projectID string, limit int64) ([]*mmodel.AuditRecord, error) {
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "mongodb.find_audit_records_by_project")
	defer span.End()

	db, err := mr.connection.GetDB(ctx)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to get database connection", err)
		return nil, err
	}

	coll := db.Database(strings.ToLower(mr.Database)).Collection(Collection)

	opts := options.Find().SetSort(bson.M{"created_at": -1})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := coll.Find(ctx, bson.M{"project_id": projectID}, opts)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to find audit records", err)
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []*mmodel.AuditRecord

	if err := cursor.All(ctx, &records); err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to decode audit records", err)
		return nil, err
	}

	return records, nil
}
