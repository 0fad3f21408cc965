// Package rabbitmq fans audit records out to the storage.audit topic
// exchange for external consumers, alongside the synchronous write to the
// audit Mongo collection.
package rabbitmq

import (
	"context"
	"encoding/json"

	"github.com/padak/keboola-storage-duckdb-sub001/common"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mopentelemetry"
	"github.com/padak/keboola-storage-duckdb-sub001/common/mrabbitmq"
	"github.com/padak/keboola-storage-duckdb-sub001/pkg/mmodel"
)

// RoutingKeyFor builds the routing key a record is published under:
// "<resourceType>.<operation>", e.g. "branch.create".
func RoutingKeyFor(record *mmodel.AuditRecord) string {
	return record.ResourceType + "." + record.Operation
}

// Publisher provides an interface for fanning audit records out to a
// message broker.
//
//go:generate mockgen --destination=producer.mock.go --package=rabbitmq . Publisher
type Publisher interface {
	PublishAuditRecord(ctx context.Context, record *mmodel.AuditRecord) error
}

// ProducerRabbitMQRepository is a RabbitMQ-specific implementation of
// Publisher.
type ProducerRabbitMQRepository struct {
	conn *mrabbitmq.RabbitMQConnection
}

// NewProducerRabbitMQ returns a new instance of ProducerRabbitMQRepository
// using the given RabbitMQ connection.
func NewProducerRabbitMQ(c *mrabbitmq.RabbitMQConnection) *ProducerRabbitMQRepository {
	prmq := &ProducerRabbitMQRepository{conn: c}

	if _, err := c.GetChannel(context.Background()); err != nil {
		panic("Failed to connect rabbitmq")
	}

	return prmq
}

// PublishAuditRecord marshals record to JSON and publishes it to the audit
// exchange under a routing key derived from its resource type and
// operation.
func (prmq *ProducerRabbitMQRepository) PublishAuditRecord(ctx context.Context, record *mmodel.AuditRecord) error {
	tracer := common.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "rabbitmq.producer.publish_audit_record")
	defer span.End()

	body, err := json.Marshal(record)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to marshal audit record", err)
		return err
	}

	if err := prmq.conn.Publish(ctx, RoutingKeyFor(record), body); err != nil {
		mopentelemetry.HandleSpanError(&span, "Failed to publish audit record", err)
		return err
	}

	return nil
}
