package mrabbitmq

import (
	"context"
	"errors"

	"github.com/padak/keboola-storage-duckdb-sub001/common/mlog"
	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitMQConnection is a hub which deals with RabbitMQ connections, used to
// publish audit records to the storage.audit topic exchange for external
// consumers.
type RabbitMQConnection struct {
	ConnectionStringSource string
	Exchange               string
	Connection             *amqp.Connection
	Channel                *amqp.Channel
	Connected              bool
	Logger                 mlog.Logger
}

// Connect keeps a singleton connection with RabbitMQ and declares the audit
// topic exchange.
func (rc *RabbitMQConnection) Connect(ctx context.Context) error {
	rc.Logger.Info("Connecting on rabbitmq...")

	conn, err := amqp.Dial(rc.ConnectionStringSource)
	if err != nil {
		rc.Logger.Errorf("failed to connect on rabbitmq: %v", err)
		return err
	}

	ch, err := conn.Channel()
	if err != nil {
		rc.Logger.Errorf("failed to open channel on rabbitmq: %v", err)
		_ = conn.Close()

		return err
	}

	if rc.Exchange != "" {
		if err := ch.ExchangeDeclare(rc.Exchange, "topic", true, false, false, false, nil); err != nil {
			rc.Logger.Errorf("failed to declare exchange %s: %v", rc.Exchange, err)
			_ = ch.Close()
			_ = conn.Close()

			return err
		}
	}

	rc.Connection = conn
	rc.Channel = ch
	rc.Connected = true

	rc.Logger.Info("Connected on rabbitmq")

	return nil
}

// GetChannel returns the open channel, connecting first if necessary.
func (rc *RabbitMQConnection) GetChannel(ctx context.Context) (*amqp.Channel, error) {
	if !rc.Connected || rc.Channel == nil {
		if err := rc.Connect(ctx); err != nil {
			return nil, err
		}
	}

	return rc.Channel, nil
}

// Publish publishes body to the audit exchange under routingKey.
func (rc *RabbitMQConnection) Publish(ctx context.Context, routingKey string, body []byte) error {
	ch, err := rc.GetChannel(ctx)
	if err != nil {
		return err
	}

	if rc.Exchange == "" {
		return errors.New("rabbitmq: no exchange configured")
	}

	return ch.PublishWithContext(ctx, rc.Exchange, routingKey, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}
