package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"tradegate/internal/platform/kafka"
)

// KafkaPublisher ships audit events to the configured Kafka topic. Records
// are keyed by actor so one account's events stay ordered within a partition.
type KafkaPublisher struct {
	client *kafka.Client
	logger *slog.Logger
}

func NewKafkaPublisher(client *kafka.Client, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{client: client, logger: logger}
}

func (p *KafkaPublisher) Emit(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	p.client.Produce(ctx, []byte(event.Actor), value, func(err error) {
		if p.logger != nil {
			p.logger.Error("audit record delivery failed",
				"action", event.Action,
				"error", err,
			)
		}
	})
	return nil
}
