// Package kafka owns the franz-go client used by the audit publisher.
package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"tradegate/internal/platform/config"
)

// Client wraps a franz-go producer for the audit topic.
type Client struct {
	kgo   *kgo.Client
	topic string
}

// New creates a Kafka client for audit publishing.
// Returns nil if no brokers are configured (Kafka disabled).
func New(cfg config.KafkaConfig) (*Client, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.ProducerBatchMaxBytes(1<<20),
		kgo.ProduceRequestTimeout(10*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("kafka ping failed: %w", err)
	}

	return &Client{kgo: client, topic: cfg.Topic}, nil
}

// Produce sends one record keyed for per-subject ordering. Asynchronous;
// delivery failures surface through the callback into the caller's logger.
func (c *Client) Produce(ctx context.Context, key, value []byte, onErr func(error)) {
	c.kgo.Produce(ctx, &kgo.Record{Topic: c.topic, Key: key, Value: value}, func(_ *kgo.Record, err error) {
		if err != nil && onErr != nil {
			onErr(err)
		}
	})
}

// Close flushes pending records and releases the client.
func (c *Client) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = c.kgo.Flush(ctx)
	c.kgo.Close()
}
