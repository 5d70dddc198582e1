// Package service publishes order events to the configured broker.
// Publishing is best effort: errors are returned so callers can log them,
// but a failed publish never undoes the write that triggered it.
package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/iliyamo/crimson-storefront/internal/config"
	"github.com/iliyamo/crimson-storefront/internal/queue"
)

// Publisher sends order events downstream.
type Publisher interface {
	Publish(ctx context.Context, ev queue.OrderEvent) error
	Close() error
}

// NewPublisher picks the publisher named by cfg.Kind.
func NewPublisher(cfg config.BrokerConfig, log zerolog.Logger) Publisher {
	switch cfg.Kind {
	case config.BrokerRabbitMQ:
		return &AMQPPublisher{URL: cfg.RabbitURL, Queue: cfg.Topic, Log: log}
	case config.BrokerKafka:
		return NewKafkaPublisher(cfg.KafkaBrokers, cfg.Topic, log)
	}
	return Noop{}
}

// Noop drops every event.
type Noop struct{}

func (Noop) Publish(context.Context, queue.OrderEvent) error { return nil }
func (Noop) Close() error { return nil }
