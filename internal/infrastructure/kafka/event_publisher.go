package kafka

import (
	"context"
	"fmt"

	"github.com/storage-platform/storage-service/internal/domain"
	"github.com/storage-platform/storage-service/pkg/kafka"
)

const eventSource = "storage-service"

// EventPublisher implements domain event publishing using Kafka. Rack
// events and shipment events go to separate topics so capacity
// consumers do not have to filter the shipment lifecycle stream.
type EventPublisher struct {
	producer      *kafka.CircuitBreakerProducer
	shipmentTopic string
	rackTopic     string
}

// NewEventPublisher creates a new Kafka-based event publisher
func NewEventPublisher(producer *kafka.CircuitBreakerProducer, shipmentTopic, rackTopic string) *EventPublisher {
	return &EventPublisher{
		producer:      producer,
		shipmentTopic: shipmentTopic,
		rackTopic:     rackTopic,
	}
}

// Publish publishes a single domain event to Kafka
func (p *EventPublisher) Publish(ctx context.Context, event domain.DomainEvent) error {
	topic := p.shipmentTopic
	subject := eventSource

	switch e := event.(type) {
	case *domain.ShipmentProvisionedEvent:
		subject = e.ShipmentID
	case *domain.BoxesAssignedEvent:
		subject = e.ShipmentID
	case *domain.BoxesReleasedEvent:
		subject = e.ShipmentID
	case *domain.RackCapacityChangedEvent:
		topic = p.rackTopic
		subject = e.RackID
	}

	envelope, err := kafka.NewEnvelope(event.EventType(), eventSource, subject, event.OccurredAt(), event)
	if err != nil {
		return fmt.Errorf("failed to build event envelope: %w", err)
	}

	if err := p.producer.PublishEvent(ctx, topic, envelope); err != nil {
		return fmt.Errorf("failed to publish event to kafka: %w", err)
	}
	return nil
}

// PublishAll publishes multiple domain events to Kafka
func (p *EventPublisher) PublishAll(ctx context.Context, events []domain.DomainEvent) error {
	for _, event := range events {
		if err := p.Publish(ctx, event); err != nil {
			return err
		}
	}
	return nil
}
