package kafka

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/storage-platform/storage-service/pkg/kafka"
	"github.com/storage-platform/storage-service/pkg/resilience"
)

// SMSNotifier implements domain.Notifier by handing messages to the
// outbound notifications topic. A downstream delivery service owns the
// actual send; this side only enqueues.
type SMSNotifier struct {
	producer *kafka.CircuitBreakerProducer
	topic    string
	retry    *resilience.RetryConfig
}

// NewSMSNotifier creates a new SMSNotifier
func NewSMSNotifier(producer *kafka.CircuitBreakerProducer, topic string) *SMSNotifier {
	retry := resilience.DefaultRetryConfig()
	retry.RetryableErrors = func(err error) bool {
		// An open circuit means the broker is already known to be down;
		// retrying immediately would only feed the breaker.
		return !strings.Contains(err.Error(), "circuit breaker open")
	}

	return &SMSNotifier{
		producer: producer,
		topic:    topic,
		retry:    retry,
	}
}

type smsPayload struct {
	Channel string `json:"channel"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// Notify enqueues an SMS for delivery
func (n *SMSNotifier) Notify(ctx context.Context, phone, message string) error {
	payload := smsPayload{
		Channel: "sms",
		Phone:   phone,
		Message: message,
	}

	envelope, err := kafka.NewEnvelope("storage.notification.requested", eventSource, phone, time.Now().UTC(), payload)
	if err != nil {
		return fmt.Errorf("failed to build notification envelope: %w", err)
	}

	err = resilience.Retry(ctx, n.retry, func() error {
		return n.producer.PublishEvent(ctx, n.topic, envelope)
	})
	if err != nil {
		return fmt.Errorf("failed to enqueue notification: %w", err)
	}
	return nil
}
