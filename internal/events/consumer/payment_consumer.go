package consumer

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/coachbook/service-scheduling/internal/application"
	"github.com/coachbook/service-scheduling/internal/events"
	"github.com/coachbook/service-scheduling/internal/platform/domain"
	"github.com/coachbook/service-scheduling/internal/platform/kafka"
)

// PaymentEventConsumer listens to payment events and marks the corresponding
// booking as paid. Payment status is independent of the scheduling lifecycle,
// so this is the only writer of that field.
type PaymentEventConsumer struct {
	consumer *kafka.Consumer
	service  *application.BookingService
	logger   *zap.Logger
}

// NewPaymentEventConsumer creates a new PaymentEventConsumer.
func NewPaymentEventConsumer(
	brokers []string,
	groupID string,
	service *application.BookingService,
	logger *zap.Logger,
) *PaymentEventConsumer {
	c := kafka.NewConsumer(brokers, groupID, events.TopicPaymentEvents, logger)
	return &PaymentEventConsumer{
		consumer: c,
		service:  service,
		logger:   logger,
	}
}

// Start begins consuming payment events. This blocks until the context is cancelled.
func (c *PaymentEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *PaymentEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *PaymentEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	var cloudEvent kafka.CloudEvent
	if err := json.Unmarshal(msg.Value, &cloudEvent); err != nil {
		c.logger.Error("failed to parse cloud event from payment topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case events.PaymentCompleted:
		return c.handlePaymentCompleted(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled payment event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *PaymentEventConsumer) handlePaymentCompleted(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt events.PaymentCompletedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse PaymentCompletedEvent data",
			zap.Error(err),
		)
		return nil // Don't retry malformed data
	}

	c.logger.Info("processing payment completed event",
		zap.String("booking_id", evt.BookingID.String()),
		zap.String("payment_id", evt.PaymentID.String()),
	)

	if _, err := c.service.MarkBookingPaid(ctx, evt.BookingID); err != nil {
		// A payment for an unknown booking will never succeed on retry.
		if domain.IsCode(err, domain.CodeNotFound) {
			c.logger.Warn("payment event for unknown booking",
				zap.String("booking_id", evt.BookingID.String()),
			)
			return nil
		}
		c.logger.Error("failed to mark booking paid",
			zap.String("booking_id", evt.BookingID.String()),
			zap.Error(err),
		)
		return err
	}

	c.logger.Info("booking marked paid",
		zap.String("booking_id", evt.BookingID.String()),
	)
	return nil
}
