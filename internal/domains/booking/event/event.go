package event

//go:generate go run go.uber.org/mock/mockgen -source=./event.go -destination=../mocks/event_mock.go -package=mocks

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"karaoke/config"
	"karaoke/infras/kafka"
	"karaoke/infras/otel"
	"karaoke/internal/domains/booking/model"
	"karaoke/shared/constant"
	"karaoke/shared/timezone"

	"github.com/rs/zerolog/log"
)

const (
	TypeCreated   = "booking.created"
	TypeUpdated   = "booking.updated"
	TypeConfirmed = "booking.confirmed"
	TypeCancelled = "booking.cancelled"
	TypeCompleted = "booking.completed"
	TypeDeleted   = "booking.deleted"

	headerEventType = "event_type"
)

// TypeForStatus maps a status a booking just entered to its event type.
func TypeForStatus(status string) string {
	switch status {
	case model.StatusConfirmed:
		return TypeConfirmed
	case model.StatusCancelled:
		return TypeCancelled
	case model.StatusCompleted:
		return TypeCompleted
	default:
		return TypeUpdated
	}
}

type Event struct {
	Type        string    `json:"type"`
	BookingID   int64     `json:"booking_id"`
	RoomID      int64     `json:"room_id"`
	CustomerID  int64     `json:"customer_id"`
	Status      string    `json:"status"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	TotalAmount float64   `json:"total_amount"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func NewEvent(eventType string, b model.Booking) Event {
	return Event{
		Type:        eventType,
		BookingID:   b.ID,
		RoomID:      b.RoomID,
		CustomerID:  b.CustomerID,
		Status:      b.Status,
		StartTime:   b.StartTime,
		EndTime:     b.EndTime,
		TotalAmount: b.TotalAmount,
		OccurredAt:  timezone.Now(),
	}
}

// Publisher emits booking lifecycle changes. Delivery is best effort and
// never decides the outcome of the write that produced the event.
type Publisher interface {
	Publish(ctx context.Context, eventType string, booking model.Booking) error
}

type kafkaPublisher struct {
	client kafka.Client
	topic  string
	otel   otel.Otel
}

type noopPublisher struct{}

func New(cfg *config.Config, client kafka.Client, otel otel.Otel) Publisher {
	if !cfg.Kafka.Enable || client == nil {
		log.Info().Msg("booking events disabled")

		return noopPublisher{}
	}

	return &kafkaPublisher{
		client: client,
		topic:  cfg.Kafka.Topics.Booking,
		otel:   otel,
	}
}

func (p *kafkaPublisher) Publish(ctx context.Context, eventType string, booking model.Booking) (err error) {
	ctx, scope := p.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+".booking.Publish")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	msg := kafka.Message{
		Key:     strconv.FormatInt(booking.ID, 10),
		Value:   NewEvent(eventType, booking),
		Headers: map[string]string{headerEventType: eventType},
	}

	if err = p.client.SendMessages(ctx, p.topic, msg); err != nil {
		log.Warn().Err(err).Int64("booking_id", booking.ID).Str("type", eventType).Msg("failed to publish booking event")

		return fmt.Errorf("failed to publish %s: %w", eventType, err)
	}

	return nil
}

func (noopPublisher) Publish(context.Context, string, model.Booking) error {
	return nil
}
