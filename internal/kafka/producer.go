package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Domenick1991/railbooking/internal/domain"
	"github.com/segmentio/kafka-go"
)

const EventTicketBooked = "ticket_booked"

// TicketEvent is published after a ticket has been stored.
type TicketEvent struct {
	Type             string    `json:"type"`
	ReferenceNumber  string    `json:"reference_number"`
	PassengerName    string    `json:"passenger_name"`
	PassengerEmail   string    `json:"passenger_email,omitempty"`
	ScheduleID       string    `json:"schedule_id"`
	TrainNumber      string    `json:"train_number"`
	DepartureStation string    `json:"departure_station"`
	ArrivalStation   string    `json:"arrival_station"`
	DepartureTime    time.Time `json:"departure_time"`
	ArrivalTime      time.Time `json:"arrival_time"`
	JourneyDate      string    `json:"journey_date"`
	Price            float64   `json:"price"`
}

func NewTicketEvent(eventType string, d domain.TicketDetail) TicketEvent {
	return TicketEvent{
		Type:             eventType,
		ReferenceNumber:  d.Ticket.ReferenceNumber,
		PassengerName:    d.Ticket.PassengerName,
		PassengerEmail:   d.Ticket.PassengerEmail,
		ScheduleID:       d.Ticket.ScheduleID,
		TrainNumber:      d.TrainNumber,
		DepartureStation: d.DepartureStation,
		ArrivalStation:   d.ArrivalStation,
		DepartureTime:    d.DepartureTime,
		ArrivalTime:      d.ArrivalTime,
		JourneyDate:      d.Ticket.JourneyDate.Format(domain.DateLayout),
		Price:            d.Ticket.Price,
	}
}

func DecodeTicketEvent(msg kafka.Message) (TicketEvent, error) {
	var event TicketEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return TicketEvent{}, fmt.Errorf("failed to decode ticket event: %w", err)
	}
	return event, nil
}

type Producer struct {
	brokers []string
	writer  *kafka.Writer
	logger  *slog.Logger
}

func NewProducer(brokers []string, logger *slog.Logger) *Producer {
	if logger == nil {
		logger = slog.Default()
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           50 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}

	return &Producer{
		brokers: brokers,
		writer:  writer,
		logger:  logger,
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	message := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}
	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}

	p.logger.Debug("published message", slog.String("topic", topic), slog.String("key", key))
	return nil
}

func (p *Producer) PublishWithRetry(ctx context.Context, topic, key string, payload interface{}, maxRetries int) error {
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		err := p.Publish(ctx, topic, key, payload)
		if err == nil {
			return nil
		}

		lastErr = err
		p.logger.Warn("publish attempt failed", slog.Int("attempt", i+1), slog.String("error", err.Error()))

		if i < maxRetries-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(i+1) * 500 * time.Millisecond):
			}
		}
	}

	return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}

func (p *Producer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

// CheckConnection dials the first broker and reads its partitions.
func (p *Producer) CheckConnection(ctx context.Context) error {
	if len(p.brokers) == 0 {
		return errors.New("no kafka brokers configured")
	}
	conn, err := kafka.DialContext(ctx, "tcp", p.brokers[0])
	if err != nil {
		return fmt.Errorf("failed to connect to Kafka: %w", err)
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions()
	if err != nil {
		return fmt.Errorf("failed to read partitions: %w", err)
	}

	p.logger.Info("connected to kafka", slog.Int("partitions", len(partitions)))
	return nil
}
