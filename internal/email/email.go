package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Domenick1991/railbooking/internal/kafka"
	"github.com/Domenick1991/railbooking/internal/ticketpdf"
)

type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

type Message struct {
	To          string
	Subject     string
	Body        string
	Attachments []Attachment
}

// Deliverer hands a composed message to a mail transport.
type Deliverer interface {
	Deliver(ctx context.Context, msg Message) error
}

// LogDeliverer writes messages to the log instead of sending them.
type LogDeliverer struct {
	logger *slog.Logger
}

func NewLogDeliverer(logger *slog.Logger) *LogDeliverer {
	return &LogDeliverer{logger: logger}
}

func (d *LogDeliverer) Deliver(_ context.Context, msg Message) error {
	size := 0
	for _, a := range msg.Attachments {
		size += len(a.Data)
	}
	d.logger.Info("email delivered",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.Int("attachments", len(msg.Attachments)),
		slog.Int("attachment_bytes", size))
	return nil
}

type Sender struct {
	deliverer Deliverer
	logger    *slog.Logger
}

func NewSender(deliverer Deliverer, logger *slog.Logger) *Sender {
	if logger == nil {
		logger = slog.Default()
	}
	if deliverer == nil {
		deliverer = NewLogDeliverer(logger)
	}
	return &Sender{deliverer: deliverer, logger: logger}
}

// Send mails the ticket confirmation with the printable ticket attached. Events without a passenger
// email are skipped.
func (s *Sender) Send(ctx context.Context, event kafka.TicketEvent) error {
	if event.PassengerEmail == "" {
		s.logger.Debug("ticket event without email skipped", slog.String("reference", event.ReferenceNumber))
		return nil
	}

	msg, err := Compose(event)
	if err != nil {
		return err
	}
	return s.deliverer.Deliver(ctx, msg)
}

func Compose(event kafka.TicketEvent) (Message, error) {
	pdf, name, err := ticketpdf.Render(ticketpdf.Document{
		ReferenceNumber:  event.ReferenceNumber,
		PassengerName:    event.PassengerName,
		TrainNumber:      event.TrainNumber,
		DepartureStation: event.DepartureStation,
		ArrivalStation:   event.ArrivalStation,
		DepartureTime:    event.DepartureTime,
		ArrivalTime:      event.ArrivalTime,
		Price:            event.Price,
	})
	if err != nil {
		return Message{}, fmt.Errorf("render ticket %s: %w", event.ReferenceNumber, err)
	}

	body := fmt.Sprintf("Dear %s,\n\nyour ticket %s from %s to %s on %s is confirmed.\nDeparture: %s\nArrival: %s\nPrice: %.2f\n",
		event.PassengerName, event.ReferenceNumber, event.DepartureStation, event.ArrivalStation,
		event.JourneyDate, event.DepartureTime.Format("15:04"), event.ArrivalTime.Format("2006-01-02 15:04"), event.Price)

	return Message{
		To:          event.PassengerEmail,
		Subject:     fmt.Sprintf("Your train ticket %s", event.ReferenceNumber),
		Body:        body,
		Attachments: []Attachment{{Name: name, ContentType: "application/pdf", Data: pdf}},
	}, nil
}
