package ticketpdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/railbooking/internal/domain"
	"github.com/phpdave11/gofpdf"
)

const timeLayout = "2006-01-02 15:04"

// Document is the printable content of a ticket.
type Document struct {
	ReferenceNumber  string
	PassengerName    string
	SeatNumber       string
	TrainNumber      string
	TrainName        string
	LineName         string
	ClassName        string
	DepartureStation string
	ArrivalStation   string
	DepartureTime    time.Time
	ArrivalTime      time.Time
	Price            float64
	Status           string
	ValidUntil       time.Time
}

func FromDetail(d domain.TicketDetail) Document {
	return Document{
		ReferenceNumber:  d.Ticket.ReferenceNumber,
		PassengerName:    d.Ticket.PassengerName,
		SeatNumber:       d.Ticket.SeatNumber,
		TrainNumber:      d.TrainNumber,
		TrainName:        d.TrainName,
		LineName:         d.LineName,
		ClassName:        d.ClassName,
		DepartureStation: d.DepartureStation,
		ArrivalStation:   d.ArrivalStation,
		DepartureTime:    d.DepartureTime,
		ArrivalTime:      d.ArrivalTime,
		Price:            d.Ticket.Price,
		Status:           string(d.Ticket.Status),
		ValidUntil:       d.Ticket.ValidUntil,
	}
}

// Render returns the PDF bytes and a file name for the ticket.
func Render(doc Document) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Train ticket "+doc.ReferenceNumber, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "TRAIN TICKET")
	pdf.Ln(12)

	pdf.SetFont("Courier", "B", 16)
	pdf.Cell(0, 9, doc.ReferenceNumber)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Passenger : %s", orDash(doc.PassengerName)),
		fmt.Sprintf("Train     : %s %s", orDash(doc.TrainNumber), doc.TrainName),
		fmt.Sprintf("Line      : %s", orDash(doc.LineName)),
		fmt.Sprintf("Class     : %s", orDash(doc.ClassName)),
		fmt.Sprintf("Seat      : %s", orDash(doc.SeatNumber)),
		fmt.Sprintf("From      : %s  %s", orDash(doc.DepartureStation), formatTime(doc.DepartureTime)),
		fmt.Sprintf("To        : %s  %s", orDash(doc.ArrivalStation), formatTime(doc.ArrivalTime)),
		fmt.Sprintf("Price     : %.2f", doc.Price),
		fmt.Sprintf("Status    : %s", orDash(doc.Status)),
		fmt.Sprintf("Valid til : %s", formatTime(doc.ValidUntil)),
	}
	for _, s := range lines {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Valid for one passenger on the journey shown. Present the reference number on request.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), FileName(doc.ReferenceNumber), nil
}

func FileName(reference string) string {
	clean := strings.Map(func(r rune) rune {
		if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, reference)
	if clean == "" {
		clean = "ticket"
	}
	return "TICKET_" + clean + ".pdf"
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(timeLayout)
}
