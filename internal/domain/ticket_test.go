package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	validUntil := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	before := validUntil.Add(-time.Hour)
	after := validUntil.Add(time.Second)

	cases := []struct {
		name        string
		status      TicketStatus
		now         time.Time
		wantValid   bool
		wantExpired bool
	}{
		{"valid within window", TicketStatusValid, before, true, false},
		{"valid at the boundary", TicketStatusValid, validUntil, true, false},
		{"valid but expired", TicketStatusValid, after, false, true},
		{"used", TicketStatusUsed, before, false, false},
		{"cancelled", TicketStatusCancelled, before, false, false},
		{"refunded", TicketStatusRefunded, before, false, false},
		{"unknown status", TicketStatus("pending"), before, false, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			valid, expired := Evaluate(Ticket{Status: tc.status, ValidUntil: validUntil}, tc.now)
			assert.Equal(t, tc.wantValid, valid)
			assert.Equal(t, tc.wantExpired, expired)
		})
	}
}
