package events

import (
	"context"
	"time"
)

// Type names a loan lifecycle event. The value doubles as the routing key on
// the broker.
type Type string

const (
	LoanCreated  Type = "loan.created"
	LoanReturned Type = "loan.returned"
	LoanOverdue  Type = "loan.overdue"
)

// Event describes one loan lifecycle transition.
type Event struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	LoanID     string    `json:"loanId"`
	ISBN       string    `json:"isbn"`
	PatronID   string    `json:"patronId,omitempty"`
	EmployeeID string    `json:"employeeId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Publisher emits loan lifecycle events to interested consumers.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// NopPublisher discards events; used when no broker is configured.
type NopPublisher struct{}

// Publish drops the event.
func (NopPublisher) Publish(context.Context, Event) error { return nil }
