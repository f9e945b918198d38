package booking

import (
	"context"
	"errors"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrSlotTaken is returned when an insert or a conflict check finds the
	// (date, department, slot) triple already occupied.
	ErrSlotTaken = errors.New("slot already booked")

	// ErrTicketIDTaken is returned when an insert collides on the ticket_id
	// unique index. The service retries with a fresh identifier.
	ErrTicketIDTaken = errors.New("ticket id already in use")
)

// Repository is the booking ledger. Implementations must enforce uniqueness
// of (date, department, slot) and of ticket_id at the storage layer and
// surface violations as ErrSlotTaken / ErrTicketIDTaken.
type Repository interface {
	// ListBookedSlots returns the slot labels of all appointments for a
	// (date, department) pair.
	ListBookedSlots(ctx context.Context, date, department string) ([]string, error)

	// For conflict checks inside the booking critical section
	GetBySlotKey(ctx context.Context, date, department, slot string) (*Appointment, error)

	// Ticket retrieval
	GetByTicketID(ctx context.Context, ticketID string) (*Appointment, error)

	// Insert persists a new appointment and returns the stored record.
	Insert(ctx context.Context, appt *Appointment) (*Appointment, error)

	// Event logging
	InsertEvent(ctx context.Context, ev EventLog) error
}
