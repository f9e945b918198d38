package booking

import (
	"time"

	"github.com/google/uuid"
)

// Appointment is one confirmed OPD booking. Appointments are written exactly
// once and never updated or deleted.
type Appointment struct {
	ID         uuid.UUID
	Name       string
	Age        int
	Phone      string
	Address    string
	Department string
	Date       string // stable string key, e.g. "2024-05-01"
	Slot       string // catalog time label, e.g. "10:00 AM"
	TicketID   string
	QRSVG      string // scannable code payload stored with the record
	CreatedAt  time.Time
}

type EventLog struct {
	ID            int64
	EventType     string
	AppointmentID *uuid.UUID
	Payload       []byte
	CreatedAt     time.Time
}
