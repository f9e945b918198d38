package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	redisclient "github.com/kartikeycare/opd-booking/internal/redis"
)

const (
	EventAppointmentBooked = "APPOINTMENT_BOOKED"
)

var (
	// ErrMissingDateOrDepartment is an invalid availability query.
	ErrMissingDateOrDepartment = errors.New("date and department are required")
)

// FieldError reports a semantic validation failure on a single booking field.
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string {
	return "invalid value for field " + e.Field
}

// TicketRenderer produces the scannable artifact stored with an appointment.
// Layout and format are entirely its concern.
type TicketRenderer interface {
	QRDataURL(ticketID string) (string, error)
}

// BookRequest carries the raw booking fields. Phone must be digits only and
// age at least 1; every field is required after trimming.
type BookRequest struct {
	Name       string `json:"name" validate:"required"`
	Age        int    `json:"age" validate:"required,gte=1"`
	Phone      string `json:"phone" validate:"required,number"`
	Address    string `json:"address" validate:"required"`
	Department string `json:"department" validate:"required"`
	Date       string `json:"date" validate:"required"`
	Slot       string `json:"slot" validate:"required"`
}

func (r *BookRequest) trim() {
	r.Name = strings.TrimSpace(r.Name)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Address = strings.TrimSpace(r.Address)
	r.Department = strings.TrimSpace(r.Department)
	r.Date = strings.TrimSpace(r.Date)
	r.Slot = strings.TrimSpace(r.Slot)
}

type Service struct {
	repo     Repository
	locker   redisclient.Locker
	renderer TicketRenderer
	validate *validator.Validate
	log      zerolog.Logger
	now      func() time.Time
}

func NewService(repo Repository, locker redisclient.Locker, renderer TicketRenderer, log zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		locker:   locker,
		renderer: renderer,
		validate: validator.New(),
		log:      log,
		now:      time.Now,
	}
}

// AvailableSlots returns the catalog slots not yet booked for a
// (date, department) pair, in chronological order. Read-only and safe for
// concurrent callers.
func (s *Service) AvailableSlots(ctx context.Context, date, department string) ([]string, error) {
	date = strings.TrimSpace(date)
	department = strings.TrimSpace(department)
	if date == "" || department == "" {
		return nil, ErrMissingDateOrDepartment
	}

	booked, err := s.repo.ListBookedSlots(ctx, date, department)
	if err != nil {
		return nil, fmt.Errorf("list booked slots: %w", err)
	}

	taken := make(map[string]struct{}, len(booked))
	for _, slot := range booked {
		taken[slot] = struct{}{}
	}

	free := make([]string, 0, slotCount)
	for _, slot := range catalog {
		if _, ok := taken[slot]; !ok {
			free = append(free, slot)
		}
	}

	return free, nil
}

// Book validates the request and commits a new appointment. The conflict
// check and the insert run inside a per-(date, department, slot) lock, and
// the ledger's unique index backs the check, so for any key at most one
// concurrent call succeeds; the rest get ErrSlotTaken.
func (s *Service) Book(ctx context.Context, req BookRequest) (*Appointment, error) {
	req.trim()

	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	var created *Appointment

	err := s.locker.WithBookingLock(ctx, slotKey(req.Date, req.Department, req.Slot), func(lockCtx context.Context) error {
		appt, err := s.checkAndInsert(lockCtx, req)
		if err != nil {
			return err
		}
		created = appt
		return nil
	})

	if errors.Is(err, redisclient.ErrLockNotAcquired) {
		// Another request holds the lock for this key. The unique index
		// still admits a single winner, so attempt directly instead of
		// bouncing the caller; the loser gets ErrSlotTaken from the insert.
		created, err = s.checkAndInsert(ctx, req)
	}

	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("ticket_id", created.TicketID).
		Str("date", created.Date).
		Str("department", created.Department).
		Str("slot", created.Slot).
		Msg("appointment booked")

	return created, nil
}

// GetByTicketID retrieves the appointment a ticket identifier refers to.
func (s *Service) GetByTicketID(ctx context.Context, ticketID string) (*Appointment, error) {
	ticketID = strings.TrimSpace(ticketID)
	if ticketID == "" {
		return nil, ErrAppointmentNotFound
	}

	appt, err := s.repo.GetByTicketID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get appointment by ticket id: %w", err)
	}

	return appt, nil
}

func (s *Service) validateRequest(req BookRequest) error {
	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return &FieldError{Field: strings.ToLower(verrs[0].Field())}
		}
		return fmt.Errorf("validate booking request: %w", err)
	}

	// The catalog check is stricter than the original system, which stored
	// any slot string as-is.
	if !IsCatalogSlot(req.Slot) {
		return &FieldError{Field: "slot"}
	}

	return nil
}

// checkAndInsert is the conflict-check-then-insert sequence. It runs inside
// the booking lock on the fast path; when called without it, the ledger's
// unique index still rejects a second insert for the same key.
func (s *Service) checkAndInsert(ctx context.Context, req BookRequest) (*Appointment, error) {
	existing, err := s.repo.GetBySlotKey(ctx, req.Date, req.Department, req.Slot)
	if err != nil && !errors.Is(err, ErrAppointmentNotFound) {
		return nil, fmt.Errorf("check booked slot: %w", err)
	}
	if existing != nil {
		return nil, ErrSlotTaken
	}

	appt, err := s.insertAppointment(ctx, req)
	if err != nil {
		return nil, err
	}

	s.logEvent(ctx, appt)
	return appt, nil
}

// insertAppointment generates a ticket identifier, renders the QR payload,
// and persists the record. A ticket_id collision is retried once with a
// fresh identifier.
func (s *Service) insertAppointment(ctx context.Context, req BookRequest) (*Appointment, error) {
	for attempt := 0; attempt < 2; attempt++ {
		ticketID := NewTicketID(s.now())

		qrPayload, err := s.renderer.QRDataURL(ticketID)
		if err != nil {
			return nil, fmt.Errorf("render ticket artifact: %w", err)
		}

		appt := &Appointment{
			Name:       req.Name,
			Age:        req.Age,
			Phone:      req.Phone,
			Address:    req.Address,
			Department: req.Department,
			Date:       req.Date,
			Slot:       req.Slot,
			TicketID:   ticketID,
			QRSVG:      qrPayload,
		}

		created, err := s.repo.Insert(ctx, appt)
		if errors.Is(err, ErrTicketIDTaken) {
			s.log.Warn().Str("ticket_id", ticketID).Msg("ticket id collision, regenerating")
			continue
		}
		if err != nil {
			return nil, err
		}

		return created, nil
	}

	return nil, ErrTicketIDTaken
}

func (s *Service) logEvent(ctx context.Context, appt *Appointment) {
	payload, err := json.Marshal(map[string]any{
		"date":       appt.Date,
		"department": appt.Department,
		"slot":       appt.Slot,
		"ticket_id":  appt.TicketID,
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to marshal booking event payload")
		payload = nil
	}

	apptID := appt.ID

	ev := EventLog{
		EventType:     EventAppointmentBooked,
		AppointmentID: &apptID,
		Payload:       payload,
		CreatedAt:     time.Now(),
	}

	if err := s.repo.InsertEvent(ctx, ev); err != nil {
		s.log.Warn().Err(err).Str("ticket_id", appt.TicketID).Msg("failed to insert booking event")
	}
}

func slotKey(date, department, slot string) string {
	return date + "|" + department + "|" + slot
}
