package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	slotConstraint     = "appointments_slot_key"
	ticketIDConstraint = "appointments_ticket_id_key"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment

	err := row.Scan(
		&a.ID,
		&a.Name,
		&a.Age,
		&a.Phone,
		&a.Address,
		&a.Department,
		&a.Date,
		&a.Slot,
		&a.TicketID,
		&a.QRSVG,
		&a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	return &a, nil
}

// Interface methods

func (r *PgRepository) ListBookedSlots(ctx context.Context, date, department string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT slot
		FROM appointments
		WHERE date = $1 AND department = $2
	`, date, department)
	if err != nil {
		return nil, fmt.Errorf("list booked slots: %w", err)
	}
	defer rows.Close()

	var slots []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return slots, nil
}

func (r *PgRepository) GetBySlotKey(ctx context.Context, date, department, slot string) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, age, phone, address, department, date, slot, ticket_id, qr_svg, created_at
		FROM appointments
		WHERE date = $1 AND department = $2 AND slot = $3
	`, date, department, slot)
	return scanAppointment(row)
}

func (r *PgRepository) GetByTicketID(ctx context.Context, ticketID string) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, age, phone, address, department, date, slot, ticket_id, qr_svg, created_at
		FROM appointments
		WHERE ticket_id = $1
	`, ticketID)
	return scanAppointment(row)
}

func (r *PgRepository) Insert(ctx context.Context, appt *Appointment) (*Appointment, error) {
	id := uuid.New()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO appointments (id, name, age, phone, address, department, date, slot, ticket_id, qr_svg, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())
		RETURNING id, name, age, phone, address, department, date, slot, ticket_id, qr_svg, created_at
	`, id, appt.Name, appt.Age, appt.Phone, appt.Address, appt.Department, appt.Date, appt.Slot, appt.TicketID, appt.QRSVG)

	created, err := scanAppointment(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			// Unique violation. The slot index is the hard double-booking
			// guarantee even if the Redis lock layer was bypassed.
			switch pgErr.ConstraintName {
			case slotConstraint:
				return nil, ErrSlotTaken
			case ticketIDConstraint:
				return nil, ErrTicketIDTaken
			}
		}
		return nil, fmt.Errorf("insert appointment: %w", err)
	}

	return created, nil
}

func (r *PgRepository) InsertEvent(ctx context.Context, ev EventLog) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO event_logs (event_type, appointment_id, payload, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
	`, ev.EventType, ev.AppointmentID, ev.Payload, nullableTime(ev.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert event log: %w", err)
	}

	return nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
