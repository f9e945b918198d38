package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/kartikeycare/opd-booking/internal/booking"
	"github.com/kartikeycare/opd-booking/internal/ticket"
)

func availableSlotsHandler(svc *booking.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date := r.URL.Query().Get("date")
		department := r.URL.Query().Get("department")

		slots, err := svc.AvailableSlots(r.Context(), date, department)
		if err != nil {
			if errors.Is(err, booking.ErrMissingDateOrDepartment) {
				writeError(w, http.StatusBadRequest, "invalid_request", "date and department are required")
				return
			}
			log.Error().Err(err).Str("request_id", GetRequestID(r.Context())).Msg("available slots failed")
			writeError(w, http.StatusInternalServerError, "internal_error", "failed to fetch available slots")
			return
		}

		writeJSON(w, http.StatusOK, AvailableSlotsResponse{AvailableSlots: slots})
	}
}

func bookAppointmentHandler(svc *booking.Service, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BookAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		appt, err := svc.Book(r.Context(), booking.BookRequest{
			Name:       req.Name,
			Age:        req.Age,
			Phone:      req.Phone,
			Address:    req.Address,
			Department: req.Department,
			Date:       req.Date,
			Slot:       req.Slot,
		})
		if err != nil {
			handleBookError(w, r, err, log)
			return
		}

		writeJSON(w, http.StatusCreated, BookAppointmentResponse{
			Message:  "Appointment booked successfully!",
			TicketID: appt.TicketID,
			QRSVG:    appt.QRSVG,
		})
	}
}

func generateTicketHandler(svc *booking.Service, pdf *ticket.PDFRenderer, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ticketID := chi.URLParam(r, "ticketId")

		appt, err := svc.GetByTicketID(r.Context(), ticketID)
		if err != nil {
			if errors.Is(err, booking.ErrAppointmentNotFound) {
				writeError(w, http.StatusNotFound, "appointment_not_found", "no appointment for this ticket id")
				return
			}
			log.Error().Err(err).Str("request_id", GetRequestID(r.Context())).Msg("ticket lookup failed")
			writeError(w, http.StatusInternalServerError, "internal_error", "failed to load appointment")
			return
		}

		data, err := pdf.RenderTicket(appt)
		if err != nil {
			log.Error().Err(err).Str("ticket_id", appt.TicketID).Msg("ticket rendering failed")
			writeError(w, http.StatusInternalServerError, "render_failed", "failed to generate OPD ticket")
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=OPD_Ticket_%s.pdf", appt.TicketID))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

// handleBookError maps booking failures onto the wire contract: validation
// and conflicts are 400, everything else 500. Storage detail stays in the
// server log.
func handleBookError(w http.ResponseWriter, r *http.Request, err error, log zerolog.Logger) {
	var fieldErr *booking.FieldError

	switch {
	case errors.As(err, &fieldErr):
		writeError(w, http.StatusBadRequest, "invalid_"+fieldErr.Field, fieldErr.Error())
	case errors.Is(err, booking.ErrSlotTaken):
		writeError(w, http.StatusBadRequest, "slot_already_booked", "This slot is already booked. Please choose another one.")
	default:
		log.Error().Err(err).Str("request_id", GetRequestID(r.Context())).Msg("booking failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to book appointment, please try again")
	}
}
