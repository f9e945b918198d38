package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/kartikeycare/opd-booking/internal/booking"
	"github.com/kartikeycare/opd-booking/internal/ticket"
)

type RouterConfig struct {
	Service        *booking.Service
	PDFRenderer    *ticket.PDFRenderer
	PgPool         *pgxpool.Pool
	Redis          *redis.Client
	AllowedOrigins []string
	Env            string
	Version        string
	Logger         zerolog.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}))

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Appointment endpoints
	r.Route("/api/appointments", func(r chi.Router) {
		r.Get("/available-slots", availableSlotsHandler(cfg.Service, cfg.Logger))
		r.Post("/book-appointment", bookAppointmentHandler(cfg.Service, cfg.Logger))
	})

	// OPD ticket endpoints
	r.Get("/api/opd/generate-ticket/{ticketId}", generateTicketHandler(cfg.Service, cfg.PDFRenderer, cfg.Logger))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "API route not found")
	})

	return r
}
