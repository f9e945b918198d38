package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/kartikeycare/opd-booking/internal/booking"
	"github.com/kartikeycare/opd-booking/internal/ticket"
)

// -- Mocks --

type memRepo struct {
	mu       sync.Mutex
	bySlot   map[string]*booking.Appointment
	byTicket map[string]*booking.Appointment
}

func newMemRepo() *memRepo {
	return &memRepo{
		bySlot:   make(map[string]*booking.Appointment),
		byTicket: make(map[string]*booking.Appointment),
	}
}

func key(date, department, slot string) string {
	return date + "|" + department + "|" + slot
}

func (m *memRepo) ListBookedSlots(_ context.Context, date, department string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var slots []string
	for _, a := range m.bySlot {
		if a.Date == date && a.Department == department {
			slots = append(slots, a.Slot)
		}
	}
	return slots, nil
}

func (m *memRepo) GetBySlotKey(_ context.Context, date, department, slot string) (*booking.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.bySlot[key(date, department, slot)]
	if !ok {
		return nil, booking.ErrAppointmentNotFound
	}
	return a, nil
}

func (m *memRepo) GetByTicketID(_ context.Context, ticketID string) (*booking.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byTicket[ticketID]
	if !ok {
		return nil, booking.ErrAppointmentNotFound
	}
	return a, nil
}

func (m *memRepo) Insert(_ context.Context, appt *booking.Appointment) (*booking.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(appt.Date, appt.Department, appt.Slot)
	if _, ok := m.bySlot[k]; ok {
		return nil, booking.ErrSlotTaken
	}
	cp := *appt
	cp.CreatedAt = time.Now()
	m.bySlot[k] = &cp
	m.byTicket[cp.TicketID] = &cp
	return &cp, nil
}

func (m *memRepo) InsertEvent(_ context.Context, _ booking.EventLog) error {
	return nil
}

type noopLocker struct{}

func (noopLocker) WithBookingLock(ctx context.Context, _ string, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestRouter() http.Handler {
	qr := ticket.NewQRRenderer()
	svc := booking.NewService(newMemRepo(), noopLocker{}, qr, zerolog.Nop())

	return NewRouter(RouterConfig{
		Service:        svc,
		PDFRenderer:    ticket.NewPDFRenderer(ticket.DefaultHospital(), qr),
		AllowedOrigins: []string{"*"},
		Env:            "test",
		Version:        "test",
		Logger:         zerolog.Nop(),
	})
}

func bookBody(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(BookAppointmentRequest{
		Name:       "Asha Verma",
		Age:        34,
		Phone:      "9876543210",
		Address:    "12 Station Road, Gorakhpur",
		Department: "Cardiology",
		Date:       "2024-05-01",
		Slot:       "10:00 AM",
	})
	if err != nil {
		t.Fatal(err)
	}
	return body
}

func doRequest(router http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// -- Tests --

func TestAvailableSlotsMissingParams(t *testing.T) {
	router := newTestRouter()

	for _, target := range []string{
		"/api/appointments/available-slots",
		"/api/appointments/available-slots?date=2024-05-01",
		"/api/appointments/available-slots?department=Cardiology",
	} {
		rec := doRequest(router, http.MethodGet, target, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rec.Code)
		}

		var resp ErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("%s: invalid error body: %v", target, err)
		}
		if resp.Error != "invalid_request" {
			t.Errorf("%s: error code = %q, want invalid_request", target, resp.Error)
		}
	}
}

func TestAvailableSlotsFullCatalog(t *testing.T) {
	router := newTestRouter()

	rec := doRequest(router, http.MethodGet, "/api/appointments/available-slots?date=2024-05-01&department=Cardiology", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp AvailableSlotsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if len(resp.AvailableSlots) != 96 {
		t.Errorf("available slots = %d, want 96", len(resp.AvailableSlots))
	}
}

func TestBookAppointmentLifecycle(t *testing.T) {
	router := newTestRouter()

	// Book
	rec := doRequest(router, http.MethodPost, "/api/appointments/book-appointment", bookBody(t))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body: %s", rec.Code, rec.Body.String())
	}

	var resp BookAppointmentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if !strings.HasPrefix(resp.TicketID, "KC") {
		t.Errorf("ticket id %q missing KC prefix", resp.TicketID)
	}
	if !strings.HasPrefix(resp.QRSVG, "data:image/png;base64,") {
		t.Errorf("qr payload %q is not a PNG data URL", resp.QRSVG[:min(len(resp.QRSVG), 40)])
	}

	// Booked slot vanishes from availability
	rec = doRequest(router, http.MethodGet, "/api/appointments/available-slots?date=2024-05-01&department=Cardiology", nil)
	var avail AvailableSlotsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &avail); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if len(avail.AvailableSlots) != 95 {
		t.Errorf("available slots after booking = %d, want 95", len(avail.AvailableSlots))
	}
	for _, s := range avail.AvailableSlots {
		if s == "10:00 AM" {
			t.Error("booked slot still listed as available")
		}
	}

	// Rebooking the same slot conflicts
	rec = doRequest(router, http.MethodPost, "/api/appointments/book-appointment", bookBody(t))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("rebooking status = %d, want 400", rec.Code)
	}
	var errResp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("invalid error body: %v", err)
	}
	if errResp.Error != "slot_already_booked" {
		t.Errorf("error code = %q, want slot_already_booked", errResp.Error)
	}

	// Ticket PDF retrieval
	rec = doRequest(router, http.MethodGet, "/api/opd/generate-ticket/"+resp.TicketID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("ticket status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("content type = %q, want application/pdf", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Error("ticket body is not a PDF")
	}
}

func TestBookAppointmentValidationErrors(t *testing.T) {
	router := newTestRouter()

	cases := []struct {
		name     string
		mutate   func(*BookAppointmentRequest)
		wantCode string
	}{
		{"bad phone", func(r *BookAppointmentRequest) { r.Phone = "abc123" }, "invalid_phone"},
		{"zero age", func(r *BookAppointmentRequest) { r.Age = 0 }, "invalid_age"},
		{"unknown slot", func(r *BookAppointmentRequest) { r.Slot = "9:00 AM" }, "invalid_slot"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := BookAppointmentRequest{
				Name:       "Asha Verma",
				Age:        34,
				Phone:      "9876543210",
				Address:    "12 Station Road",
				Department: "Cardiology",
				Date:       "2024-05-01",
				Slot:       "10:00 AM",
			}
			c.mutate(&req)
			body, _ := json.Marshal(req)

			rec := doRequest(router, http.MethodPost, "/api/appointments/book-appointment", body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}

			var resp ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid error body: %v", err)
			}
			if resp.Error != c.wantCode {
				t.Errorf("error code = %q, want %q", resp.Error, c.wantCode)
			}
		})
	}
}

func TestBookAppointmentMalformedJSON(t *testing.T) {
	router := newTestRouter()

	rec := doRequest(router, http.MethodPost, "/api/appointments/book-appointment", []byte("{not json"))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGenerateTicketUnknownID(t *testing.T) {
	router := newTestRouter()

	rec := doRequest(router, http.MethodGet, "/api/opd/generate-ticket/KC01012024000000AA", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestUnknownRouteReturnsJSON404(t *testing.T) {
	router := newTestRouter()

	rec := doRequest(router, http.MethodGet, "/api/unknown", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("404 body is not JSON: %v", err)
	}
	if resp.Error != "not_found" {
		t.Errorf("error code = %q, want not_found", resp.Error)
	}
}
