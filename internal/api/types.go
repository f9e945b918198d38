package api

// BookAppointmentRequest mirrors the booking form body.
type BookAppointmentRequest struct {
	Name       string `json:"name"`
	Age        int    `json:"age"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	Department string `json:"department"`
	Date       string `json:"date"`
	Slot       string `json:"slot"`
}

type AvailableSlotsResponse struct {
	AvailableSlots []string `json:"availableSlots"`
}

type BookAppointmentResponse struct {
	Message  string `json:"message"`
	TicketID string `json:"ticketId"`
	QRSVG    string `json:"qr_svg"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
