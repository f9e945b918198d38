package ticket

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/kartikeycare/opd-booking/internal/booking"
)

// Hospital identity printed on every ticket.
type Hospital struct {
	Name    string
	Tagline string
	Address string
	Contact string
}

func DefaultHospital() Hospital {
	return Hospital{
		Name:    "Kartikey Care",
		Tagline: "Caring for Life",
		Address: "Taramandal, Gorakhpur, UP 273017",
		Contact: "Contact: +91 7388109688 | National Emergency: 108",
	}
}

var visitGuidelines = []string{
	"Please arrive 15 minutes prior to your scheduled slot with ID and medical records.",
	"Adhere to social distancing and follow all hospital safety protocols.",
	"For assistance, contact our reception desk or call the emergency number.",
	"Thank you for choosing us for your healthcare needs!",
}

// PDFRenderer produces the printable OPD ticket for a confirmed appointment.
type PDFRenderer struct {
	hospital Hospital
	qr       *QRRenderer
}

func NewPDFRenderer(hospital Hospital, qr *QRRenderer) *PDFRenderer {
	return &PDFRenderer{hospital: hospital, qr: qr}
}

// RenderTicket builds the ticket PDF: header, patient details, QR code,
// visit guidelines, footer.
func (r *PDFRenderer) RenderTicket(appt *booking.Appointment) ([]byte, error) {
	qrPNG, err := r.qr.QRPNG(appt.TicketID)
	if err != nil {
		return nil, fmt.Errorf("render ticket qr: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("OPD Ticket - %s", appt.TicketID), false)
	pdf.SetAuthor(r.hospital.Name, false)
	pdf.SetSubject("Appointment Confirmation", false)
	pdf.AddPage()

	pageWidth, _ := pdf.GetPageSize()

	// Header band
	pdf.SetFillColor(74, 47, 31)
	pdf.Rect(0, 0, pageWidth, 36, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 24)
	pdf.SetXY(0, 8)
	pdf.CellFormat(pageWidth, 12, fmt.Sprintf("%s OPD Ticket", r.hospital.Name), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "I", 13)
	pdf.CellFormat(pageWidth, 8, r.hospital.Tagline, "", 1, "C", false, 0, "")

	// Patient details
	pdf.SetTextColor(74, 47, 31)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(15, 48)
	pdf.CellFormat(0, 10, "Patient Information", "B", 1, "L", false, 0, "")

	details := []struct {
		label string
		value string
	}{
		{"Patient Name", appt.Name},
		{"Age", fmt.Sprintf("%d", appt.Age)},
		{"Phone Number", appt.Phone},
		{"Address", appt.Address},
		{"Department", appt.Department},
		{"Date", appt.Date},
		{"Time Slot", appt.Slot},
		{"Ticket ID", appt.TicketID},
	}

	y := 64.0
	for _, d := range details {
		pdf.SetXY(15, y)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(45, 8, d.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 8, d.value, "", 1, "L", false, 0, "")
		y += 9
	}

	// QR code, aligned with the details block
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("ticket-qr", opts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("ticket-qr", pageWidth-65, 60, 45, 45, false, opts, 0, "")
	pdf.SetXY(pageWidth-65, 106)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.CellFormat(45, 6, "Scan to Verify", "", 1, "C", false, 0, "")

	// Guidelines
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(15, y+14)
	pdf.CellFormat(0, 10, "Visit Guidelines", "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	gy := y + 26
	for i, g := range visitGuidelines {
		pdf.SetXY(15, gy)
		pdf.CellFormat(0, 7, fmt.Sprintf("%d. %s", i+1, g), "", 1, "L", false, 0, "")
		gy += 8
	}

	// Footer band
	_, pageHeight := pdf.GetPageSize()
	pdf.SetFillColor(217, 192, 165)
	pdf.Rect(0, pageHeight-30, pageWidth, 30, "F")
	pdf.SetTextColor(74, 47, 31)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(0, pageHeight-26)
	pdf.CellFormat(pageWidth, 7, r.hospital.Name+" Hospital", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(pageWidth, 5, r.hospital.Address, "", 1, "C", false, 0, "")
	pdf.CellFormat(pageWidth, 5, r.hospital.Contact+" | Ticket valid till slot ends", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render ticket pdf: %w", err)
	}

	return buf.Bytes(), nil
}
