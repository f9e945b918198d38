package ticket

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
)

const qrSizePx = 160

// QRRenderer encodes ticket identifiers as scannable QR images. The data-URL
// form is stored with the appointment and returned to the client; the raw
// PNG form is embedded in the printable ticket.
type QRRenderer struct{}

func NewQRRenderer() *QRRenderer {
	return &QRRenderer{}
}

// QRDataURL returns the ticket id QR as a base64 PNG data URL.
func (r *QRRenderer) QRDataURL(ticketID string) (string, error) {
	data, err := r.QRPNG(ticketID)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data), nil
}

// QRPNG returns the ticket id QR as PNG bytes.
func (r *QRRenderer) QRPNG(ticketID string) ([]byte, error) {
	code, err := qr.Encode(ticketID, qr.M, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}

	scaled, err := barcode.Scale(code, qrSizePx, qrSizePx)
	if err != nil {
		return nil, fmt.Errorf("scale qr: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, fmt.Errorf("encode qr png: %w", err)
	}

	return buf.Bytes(), nil
}
