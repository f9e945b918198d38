package booking

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

const ticketPrefix = "KC"

// NewTicketID builds a ticket identifier from the booking wall-clock time:
// "KC" + ddmmyyyyhhmmss + a 4-hex-char random suffix. The prefix stays
// human readable; the suffix makes two bookings committed within the same
// second collide only with negligible probability. A unique index on
// ticket_id backs that up.
func NewTicketID(now time.Time) string {
	var suffix [2]byte
	if _, err := rand.Read(suffix[:]); err != nil {
		// crypto/rand does not fail on supported platforms; fall back to
		// sub-second time so the identifier still varies within a second.
		suffix[0] = byte(now.Nanosecond() >> 8)
		suffix[1] = byte(now.Nanosecond())
	}

	return fmt.Sprintf("%s%02d%02d%04d%02d%02d%02d%s",
		ticketPrefix,
		now.Day(), int(now.Month()), now.Year(),
		now.Hour(), now.Minute(), now.Second(),
		strings.ToUpper(hex.EncodeToString(suffix[:])),
	)
}
