package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/kartikeycare/opd-booking/internal/booking"
	"github.com/kartikeycare/opd-booking/internal/db"
	"github.com/kartikeycare/opd-booking/internal/ticket"
)

var departments = []string{
	"Dermatology",
	"Cardiology",
	"General Medicine",
	"Orthopedics",
	"Endocrinology",
	"Neurology",
	"Pediatrics",
	"Psychiatry",
	"Ophthalmology",
	"ENT",
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	repo := booking.NewPgRepository(pool)
	qr := ticket.NewQRRenderer()

	if err := seedAppointments(context.Background(), repo, qr, 500); err != nil {
		log.Fatalf("seed appointments: %v", err)
	}

	log.Println("seed complete")
}

func seedAppointments(ctx context.Context, repo *booking.PgRepository, qr *ticket.QRRenderer, count int) error {
	log.Printf("seeding up to %d appointments", count)

	slots := booking.AllSlots()
	inserted := 0
	skipped := 0

	for i := 0; i < count; i++ {
		date := time.Now().AddDate(0, 0, gofakeit.Number(0, 6)).Format("2006-01-02")
		department := departments[gofakeit.Number(0, len(departments)-1)]
		slot := slots[gofakeit.Number(0, len(slots)-1)]

		ticketID := booking.NewTicketID(time.Now())
		qrPayload, err := qr.QRDataURL(ticketID)
		if err != nil {
			return err
		}

		_, err = repo.Insert(ctx, &booking.Appointment{
			Name:       gofakeit.Name(),
			Age:        gofakeit.Number(1, 90),
			Phone:      gofakeit.Numerify("##########"),
			Address:    gofakeit.Address().Address,
			Department: department,
			Date:       date,
			Slot:       slot,
			TicketID:   ticketID,
			QRSVG:      qrPayload,
		})
		if errors.Is(err, booking.ErrSlotTaken) || errors.Is(err, booking.ErrTicketIDTaken) {
			// Same (date, department, slot) rolled twice, or a ticket id
			// collision within one second; keep the first.
			skipped++
			continue
		}
		if err != nil {
			return err
		}

		inserted++
		if inserted%100 == 0 {
			log.Printf("appointments seeded: %d", inserted)
		}
	}

	log.Printf("appointments seeded: %d (skipped %d slot collisions)", inserted, skipped)
	return nil
}
