package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"

	"github.com/campaign-inventory/dashboard/internal/brand"
	"github.com/campaign-inventory/dashboard/internal/db"
	"github.com/campaign-inventory/dashboard/internal/inventory"
)

var (
	products = []string{"Newsletter", "Homepage Banner", "Podcast"}
	statuses = []string{"Booked", "Not Booked", "On Hold", "Not Booked", "booked"}
	clients  = []string{"Acme Accounting", "Northwind Payroll", "Globex Advisory"}
)

// Seeds two weeks of inventory (current and next) for every registry brand,
// with matching ledger rows and a partial set of form submissions.
func main() {
	_ = godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	schema := envOrDefault("INVENTORY_SCHEMA", "campaign_metadata")
	ledgerTable := envOrDefault("LEDGER_TABLE", "campaign_ledger")
	formsSchema := envOrDefault("FORMS_SCHEMA", "data_products")
	formsTable := envOrDefault("FORMS_TABLE", "sponsorship_bookings_form_submissions")
	firstSlotID, err := strconv.Atoi(envOrDefault("MIN_SLOT_ID", "8000"))
	if err != nil {
		log.Fatalf("MIN_SLOT_ID: %v", err)
	}

	registry, err := brand.Load(os.Getenv("BRANDS_FILE"))
	if err != nil {
		log.Fatalf("load brands: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	pool, err := db.Connect(ctx, databaseURL, db.PoolConfig{MaxConns: 2})
	if err != nil {
		log.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("begin tx: %v", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	days := append(inventory.CurrentWeek(now).Days(), inventory.NextWeek(now).Days()...)
	ledger := pgx.Identifier{schema, ledgerTable}.Sanitize()
	forms := pgx.Identifier{formsSchema, formsTable}.Sanitize()

	slotCount, bookingCount := 0, 0
	for bi, b := range registry.All() {
		table := pgx.Identifier{schema, b.Table}.Sanitize()
		if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE "ID" > $1`, firstSlotID); err != nil {
			log.Fatalf("clear %s: %v", b.Table, err)
		}

		slotID := firstSlotID
		for di, day := range days {
			for pi, product := range products {
				slotID++
				status := statuses[(bi+di+pi)%len(statuses)]
				rawDate := inventory.FormatDisplayDate(day)
				// One brand keeps its older numeric date encoding.
				if strings.EqualFold(b.Code, "CZ") && di%2 == 0 {
					rawDate = strconv.Itoa(inventory.SerialFromDate(day))
				}

				var bookingID *string
				class := inventory.Classify(status)
				if class.IsScheduled() {
					id := "BK-" + strings.ToUpper(uuid.NewString()[:8])
					bookingID = &id
					client := clients[(bi+pi)%len(clients)]
					if _, err := tx.Exec(ctx, `
						INSERT INTO `+ledger+` ("Booking ID", "Brand", "Client Name", "Contract ID", "Status", "Scheduled Live Date", "Schedule End Date", "Product Name - As per Listing Hub")
						VALUES ($1, $2, $3, $4, 'Active', $5, $5, $6)
					`, id, b.Code, client, "CT-"+id[3:], day, product); err != nil {
						log.Fatalf("insert ledger row: %v", err)
					}
					bookingCount++

					// Every other booking has its form submitted.
					if bookingCount%2 == 0 {
						if _, err := tx.Exec(ctx, `
							INSERT INTO `+forms+` (booking_id, submit_timestamp, email_id, brand, product_type, start_date, end_date, client_name, client_type)
							VALUES ($1, $2, $3, $4, $5, $6, $6, $7, 'Direct')
						`, id, day.Add(-72*time.Hour), "bookings@example.com", b.Name, product, day, client); err != nil {
							log.Fatalf("insert form submission: %v", err)
						}
					}
				}

				// A superseded revision proves the latest one wins.
				if di == 0 && pi == 0 {
					if _, err := tx.Exec(ctx, `
						INSERT INTO `+table+` ("ID", "Dates", "Booked/Not Booked", "Booking ID", "Media_Asset", "Last Updated")
						VALUES ($1, $2, 'Not Booked', NULL, $3, $4)
					`, slotID, rawDate, product, now.Add(-24*time.Hour)); err != nil {
						log.Fatalf("insert revision: %v", err)
					}
				}
				if _, err := tx.Exec(ctx, `
					INSERT INTO `+table+` ("ID", "Dates", "Booked/Not Booked", "Booking ID", "Media_Asset", "Last Updated")
					VALUES ($1, $2, $3, $4, $5, $6)
				`, slotID, rawDate, status, bookingID, product, now); err != nil {
					log.Fatalf("insert slot: %v", err)
				}
				slotCount++
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("commit tx: %v", err)
	}

	fmt.Printf("Seed completed. brands=%d slots=%d bookings=%d\n", len(registry.All()), slotCount, bookingCount)
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
