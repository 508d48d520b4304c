package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campaign-inventory/dashboard/internal/inventory"
)

const ledgerColumns = `
	l."ID"::bigint,
	COALESCE(TRIM(l."Booking ID"::text), ''),
	COALESCE(l."Brand"::text, ''),
	COALESCE(TRIM(l."Client Name"::text), ''),
	COALESCE(l."Contract ID"::text, ''),
	COALESCE(l."Status"::text, ''),
	l."Scheduled Live Date",
	l."Schedule End Date",
	COALESCE(l."Product Name - As per Listing Hub"::text, '')`

// activeStatus is the ledger status of bookings that still have deliverables.
const activeStatus = "Active"

func (s *Store) ListClients(ctx context.Context) ([]inventory.ClientSummary, error) {
	sql := fmt.Sprintf(`
		SELECT
			TRIM(l."Client Name") AS client_name,
			COUNT(DISTINCT l."Booking ID") AS total_bookings,
			ARRAY_REMOVE(ARRAY_AGG(DISTINCT l."Brand"::text ORDER BY l."Brand"::text), NULL) AS brands
		FROM %s l
		WHERE l."Client Name" IS NOT NULL AND TRIM(l."Client Name") <> ''
		GROUP BY TRIM(l."Client Name")
		ORDER BY total_bookings DESC, client_name
	`, s.ledgerTable())

	var out []inventory.ClientSummary
	err := s.withConn(ctx, "list clients", func(conn *pgxpool.Conn) error {
		rows, err := conn.Query(ctx, sql)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var c inventory.ClientSummary
			if err := rows.Scan(&c.Name, &c.TotalBookings, &c.Brands); err != nil {
				return err
			}
			if c.Brands == nil {
				c.Brands = []string{}
			}
			out = append(out, c)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) ListLedger(ctx context.Context, limit int) ([]inventory.LedgerEntry, error) {
	sql := fmt.Sprintf(`
		SELECT %s
		FROM %s l
		ORDER BY l."Scheduled Live Date" DESC NULLS LAST, l."ID" DESC
		LIMIT $1
	`, ledgerColumns, s.ledgerTable())
	return s.queryLedger(ctx, "list ledger", sql, limit)
}

func (s *Store) UpcomingDeliverables(ctx context.Context, from, to time.Time, limit int) ([]inventory.LedgerEntry, error) {
	sql := fmt.Sprintf(`
		SELECT %s
		FROM %s l
		WHERE l."Scheduled Live Date" >= $1
			AND l."Scheduled Live Date" <= $2
			AND l."Status" = $3
		ORDER BY l."Scheduled Live Date" ASC, l."ID" ASC
		LIMIT $4
	`, ledgerColumns, s.ledgerTable())
	return s.queryLedger(ctx, "upcoming deliverables", sql, from, to, activeStatus, limit)
}

func (s *Store) queryLedger(ctx context.Context, op, sql string, args ...any) ([]inventory.LedgerEntry, error) {
	var out []inventory.LedgerEntry
	err := s.withConn(ctx, op, func(conn *pgxpool.Conn) error {
		rows, err := conn.Query(ctx, sql, args...)
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, scanLedgerEntry)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func scanLedgerEntry(row pgx.CollectableRow) (inventory.LedgerEntry, error) {
	var (
		e         inventory.LedgerEntry
		live, end *time.Time
	)
	err := row.Scan(&e.ID, &e.BookingID, &e.Brand, &e.ClientName, &e.ContractID, &e.Status, &live, &end, &e.ProductName)
	e.ScheduledLiveDate = isoDate(live)
	e.ScheduleEndDate = isoDate(end)
	return e, err
}
