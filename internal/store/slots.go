package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campaign-inventory/dashboard/internal/brand"
	"github.com/campaign-inventory/dashboard/internal/inventory"
)

// buildSlotQuery selects the latest revision of every slot before applying
// filters, then attaches at most one ledger row per slot.
func (s *Store) buildSlotQuery(b brand.Brand, q inventory.SlotQuery) (string, []any) {
	args := []any{q.MinSlotID, b.Code}
	where := []string{"c.revision = 1"}

	if q.Dates != nil {
		args = append(args, q.Dates)
		where = append(where, fmt.Sprintf("c.raw_date = ANY($%d::text[])", len(args)))
	}
	if strings.TrimSpace(q.Product) != "" {
		args = append(args, containsPattern(q.Product))
		where = append(where, fmt.Sprintf(`c.product ILIKE $%d ESCAPE '\'`, len(args)))
	}
	// Slots without a ledger match display as NoClient and filter the same way.
	if strings.TrimSpace(q.Client) != "" {
		args = append(args, containsPattern(q.Client), inventory.NoClient)
		where = append(where, fmt.Sprintf(`COALESCE(NULLIF(TRIM(cl.client_name), ''), $%d) ILIKE $%d ESCAPE '\'`, len(args), len(args)-1))
	}

	sql := fmt.Sprintf(`
		WITH latest AS (
			SELECT
				inv."ID"::bigint AS slot_id,
				COALESCE(inv."Dates"::text, '') AS raw_date,
				inv."Booked/Not Booked"::text AS raw_status,
				COALESCE(TRIM(inv."Booking ID"::text), '') AS booking_id,
				COALESCE(inv."Media_Asset"::text, '') AS product,
				inv."Last Updated" AS last_updated,
				ROW_NUMBER() OVER (
					PARTITION BY inv."ID"
					ORDER BY inv."Last Updated" DESC NULLS LAST, inv.ctid DESC
				) AS revision
			FROM %s inv
			WHERE inv."ID" >= $1
		)
		SELECT c.slot_id, c.raw_date, c.raw_status, c.booking_id, c.product, c.last_updated,
			cl.client_name, cl.contract_id
		FROM latest c
		LEFT JOIN LATERAL (
			SELECT l."Client Name"::text AS client_name, l."Contract ID"::text AS contract_id
			FROM %s l
			WHERE c.booking_id <> '' AND TRIM(l."Booking ID"::text) = c.booking_id AND l."Brand" = $2
			ORDER BY l."ID" DESC
			LIMIT 1
		) cl ON TRUE
		WHERE %s
		ORDER BY c.slot_id
	`, s.inventoryTable(b.Table), s.ledgerTable(), strings.Join(where, " AND "))

	return sql, args
}

func (s *Store) ReadSlots(ctx context.Context, b brand.Brand, q inventory.SlotQuery) ([]inventory.SlotRow, error) {
	sql, args := s.buildSlotQuery(b, q)

	var out []inventory.SlotRow
	err := s.withConn(ctx, "read slots "+b.Table, func(conn *pgxpool.Conn) error {
		rows, err := conn.Query(ctx, sql, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var (
				row         inventory.SlotRow
				lastUpdated *time.Time
			)
			if err := rows.Scan(
				&row.SlotID,
				&row.RawDate,
				&row.RawStatus,
				&row.BookingID,
				&row.Product,
				&lastUpdated,
				&row.ClientName,
				&row.ContractID,
			); err != nil {
				return err
			}
			if lastUpdated != nil {
				row.LastUpdated = *lastUpdated
			}
			out = append(out, row)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) SampleDates(ctx context.Context, b brand.Brand, minSlotID int64, limit int) ([]string, error) {
	sql := fmt.Sprintf(`
		SELECT DISTINCT inv."Dates"::text
		FROM %s inv
		WHERE inv."ID" >= $1 AND inv."Dates" IS NOT NULL AND inv."Dates"::text <> ''
		LIMIT $2
	`, s.inventoryTable(b.Table))

	var out []string
	err := s.withConn(ctx, "sample dates "+b.Table, func(conn *pgxpool.Conn) error {
		rows, err := conn.Query(ctx, sql, minSlotID, limit)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var v string
			if err := rows.Scan(&v); err != nil {
				return err
			}
			out = append(out, v)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
