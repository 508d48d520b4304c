package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campaign-inventory/dashboard/internal/inventory"
)

func (s *Store) buildFormQuery(q inventory.FormQuery) (string, []any) {
	where := `f.start_date >= $1 AND f.end_date <= $2`
	args := []any{q.Range.Start, q.Range.End}
	if q.Window == inventory.FormWindowSubmitted {
		where = `f.submit_timestamp >= $1 AND f.submit_timestamp < $2`
		args = []any{q.Range.Start, q.Range.End.AddDate(0, 0, 1)}
	}

	sql := fmt.Sprintf(`
		SELECT
			COALESCE(TRIM(f.booking_id::text), ''),
			COALESCE(TRIM(f.brand::text), ''),
			f.product_type::text,
			f.start_date,
			f.end_date,
			f.client_name::text,
			f.client_type::text,
			f.submit_timestamp
		FROM %s f
		WHERE %s
		ORDER BY f.submit_timestamp DESC NULLS LAST, f.booking_id
	`, s.formsTable(), where)
	return sql, args
}

func (s *Store) ListFormSubmissions(ctx context.Context, q inventory.FormQuery) ([]inventory.FormSubmission, error) {
	sql, args := s.buildFormQuery(q)

	var out []inventory.FormSubmission
	err := s.withConn(ctx, "list form submissions", func(conn *pgxpool.Conn) error {
		rows, err := conn.Query(ctx, sql, args...)
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (inventory.FormSubmission, error) {
			var (
				f                       inventory.FormSubmission
				product, client, ctype  *string
				start, end, submittedAt *time.Time
			)
			err := row.Scan(&f.BookingID, &f.Brand, &product, &start, &end, &client, &ctype, &submittedAt)
			f.ProductType = textOrEmpty(product)
			f.ClientName = textOrEmpty(client)
			f.ClientType = textOrEmpty(ctype)
			f.StartDate = isoDate(start)
			f.EndDate = isoDate(end)
			f.SubmittedAt = submittedAt
			return f, err
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
