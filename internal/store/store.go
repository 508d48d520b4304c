// Package store reads brand inventory, the booking ledger and form
// submissions from PostgreSQL. Every value reaches the database as a bound
// parameter; only registry-validated identifiers are formatted into SQL.
package store

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campaign-inventory/dashboard/internal/inventory"
)

var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

type Config struct {
	InventorySchema string
	LedgerTable     string
	FormsSchema     string
	FormsTable      string
}

type Store struct {
	pool *pgxpool.Pool
	cfg  Config
}

var (
	_ inventory.SlotSource   = (*Store)(nil)
	_ inventory.LedgerSource = (*Store)(nil)
	_ inventory.FormSource   = (*Store)(nil)
)

func New(pool *pgxpool.Pool, cfg Config) (*Store, error) {
	for name, v := range map[string]string{
		"inventory schema": cfg.InventorySchema,
		"ledger table":     cfg.LedgerTable,
		"forms schema":     cfg.FormsSchema,
		"forms table":      cfg.FormsTable,
	} {
		if !identifierPattern.MatchString(v) {
			return nil, fmt.Errorf("invalid %s %q", name, v)
		}
	}
	return &Store{pool: pool, cfg: cfg}, nil
}

func (s *Store) ledgerTable() string {
	return pgx.Identifier{s.cfg.InventorySchema, s.cfg.LedgerTable}.Sanitize()
}

func (s *Store) formsTable() string {
	return pgx.Identifier{s.cfg.FormsSchema, s.cfg.FormsTable}.Sanitize()
}

func (s *Store) inventoryTable(table string) string {
	return pgx.Identifier{s.cfg.InventorySchema, table}.Sanitize()
}

// withConn holds one pooled connection for the duration of fn and releases
// it on every path. Failures are reported as inventory.ErrStoreUnavailable.
func (s *Store) withConn(ctx context.Context, op string, fn func(conn *pgxpool.Conn) error) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("%w: %s: acquire connection: %w", inventory.ErrStoreUnavailable, op, err)
	}
	defer conn.Release()

	if err := fn(conn); err != nil {
		return fmt.Errorf("%w: %s: %w", inventory.ErrStoreUnavailable, op, err)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching value as a literal substring.
func containsPattern(value string) string {
	return "%" + likeEscaper.Replace(strings.TrimSpace(value)) + "%"
}

func isoDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func textOrEmpty(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}
