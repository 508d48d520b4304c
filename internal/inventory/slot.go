package inventory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/campaign-inventory/dashboard/internal/brand"
)

const (
	NoClient   = "No Client"
	NoContract = "N/A"
)

// SlotRow is one stored revision of a slot, already outer-joined to the
// booking ledger. ClientName and ContractID are nil when no ledger entry
// matched.
type SlotRow struct {
	SlotID      int64
	RawDate     string
	RawStatus   *string
	BookingID   string
	Product     string
	LastUpdated time.Time
	ClientName  *string
	ContractID  *string
}

// SlotQuery is the filter set pushed down to a SlotSource. Dates, Product and
// Client must only ever be matched against a slot's latest revision.
type SlotQuery struct {
	MinSlotID int64
	Dates     []string
	Product   string
	Client    string
}

// SlotSource reads one brand table. Rows may include superseded revisions.
type SlotSource interface {
	SampleDates(ctx context.Context, b brand.Brand, minSlotID int64, limit int) ([]string, error)
	ReadSlots(ctx context.Context, b brand.Brand, q SlotQuery) ([]SlotRow, error)
}

type Slot struct {
	Brand      string      `json:"brand"`
	BrandName  string      `json:"brand_name"`
	SlotID     int64       `json:"slot_id"`
	RawDate    string      `json:"raw_date"`
	Date       string      `json:"date"`
	ISODate    string      `json:"iso_date,omitempty"`
	RawStatus  string      `json:"raw_status"`
	Status     StatusClass `json:"status"`
	Product    string      `json:"product"`
	BookingID  string      `json:"booking_id"`
	ClientName string      `json:"client_name"`
	ContractID string      `json:"contract_id"`

	day time.Time
}

func newSlot(b brand.Brand, row SlotRow) Slot {
	s := Slot{
		Brand:      b.Code,
		BrandName:  b.Name,
		SlotID:     row.SlotID,
		RawDate:    row.RawDate,
		Date:       NormalizeStoredDate(row.RawDate),
		Status:     ClassifyNullable(row.RawStatus),
		Product:    strings.TrimSpace(row.Product),
		BookingID:  strings.TrimSpace(row.BookingID),
		ClientName: NoClient,
		ContractID: NoContract,
	}
	if row.RawStatus != nil {
		s.RawStatus = *row.RawStatus
	}
	if row.ClientName != nil && strings.TrimSpace(*row.ClientName) != "" {
		s.ClientName = strings.TrimSpace(*row.ClientName)
	}
	if row.ContractID != nil && strings.TrimSpace(*row.ContractID) != "" {
		s.ContractID = strings.TrimSpace(*row.ContractID)
	}
	if d, ok := parseStoredDate(row.RawDate); ok {
		s.day = d
		s.ISODate = d.Format(isoLayout)
	}
	return s
}

// Day returns the parsed calendar day, or the zero time when the stored date
// could not be understood.
func (s Slot) Day() time.Time { return s.day }

// HasBooking reports whether the slot carries a real booking reference.
func (s Slot) HasBooking() bool {
	id := strings.TrimSpace(s.BookingID)
	return id != "" && !strings.EqualFold(id, NoContract)
}

// Deduplicate keeps the revision with the latest LastUpdated for every slot
// id. On equal timestamps the revision seen first wins. Output preserves the
// order in which slot ids first appear.
func Deduplicate(rows []SlotRow) []SlotRow {
	index := make(map[int64]int, len(rows))
	out := make([]SlotRow, 0, len(rows))
	for _, row := range rows {
		i, seen := index[row.SlotID]
		if !seen {
			index[row.SlotID] = len(out)
			out = append(out, row)
			continue
		}
		if row.LastUpdated.After(out[i].LastUpdated) {
			out[i] = row
		}
	}
	return out
}

// SortForDisplay orders slots Booked, OnHold, then Available/Unclassified,
// newest day first within a class. brandRank orders brands on ties; nil
// falls back to brand code.
func SortForDisplay(slots []Slot, brandRank func(code string) int) {
	sort.SliceStable(slots, func(i, j int) bool {
		a, b := slots[i], slots[j]
		if ra, rb := a.Status.displayRank(), b.Status.displayRank(); ra != rb {
			return ra < rb
		}
		if !a.day.Equal(b.day) {
			if a.day.IsZero() || b.day.IsZero() {
				return b.day.IsZero()
			}
			return a.day.After(b.day)
		}
		if a.Brand != b.Brand {
			if brandRank != nil {
				return brandRank(a.Brand) < brandRank(b.Brand)
			}
			return a.Brand < b.Brand
		}
		return a.SlotID < b.SlotID
	})
}
