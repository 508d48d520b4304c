package inventory

import (
	"context"
	"time"
)

type LedgerEntry struct {
	ID                int64  `json:"id"`
	BookingID         string `json:"booking_id"`
	Brand             string `json:"brand"`
	ClientName        string `json:"client_name"`
	ContractID        string `json:"contract_id"`
	Status            string `json:"status"`
	ScheduledLiveDate string `json:"scheduled_live_date,omitempty"`
	ScheduleEndDate   string `json:"schedule_end_date,omitempty"`
	ProductName       string `json:"product_name"`
}

type ClientSummary struct {
	Name          string   `json:"client_name"`
	TotalBookings int      `json:"total_bookings"`
	Brands        []string `json:"brands"`
}

type LedgerSource interface {
	// ListClients returns clients ordered by booking count, then name.
	ListClients(ctx context.Context) ([]ClientSummary, error)
	ListLedger(ctx context.Context, limit int) ([]LedgerEntry, error)
	// UpcomingDeliverables returns active bookings going live within [from, to].
	UpcomingDeliverables(ctx context.Context, from, to time.Time, limit int) ([]LedgerEntry, error)
}

type FormWindow string

const (
	// FormWindowSchedule selects submissions whose start and end dates both
	// fall within the window.
	FormWindowSchedule FormWindow = "schedule"
	// FormWindowSubmitted selects submissions by submit timestamp.
	FormWindowSubmitted FormWindow = "submitted"
)

func ParseFormWindow(v string) (FormWindow, bool) {
	switch FormWindow(v) {
	case "", FormWindowSchedule:
		return FormWindowSchedule, true
	case FormWindowSubmitted:
		return FormWindowSubmitted, true
	}
	return "", false
}

type FormSubmission struct {
	BookingID   string     `json:"booking_id"`
	Brand       string     `json:"brand"`
	ProductType string     `json:"product_type"`
	StartDate   string     `json:"start_date,omitempty"`
	EndDate     string     `json:"end_date,omitempty"`
	ClientName  string     `json:"client_name"`
	ClientType  string     `json:"client_type,omitempty"`
	SubmittedAt *time.Time `json:"submit_timestamp,omitempty"`
}

type FormQuery struct {
	Range  DateRange
	Window FormWindow
}

type FormSource interface {
	ListFormSubmissions(ctx context.Context, q FormQuery) ([]FormSubmission, error)
}
