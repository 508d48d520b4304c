// Package dashboard exposes the reporting operations behind the HTTP API.
// Store failures degrade to empty results; only invalid input is returned as
// an error.
package dashboard

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/campaign-inventory/dashboard/internal/brand"
	"github.com/campaign-inventory/dashboard/internal/cache"
	"github.com/campaign-inventory/dashboard/internal/inventory"
)

var ErrInvalidFilter = errors.New("invalid filter")

type FilterError struct {
	Field  string
	Reason string
}

func (e *FilterError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *FilterError) Is(target error) bool { return target == ErrInvalidFilter }

type Options struct {
	SlotLimitDefault int
	SlotLimitMax     int
	UpcomingDays     int
	UpcomingLimit    int
	Now              func() time.Time
}

func (o Options) withDefaults() Options {
	if o.SlotLimitDefault <= 0 {
		o.SlotLimitDefault = 100
	}
	if o.SlotLimitMax < o.SlotLimitDefault {
		o.SlotLimitMax = o.SlotLimitDefault
	}
	if o.UpcomingDays <= 0 {
		o.UpcomingDays = 14
	}
	if o.UpcomingLimit <= 0 {
		o.UpcomingLimit = 20
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

type Service struct {
	registry *brand.Registry
	reader   *inventory.Reader
	ledger   inventory.LedgerSource
	forms    inventory.FormSource
	cache    *cache.ReportCache
	validate *validator.Validate
	logger   *slog.Logger
	opts     Options
}

func New(
	registry *brand.Registry,
	reader *inventory.Reader,
	ledger inventory.LedgerSource,
	forms inventory.FormSource,
	reportCache *cache.ReportCache,
	logger *slog.Logger,
	opts Options,
) *Service {
	return &Service{
		registry: registry,
		reader:   reader,
		ledger:   ledger,
		forms:    forms,
		cache:    reportCache,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
		opts:     opts.withDefaults(),
	}
}

func (s *Service) Brands() []brand.Brand {
	return s.registry.All()
}

func (s *Service) check(params any) error {
	err := s.validate.Struct(params)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &FilterError{Field: strings.ToLower(fe.Field()), Reason: fmt.Sprintf("failed %q constraint", fe.Tag())}
	}
	return &FilterError{Field: "filter", Reason: err.Error()}
}

// selectBrands resolves an optional brand code or display name.
func (s *Service) selectBrands(codeOrName string) ([]brand.Brand, error) {
	if strings.TrimSpace(codeOrName) == "" {
		return s.registry.All(), nil
	}
	b, ok := s.registry.Lookup(codeOrName)
	if !ok {
		return nil, &FilterError{Field: "brand", Reason: fmt.Sprintf("unknown brand %q", codeOrName)}
	}
	return []brand.Brand{b}, nil
}

func (s *Service) today() time.Time {
	now := s.opts.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func allRead(reads []inventory.BrandRead) bool {
	for _, r := range reads {
		if !r.OK() {
			return false
		}
	}
	return true
}
