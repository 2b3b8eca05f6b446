package finance

import (
	"context"
	"fmt"
	"time"

	"opsboard/internal/log"
)

// Service serves dashboard and cube views from a Source.
type Service struct {
	source Source
	logger *log.Logger
	now    func() time.Time
}

func NewService(source Source, logger *log.Logger) *Service {
	return &Service{
		source: source,
		logger: log.OrDefault(logger, log.ComponentFinance),
		now:    time.Now,
	}
}

// WithClock overrides the time used to anchor date ranges.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Dashboard fetches the dataset and aggregates it for the given range selector.
func (s *Service) Dashboard(ctx context.Context, rangeName string, f Filters) (Result, error) {
	window, err := ResolveRange(rangeName, s.now())
	if err != nil {
		return Result{}, err
	}
	if err := f.Validate(); err != nil {
		return Result{}, err
	}
	ds, err := s.source.Fetch(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("fetch finance dataset: %w", err)
	}

	res := Aggregate(ds.Normalize(), window, f)
	s.logger.DebugContext(ctx, "Dashboard aggregated",
		log.FieldRange, rangeName,
		"invoices", len(res.FilteredInvoices),
		"debtors", len(res.FilteredDebtors))
	return res, nil
}

// Cube fetches the dataset and returns the board summary.
func (s *Service) Cube(ctx context.Context) (CubeSummary, error) {
	ds, err := s.source.Fetch(ctx)
	if err != nil {
		return CubeSummary{}, fmt.Errorf("fetch finance dataset: %w", err)
	}
	return Cube(ds), nil
}
