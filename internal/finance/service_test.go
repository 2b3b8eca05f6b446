package finance

import (
	"context"
	"errors"
	"testing"
	"time"

	"opsboard/internal/log"
)

type staticSource struct {
	ds  Dataset
	err error
}

func (s staticSource) Fetch(context.Context) (Dataset, error) { return s.ds, s.err }

func TestServiceDashboard(t *testing.T) {
	svc := NewService(staticSource{ds: sampleDataset()}, log.Discard()).WithClock(func() time.Time { return anchor })

	res, err := svc.Dashboard(context.Background(), "month", Filters{Status: "open"})
	if err != nil {
		t.Fatal(err)
	}
	if got := ids(res.FilteredInvoices); !equalIDs(got, []string{"i1", "i4"}) {
		t.Fatalf("invoices = %v", got)
	}

	if _, err := svc.Dashboard(context.Background(), "decade", Filters{}); !errors.Is(err, ErrUnknownRange) {
		t.Fatalf("expected ErrUnknownRange, got %v", err)
	}
}

func TestServiceDashboardRejectsUnknownType(t *testing.T) {
	svc := NewService(staticSource{ds: sampleDataset()}, log.Discard()).WithClock(func() time.Time { return anchor })

	for _, typ := range []string{"", "all", "invoice", "Receipt", " credit "} {
		if _, err := svc.Dashboard(context.Background(), "all", Filters{Type: typ}); err != nil {
			t.Fatalf("type %q: unexpected error %v", typ, err)
		}
	}
	if _, err := svc.Dashboard(context.Background(), "all", Filters{Type: "quote"}); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestServiceSourceErrors(t *testing.T) {
	boom := errors.New("boom")
	svc := NewService(staticSource{err: boom}, nil)
	if _, err := svc.Dashboard(context.Background(), "all", Filters{}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped source error, got %v", err)
	}
	if _, err := svc.Cube(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped source error, got %v", err)
	}
}
