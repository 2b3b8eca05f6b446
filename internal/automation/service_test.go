package automation

import (
	"context"
	"errors"
	"testing"
	"time"

	"opsboard/internal/core"
	"opsboard/internal/log"
	"opsboard/internal/ports"
	"opsboard/internal/storage/memory"
)

type recordingNotifier struct {
	got []Notification
	err error
}

func (r *recordingNotifier) Notify(_ context.Context, n Notification) error {
	r.got = append(r.got, n)
	return r.err
}

// failingStore wraps a store and fails creates on one entity.
type failingStore struct {
	ports.Store
	entity string
}

func (f failingStore) Collection(entity string) (ports.Collection, error) {
	c, err := f.Store.Collection(entity)
	if err != nil || entity != f.entity {
		return c, err
	}
	return failingCollection{c}, nil
}

type failingCollection struct{ ports.Collection }

func (failingCollection) Create(context.Context, core.Record) (core.Record, error) {
	return nil, errors.New("backend unavailable")
}

func seed(t *testing.T, s ports.Store, entity string, fields core.Record) string {
	t.Helper()
	c, err := s.Collection(entity)
	if err != nil {
		t.Fatal(err)
	}
	r, err := c.Create(context.Background(), fields)
	if err != nil {
		t.Fatal(err)
	}
	return r.ID()
}

func list(t *testing.T, s ports.Store, entity string) []core.Record {
	t.Helper()
	c, _ := s.Collection(entity)
	rows, err := c.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return rows
}

func newService(store ports.Store, n Notifier) *Service {
	return NewService(store, n, log.Discard()).WithClock(func() time.Time { return evalDay })
}

func TestServiceUpdateCreatesBilling(t *testing.T) {
	ctx := context.Background()
	store := memory.New(nil)
	id := seed(t, store, core.EntityTasks, core.Record{"title": "Logo", "status": "in_progress", "actualHours": 0})
	notes := &recordingNotifier{}

	out, err := newService(store, notes).Update(ctx, core.EntityTasks, id,
		core.Record{"status": "done", "billable": "included", "actualHours": 6})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	billing := list(t, store, core.EntityBilling)
	if len(billing) != 1 {
		t.Fatalf("expected 1 billing record, got %d", len(billing))
	}
	if billing[0]["amount"] != 2100.0 || billing[0]["hours"] != 6.0 || billing[0]["status"] != "pending" {
		t.Errorf("unexpected billing record %v", billing[0])
	}
	if len(out.Fired) != 1 || out.Fired[0] != RuleTaskBilling {
		t.Errorf("fired = %v", out.Fired)
	}
	if out.Record["status"] != "done" {
		t.Errorf("outcome record not updated: %v", out.Record)
	}
	if len(notes.got) != 1 || notes.got[0].Kind != NotificationSuccess || notes.got[0].CreatedID != billing[0].ID() {
		t.Errorf("unexpected notifications %+v", notes.got)
	}

	// Saving the same status again must not create a second charge.
	if _, err := newService(store, nil).Update(ctx, core.EntityTasks, id, core.Record{"status": "done"}); err != nil {
		t.Fatal(err)
	}
	if n := len(list(t, store, core.EntityBilling)); n != 1 {
		t.Fatalf("expected no re-fire, have %d billing records", n)
	}
}

func TestServiceUpdateConvertsLead(t *testing.T) {
	store := memory.New(nil)
	id := seed(t, store, core.EntityLeads, core.Record{"leadName": "Acme", "status": "new"})

	out, err := newService(store, nil).Update(context.Background(), core.EntityLeads, id,
		core.Record{"status": "won", "leadName": "Acme", "estimatedValue": 5000})
	if err != nil {
		t.Fatal(err)
	}
	clients := list(t, store, core.EntityClients)
	if len(clients) != 1 {
		t.Fatalf("expected 1 client, got %d", len(clients))
	}
	c := clients[0]
	if c["clientName"] != "Acme" || c["monthlyRetainer"] != 5000.0 || c["status"] != "active" {
		t.Errorf("unexpected client %v", c)
	}
	if len(out.Created) != 1 || out.Created[0].ID() != c.ID() {
		t.Errorf("created = %v", out.Created)
	}
}

func TestServiceSideEffectFailureKeepsPrimary(t *testing.T) {
	ctx := context.Background()
	base := memory.New(nil)
	id := seed(t, base, core.EntityLeads, core.Record{"leadName": "Acme", "status": "new"})
	store := failingStore{Store: base, entity: core.EntityClients}
	notes := &recordingNotifier{}

	out, err := newService(store, notes).Update(ctx, core.EntityLeads, id, core.Record{"status": "won"})
	if err != nil {
		t.Fatalf("primary update should succeed, got %v", err)
	}

	leads, _ := base.Collection(core.EntityLeads)
	lead, _ := leads.Get(ctx, id)
	if lead["status"] != "won" {
		t.Fatalf("primary update rolled back: %v", lead)
	}
	if len(out.Failures) != 1 || out.Failures[0].Rule != RuleLeadClient {
		t.Fatalf("expected a side effect failure, got %+v", out.Failures)
	}
	var sideErr *SideEffectError
	if !errors.As(error(out.Failures[0]), &sideErr) || sideErr.Unwrap() == nil {
		t.Fatal("failure should unwrap to the create error")
	}
	if len(notes.got) != 1 || notes.got[0].Kind != NotificationError || notes.got[0].Error == "" {
		t.Fatalf("expected error notification, got %+v", notes.got)
	}
	if n := len(list(t, base, core.EntityClients)); n != 0 {
		t.Fatalf("expected no client, got %d", n)
	}
}

func TestServicePrimaryFailureFiresNothing(t *testing.T) {
	store := memory.New(nil)
	notes := &recordingNotifier{}
	_, err := newService(store, notes).Update(context.Background(), core.EntityTasks, "missing",
		core.Record{"status": "done", "billable": "yes", "actualHours": 2})
	if !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(notes.got) != 0 || len(list(t, store, core.EntityBilling)) != 0 {
		t.Fatal("nothing should fire when the primary update fails")
	}
}

func TestServiceNotifierErrorIsNotFatal(t *testing.T) {
	store := memory.New(nil)
	id := seed(t, store, core.EntityLeads, core.Record{"leadName": "Acme"})
	notes := &recordingNotifier{err: errors.New("broker down")}

	out, err := newService(store, notes).Update(context.Background(), core.EntityLeads, id, core.Record{"status": "won"})
	if err != nil {
		t.Fatalf("notifier errors must not fail the update: %v", err)
	}
	if len(out.Created) != 1 {
		t.Fatalf("expected client created, got %v", out.Created)
	}
}

func TestServiceRulesCatalogue(t *testing.T) {
	infos := NewService(memory.New(nil), nil, nil).Rules()
	if len(infos) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(infos))
	}
	if infos[0].Source != core.EntityTasks || infos[1].Target != core.EntityClients {
		t.Fatalf("unexpected catalogue %+v", infos)
	}
}

func TestNotifiersJoinErrors(t *testing.T) {
	ok := &recordingNotifier{}
	bad := &recordingNotifier{err: errors.New("boom")}
	err := Notifiers{ok, nil, bad, NewLogNotifier(log.Discard())}.Notify(context.Background(), Notification{Rule: "r"})
	if err == nil || len(ok.got) != 1 || len(bad.got) != 1 {
		t.Fatalf("unexpected fan-out result err=%v ok=%d bad=%d", err, len(ok.got), len(bad.got))
	}
}
