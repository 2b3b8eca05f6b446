package automation

import (
	"context"
	"fmt"
	"time"

	"opsboard/internal/core"
	"opsboard/internal/log"
	"opsboard/internal/ports"
)

// NotificationKind separates successful side effects from failed ones.
type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
)

// Notification is the secondary message shown to the user after a rule ran.
type Notification struct {
	Kind      NotificationKind `json:"kind"`
	Rule      string           `json:"rule"`
	Source    string           `json:"source"`
	RecordID  string           `json:"recordId"`
	Target    string           `json:"target"`
	CreatedID string           `json:"createdId,omitempty"`
	Message   string           `json:"message"`
	Error     string           `json:"error,omitempty"`
	At        time.Time        `json:"at"`
}

// Notifier delivers notifications out of band.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// SideEffectError reports a rule whose target create failed after the
// primary update had already been committed.
type SideEffectError struct {
	Rule   string
	Target string
	Err    error
}

func (e *SideEffectError) Error() string {
	return fmt.Sprintf("automation %s: create %s: %v", e.Rule, e.Target, e.Err)
}

func (e *SideEffectError) Unwrap() error { return e.Err }

// Outcome describes the result of an automation-aware update.
type Outcome struct {
	Record        core.Record        `json:"record"`
	Fired         []string           `json:"fired"`
	Created       []core.Record      `json:"created"`
	Notifications []Notification     `json:"notifications"`
	Failures      []*SideEffectError `json:"-"`
}

// Service applies primary updates and then the rules they trigger.
type Service struct {
	store    ports.Store
	rules    []Rule
	notifier Notifier
	logger   *log.Logger
	now      func() time.Time
}

// NewService returns a service running the default rule catalogue. notifier may be nil.
func NewService(store ports.Store, notifier Notifier, logger *log.Logger) *Service {
	return &Service{
		store:    store,
		rules:    Rules(),
		notifier: notifier,
		logger:   log.OrDefault(logger, log.ComponentAutomation),
		now:      time.Now,
	}
}

// WithClock overrides the time source used for mapped date fields.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Rules returns the catalogue the service evaluates.
func (s *Service) Rules() []RuleInfo {
	out := make([]RuleInfo, len(s.rules))
	for i, r := range s.rules {
		out[i] = r.Info()
	}
	return out
}

// Update writes payload to entity/id and then runs every rule the change
// triggers, one create per fired rule. Only the primary update can fail the
// call; side-effect failures are reported in the outcome.
func (s *Service) Update(ctx context.Context, entity, id string, payload core.Record) (Outcome, error) {
	coll, err := s.store.Collection(entity)
	if err != nil {
		return Outcome{}, err
	}
	prev, err := coll.Get(ctx, id)
	if err != nil {
		return Outcome{}, err
	}
	if err := coll.Update(ctx, id, payload); err != nil {
		return Outcome{}, fmt.Errorf("update %s %s: %w", entity, id, err)
	}

	out := Outcome{
		Record:        prev.Merge(payload),
		Fired:         []string{},
		Created:       []core.Record{},
		Notifications: []Notification{},
	}
	if updated, err := coll.Get(ctx, id); err == nil {
		out.Record = updated
	}

	now := s.now()
	for _, f := range Evaluate(s.rules, entity, prev, payload, now) {
		out.Fired = append(out.Fired, f.Rule.Name)
		n := Notification{
			Rule:     f.Rule.Name,
			Source:   entity,
			RecordID: id,
			Target:   f.Rule.Target,
			At:       now,
		}

		fields := log.NewFields().
			WithRecord(entity, id).
			WithRule(f.Rule.Name, f.Rule.Target).
			WithOperation(log.OpCreate)
		created, err := s.create(ctx, f)
		if err != nil {
			sideErr := &SideEffectError{Rule: f.Rule.Name, Target: f.Rule.Target, Err: err}
			out.Failures = append(out.Failures, sideErr)
			n.Kind = NotificationError
			n.Message = f.Rule.FailureMessage
			n.Error = err.Error()
			s.logger.ErrorContext(ctx, "Automation side effect failed",
				fields.WithError(err).ToSlice()...)
		} else {
			out.Created = append(out.Created, created)
			n.Kind = NotificationSuccess
			n.Message = f.Rule.SuccessMessage
			n.CreatedID = created.ID()
			s.logger.InfoContext(ctx, "Automation rule fired",
				append(fields.ToSlice(), "created_id", created.ID())...)
		}

		out.Notifications = append(out.Notifications, n)
		s.notify(ctx, n)
	}

	if len(out.Fired) == 0 {
		s.logger.DebugContext(ctx, "No automation rule fired",
			log.FieldEntity, entity, log.FieldRecordID, id)
	}
	return out, nil
}

func (s *Service) create(ctx context.Context, f Firing) (core.Record, error) {
	target, err := s.store.Collection(f.Rule.Target)
	if err != nil {
		return nil, err
	}
	return target.Create(ctx, f.Fields)
}

func (s *Service) notify(ctx context.Context, n Notification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.logger.WarnContext(ctx, "Failed to deliver automation notification",
			log.FieldRule, n.Rule, log.FieldError, err)
	}
}
