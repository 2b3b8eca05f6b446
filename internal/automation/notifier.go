package automation

import (
	"context"
	"errors"

	"opsboard/internal/log"
)

// LogNotifier writes notifications to the structured log.
type LogNotifier struct {
	logger *log.Logger
}

func NewLogNotifier(logger *log.Logger) *LogNotifier {
	return &LogNotifier{logger: log.OrDefault(logger, log.ComponentAutomation)}
}

func (n *LogNotifier) Notify(ctx context.Context, note Notification) error {
	args := []any{
		log.FieldRule, note.Rule,
		log.FieldEntity, note.Source,
		log.FieldRecordID, note.RecordID,
		log.FieldTarget, note.Target,
		"message", note.Message,
	}
	if note.Kind == NotificationError {
		n.logger.ErrorContext(ctx, "Automation notification", append(args, log.FieldError, note.Error)...)
		return nil
	}
	n.logger.InfoContext(ctx, "Automation notification", append(args, "created_id", note.CreatedID)...)
	return nil
}

// Notifiers fans a notification out to every notifier and joins their errors.
type Notifiers []Notifier

func (ns Notifiers) Notify(ctx context.Context, note Notification) error {
	var errs []error
	for _, n := range ns {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, note); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
