package observability

import (
	"log/slog"

	"github.com/aretw0/aastree/pkg/domain"
)

// LoggingHooks logs every edit event.
func LoggingHooks(logger *slog.Logger) domain.EditHooks {
	return domain.EditHooks{
		OnEdit: func(e *domain.EditEvent) {
			logger.Info("edit", "op", string(e.Type), "label", e.Label)
		},
		OnUndo: func(e *domain.EditEvent) {
			logger.Info("undo", "label", e.Label)
		},
		OnRedo: func(e *domain.EditEvent) {
			logger.Info("redo", "label", e.Label)
		},
		OnRejected: func(e *domain.EditEvent) {
			logger.Warn("edit_rejected", "op", string(e.Type), "label", e.Label, "err", e.Err)
		},
	}
}

// Combine fans every event out to all hooks in order.
func Combine(hooks ...domain.EditHooks) domain.EditHooks {
	fan := func(pick func(domain.EditHooks) func(*domain.EditEvent)) func(*domain.EditEvent) {
		return func(e *domain.EditEvent) {
			for _, h := range hooks {
				if fn := pick(h); fn != nil {
					fn(e)
				}
			}
		}
	}
	return domain.EditHooks{
		OnEdit:     fan(func(h domain.EditHooks) func(*domain.EditEvent) { return h.OnEdit }),
		OnUndo:     fan(func(h domain.EditHooks) func(*domain.EditEvent) { return h.OnUndo }),
		OnRedo:     fan(func(h domain.EditHooks) func(*domain.EditEvent) { return h.OnRedo }),
		OnRejected: fan(func(h domain.EditHooks) func(*domain.EditEvent) { return h.OnRejected }),
	}
}
