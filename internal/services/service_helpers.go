package services

import (
	"context"
	"log/slog"

	"github.com/gdgoc-itb/lms-service/internal/events"
	"github.com/gdgoc-itb/lms-service/internal/metrics"
	"github.com/gdgoc-itb/lms-service/internal/models"
	"github.com/gdgoc-itb/lms-service/internal/validator"
)

// notifier publishes domain events on behalf of a service. A failed publish is
// logged and counted, never returned to the caller.
type notifier struct {
	publisher events.EventPublisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func (n notifier) publish(ctx context.Context, eventType string, data interface{}) {
	if n.publisher == nil {
		return
	}
	err := n.publisher.Publish(ctx, eventType, data)
	n.metrics.ObserveEvent(eventType, err)
	if err != nil {
		n.logger.Warn("Failed to publish event", "type", eventType, "error", err)
	}
}

// validationError returns errs as an error, or nil when there are none.
func validationError(errs validator.ValidationErrors) error {
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func viewerAccess(viewer *models.User) models.AccessLevel {
	if viewer == nil {
		return models.AccessBuddy
	}
	return viewer.Access
}

func isBuddy(viewer *models.User) bool {
	return viewerAccess(viewer) == models.AccessBuddy
}
