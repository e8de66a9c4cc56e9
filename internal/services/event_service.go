package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/datatypes"

	"github.com/gdgoc-itb/lms-service/internal/events"
	"github.com/gdgoc-itb/lms-service/internal/metrics"
	"github.com/gdgoc-itb/lms-service/internal/models"
	"github.com/gdgoc-itb/lms-service/internal/repositories"
	"github.com/gdgoc-itb/lms-service/internal/validator"
)

type eventService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	metrics   *metrics.Metrics
	events    notifier
}

func NewEventService(
	repo repositories.Repository,
	logger *slog.Logger,
	validator *validator.Validator,
	publisher events.EventPublisher,
	m *metrics.Metrics,
) EventService {
	return &eventService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		metrics:   m,
		events:    notifier{publisher: publisher, metrics: m, logger: logger},
	}
}

func (s *eventService) Create(ctx context.Context, kind models.EventKind, req *EventRequest) (*models.Event, error) {
	event := &models.Event{Kind: kind}
	if err := s.apply(event, req); err != nil {
		return nil, err
	}

	if err := s.repo.Event().Create(ctx, nil, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	s.logger.Info("Event created", "event_id", event.ID, "kind", kind)
	return event, nil
}

func (s *eventService) Get(ctx context.Context, kind models.EventKind, id uint, viewer *models.User) (*models.Event, error) {
	event, err := s.repo.Event().GetByID(ctx, nil, kind, id)
	if err != nil {
		return nil, mapRepoError(err, ErrEventNotFound, "get event")
	}
	if !event.OpenTo(viewerAccess(viewer)) {
		return nil, ErrEventMembersOnly
	}
	return event, nil
}

func (s *eventService) List(ctx context.Context, kind models.EventKind, req *EventListRequest, viewer *models.User) (*EventListResponse, error) {
	list, total, err := s.repo.Event().List(ctx, nil, repositories.EventFilters{
		Kind:         kind,
		OpenToBuddy:  isBuddy(viewer),
		UpcomingOnly: req.UpcomingOnly,
		ListFilters:  req.Filters(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return &EventListResponse{Events: list, Pagination: req.Pagination(total)}, nil
}

func (s *eventService) Update(ctx context.Context, kind models.EventKind, id uint, req *EventRequest) (*models.Event, error) {
	store := s.repo.Event()
	event, err := store.GetByID(ctx, nil, kind, id)
	if err != nil {
		return nil, mapRepoError(err, ErrEventNotFound, "get event")
	}
	if err := s.apply(event, req); err != nil {
		return nil, err
	}

	if err := store.Update(ctx, nil, event); err != nil {
		return nil, mapRepoError(err, ErrEventNotFound, "update event")
	}

	s.logger.Info("Event updated", "event_id", id, "kind", kind)
	return event, nil
}

func (s *eventService) Delete(ctx context.Context, kind models.EventKind, id uint) error {
	if err := s.repo.Event().Delete(ctx, nil, kind, id); err != nil {
		return mapRepoError(err, ErrEventNotFound, "delete event")
	}
	s.logger.Info("Event deleted", "event_id", id, "kind", kind)
	return nil
}

func (s *eventService) apply(event *models.Event, req *EventRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = models.DefaultEventCategory
	}
	var errs validator.ValidationErrors
	errs = append(errs, s.validator.ValidateEventCategory(event.Kind, category)...)
	errs = append(errs, s.validator.ValidateEventSchedule(req.Time.Start, req.Time.End)...)
	if err := validationError(errs); err != nil {
		return err
	}

	access := req.AccessLevel
	if access == "" {
		access = models.EventMembersOnly
	}

	event.Title = strings.TrimSpace(req.Title)
	event.Subtitle = req.Subtitle
	event.Category = category
	event.Description = req.Description
	event.Location = req.Location
	event.Date = req.Date
	event.Time = datatypes.NewJSONType(models.EventTime{Start: req.Time.Start, End: req.Time.End})
	event.ImageURL = req.ImageURL
	if req.Image != nil {
		event.ImageURL = req.Image.URL
	}
	event.AccessLevel = access
	event.Capacity = req.Capacity
	return nil
}

// ===== RSVP =====

// RSVP reserves a seat for user. The event row stays locked while the capacity is
// checked, so concurrent RSVPs cannot overfill it.
func (s *eventService) RSVP(ctx context.Context, kind models.EventKind, id uint, user *models.User) (*models.EventAttendee, error) {
	var attendee *models.EventAttendee

	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		store := tx.Event()

		event, err := store.GetByIDForUpdate(ctx, nil, kind, id)
		if err != nil {
			return mapRepoError(err, ErrEventNotFound, "get event")
		}
		if !event.OpenTo(user.Access) {
			return ErrEventMembersOnly
		}

		_, err = store.GetAttendee(ctx, nil, event.ID, user.ID)
		switch {
		case err == nil:
			return ErrAlreadyRSVPed
		case !errors.Is(err, repositories.ErrNotFound):
			return fmt.Errorf("failed to check attendee: %w", err)
		}

		if event.Capacity != nil {
			count, err := store.CountAttendees(ctx, nil, event.ID)
			if err != nil {
				return err
			}
			if count >= int64(*event.Capacity) {
				return ErrEventFull
			}
		}

		attendee = &models.EventAttendee{
			EventID: event.ID,
			UserID:  user.ID,
			RSVP:    true,
		}
		if err := store.AddAttendee(ctx, nil, attendee); err != nil {
			if repositories.IsDuplicateError(err) {
				return ErrAlreadyRSVPed
			}
			return fmt.Errorf("failed to add attendee: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Event RSVP", "event_id", id, "kind", kind, "user_id", user.ID)
	s.metrics.ObserveRSVP(string(kind), "rsvp")
	s.events.publish(ctx, events.TypeEventRSVP, events.RSVPEvent{EventID: id, Kind: kind, UserID: user.ID})
	return attendee, nil
}

func (s *eventService) CancelRSVP(ctx context.Context, kind models.EventKind, id uint, user *models.User) error {
	store := s.repo.Event()
	if _, err := store.GetByID(ctx, nil, kind, id); err != nil {
		return mapRepoError(err, ErrEventNotFound, "get event")
	}

	if err := store.RemoveAttendee(ctx, nil, id, user.ID); err != nil {
		return mapRepoError(err, ErrNotRSVPed, "cancel rsvp")
	}

	s.logger.Info("Event RSVP cancelled", "event_id", id, "kind", kind, "user_id", user.ID)
	s.metrics.ObserveRSVP(string(kind), "cancel")
	s.events.publish(ctx, events.TypeEventRSVPCancelled, events.RSVPEvent{EventID: id, Kind: kind, UserID: user.ID})
	return nil
}

func (s *eventService) MarkAttendance(ctx context.Context, kind models.EventKind, id uint, userID string) error {
	store := s.repo.Event()
	if _, err := store.GetByID(ctx, nil, kind, id); err != nil {
		return mapRepoError(err, ErrEventNotFound, "get event")
	}

	if err := store.MarkAttended(ctx, nil, id, userID); err != nil {
		return mapRepoError(err, ErrAttendeeNotFound, "mark attendance")
	}

	s.logger.Info("Attendance marked", "event_id", id, "kind", kind, "user_id", userID)
	return nil
}

func (s *eventService) ListAttendees(ctx context.Context, kind models.EventKind, id uint) ([]*models.EventAttendee, error) {
	store := s.repo.Event()
	if _, err := store.GetByID(ctx, nil, kind, id); err != nil {
		return nil, mapRepoError(err, ErrEventNotFound, "get event")
	}

	attendees, err := store.ListAttendees(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	return attendees, nil
}
