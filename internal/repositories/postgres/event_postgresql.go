package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gdgoc-itb/lms-service/internal/models"
	"github.com/gdgoc-itb/lms-service/internal/repositories"
)

type EventPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
	now     func() time.Time
}

func NewEventPostgreSQL(db *gorm.DB) repositories.EventRepository {
	return &EventPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
		now:     time.Now,
	}
}

func (e *EventPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return e.db
}

func (e *EventPostgreSQL) Create(ctx context.Context, tx *gorm.DB, event *models.Event) error {
	return translateError(e.getDB(tx).WithContext(ctx).Omit("Attendees").Create(event).Error)
}

// GetByID is scoped by kind so a community id never resolves on the professional routes.
func (e *EventPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, kind models.EventKind, id uint) (*models.Event, error) {
	var event models.Event
	err := e.getDB(tx).WithContext(ctx).
		Where("kind = ?", kind).
		First(&event, id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &event, nil
}

func (e *EventPostgreSQL) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, kind models.EventKind, id uint) (*models.Event, error) {
	var event models.Event
	err := e.getDB(tx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("kind = ?", kind).
		First(&event, id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &event, nil
}

func (e *EventPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.EventFilters) ([]*models.Event, int64, error) {
	var events []*models.Event
	var total int64

	query := e.getDB(tx).WithContext(ctx).Model(&models.Event{})
	if filters.Kind != "" {
		query = query.Where("kind = ?", filters.Kind)
	}
	if filters.OpenToBuddy {
		query = query.Where("access_level = ?", models.EventMembersAndBuddy)
	}
	if filters.UpcomingOnly {
		query = query.Where("date >= ?", e.now().Truncate(24*time.Hour))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	query = e.helpers.ApplyPaginationAndSort(query, filters.ListFilters, "date")
	if err := query.Find(&events).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list events: %w", err)
	}

	return events, total, nil
}

func (e *EventPostgreSQL) Update(ctx context.Context, tx *gorm.DB, event *models.Event) error {
	return translateError(e.getDB(tx).WithContext(ctx).Omit("Attendees").Save(event).Error)
}

func (e *EventPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, kind models.EventKind, id uint) error {
	result := e.getDB(tx).WithContext(ctx).
		Where("kind = ?", kind).
		Delete(&models.Event{}, id)
	return requireAffected(result)
}

// ===== ATTENDEES =====

func (e *EventPostgreSQL) GetAttendee(ctx context.Context, tx *gorm.DB, eventID uint, userID string) (*models.EventAttendee, error) {
	var attendee models.EventAttendee
	err := e.getDB(tx).WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		First(&attendee).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &attendee, nil
}

func (e *EventPostgreSQL) AddAttendee(ctx context.Context, tx *gorm.DB, attendee *models.EventAttendee) error {
	if attendee.RSVPAt.IsZero() {
		attendee.RSVPAt = e.now()
	}
	return translateError(e.getDB(tx).WithContext(ctx).Omit("User").Create(attendee).Error)
}

func (e *EventPostgreSQL) RemoveAttendee(ctx context.Context, tx *gorm.DB, eventID uint, userID string) error {
	result := e.getDB(tx).WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Delete(&models.EventAttendee{})
	return requireAffected(result)
}

func (e *EventPostgreSQL) MarkAttended(ctx context.Context, tx *gorm.DB, eventID uint, userID string) error {
	result := e.getDB(tx).WithContext(ctx).
		Model(&models.EventAttendee{}).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Update("attended", true)
	return requireAffected(result)
}

func (e *EventPostgreSQL) CountAttendees(ctx context.Context, tx *gorm.DB, eventID uint) (int64, error) {
	var count int64
	err := e.getDB(tx).WithContext(ctx).
		Model(&models.EventAttendee{}).
		Where("event_id = ? AND rsvp = ?", eventID, true).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count attendees: %w", err)
	}
	return count, nil
}

func (e *EventPostgreSQL) ListAttendees(ctx context.Context, tx *gorm.DB, eventID uint) ([]*models.EventAttendee, error) {
	var attendees []*models.EventAttendee
	err := e.getDB(tx).WithContext(ctx).
		Preload("User").
		Where("event_id = ?", eventID).
		Order("rsvp_at ASC").
		Find(&attendees).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list attendees: %w", err)
	}
	return attendees, nil
}
