package models

import (
	"time"

	"gorm.io/datatypes"
)

type EventKind string

const (
	EventCommunity    EventKind = "community"
	EventProfessional EventKind = "professional"
)

func (k EventKind) IsValid() bool {
	return k == EventCommunity || k == EventProfessional
}

type EventAccess string

const (
	EventMembersOnly     EventAccess = "Member"
	EventMembersAndBuddy EventAccess = "Member and Buddy"
)

func (a EventAccess) IsValid() bool {
	return a == EventMembersOnly || a == EventMembersAndBuddy
}

const DefaultEventCategory = "Google Developer Groups"

// EventCategories lists the categories allowed per event kind.
var EventCategories = map[EventKind][]string{
	EventCommunity:    {DefaultEventCategory},
	EventProfessional: {DefaultEventCategory, "Scholarship", "Internship", "Exchange"},
}

// EventTime holds the wall-clock start and end of an event, e.g. "09:00".
type EventTime struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type Event struct {
	ID          uint                              `json:"id" gorm:"primaryKey"`
	Kind        EventKind                         `json:"kind" gorm:"not null;size:20;index"`
	Title       string                            `json:"title" gorm:"not null;size:200"`
	Subtitle    string                            `json:"subtitle" gorm:"size:200"`
	Category    string                            `json:"category" gorm:"not null;size:50"`
	Description string                            `json:"description" gorm:"type:text"`
	Location    string                            `json:"location" gorm:"size:255"`
	Date        time.Time                         `json:"date" gorm:"not null;index"`
	Time        datatypes.JSONType[EventTime]     `json:"time" gorm:"type:jsonb"`
	ImageURL    string                            `json:"imageUrl" gorm:"size:500"`
	AccessLevel EventAccess                       `json:"accessLevel" gorm:"not null;size:30;default:'Member'"`
	Capacity    *int                              `json:"capacity"`
	Attendees   []EventAttendee                   `json:"attendees,omitempty" gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Event) TableName() string {
	return "events"
}

// OpenTo reports whether a user with the given access may see and RSVP to the event.
func (e *Event) OpenTo(viewer AccessLevel) bool {
	if viewer != AccessBuddy {
		return true
	}
	return e.AccessLevel == EventMembersAndBuddy
}

type EventAttendee struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	EventID  uint      `json:"eventId" gorm:"not null;uniqueIndex:idx_attendee_event_user"`
	UserID   string    `json:"userId" gorm:"not null;size:255;uniqueIndex:idx_attendee_event_user"`
	RSVP     bool      `json:"rsvp" gorm:"not null;default:true"`
	Attended bool      `json:"attended" gorm:"not null;default:false"`
	RSVPAt   time.Time `json:"rsvpAt" gorm:"not null"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (EventAttendee) TableName() string {
	return "event_attendees"
}
