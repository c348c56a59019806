package models

import (
	"fmt"
	"strings"
	"time"
)

type Club string

const (
	ClubCSI       Club = "CSI"
	ClubISTE      Club = "ISTE"
	ClubDebuggers Club = "DEBUGGERS"
)

var Clubs = []Club{ClubCSI, ClubISTE, ClubDebuggers}

type Category string

const (
	CategorySports    Category = "Sports"
	CategoryTechnical Category = "Technical"
	CategoryCultural  Category = "Cultural"
)

var Categories = []Category{CategorySports, CategoryTechnical, CategoryCultural}

// ParseClub normalises a raw club name; unknown names are rejected.
func ParseClub(s string) (Club, error) {
	for _, c := range Clubs {
		if strings.EqualFold(strings.TrimSpace(s), string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown club %q", s)
}

// ParseCategory normalises a raw category name; unknown names are rejected.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if strings.EqualFold(strings.TrimSpace(s), string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

type Event struct {
	ID               string
	Title            string
	Description      string
	Date             time.Time // calendar date, midnight
	Time             string    // local clock time as entered, e.g. "10:00 AM"
	Location         string
	Club             Club
	Category         Category
	Price            float64
	OrganizerID      string
	MaxAttendees     int
	CurrentAttendees int
	ImageURL         *string
	DueDate          time.Time
	CreatedAt        time.Time
}

var clockLayouts = []string{"3:04 PM", "03:04 PM", "3:04PM", "15:04", "15:04:05"}

// StartsAt combines Date with the parsed clock Time. When Time does not
// parse, the start of Date is used.
func (e *Event) StartsAt() time.Time {
	t := strings.ToUpper(strings.TrimSpace(e.Time))
	for _, layout := range clockLayouts {
		clock, err := time.Parse(layout, t)
		if err != nil {
			continue
		}
		y, m, d := e.Date.Date()
		return time.Date(y, m, d, clock.Hour(), clock.Minute(), clock.Second(), 0, e.Date.Location())
	}
	return e.Date
}

func (e *Event) IsFree() bool { return e.Price <= 0 }

func (e *Event) IsFull() bool { return e.CurrentAttendees >= e.MaxAttendees }

// HasOccurred reports whether the event has started by now.
func (e *Event) HasOccurred(now time.Time) bool { return e.StartsAt().Before(now) }

// RegistrationOpen reports whether now is not past the due date.
func (e *Event) RegistrationOpen(now time.Time) bool { return !now.After(e.DueDate) }

// EventDraft is the organizer input for a new event.
type EventDraft struct {
	Title        string    `json:"title" validate:"required"`
	Description  string    `json:"description" validate:"required"`
	Date         time.Time `json:"date" validate:"required"`
	Time         string    `json:"time" validate:"required"`
	Location     string    `json:"location" validate:"required"`
	Club         string    `json:"club" validate:"required"`
	Category     string    `json:"category" validate:"required"`
	Price        float64   `json:"price" validate:"gte=0"`
	OrganizerID  string    `json:"organizer_id" validate:"required"`
	MaxAttendees int       `json:"max_attendees" validate:"required,gte=1"`
	ImageURL     *string   `json:"image_url"`
	DueDate      time.Time `json:"due_date" validate:"required"`
}

// EventPatch is a sparse update. Nil fields are left untouched. ID and
// OrganizerID exist only so their presence can be rejected.
type EventPatch struct {
	ID           *string    `json:"id"`
	OrganizerID  *string    `json:"organizer_id"`
	Title        *string    `json:"title" validate:"omitempty,min=1"`
	Description  *string    `json:"description" validate:"omitempty,min=1"`
	Date         *time.Time `json:"date"`
	Time         *string    `json:"time" validate:"omitempty,min=1"`
	Location     *string    `json:"location" validate:"omitempty,min=1"`
	Club         *string    `json:"club"`
	Category     *string    `json:"category"`
	Price        *float64   `json:"price" validate:"omitempty,gte=0"`
	MaxAttendees *int       `json:"max_attendees" validate:"omitempty,gte=1"`
	ImageURL     *string    `json:"image_url"`
	DueDate      *time.Time `json:"due_date"`
}

// Empty reports whether the patch carries no editable field.
func (p EventPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Date == nil && p.Time == nil &&
		p.Location == nil && p.Club == nil && p.Category == nil && p.Price == nil &&
		p.MaxAttendees == nil && p.ImageURL == nil && p.DueDate == nil
}
