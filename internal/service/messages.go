package service

import (
	"time"

	"github.com/Eursukkul/campus-events/internal/models"
)

// Routing keys published on the domain exchange.
const (
	KeyEventCreated          = "event.created"
	KeyEventUpdated          = "event.updated"
	KeyEventDeleted          = "event.deleted"
	KeyRegistrationCreated   = "registration.created"
	KeyRegistrationCancelled = "registration.cancelled"
	KeyRegistrationStatus    = "registration.status_changed"
)

type EventMessage struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Club             string    `json:"club"`
	Category         string    `json:"category"`
	OrganizerID      string    `json:"organizer_id"`
	Date             time.Time `json:"date"`
	DueDate          time.Time `json:"due_date"`
	MaxAttendees     int       `json:"max_attendees"`
	CurrentAttendees int       `json:"current_attendees"`
}

func eventMessage(e models.Event) EventMessage {
	return EventMessage{
		ID:               e.ID,
		Title:            e.Title,
		Club:             string(e.Club),
		Category:         string(e.Category),
		OrganizerID:      e.OrganizerID,
		Date:             e.Date,
		DueDate:          e.DueDate,
		MaxAttendees:     e.MaxAttendees,
		CurrentAttendees: e.CurrentAttendees,
	}
}

type RegistrationMessage struct {
	ID               string `json:"id"`
	EventID          string `json:"event_id"`
	UserID           string `json:"user_id"`
	PaymentStatus    string `json:"payment_status"`
	CurrentAttendees int    `json:"current_attendees"`
}

func registrationMessage(r models.Registration, attendees int) RegistrationMessage {
	return RegistrationMessage{
		ID:               r.ID,
		EventID:          r.EventID,
		UserID:           r.UserID,
		PaymentStatus:    string(r.PaymentStatus),
		CurrentAttendees: attendees,
	}
}
