package dto

import (
	"time"

	"github.com/Eursukkul/campus-events/internal/models"
	"github.com/Eursukkul/campus-events/pkg/validate"
)

type EventResponse struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Date             string    `json:"date"`
	Time             string    `json:"time"`
	Location         string    `json:"location"`
	Club             string    `json:"club"`
	Category         string    `json:"category"`
	Price            float64   `json:"price"`
	OrganizerID      string    `json:"organizer_id"`
	MaxAttendees     int       `json:"max_attendees"`
	CurrentAttendees int       `json:"current_attendees"`
	ImageURL         *string   `json:"image_url"`
	DueDate          time.Time `json:"due_date"`
	CreatedAt        time.Time `json:"created_at"`
}

func ToEventResponse(e *models.Event) EventResponse {
	return EventResponse{
		ID:               e.ID,
		Title:            e.Title,
		Description:      e.Description,
		Date:             e.Date.Format(time.DateOnly),
		Time:             e.Time,
		Location:         e.Location,
		Club:             string(e.Club),
		Category:         string(e.Category),
		Price:            e.Price,
		OrganizerID:      e.OrganizerID,
		MaxAttendees:     e.MaxAttendees,
		CurrentAttendees: e.CurrentAttendees,
		ImageURL:         e.ImageURL,
		DueDate:          e.DueDate,
		CreatedAt:        e.CreatedAt,
	}
}

func ToEventResponses(events []models.Event) []EventResponse {
	resp := make([]EventResponse, len(events))
	for i := range events {
		resp[i] = ToEventResponse(&events[i])
	}
	return resp
}

type RegistrationResponse struct {
	ID               string    `json:"id"`
	EventID          string    `json:"event_id"`
	UserID           string    `json:"user_id"`
	UserName         string    `json:"user_name"`
	RegistrationDate time.Time `json:"registration_date"`
	PaymentStatus    string    `json:"payment_status"`
}

func ToRegistrationResponse(r *models.Registration) RegistrationResponse {
	return RegistrationResponse{
		ID:               r.ID,
		EventID:          r.EventID,
		UserID:           r.UserID,
		UserName:         r.UserName,
		RegistrationDate: r.RegistrationDate,
		PaymentStatus:    string(r.PaymentStatus),
	}
}

func ToRegistrationResponses(regs []models.Registration) []RegistrationResponse {
	resp := make([]RegistrationResponse, len(regs))
	for i := range regs {
		resp[i] = ToRegistrationResponse(&regs[i])
	}
	return resp
}

type FeedbackResponse struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	Rating    int       `json:"rating"`
	Stars     int       `json:"stars"`
	Comment   *string   `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

func ToFeedbackResponse(f *models.Feedback) FeedbackResponse {
	return FeedbackResponse{
		ID:        f.ID,
		EventID:   f.EventID,
		UserID:    f.UserID,
		Rating:    f.Rating,
		Stars:     models.ClampRating(f.Rating),
		Comment:   f.Comment,
		CreatedAt: f.CreatedAt,
	}
}

func ToFeedbackResponses(fb []models.Feedback) []FeedbackResponse {
	resp := make([]FeedbackResponse, len(fb))
	for i := range fb {
		resp[i] = ToFeedbackResponse(&fb[i])
	}
	return resp
}

type NotificationResponse struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	Read      bool      `json:"read"`
	EventID   *string   `json:"event_id,omitempty"`
}

func ToNotificationResponses(items []models.Notification) []NotificationResponse {
	resp := make([]NotificationResponse, len(items))
	for i, n := range items {
		resp[i] = NotificationResponse{
			ID:        n.ID,
			Kind:      string(n.Kind),
			Title:     n.Title,
			Message:   n.Message,
			CreatedAt: n.CreatedAt,
			Read:      n.Read,
			EventID:   n.EventID,
		}
	}
	return resp
}

type CountResponse struct {
	Count int `json:"count"`
}

type ErrorResponse struct {
	Message string                `json:"message"`
	Fields  []validate.FieldError `json:"fields,omitempty"`
}
