package dto

import (
	"time"

	"github.com/Eursukkul/campus-events/internal/models"
)

type CreateEventRequest struct {
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Date         time.Time `json:"date"`
	Time         string    `json:"time"`
	Location     string    `json:"location"`
	Club         string    `json:"club"`
	Category     string    `json:"category"`
	Price        float64   `json:"price"`
	MaxAttendees int       `json:"max_attendees"`
	ImageURL     *string   `json:"image_url"`
	DueDate      time.Time `json:"due_date"`
}

// ToDraft binds the request to organizerID, which always comes from the
// session and never from the body.
func (r CreateEventRequest) ToDraft(organizerID string) models.EventDraft {
	return models.EventDraft{
		Title:        r.Title,
		Description:  r.Description,
		Date:         r.Date,
		Time:         r.Time,
		Location:     r.Location,
		Club:         r.Club,
		Category:     r.Category,
		Price:        r.Price,
		OrganizerID:  organizerID,
		MaxAttendees: r.MaxAttendees,
		ImageURL:     r.ImageURL,
		DueDate:      r.DueDate,
	}
}

// UpdateEventRequest is a sparse patch; absent fields are left unchanged.
type UpdateEventRequest = models.EventPatch

type RegisterRequest struct {
	UserName string `json:"user_name"`
}

type SetStatusRequest struct {
	PaymentStatus string `json:"payment_status"`
}

type SubmitFeedbackRequest struct {
	Rating  int     `json:"rating"`
	Comment *string `json:"comment"`
}

type PushTokenRequest struct {
	Token string `json:"token"`
}
