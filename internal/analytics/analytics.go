// Package analytics derives organizer dashboard figures from event,
// registration and feedback collections. Every function here is pure.
package analytics

import (
	"math"
	"time"

	"github.com/Eursukkul/campus-events/internal/models"
)

// TrailingMonths is the length of the monthly series.
const TrailingMonths = 5

type EventStat struct {
	EventID          string  `json:"event_id"`
	Title            string  `json:"title"`
	Registrations    int     `json:"registrations"`
	CurrentAttendees int     `json:"current_attendees"`
	MaxAttendees     int     `json:"max_attendees"`
	AverageRating    float64 `json:"average_rating"`
	FeedbackCount    int     `json:"feedback_count"`
}

type MonthBucket struct {
	Month        string `json:"month"`
	Year         int    `json:"year"`
	Events       int    `json:"events"`
	Participants int    `json:"participants"`
}

type Summary struct {
	TotalEvents        int           `json:"total_events"`
	TotalRegistrations int           `json:"total_registrations"`
	AvgAttendance      float64       `json:"avg_attendance"`
	PopularEvent       *EventStat    `json:"popular_event"`
	AverageRating      float64       `json:"average_rating"`
	Monthly            []MonthBucket `json:"monthly"`
	Events             []EventStat   `json:"events"`
}

// Summarize computes the dashboard for organizerID. The monthly series
// ends with the calendar month containing now.
func Summarize(organizerID string, events []models.Event, regs []models.Registration, feedback []models.Feedback, now time.Time) Summary {
	owned := make(map[string]int) // event id -> index into stats
	stats := []EventStat{}
	for _, e := range events {
		if e.OrganizerID != organizerID {
			continue
		}
		owned[e.ID] = len(stats)
		stats = append(stats, EventStat{
			EventID:          e.ID,
			Title:            e.Title,
			CurrentAttendees: e.CurrentAttendees,
			MaxAttendees:     e.MaxAttendees,
		})
	}

	total := 0
	for _, r := range regs {
		if i, ok := owned[r.EventID]; ok {
			stats[i].Registrations++
			total++
		}
	}

	ratings := make([][]models.Feedback, len(stats))
	var ownedFeedback []models.Feedback
	for _, fb := range feedback {
		if i, ok := owned[fb.EventID]; ok {
			ratings[i] = append(ratings[i], fb)
			ownedFeedback = append(ownedFeedback, fb)
		}
	}
	for i := range stats {
		stats[i].FeedbackCount = len(ratings[i])
		stats[i].AverageRating = RoundTenth(AverageRating(ratings[i]))
	}

	s := Summary{
		TotalEvents:        len(stats),
		TotalRegistrations: total,
		AverageRating:      RoundTenth(AverageRating(ownedFeedback)),
		Monthly:            monthly(organizerID, events, stats, owned, now),
		Events:             stats,
	}
	if len(stats) > 0 {
		s.AvgAttendance = RoundTenth(float64(total) / float64(len(stats)))
		s.PopularEvent = popular(stats)
	}
	return s
}

// popular returns the most-registered event; ties go to the first one.
func popular(stats []EventStat) *EventStat {
	best := 0
	for i := 1; i < len(stats); i++ {
		if stats[i].Registrations > stats[best].Registrations {
			best = i
		}
	}
	p := stats[best]
	return &p
}

func monthly(organizerID string, events []models.Event, stats []EventStat, owned map[string]int, now time.Time) []MonthBucket {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -(TrailingMonths - 1), 0)

	buckets := make([]MonthBucket, TrailingMonths)
	for i := range buckets {
		m := start.AddDate(0, i, 0)
		buckets[i] = MonthBucket{Month: m.Format("Jan"), Year: m.Year()}
	}

	for _, e := range events {
		i, ok := owned[e.ID]
		if !ok || e.OrganizerID != organizerID {
			continue
		}
		// Event dates are calendar dates; bucket on their own fields.
		offset := monthsBetween(start, e.Date)
		if offset < 0 || offset >= TrailingMonths {
			continue
		}
		buckets[offset].Events++
		buckets[offset].Participants += stats[i].Registrations
	}
	return buckets
}

func monthsBetween(from, to time.Time) int {
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}

// AverageRating is the arithmetic mean of the ratings, 0 for none.
func AverageRating(feedback []models.Feedback) float64 {
	if len(feedback) == 0 {
		return 0
	}
	sum := 0
	for _, fb := range feedback {
		sum += fb.Rating
	}
	return float64(sum) / float64(len(feedback))
}

// RoundTenth rounds to one decimal place for display.
func RoundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
