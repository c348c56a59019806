package repository

import (
	"context"
	"time"

	"github.com/Eursukkul/campus-events/internal/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// eventRow is the wire shape of the events table.
type eventRow struct {
	ID               string    `gorm:"column:id;primaryKey;type:uuid"`
	Title            string    `gorm:"column:title;not null"`
	Description      string    `gorm:"column:description;not null"`
	Date             time.Time `gorm:"column:date;type:date;not null"`
	Time             string    `gorm:"column:time;not null"`
	Location         string    `gorm:"column:location;not null"`
	Club             string    `gorm:"column:club;not null"`
	Category         string    `gorm:"column:category;not null"`
	Price            float64   `gorm:"column:price;not null;default:0"`
	OrganizerID      string    `gorm:"column:organizer_id;type:uuid;not null;index"`
	MaxAttendees     int       `gorm:"column:max_attendees;not null"`
	CurrentAttendees int       `gorm:"column:current_attendees;not null;default:0"`
	ImageURL         *string   `gorm:"column:image_url"`
	DueDate          time.Time `gorm:"column:due_date;not null"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (eventRow) TableName() string { return "events" }

func (r *eventRow) toModel() (models.Event, error) {
	club, err := models.ParseClub(r.Club)
	if err != nil {
		return models.Event{}, errors.Wrapf(err, "event %s", r.ID)
	}
	category, err := models.ParseCategory(r.Category)
	if err != nil {
		return models.Event{}, errors.Wrapf(err, "event %s", r.ID)
	}
	return models.Event{
		ID:               r.ID,
		Title:            r.Title,
		Description:      r.Description,
		Date:             r.Date,
		Time:             r.Time,
		Location:         r.Location,
		Club:             club,
		Category:         category,
		Price:            r.Price,
		OrganizerID:      r.OrganizerID,
		MaxAttendees:     r.MaxAttendees,
		CurrentAttendees: r.CurrentAttendees,
		ImageURL:         nullable(r.ImageURL),
		DueDate:          r.DueDate,
		CreatedAt:        r.CreatedAt,
	}, nil
}

func eventRowFrom(e *models.Event) eventRow {
	return eventRow{
		ID:               e.ID,
		Title:            e.Title,
		Description:      e.Description,
		Date:             e.Date,
		Time:             e.Time,
		Location:         e.Location,
		Club:             string(e.Club),
		Category:         string(e.Category),
		Price:            e.Price,
		OrganizerID:      e.OrganizerID,
		MaxAttendees:     e.MaxAttendees,
		CurrentAttendees: e.CurrentAttendees,
		ImageURL:         nullable(e.ImageURL),
		DueDate:          e.DueDate,
		CreatedAt:        e.CreatedAt,
	}
}

// patchColumns lists only the columns present in the patch.
func patchColumns(p models.EventPatch) map[string]any {
	cols := map[string]any{}
	if p.Title != nil {
		cols["title"] = *p.Title
	}
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.Date != nil {
		cols["date"] = *p.Date
	}
	if p.Time != nil {
		cols["time"] = *p.Time
	}
	if p.Location != nil {
		cols["location"] = *p.Location
	}
	if p.Club != nil {
		cols["club"] = *p.Club
	}
	if p.Category != nil {
		cols["category"] = *p.Category
	}
	if p.Price != nil {
		cols["price"] = *p.Price
	}
	if p.MaxAttendees != nil {
		cols["max_attendees"] = *p.MaxAttendees
	}
	if p.ImageURL != nil {
		cols["image_url"] = nullable(p.ImageURL)
	}
	if p.DueDate != nil {
		cols["due_date"] = *p.DueDate
	}
	return cols
}

type EventRepository interface {
	FindAll(ctx context.Context) ([]models.Event, error)
	FindByID(ctx context.Context, id string) (*models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	Update(ctx context.Context, id string, patch models.EventPatch) error
	Delete(ctx context.Context, id string) error
}

type eventRepository struct {
	conn
}

func NewEventRepository(db *gorm.DB, timeout time.Duration) EventRepository {
	return &eventRepository{conn: newConn(db, timeout)}
}

func (r *eventRepository) FindAll(ctx context.Context) ([]models.Event, error) {
	db, cancel := r.with(ctx)
	defer cancel()

	var rows []eventRow
	if err := db.Order("date ASC, created_at ASC").Find(&rows).Error; err != nil {
		return nil, translate(err, "find events")
	}

	events := make([]models.Event, 0, len(rows))
	for i := range rows {
		e, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, nil
}

func (r *eventRepository) FindByID(ctx context.Context, id string) (*models.Event, error) {
	db, cancel := r.with(ctx)
	defer cancel()

	var row eventRow
	if err := db.First(&row, "id = ?", id).Error; err != nil {
		return nil, translate(err, "find event")
	}
	e, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	db, cancel := r.with(ctx)
	defer cancel()

	row := eventRowFrom(event)
	if err := db.Create(&row).Error; err != nil {
		return translate(err, "create event")
	}
	event.CreatedAt = row.CreatedAt
	return nil
}

func (r *eventRepository) Update(ctx context.Context, id string, patch models.EventPatch) error {
	cols := patchColumns(patch)
	if len(cols) == 0 {
		return nil
	}

	db, cancel := r.with(ctx)
	defer cancel()

	res := db.Model(&eventRow{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return translate(res.Error, "update event")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes only the event row; registrations and feedback follow the
// store's own referential policy.
func (r *eventRepository) Delete(ctx context.Context, id string) error {
	db, cancel := r.with(ctx)
	defer cancel()

	res := db.Where("id = ?", id).Delete(&eventRow{})
	if res.Error != nil {
		return translate(res.Error, "delete event")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
