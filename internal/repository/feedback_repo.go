package repository

import (
	"context"
	"time"

	"github.com/Eursukkul/campus-events/internal/models"
	"gorm.io/gorm"
)

type feedbackRow struct {
	ID        string    `gorm:"column:id;primaryKey;type:uuid"`
	EventID   string    `gorm:"column:event_id;type:uuid;not null;index"`
	UserID    string    `gorm:"column:user_id;type:uuid;not null;index"`
	Rating    int       `gorm:"column:rating;not null"`
	Comment   *string   `gorm:"column:comment"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (feedbackRow) TableName() string { return "feedback" }

func (r *feedbackRow) toModel() models.Feedback {
	return models.Feedback{
		ID:        r.ID,
		EventID:   r.EventID,
		UserID:    r.UserID,
		Rating:    r.Rating,
		Comment:   nullable(r.Comment),
		CreatedAt: r.CreatedAt,
	}
}

type FeedbackRepository interface {
	FindAll(ctx context.Context) ([]models.Feedback, error)
	FindByEvent(ctx context.Context, eventID string) ([]models.Feedback, error)
	FindByUser(ctx context.Context, userID string) ([]models.Feedback, error)
	FindByUserAndEvent(ctx context.Context, userID, eventID string) (*models.Feedback, error)
	Create(ctx context.Context, fb *models.Feedback) error
}

type feedbackRepository struct {
	conn
}

func NewFeedbackRepository(db *gorm.DB, timeout time.Duration) FeedbackRepository {
	return &feedbackRepository{conn: newConn(db, timeout)}
}

func (r *feedbackRepository) FindAll(ctx context.Context) ([]models.Feedback, error) {
	return r.find(ctx, "find feedback", nil)
}

func (r *feedbackRepository) FindByEvent(ctx context.Context, eventID string) ([]models.Feedback, error) {
	return r.find(ctx, "find feedback by event", func(q *gorm.DB) *gorm.DB {
		return q.Where("event_id = ?", eventID)
	})
}

func (r *feedbackRepository) FindByUser(ctx context.Context, userID string) ([]models.Feedback, error) {
	return r.find(ctx, "find feedback by user", func(q *gorm.DB) *gorm.DB {
		return q.Where("user_id = ?", userID)
	})
}

func (r *feedbackRepository) find(ctx context.Context, op string, scope func(*gorm.DB) *gorm.DB) ([]models.Feedback, error) {
	db, cancel := r.with(ctx)
	defer cancel()

	q := db.Model(&feedbackRow{})
	if scope != nil {
		q = scope(q)
	}
	var rows []feedbackRow
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, translate(err, op)
	}
	out := make([]models.Feedback, len(rows))
	for i := range rows {
		out[i] = rows[i].toModel()
	}
	return out, nil
}

func (r *feedbackRepository) FindByUserAndEvent(ctx context.Context, userID, eventID string) (*models.Feedback, error) {
	db, cancel := r.with(ctx)
	defer cancel()

	var row feedbackRow
	if err := db.Where("user_id = ? AND event_id = ?", userID, eventID).First(&row).Error; err != nil {
		return nil, translate(err, "find feedback by user and event")
	}
	fb := row.toModel()
	return &fb, nil
}

func (r *feedbackRepository) Create(ctx context.Context, fb *models.Feedback) error {
	db, cancel := r.with(ctx)
	defer cancel()

	row := feedbackRow{
		ID:      fb.ID,
		EventID: fb.EventID,
		UserID:  fb.UserID,
		Rating:  fb.Rating,
		Comment: nullable(fb.Comment),
	}
	if err := db.Create(&row).Error; err != nil {
		return translate(err, "create feedback")
	}
	fb.CreatedAt = row.CreatedAt
	return nil
}
