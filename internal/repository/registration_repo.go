package repository

import (
	"context"
	"time"

	"github.com/Eursukkul/campus-events/internal/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type registrationRow struct {
	ID               string    `gorm:"column:id;primaryKey;type:uuid"`
	EventID          string    `gorm:"column:event_id;type:uuid;not null;index"`
	UserID           string    `gorm:"column:user_id;type:uuid;not null;index"`
	UserName         string    `gorm:"column:user_name;not null"`
	RegistrationDate time.Time `gorm:"column:registration_date;not null"`
	PaymentStatus    string    `gorm:"column:payment_status;type:varchar(20);not null;default:'pending'"`
}

func (registrationRow) TableName() string { return "registrations" }

func (r *registrationRow) toModel() (models.Registration, error) {
	status, err := models.ParsePaymentStatus(r.PaymentStatus)
	if err != nil {
		return models.Registration{}, errors.Wrapf(err, "registration %s", r.ID)
	}
	return models.Registration{
		ID:               r.ID,
		EventID:          r.EventID,
		UserID:           r.UserID,
		UserName:         r.UserName,
		RegistrationDate: r.RegistrationDate,
		PaymentStatus:    status,
	}, nil
}

func registrationRows(rows []registrationRow) ([]models.Registration, error) {
	out := make([]models.Registration, 0, len(rows))
	for i := range rows {
		reg, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, reg)
	}
	return out, nil
}

type RegistrationRepository interface {
	FindAll(ctx context.Context) ([]models.Registration, error)
	FindByID(ctx context.Context, id string) (*models.Registration, error)
	FindByEvent(ctx context.Context, eventID string) ([]models.Registration, error)
	FindByUser(ctx context.Context, userID string) ([]models.Registration, error)
	FindByUserAndEvent(ctx context.Context, userID, eventID string) (*models.Registration, error)
	// CreateWithSeat claims one seat and inserts the registration atomically.
	// It returns the event's attendee count after the claim.
	CreateWithSeat(ctx context.Context, reg *models.Registration) (int, error)
	// DeleteAndReleaseSeat removes the registration and gives its seat back.
	// It returns the event's attendee count after the release.
	DeleteAndReleaseSeat(ctx context.Context, eventID, userID string) (int, error)
	UpdateStatus(ctx context.Context, id string, status models.PaymentStatus) error
}

type registrationRepository struct {
	conn
}

func NewRegistrationRepository(db *gorm.DB, timeout time.Duration) RegistrationRepository {
	return &registrationRepository{conn: newConn(db, timeout)}
}

func (r *registrationRepository) FindAll(ctx context.Context) ([]models.Registration, error) {
	return r.find(ctx, "find registrations", nil)
}

func (r *registrationRepository) FindByEvent(ctx context.Context, eventID string) ([]models.Registration, error) {
	return r.find(ctx, "find registrations by event", func(q *gorm.DB) *gorm.DB {
		return q.Where("event_id = ?", eventID)
	})
}

func (r *registrationRepository) FindByUser(ctx context.Context, userID string) ([]models.Registration, error) {
	return r.find(ctx, "find registrations by user", func(q *gorm.DB) *gorm.DB {
		return q.Where("user_id = ?", userID)
	})
}

func (r *registrationRepository) find(ctx context.Context, op string, scope func(*gorm.DB) *gorm.DB) ([]models.Registration, error) {
	db, cancel := r.with(ctx)
	defer cancel()

	q := db.Model(&registrationRow{})
	if scope != nil {
		q = scope(q)
	}
	var rows []registrationRow
	if err := q.Order("registration_date ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, translate(err, op)
	}
	return registrationRows(rows)
}

func (r *registrationRepository) FindByID(ctx context.Context, id string) (*models.Registration, error) {
	db, cancel := r.with(ctx)
	defer cancel()

	var row registrationRow
	if err := db.First(&row, "id = ?", id).Error; err != nil {
		return nil, translate(err, "find registration")
	}
	reg, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *registrationRepository) FindByUserAndEvent(ctx context.Context, userID, eventID string) (*models.Registration, error) {
	db, cancel := r.with(ctx)
	defer cancel()

	var row registrationRow
	err := db.Where("user_id = ? AND event_id = ?", userID, eventID).First(&row).Error
	if err != nil {
		return nil, translate(err, "find registration by user and event")
	}
	reg, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *registrationRepository) CreateWithSeat(ctx context.Context, reg *models.Registration) (int, error) {
	db, cancel := r.with(ctx)
	defer cancel()

	var attendees int
	err := db.Transaction(func(tx *gorm.DB) error {
		// Lock the event row so concurrent claims on the same event serialize.
		var event eventRow
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&event, "id = ?", reg.EventID).Error; err != nil {
			return err
		}

		res := tx.Model(&eventRow{}).
			Where("id = ? AND current_attendees < max_attendees", reg.EventID).
			UpdateColumn("current_attendees", gorm.Expr("current_attendees + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNoSeat
		}

		row := registrationRow{
			ID:               reg.ID,
			EventID:          reg.EventID,
			UserID:           reg.UserID,
			UserName:         reg.UserName,
			RegistrationDate: reg.RegistrationDate,
			PaymentStatus:    string(reg.PaymentStatus),
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}

		attendees = event.CurrentAttendees + 1
		return nil
	})
	if err != nil {
		return 0, translate(err, "create registration")
	}
	return attendees, nil
}

func (r *registrationRepository) DeleteAndReleaseSeat(ctx context.Context, eventID, userID string) (int, error) {
	db, cancel := r.with(ctx)
	defer cancel()

	var attendees int
	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("event_id = ? AND user_id = ?", eventID, userID).Delete(&registrationRow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}

		if err := tx.Model(&eventRow{}).
			Where("id = ? AND current_attendees > 0", eventID).
			UpdateColumn("current_attendees", gorm.Expr("current_attendees - 1")).Error; err != nil {
			return err
		}

		return tx.Model(&eventRow{}).
			Select("current_attendees").
			Where("id = ?", eventID).
			Scan(&attendees).Error
	})
	if err != nil {
		return 0, translate(err, "delete registration")
	}
	return attendees, nil
}

func (r *registrationRepository) UpdateStatus(ctx context.Context, id string, status models.PaymentStatus) error {
	db, cancel := r.with(ctx)
	defer cancel()

	res := db.Model(&registrationRow{}).Where("id = ?", id).Update("payment_status", string(status))
	if res.Error != nil {
		return translate(res.Error, "update registration status")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
