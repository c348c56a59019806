package repository

import (
	"context"
	"time"

	"github.com/Eursukkul/campus-events/internal/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// profileRow mirrors the identity provider's profiles table. Every column is nullable.
type profileRow struct {
	ID          string     `gorm:"column:id;primaryKey;type:uuid"`
	FullName    *string    `gorm:"column:full_name"`
	Email       *string    `gorm:"column:email"`
	Mobile      *string    `gorm:"column:mobile"`
	UserType    *string    `gorm:"column:user_type"`
	ClassBranch *string    `gorm:"column:class_branch"`
	ClubName    *string    `gorm:"column:club_name"`
	ClubRole    *string    `gorm:"column:club_role"`
	CreatedAt   *time.Time `gorm:"column:created_at"`
	UpdatedAt   *time.Time `gorm:"column:updated_at"`
}

func (profileRow) TableName() string { return "profiles" }

func (r *profileRow) toModel() (models.Profile, error) {
	role := models.RoleStudent
	if t := deref(r.UserType); t != "" {
		parsed, err := models.ParseRole(t)
		if err != nil {
			return models.Profile{}, errors.Wrapf(err, "profile %s", r.ID)
		}
		role = parsed
	}
	return models.Profile{
		ID:          r.ID,
		FullName:    deref(r.FullName),
		Email:       deref(r.Email),
		Mobile:      deref(r.Mobile),
		Role:        role,
		ClassBranch: deref(r.ClassBranch),
		ClubName:    deref(r.ClubName),
		ClubRole:    deref(r.ClubRole),
	}, nil
}

type ProfileRepository interface {
	FindByID(ctx context.Context, id string) (*models.Profile, error)
}

type profileRepository struct {
	conn
}

func NewProfileRepository(db *gorm.DB, timeout time.Duration) ProfileRepository {
	return &profileRepository{conn: newConn(db, timeout)}
}

func (r *profileRepository) FindByID(ctx context.Context, id string) (*models.Profile, error) {
	db, cancel := r.with(ctx)
	defer cancel()

	var row profileRow
	if err := db.First(&row, "id = ?", id).Error; err != nil {
		return nil, translate(err, "find profile")
	}
	p, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Tables lists the row types for migration.
func Tables() []any {
	return []any{&profileRow{}, &eventRow{}, &registrationRow{}, &feedbackRow{}}
}
