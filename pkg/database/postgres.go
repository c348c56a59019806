package database

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewPostgresDB connects and migrates tables, the gorm models of the caller.
func NewPostgresDB(dsn string, tables ...any) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "get sql.DB")
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(1 * time.Minute)

	if err := Migrate(db, tables...); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates the tables and the uniqueness indexes that back
// one-registration and one-feedback per (event, user).
func Migrate(db *gorm.DB, tables ...any) error {
	if err := db.AutoMigrate(tables...); err != nil {
		return errors.Wrap(err, "auto-migrate")
	}

	stmts := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_registration_event_user ON registrations (event_id, user_id)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_feedback_event_user ON feedback (event_id, user_id)`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return errors.Wrap(err, "create index")
		}
	}
	return nil
}
