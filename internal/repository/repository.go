package repository

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	ErrNotFound  = stderrors.New("record not found")
	ErrNoSeat    = stderrors.New("no seat left")
	ErrDuplicate = stderrors.New("duplicate record")
)

const defaultTimeout = 10 * time.Second

// conn carries the database handle and the per-call deadline shared by all repositories.
type conn struct {
	db      *gorm.DB
	timeout time.Duration
}

func newConn(db *gorm.DB, timeout time.Duration) conn {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return conn{db: db, timeout: timeout}
}

func (c conn) with(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	return c.db.WithContext(ctx), cancel
}

// translate maps driver errors onto the repository sentinels, keeping a stack for the rest.
func translate(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case stderrors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	case stderrors.Is(err, ErrNotFound), stderrors.Is(err, ErrNoSeat), stderrors.Is(err, ErrDuplicate):
		return err
	}
	return errors.Wrap(err, op)
}

func nullable(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
