package database

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"resto-system/internal/apperrors"
)

// Coordinator is the atomicity boundary: every write issued through the tx
// handed to fn commits together or not at all.
type Coordinator struct {
	db *gorm.DB
}

func NewCoordinator(db *gorm.DB) *Coordinator {
	return &Coordinator{db: db}
}

func (c *Coordinator) DB() *gorm.DB {
	return c.db
}

func (c *Coordinator) Run(ctx context.Context, fn func(tx *gorm.DB) error) (err error) {
	tx := c.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return apperrors.Unexpected(tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return apperrors.Unexpected(err)
	}
	return nil
}

// ForUpdate locks the selected rows until the transaction ends. SQLite has
// no row locks and serializes writers on its own.
func ForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Classify turns a storage error into an application error, mapping
// record-not-found onto notFound.
func Classify(err error, notFound *apperrors.Error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	if notFound != nil && IsNotFound(err) {
		return notFound
	}
	return apperrors.Unexpected(err)
}
