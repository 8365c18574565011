package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Error kinds. Handlers map them to status codes; the message of the
// wrapping error is safe to show to the user.
var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrHasDependents      = errors.New("has dependent rows")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrSelfAction         = errors.New("operation on own account")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ruleError is a business failure with a user-facing message.
type ruleError struct {
	kind error
	msg  string
}

func (e *ruleError) Error() string { return e.msg }
func (e *ruleError) Unwrap() error { return e.kind }

func newRuleError(kind error, format string, args ...any) error {
	return &ruleError{kind: kind, msg: fmt.Sprintf(format, args...)}
}

func validationf(format string, args ...any) error {
	return newRuleError(ErrValidation, format, args...)
}

func conflictf(format string, args ...any) error {
	return newRuleError(ErrConflict, format, args...)
}

func notFoundf(format string, args ...any) error {
	return newRuleError(ErrNotFound, format, args...)
}

func dependentsf(format string, args ...any) error {
	return newRuleError(ErrHasDependents, format, args...)
}

// notFoundOr turns gorm.ErrRecordNotFound into a not-found rule error and
// wraps anything else as a storage failure.
func notFoundOr(err error, msg, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFoundf("%s", msg)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// isDuplicateKey reports a unique constraint violation, translated by gorm or
// raw from PostgreSQL (23505) or SQLite.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "23505") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// runTx executes fn inside a GORM transaction.
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(fn)
}
