package database

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	apperrors "github.com/kbukum/sessionkit/errors"
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// IsNotFoundError reports whether err is GORM's record-not-found.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// UniqueViolation reports whether err is a unique-constraint failure and,
// when the driver exposes it, returns the violated constraint or column
// text (e.g. "users_email_key" or "users.email").
func UniqueViolation(err error) (string, bool) {
	if err == nil {
		return "", false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == pgUniqueViolation {
			return pgErr.ConstraintName, true
		}
		return "", false
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			_, detail, _ := strings.Cut(liteErr.Error(), "constraint failed: ")
			return detail, true
		}
		return "", false
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return "", true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key") {
		return msg, true
	}
	return "", false
}

// IsConnectionError reports whether err looks like a lost or refused
// connection that a retry might resolve.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, p := range []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"i/o timeout",
		"no route to host",
		"network is unreachable",
		"driver: bad connection",
		"database is locked",
	} {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// FromDatabase collapses a storage error into the single internal error
// code. The driver error is kept as the cause for logging and never
// reaches a response body. AppErrors pass through unchanged.
func FromDatabase(err error) *apperrors.AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr
	}
	return apperrors.Internal(err)
}
