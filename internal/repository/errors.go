package repository

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrInvoiceNotFound     = errors.New("invoice detail not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrDuplicateInvoice    = errors.New("invoice number already recorded")
	ErrInvalidDetail       = errors.New("invalid invoice detail")
)

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
