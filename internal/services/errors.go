package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrInvalidQuantity      = errors.New("quantity_must_be_positive")
	ErrOrderNotFound        = errors.New("order_not_found")
	ErrProductNotFound      = errors.New("product_not_found")
	ErrAlreadyIssued        = errors.New("documents_already_issued")
	ErrDuplicateOrderNumber = errors.New("order_number_already_exists")
)

// IsUniqueViolation matches unique-constraint failures across the drivers we
// run on. Gorm only surfaces ErrDuplicatedKey when error translation is on,
// so the raw sqlite/postgres messages are checked too.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || // sqlite
		strings.Contains(msg, "duplicate key value") // postgres
}
