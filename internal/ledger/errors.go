package ledger

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidQuantity = errors.New("quantity must be greater than 0")

	// errStockConflict signals that a conditional stock decrement matched
	// no row: the stock changed between validation and commit.
	errStockConflict = errors.New("stock changed during checkout")
)

// AccessDeniedError is returned before any SQL runs when an operation
// targets a table outside the allow-list or outside the node's menu.
type AccessDeniedError struct {
	Table string
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("access denied: table %q is not supported", e.Table)
}

type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input for %q: %s", e.Field, e.Reason)
}

// ProductUnavailableError means the branch has no inventory row at all
// for the product, which is distinct from a row with zero stock.
type ProductUnavailableError struct {
	ProductID int32
	BranchID  int32
}

func (e *ProductUnavailableError) Error() string {
	return fmt.Sprintf("product %d is not available at branch %d", e.ProductID, e.BranchID)
}

type InsufficientStockError struct {
	ProductID   int32
	ProductName string
	Available   int32
	Requested   int32
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q. Available: %d, Requested: %d",
		e.ProductName, e.Available, e.Requested)
}

type ConstraintViolationError struct {
	Op  string
	Err error
}

func (e *ConstraintViolationError) Error() string {
	return fmt.Sprintf("%s: constraint violation: %v", e.Op, e.Err)
}

func (e *ConstraintViolationError) Unwrap() error { return e.Err }

type TimeoutError struct {
	Op string
}

func (e *TimeoutError) Error() string { return fmt.Sprintf("%s: statement timed out", e.Op) }

type SystemError struct {
	Op  string
	Err error
}

func (e *SystemError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *SystemError) Unwrap() error { return e.Err }

// translateErr classifies a database error per the error taxonomy.
func translateErr(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey), errors.Is(err, gorm.ErrForeignKeyViolated):
		return &ConstraintViolationError{Op: op, Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &TimeoutError{Op: op}
	default:
		return &SystemError{Op: op, Err: err}
	}
}
