package services

import (
	"errors"
	"fmt"

	"tienda/internal/repositories"
)

var (
	// ErrNotFound and ErrDuplicate are the repository sentinels, re-exported for handlers.
	ErrNotFound  = repositories.ErrNotFound
	ErrDuplicate = repositories.ErrDuplicate

	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrInsufficientStock  = errors.New("insufficient stock")
	// ErrStockRace means the guarded decrement found less stock than the pre-check saw.
	ErrStockRace = errors.New("stock changed during checkout")
)

// StockError reports the product that cannot cover the requested quantity.
type StockError struct {
	ProductID   uint
	ProductName string
	Available   int
	Requested   int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for: %s. Available stock: %d", e.ProductName, e.Available)
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }

// invalid wraps ErrInvalidInput with a user-facing message.
func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidInput)
}
