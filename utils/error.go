package utils

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var ErrorRecordNotFound = errors.New("record not found")

// ErrorValidation is wrapped by domain validation failures (bad enum value,
// negative amount, in-use delete guard) so handlers can answer 400.
var ErrorValidation = errors.New("validation failed")

// ErrorDuplicate is wrapped by ValidateUnique so callers can map it to 409.
var ErrorDuplicate = errors.New("duplicate value")

// InsufficientStockError is returned when a stock-affecting write would drive
// a product's stock below zero. The whole operation must be rolled back.
type InsufficientStockError struct {
	ProductId   int
	ProductName string
	Requested   decimal.Decimal
	Available   decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	name := e.ProductName
	if name == "" {
		name = fmt.Sprintf("product %d", e.ProductId)
	}
	return fmt.Sprintf("insufficient stock for %s: requested %s, available %s",
		name, e.Requested.String(), e.Available.String())
}

func IsInsufficientStock(err error) bool {
	var ise *InsufficientStockError
	return errors.As(err, &ise)
}

func ErrorPanic(err error) {
	if err != nil {
		panic(err)
	}
}
