package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Rounder rounds monetary amounts to the currency precision
type Rounder interface {
	Round(amount decimal.Decimal) decimal.Decimal
}

// DefaultCurrency is the company currency used when none is configured (VND has no minor unit)
var DefaultCurrency = Currency{Code: "VND", Precision: 0}

// Currency describes the rounding rules of the company currency
type Currency struct {
	Code      string
	Precision int32 // Number of decimal places kept by Round
}

// Round rounds an amount to the currency precision (half away from zero)
func (c Currency) Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(c.Precision)
}

// Validate ensures the currency adheres to domain rules
func (c Currency) Validate() error {
	if c.Code == "" {
		return errors.New("currency code cannot be empty")
	}
	if c.Precision < 0 || c.Precision > 8 {
		return errors.New("currency precision must be between 0 and 8")
	}
	return nil
}
