package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// HalfDays is a leave amount in half-day units. Balances are stored and summed
// in this unit; conversion to days happens only at the API boundary.
type HalfDays int64

var two = decimal.NewFromInt(2)

// HalfDaysFromDays converts a day amount, rounding to the nearest half day.
func HalfDaysFromDays(days decimal.Decimal) HalfDays {
	return HalfDays(days.Mul(two).Round(0).IntPart())
}

// WholeDays converts an integer number of days.
func WholeDays(days int64) HalfDays {
	return HalfDays(days * 2)
}

// Days returns the amount in days.
func (h HalfDays) Days() decimal.Decimal {
	return decimal.NewFromInt(int64(h)).Div(two)
}

// Neg returns the negated amount.
func (h HalfDays) Neg() HalfDays {
	return -h
}

// Abs returns the absolute amount.
func (h HalfDays) Abs() HalfDays {
	if h < 0 {
		return -h
	}
	return h
}

func (h HalfDays) String() string {
	return fmt.Sprintf("%sd", h.Days().String())
}
