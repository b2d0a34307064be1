package usecase

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/leaveledger/internal/domain"
)

var monthsPerYear = decimal.NewFromInt(12)

// EntitlementCalculator computes annual and pro-rata entitlement.
type EntitlementCalculator struct{}

// NewEntitlementCalculator creates a new EntitlementCalculator.
func NewEntitlementCalculator() *EntitlementCalculator {
	return &EntitlementCalculator{}
}

// ComputeEntitlement returns the entitlement of employee for variant in year as
// of asOf. A nil employee or a missing join date is treated as a full-year
// employee.
func (c *EntitlementCalculator) ComputeEntitlement(employee *domain.Employee, variant *domain.LeaveVariant, year int, asOf time.Time) domain.HalfDays {
	var joinDate *time.Time
	if employee != nil && employee.JoinDate != nil {
		d := domain.StartOfDay(*employee.JoinDate)
		joinDate = &d
	}

	if variant.AccrualPolicy == domain.AccrualAfterEarning {
		return c.earned(variant, joinDate, year, domain.StartOfDay(asOf))
	}

	return c.inAdvance(variant, joinDate, year)
}

func (c *EntitlementCalculator) inAdvance(variant *domain.LeaveVariant, joinDate *time.Time, year int) domain.HalfDays {
	if joinDate == nil || joinDate.Year() < year {
		return variant.AnnualEntitlement
	}
	if joinDate.Year() > year {
		return 0
	}

	remaining := 12 - int(joinDate.Month()) + 1
	return monthlyShare(variant.AnnualEntitlement, remaining)
}

func (c *EntitlementCalculator) earned(variant *domain.LeaveVariant, joinDate *time.Time, year int, asOf time.Time) domain.HalfDays {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

	if joinDate != nil && joinDate.After(start) {
		start = *joinDate
	}
	if start.After(yearEnd) {
		return 0
	}
	if asOf.After(yearEnd) {
		asOf = yearEnd
	}

	if variant.AccrualFrequency == domain.AccrualYearly && asOf.Before(yearEnd) {
		return 0
	}

	months := CompletedMonths(start, asOf)
	if months >= 12 {
		return variant.AnnualEntitlement
	}

	return monthlyShare(variant.AnnualEntitlement, months)
}

// CompletedMonths counts calendar months lying entirely within [start, asOf].
// A month is complete once asOf reaches its last day; a month entered after
// its first day is not counted.
func CompletedMonths(start, asOf time.Time) int {
	start, asOf = domain.StartOfDay(start), domain.StartOfDay(asOf)

	first := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	if !first.Equal(start) {
		first = first.AddDate(0, 1, 0)
	}

	months := 0
	for m := first; ; m = m.AddDate(0, 1, 0) {
		lastDay := m.AddDate(0, 1, -1)
		if lastDay.After(asOf) {
			break
		}
		months++
	}

	return months
}

// monthlyShare returns annual/12*months rounded to the nearest half day.
func monthlyShare(annual domain.HalfDays, months int) domain.HalfDays {
	if months <= 0 {
		return 0
	}
	days := annual.Days().Mul(decimal.NewFromInt(int64(months))).Div(monthsPerYear)
	return domain.HalfDaysFromDays(days)
}
