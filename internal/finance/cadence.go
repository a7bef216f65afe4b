// This file implements the Strategy Pattern for recurring bill cadences.
// Each frequency has its own strategy that knows how often a bill falls due,
// which lets amounts be normalised to a monthly figure.

package finance

import (
	"fmt"

	"balancebooks/internal/core"

	"github.com/shopspring/decimal"
)

// Cadence is the strategy interface for a recurring bill frequency.
type Cadence interface {
	// PerYear returns how many times a bill falls due in a year.
	PerYear() int64
}

// WeeklyCadence falls due every week.
type WeeklyCadence struct{}

func (WeeklyCadence) PerYear() int64 { return 52 }

// BiweeklyCadence falls due every other week.
type BiweeklyCadence struct{}

func (BiweeklyCadence) PerYear() int64 { return 26 }

// MonthlyCadence falls due once a month.
type MonthlyCadence struct{}

func (MonthlyCadence) PerYear() int64 { return 12 }

// QuarterlyCadence falls due every three months.
type QuarterlyCadence struct{}

func (QuarterlyCadence) PerYear() int64 { return 4 }

// YearlyCadence falls due once a year.
type YearlyCadence struct{}

func (YearlyCadence) PerYear() int64 { return 1 }

// cadences maps frequencies to their strategies.
var cadences = map[core.Frequency]Cadence{
	core.Weekly:    WeeklyCadence{},
	core.Biweekly:  BiweeklyCadence{},
	core.Monthly:   MonthlyCadence{},
	core.Quarterly: QuarterlyCadence{},
	core.Yearly:    YearlyCadence{},
}

// GetCadence returns the strategy for a frequency.
func GetCadence(f core.Frequency) (Cadence, error) {
	c, ok := cadences[f]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrInvalidFrequency, f)
	}
	return c, nil
}

// RegisterCadence adds or replaces the strategy for a frequency.
func RegisterCadence(f core.Frequency, c Cadence) {
	cadences[f] = c
}

// MonthlyEquivalent normalises a bill's amount to a per-month figure.
// Unknown frequencies count as monthly.
func MonthlyEquivalent(b core.RecurringBill) decimal.Decimal {
	c, err := GetCadence(b.Frequency)
	if err != nil {
		return b.Amount
	}
	return b.Amount.Mul(decimal.NewFromInt(c.PerYear())).Div(monthsPerYear)
}

// TotalMonthlyRecurring sums the raw amounts of active bills.
func TotalMonthlyRecurring(bills []core.RecurringBill) decimal.Decimal {
	total := decimal.Zero
	for _, b := range bills {
		if b.Active {
			total = total.Add(b.Amount)
		}
	}
	return total
}

// TotalMonthlyEquivalent sums the frequency-normalised amounts of active bills.
func TotalMonthlyEquivalent(bills []core.RecurringBill) decimal.Decimal {
	total := decimal.Zero
	for _, b := range bills {
		if b.Active {
			total = total.Add(MonthlyEquivalent(b))
		}
	}
	return total.Round(2)
}
