package core

import (
	"fmt"
	"time"
)

// MonthNames are the short labels used by trend and cycle series.
var MonthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Period is a calendar month. Month is 0-indexed (0 = January).
type Period struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// NewPeriod normalises an out-of-range month into the right year.
func NewPeriod(year, month int) Period {
	return Period{Year: year, Month: 0}.AddMonths(month)
}

// PeriodOf returns the period containing t.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: int(t.Month()) - 1}
}

// ParsePeriodKey parses a YYYY-MM key with a 0-indexed month.
func ParsePeriodKey(key string) (Period, error) {
	var p Period
	if len(key) != 7 || key[4] != '-' {
		return p, fmt.Errorf("%w: %q", ErrInvalidPeriod, key)
	}
	if _, err := fmt.Sscanf(key, "%4d-%2d", &p.Year, &p.Month); err != nil {
		return p, fmt.Errorf("%w: %q", ErrInvalidPeriod, key)
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

func (p Period) Validate() error {
	if p.Month < 0 || p.Month > 11 {
		return fmt.Errorf("%w: month %d", ErrInvalidPeriod, p.Month)
	}
	if p.Year < 1 || p.Year > 9999 {
		return fmt.Errorf("%w: year %d", ErrInvalidPeriod, p.Year)
	}
	return nil
}

// Key is the canonical join key between transactions and balance overrides.
// The month stays 0-indexed so keys written by earlier releases keep resolving.
func (p Period) Key() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

func (p Period) String() string {
	return fmt.Sprintf("%s %d", p.Label(), p.Year)
}

// Label is the short month name.
func (p Period) Label() string {
	return MonthNames[p.Month]
}

// AddMonths moves the period by n months, wrapping year boundaries.
func (p Period) AddMonths(n int) Period {
	idx := p.Year*12 + p.Month + n
	y, m := idx/12, idx%12
	if m < 0 {
		m += 12
		y--
	}
	return Period{Year: y, Month: m}
}

func (p Period) Next() Period { return p.AddMonths(1) }
func (p Period) Prev() Period { return p.AddMonths(-1) }

// Before reports whether p is strictly earlier than o.
func (p Period) Before(o Period) bool {
	return p.index() < o.index()
}

// MonthsUntil returns the number of months from p to o (negative if o is earlier).
func (p Period) MonthsUntil(o Period) int {
	return o.index() - p.index()
}

func (p Period) index() int {
	return p.Year*12 + p.Month
}

// Contains reports whether d falls inside the period.
func (p Period) Contains(d Date) bool {
	if d.IsZero() {
		return false
	}
	return d.Year() == p.Year && int(d.Month())-1 == p.Month
}

// DaysIn returns the number of days in the period.
func (p Period) DaysIn() int {
	return time.Date(p.Year, time.Month(p.Month+2), 0, 0, 0, 0, 0, time.UTC).Day()
}

// Day returns the date for day in the period, clamped to its last day.
func (p Period) Day(day int) Date {
	if last := p.DaysIn(); day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return NewDate(p.Year, p.Month+1, day)
}
