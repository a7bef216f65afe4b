package importer

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"balancebooks/internal/core"
)

var (
	isoDate      = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})`)
	usDate       = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	usShortDate  = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2})$`)
	usDashDate   = regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{4})$`)
	longDate     = regexp.MustCompile(`^([A-Za-z]+)\s+(\d{1,2}),?\s+(\d{4})$`)
	serialNumber = regexp.MustCompile(`^\d+(\.\d+)?$`)

	// Spreadsheet day zero.
	excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

	fallbackLayouts = []string{time.RFC3339, "2006/01/02", "2 Jan 2006", "Jan 2 2006", "January 2 2006"}
	monthPrefixes   = []string{"jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep", "oct", "nov", "dec"}
)

// ParseDate accepts the date shapes bank and spreadsheet exports use: ISO,
// US slash and dash forms, two-digit years, long month names and
// spreadsheet serial numbers.
func ParseDate(s string) (core.Date, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return core.Date{}, false
	}

	if serialNumber.MatchString(s) {
		n, err := strconv.ParseFloat(s, 64)
		if err == nil && n > 0 && n < 100000 {
			return core.DateOf(excelEpoch.AddDate(0, 0, int(n))), true
		}
	}

	if m := isoDate.FindStringSubmatch(s); m != nil {
		return ymd(m[1], m[2], m[3])
	}
	if m := usDate.FindStringSubmatch(s); m != nil {
		return ymd(m[3], m[1], m[2])
	}
	if m := usShortDate.FindStringSubmatch(s); m != nil {
		year := "20" + m[3]
		if yy, _ := strconv.Atoi(m[3]); yy > 50 {
			year = "19" + m[3]
		}
		return ymd(year, m[1], m[2])
	}
	if m := usDashDate.FindStringSubmatch(s); m != nil {
		return ymd(m[3], m[1], m[2])
	}
	if m := longDate.FindStringSubmatch(s); m != nil {
		name := strings.ToLower(m[1])
		for i, prefix := range monthPrefixes {
			if strings.HasPrefix(name, prefix) {
				return ymd(m[3], strconv.Itoa(i+1), m[2])
			}
		}
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return core.DateOf(t), true
		}
	}
	return core.Date{}, false
}

// ymd builds a date and rejects days the month does not have.
func ymd(year, month, day string) (core.Date, bool) {
	y, err1 := strconv.Atoi(year)
	m, err2 := strconv.Atoi(month)
	d, err3 := strconv.Atoi(day)
	if err1 != nil || err2 != nil || err3 != nil || m < 1 || m > 12 || d < 1 {
		return core.Date{}, false
	}
	date := core.NewDate(y, m, d)
	if date.Day() != d || int(date.Month()) != m {
		return core.Date{}, false
	}
	return date, true
}
