// Package date parses the dates printed in financial statements, mostly bond
// maturities, into a day granularity Date.
package date

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const readDateFormat = "2006-1-2" // Permissive read date format (allows single-digit month/day).

// DateFormat is the format used to represent dates as strings in ISO-8601 format.
const DateFormat = "2006-01-02" // write date format

// Date represents a date with day-level granularity.
type Date struct {
	y int
	m time.Month
	d int
}

// time returns a time.Time that is a canonical representation of that day (at midnight UTC).
func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// New returns a normalized Date for the given year, month, and day.
func New(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.time().Date()
	return d
}

// Year returns current year.
func (d Date) Year() int { return d.y }

// Month returns the month of the date.
func (d Date) Month() time.Month { return d.m }

// Day returns current day of the month.
func (d Date) Day() int { return d.d }

// IsZero returns true if the date is the zero value.
func (d Date) IsZero() bool { return d.y == 0 && d.m == 0 && d.d == 0 }

// Before reports whether the day d is before x.
func (d Date) Before(x Date) bool { return d.time().Before(x.time()) }

// After reports whether the day d is after x.
func (d Date) After(x Date) bool { return d.time().After(x.time()) }

// String format the date in its standard format.
func (d Date) String() string { return d.time().Format(DateFormat) }

// Parse parses a Date from a string. It is lenient and accepts formats like "2025-7-1".
func Parse(str string) (Date, error) {
	on, err := time.Parse(readDateFormat, str)
	// We use a slightly more permisive format for read, to support 2025-7-1 instead of 2025-07-01
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q want format %q: %w", str, readDateFormat, err)
	}
	return New(on.Date()), nil
}

// MustParse is like Parse but panics on error.
func MustParse(str string) Date {
	d, err := Parse(str)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// UnmarshalJSON implements the json specific way to unmarshall a date from a json string.
func (j *Date) UnmarshalJSON(bytes []byte) error {
	var str string
	if err := json.Unmarshal(bytes, &str); err != nil {
		return err
	}
	d, err := Parse(str)
	if err != nil {
		return err
	}
	*j = d
	return nil
}

func (j Date) MarshalJSON() ([]byte, error) {
	str := j.String()
	return json.Marshal(&str)
}

// check that a Date pointer is a valid json marshall/unmarshaller type.
var _ json.Marshaler = (*Date)(nil)
var _ json.Unmarshaler = (*Date)(nil)

// Statement formats.
var (
	isoRegex     = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	numericRegex = regexp.MustCompile(`\b(\d{1,2})[./-](\d{1,2})[./-](\d{4}|\d{2})\b`)
	textRegex    = regexp.MustCompile(`(?i)\b(\d{1,2})[ .-]?(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?[ .-]?(\d{4})\b`)
	usTextRegex  = regexp.MustCompile(`(?i)\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.? (\d{1,2}),? (\d{4})\b`)
	monthYear    = regexp.MustCompile(`\b(\d{1,2})[./](\d{4})\b`)
)

var months = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March, "apr": time.April,
	"may": time.May, "jun": time.June, "jul": time.July, "aug": time.August,
	"sep": time.September, "oct": time.October, "nov": time.November, "dec": time.December,
}

// Find returns the first date-shaped substring of text, or "".
func Find(text string) string {
	for _, re := range []*regexp.Regexp{isoRegex, numericRegex, textRegex, usTextRegex, monthYear} {
		if m := re.FindString(text); m != "" {
			if _, err := ParseStatement(m); err == nil {
				return m
			}
		}
	}
	return ""
}

// ParseStatement parses a date as printed in a statement.
//
// Supported forms are ISO (2052-11-15), day first numeric (15.11.2052,
// 15/11/52), textual months (15 Nov 2052, Nov 15, 2052) and month/year
// (11/2052, read as the last day of the month). Numeric dates are read day
// first unless the day position is greater than 12. Two digit years are in
// 20xx unless above 70.
func ParseStatement(s string) (Date, error) {
	s = strings.TrimSpace(s)
	atoi := func(s string) int { n, _ := strconv.Atoi(s); return n }

	if m := isoRegex.FindStringSubmatch(s); m != nil {
		return checked(s, atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}
	if m := numericRegex.FindStringSubmatch(s); m != nil {
		day, month, year := atoi(m[1]), atoi(m[2]), atoi(m[3])
		if len(m[3]) == 2 {
			year = expandYear(year)
		}
		if month > 12 && day <= 12 {
			day, month = month, day
		}
		return checked(s, year, month, day)
	}
	if m := textRegex.FindStringSubmatch(s); m != nil {
		return checked(s, atoi(m[3]), int(months[strings.ToLower(m[2])]), atoi(m[1]))
	}
	if m := usTextRegex.FindStringSubmatch(s); m != nil {
		return checked(s, atoi(m[3]), int(months[strings.ToLower(m[1])]), atoi(m[2]))
	}
	if m := monthYear.FindStringSubmatch(s); m != nil {
		month, year := atoi(m[1]), atoi(m[2])
		if month < 1 || month > 12 {
			return Date{}, fmt.Errorf("invalid date %q: month %d", s, month)
		}
		// Day 0 of the next month is the last day of this one.
		return New(year, time.Month(month+1), 0), nil
	}
	return Date{}, fmt.Errorf("invalid date %q: unknown format", s)
}

// checked builds the date after checking each component is in range, New would silently normalize.
func checked(s string, year, month, day int) (Date, error) {
	if month < 1 || month > 12 {
		return Date{}, fmt.Errorf("invalid date %q: month %d", s, month)
	}
	d := New(year, time.Month(month), day)
	if d.Day() != day || day < 1 {
		return Date{}, fmt.Errorf("invalid date %q: day %d", s, day)
	}
	return d, nil
}

func expandYear(y int) int {
	if y > 70 {
		return 1900 + y
	}
	return 2000 + y
}
