package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidPeriod indicates a period label that could not be parsed.
var ErrInvalidPeriod = errors.New("invalid period")

// Period identifies one calendar month of billing history.
// A zero Month marks a label whose month name was not recognized; the name
// is kept so that distinct labels stay distinct.
type Period struct {
	name  string
	Year  int
	Month time.Month
}

// NewPeriod returns the period for the month called name in year. Names that are not
// calendar months are kept verbatim.
func NewPeriod(year int, name string) Period {
	if m := monthByName(name); m != 0 {
		return Period{Year: year, Month: m}
	}
	return Period{Year: year, name: name}
}

// ParsePeriod parses labels such as "March 2024".
// Month names are matched case-insensitively; an unknown name yields Month 0
// rather than an error so that legacy data keeps loading.
func ParsePeriod(label string) (Period, error) {
	fields := strings.Fields(label)
	if len(fields) != 2 {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, label)
	}

	year, err := strconv.Atoi(fields[1])
	if err != nil {
		return Period{}, fmt.Errorf("%w: year in %q", ErrInvalidPeriod, label)
	}

	return NewPeriod(year, fields[0]), nil
}

// PeriodOf returns the period containing t.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

func monthByName(name string) time.Month {
	for m := time.January; m <= time.December; m++ {
		if strings.EqualFold(m.String(), name) {
			return m
		}
	}
	return 0
}

// MonthName is the label's month as written when it was not recognized,
// and empty otherwise.
func (p Period) MonthName() string {
	if p.Valid() {
		return ""
	}
	return p.name
}

// Valid reports whether the month name was recognized.
func (p Period) Valid() bool {
	return p.Month >= time.January && p.Month <= time.December
}

// SortIndex is the zero-based month position used for ordering.
// Unrecognized months sort as 0, alongside January.
func (p Period) SortIndex() int {
	if !p.Valid() {
		return 0
	}
	return int(p.Month) - 1
}

// Before orders periods by year, then month.
func (p Period) Before(other Period) bool {
	if p.Year != other.Year {
		return p.Year < other.Year
	}
	return p.SortIndex() < other.SortIndex()
}

func (p Period) String() string {
	if !p.Valid() {
		if p.name == "" {
			return fmt.Sprintf("Unknown %d", p.Year)
		}
		return fmt.Sprintf("%s %d", p.name, p.Year)
	}
	return fmt.Sprintf("%s %d", p.Month, p.Year)
}

// Equal reports whether p and other name the same month label.
func (p Period) Equal(other Period) bool {
	return p == other
}

// MarshalText implements encoding.TextMarshaler.
func (p Period) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Period) UnmarshalText(text []byte) error {
	parsed, err := ParsePeriod(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
