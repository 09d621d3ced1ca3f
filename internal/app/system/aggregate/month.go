package aggregate

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// MonthLayout is the label format for month buckets ("MM/YYYY").
const MonthLayout = "01/2006"

// InvalidDateLabel buckets records whose date is missing or unparsable.
// It is a known label: the normalizer places it last without complaint.
const InvalidDateLabel = "invalid date"

// dateLayouts are the shapes the marketplace API has been seen to send.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ErrEmptyDate is returned by ParseDate for blank input.
var ErrEmptyDate = errors.New("empty date")

// ParseDate parses a date string from the API using the known layouts.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, ErrEmptyDate
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", raw)
}

// MonthLabel formats raw as "MM/YYYY", or InvalidDateLabel when raw
// does not parse.
func MonthLabel(raw string) string {
	t, err := ParseDate(raw)
	if err != nil {
		return InvalidDateLabel
	}
	return t.Format(MonthLayout)
}

// DayLayout is how single dates are shown in tables ("DD/MM/YYYY").
const DayLayout = "02/01/2006"

// DayLabel formats raw for display, falling back to the raw string when
// it does not parse.
func DayLabel(raw string) string {
	t, err := ParseDate(raw)
	if err != nil {
		return raw
	}
	return t.Format(DayLayout)
}

// MonthKey parses a "MM/YYYY" label back into the first instant of that
// month (UTC). It never looks at the original record.
func MonthKey(label string) (time.Time, error) {
	return time.Parse(MonthLayout, label)
}

// ContractViolation reports a label the normalizer cannot order. Labels
// produced by MonthLabel never trigger it.
type ContractViolation struct {
	Label string
	Err   error
}

func (v ContractViolation) Error() string {
	return fmt.Sprintf("aggregate: label %q is not a MM/YYYY month: %v", v.Label, v.Err)
}

func (v ContractViolation) Unwrap() error { return v.Err }

// Normalizer reorders month-keyed series into calendar order.
//
// With Strict set (development), an unparsable label panics with a
// ContractViolation. Otherwise OnViolation (if set) is told about it and the
// label is placed after every valid month, keeping input order among such
// labels.
type Normalizer struct {
	Strict      bool
	OnViolation func(ContractViolation)
}

// SortChronologically returns a copy of s ordered ascending by month.
func (n Normalizer) SortChronologically(s Series) Series {
	type keyed struct {
		g     GroupCount
		at    time.Time
		valid bool
	}

	rows := make([]keyed, 0, len(s))
	for _, g := range s {
		at, err := MonthKey(g.Label)
		if err != nil {
			if g.Label != InvalidDateLabel {
				v := ContractViolation{Label: g.Label, Err: err}
				if n.Strict {
					panic(v)
				}
				if n.OnViolation != nil {
					n.OnViolation(v)
				}
			}
			rows = append(rows, keyed{g: g})
			continue
		}
		rows = append(rows, keyed{g: g, at: at, valid: true})
	}

	slices.SortStableFunc(rows, func(a, b keyed) int {
		switch {
		case a.valid && b.valid:
			return a.at.Compare(b.at)
		case a.valid:
			return -1
		case b.valid:
			return 1
		default:
			return 0
		}
	})

	out := make(Series, len(rows))
	for i, r := range rows {
		out[i] = r.g
	}
	return out
}
