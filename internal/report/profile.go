// Package report turns raw upstream orders into a spreadsheet report:
// normalization, filtering, column projection and XLSX serialization.
package report

import (
	"fmt"
	"strings"
	"time"

	"orderreport/internal/model"
)

// CompactFileName is the fixed output name of the compact profile.
const CompactFileName = "orders_report.xlsx"

// Profile pairs a normalization layout with the matching filter granularity
// and output column set. Orders normalized with one profile must be filtered
// with the same profile.
type Profile struct {
	Name       string
	DateLayout string
	DateOnly   bool // compare calendar dates, ignoring time of day
	PromoCode  bool // emit the promo code column
	Overwrite  bool // write to CompactFileName instead of a timestamped name
}

var (
	Detailed = Profile{
		Name:       "detailed",
		DateLayout: "02.01.06 15:04:05",
		PromoCode:  true,
	}
	Compact = Profile{
		Name:       "compact",
		DateLayout: "02.01.06",
		DateOnly:   true,
		Overwrite:  true,
	}
)

var profiles = []Profile{Detailed, Compact}

// ProfileByName resolves a profile name. The empty name selects Detailed.
func ProfileByName(name string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", Detailed.Name:
		return Detailed, nil
	case Compact.Name:
		return Compact, nil
	default:
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
}

// FileName returns the report file name for a generation started at now.
func (p Profile) FileName(now time.Time) string {
	if p.Overwrite {
		return CompactFileName
	}
	return "report_" + now.Format("02.01.06_15.04.05") + ".xlsx"
}

// ParseDate parses a normalized created_at value.
func (p Profile) ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(p.DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not in %s layout", ErrMalformedTimestamp, value, p.Name)
	}
	return t, nil
}

// CheckBatch verifies that stored orders were normalized with p. Dates in
// another profile's layout give ErrProfileMismatch, anything else
// ErrMalformedTimestamp.
func (p Profile) CheckBatch(orders []model.Order) error {
	for _, o := range orders {
		_, err := p.ParseDate(o.CreatedAt)
		if err == nil {
			continue
		}
		for _, other := range profiles {
			if other.Name == p.Name {
				continue
			}
			if _, otherErr := other.ParseDate(o.CreatedAt); otherErr == nil {
				return fmt.Errorf("%w: stored as %s, requested %s", ErrProfileMismatch, other.Name, p.Name)
			}
		}
		return err
	}
	return nil
}
