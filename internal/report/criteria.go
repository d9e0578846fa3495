package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"orderreport/internal/model"
)

// criteriaLayouts are tried in order. Fractional seconds are accepted by
// time.Parse after any layout ending in seconds.
var criteriaLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
	"02.01.06 15:04:05",
	"02.01.06",
	"02.01.2006",
}

// ParseDateBound parses a date or date-time given by an operator, either in
// ISO form or in the dd.mm.yy form of the report itself.
func ParseDateBound(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range criteriaLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognized date %q", ErrInvalidCriteria, value)
}

// ParseCriteria builds filter criteria from operator input. The status may be
// a token, a display label or "all" in any letter case.
func ParseCriteria(start, end string, minCost, maxCost decimal.Decimal, status string) (model.Criteria, error) {
	startDate, err := ParseDateBound(start)
	if err != nil {
		return model.Criteria{}, fmt.Errorf("start date: %w", err)
	}
	endDate, err := ParseDateBound(end)
	if err != nil {
		return model.Criteria{}, fmt.Errorf("end date: %w", err)
	}
	if endDate.Before(startDate) {
		return model.Criteria{}, fmt.Errorf("%w: end date %s is before start date %s",
			ErrInvalidCriteria, endDate.Format(time.DateTime), startDate.Format(time.DateTime))
	}
	if maxCost.LessThan(minCost) {
		return model.Criteria{}, fmt.Errorf("%w: max cost %s is less than min cost %s", ErrInvalidCriteria, maxCost, minCost)
	}

	status = strings.ToLower(strings.TrimSpace(status))
	if status == "" {
		return model.Criteria{}, fmt.Errorf("%w: empty status", ErrInvalidCriteria)
	}
	if token, ok := StatusToken(status); ok {
		status = token
	}

	return model.Criteria{
		StartDate: startDate,
		EndDate:   endDate,
		MinCost:   minCost,
		MaxCost:   maxCost,
		Status:    status,
	}, nil
}
