package report

import (
	"fmt"
	"strings"
	"time"

	"orderreport/internal/model"
)

const sourceLayout = "2006-01-02 15:04:05"

// ParseSourceTimestamp parses an upstream created_at value. The date and time
// must be separated by a single T; anything after a dot in the time part is
// dropped.
func ParseSourceTimestamp(value string) (time.Time, error) {
	parts := strings.Split(value, "T")
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, value)
	}
	clock, _, _ := strings.Cut(parts[1], ".")

	t, err := time.Parse(sourceLayout, parts[0]+" "+clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, value)
	}
	return t, nil
}

// Normalize rewrites created_at into the profile layout and drops the fields
// the report never uses. A single bad timestamp fails the whole batch.
func Normalize(p Profile, raw []model.RawOrder) ([]model.Order, error) {
	orders := make([]model.Order, 0, len(raw))
	for i, r := range raw {
		created, err := ParseSourceTimestamp(r.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("order #%d (%s): %w", i, r.OrderNumber, err)
		}

		orders = append(orders, model.Order{
			CreatedAt:    created.Format(p.DateLayout),
			TotalCost:    r.TotalCost,
			Status:       r.Status,
			OrderNumber:  r.OrderNumber,
			FullAddress:  r.FullAddress,
			UserFullName: r.UserFullName,
			Code:         r.Code,
		})
	}
	return orders, nil
}
