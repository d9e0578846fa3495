package report

import (
	"fmt"
	"time"

	"orderreport/internal/model"
)

// Filter returns the orders matching c, in input order. Matching orders get
// their status replaced by its display label in place; the rest are left
// untouched. Every created_at is parsed before anything is modified, so a
// malformed value leaves the input unchanged.
func Filter(p Profile, orders []model.Order, c model.Criteria) ([]model.Order, error) {
	dates := make([]time.Time, len(orders))
	for i, o := range orders {
		t, err := p.ParseDate(o.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("order %s: %w", o.OrderNumber, err)
		}
		dates[i] = t
	}

	start, end := c.StartDate, c.EndDate
	if p.DateOnly {
		start, end = truncateDay(start), truncateDay(end)
	}

	accepted := make([]model.Order, 0, len(orders))
	for i := range orders {
		o := &orders[i]
		if dates[i].Before(start) || dates[i].After(end) {
			continue
		}
		if o.TotalCost.LessThan(c.MinCost) || o.TotalCost.GreaterThan(c.MaxCost) {
			continue
		}
		if !MatchStatus(o.Status, c.Status) {
			continue
		}

		o.Status = StatusLabel(o.Status)
		accepted = append(accepted, *o)
	}
	return accepted, nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
