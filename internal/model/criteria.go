package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatusAll is the status filter value that accepts every order status.
const StatusAll = "all"

// Criteria selects the orders that go into a report. All bounds are inclusive.
type Criteria struct {
	StartDate time.Time
	EndDate   time.Time
	MinCost   decimal.Decimal
	MaxCost   decimal.Decimal
	Status    string // lowercase status token or StatusAll
}
