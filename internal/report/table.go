package report

import (
	"github.com/shopspring/decimal"

	"orderreport/internal/model"
)

// Column is one report column: the order field it comes from and its header.
type Column struct {
	Field  string
	Header string
}

var (
	baseColumns = []Column{
		{Field: "user_full_name", Header: "Имя"},
		{Field: "full_address", Header: "Адрес"},
		{Field: "created_at", Header: "Дата"},
		{Field: "order_number", Header: "Номер заказа"},
		{Field: "status", Header: "Статус"},
		{Field: "total_cost", Header: "Сумма"},
	}
	promoColumn = Column{Field: "code", Header: "Промокод"}
)

var cellValues = map[string]func(Row) any{
	"user_full_name": func(r Row) any { return r.Name },
	"full_address":   func(r Row) any { return r.Address },
	"created_at":     func(r Row) any { return r.Date },
	"order_number":   func(r Row) any { return r.OrderNumber },
	"status":         func(r Row) any { return r.Status },
	"total_cost":     func(r Row) any { return r.Total.InexactFloat64() },
	"code":           func(r Row) any { return r.PromoCode },
}

// Columns returns the output columns of a profile.
func Columns(p Profile) []Column {
	cols := make([]Column, 0, len(baseColumns)+1)
	cols = append(cols, baseColumns...)
	if p.PromoCode {
		cols = append(cols, promoColumn)
	}
	return cols
}

// Row is one exported order.
type Row struct {
	Name        string
	Address     string
	Date        string
	OrderNumber string
	Status      string
	Total       decimal.Decimal
	PromoCode   string
}

type Table struct {
	Columns []Column
	Rows    []Row
}

// Transform projects filtered orders onto the profile's columns, keeping
// their order.
func Transform(p Profile, orders []model.Order) Table {
	t := Table{
		Columns: Columns(p),
		Rows:    make([]Row, 0, len(orders)),
	}
	for _, o := range orders {
		t.Rows = append(t.Rows, Row{
			Name:        o.UserFullName,
			Address:     o.FullAddress,
			Date:        o.CreatedAt,
			OrderNumber: o.OrderNumber,
			Status:      o.Status,
			Total:       o.TotalCost,
			PromoCode:   o.Code.Value(),
		})
	}
	return t
}

func (t Table) Headers() []string {
	headers := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		headers[i] = c.Header
	}
	return headers
}

// Values returns the cells of r in column order.
func (t Table) Values(r Row) []any {
	values := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		values[i] = cellValues[c.Field](r)
	}
	return values
}
