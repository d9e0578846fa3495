package report

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderreport/internal/model"
)

func TestColumns(t *testing.T) {
	detailed := Table{Columns: Columns(Detailed)}
	assert.Equal(t, []string{"Имя", "Адрес", "Дата", "Номер заказа", "Статус", "Сумма", "Промокод"}, detailed.Headers())

	compact := Table{Columns: Columns(Compact)}
	assert.Equal(t, []string{"Имя", "Адрес", "Дата", "Номер заказа", "Статус", "Сумма"}, compact.Headers())
}

func TestTransform(t *testing.T) {
	orders := []model.Order{
		{
			UserFullName: "Ivan", FullAddress: "Main St", CreatedAt: "05.03.24 14:22:01",
			OrderNumber: "A1", Status: "Оплачен", TotalCost: decimal.RequireFromString("500.50"),
			Code: model.NewPromoCode("PROMO10"),
		},
		{
			UserFullName: "Olga", FullAddress: "Second St", CreatedAt: "06.03.24 09:00:00",
			OrderNumber: "A2", Status: "Принят", TotalCost: decimal.NewFromInt(120),
		},
	}

	table := Transform(Detailed, orders)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []any{"Ivan", "Main St", "05.03.24 14:22:01", "A1", "Оплачен", 500.5, "PROMO10"}, table.Values(table.Rows[0]))
	assert.Equal(t, []any{"Olga", "Second St", "06.03.24 09:00:00", "A2", "Принят", 120.0, ""}, table.Values(table.Rows[1]))

	compact := Transform(Compact, orders)
	assert.Len(t, compact.Values(compact.Rows[0]), 6)
}

func TestTransform_Empty(t *testing.T) {
	table := Transform(Detailed, nil)
	assert.Empty(t, table.Rows)
	assert.Len(t, table.Columns, 7)
}
