package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// RawOrder is an order record as returned by the upstream order list.
type RawOrder struct {
	CreatedAt    string          `json:"created_at"` // ISO 8601, e.g. 2024-03-05T14:22:01.123456
	TotalCost    decimal.Decimal `json:"total_cost"`
	Status       string          `json:"status"`
	OrderNumber  string          `json:"order_number"`
	FullAddress  string          `json:"full_address"`
	UserFullName string          `json:"user_full_name"`
	Code         PromoCode       `json:"code"`

	User    json.RawMessage `json:"user,omitempty"`
	Person  json.RawMessage `json:"person,omitempty"`
	Comment json.RawMessage `json:"comment,omitempty"`
	Address json.RawMessage `json:"address,omitempty"`
}

// Order is a normalized order: CreatedAt is in the display layout of the
// profile that produced it and the opaque upstream fields are gone.
type Order struct {
	CreatedAt    string          `json:"created_at"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	Status       string          `json:"status"`
	OrderNumber  string          `json:"order_number"`
	FullAddress  string          `json:"full_address"`
	UserFullName string          `json:"user_full_name"`
	Code         PromoCode       `json:"code"`
}

// MarshalJSON writes TotalCost as a JSON number rather than the quoted
// string decimal.Decimal produces.
func (o Order) MarshalJSON() ([]byte, error) {
	type order Order
	return json.Marshal(struct {
		order
		TotalCost json.Number `json:"total_cost"`
	}{
		order:     order(o),
		TotalCost: json.Number(o.TotalCost.String()),
	})
}

// PromoCode holds the order promo code. Upstream sends it either as a plain
// string or as {"code": "..."}; both shapes are resolved when decoding.
type PromoCode struct {
	value   string
	present bool
}

func NewPromoCode(value string) PromoCode {
	return PromoCode{value: value, present: true}
}

func (p PromoCode) Value() string { return p.value }

func (p PromoCode) Present() bool { return p.present }

func (p *PromoCode) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = PromoCode{}
		return nil
	}

	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		*p = NewPromoCode(plain)
		return nil
	}

	var nested struct {
		Code *string `json:"code"`
	}
	if err := json.Unmarshal(data, &nested); err != nil {
		return fmt.Errorf("decode promo code: %w", err)
	}
	if nested.Code == nil {
		*p = PromoCode{}
		return nil
	}
	*p = NewPromoCode(*nested.Code)
	return nil
}

func (p PromoCode) MarshalJSON() ([]byte, error) {
	if !p.present {
		return []byte("null"), nil
	}
	return json.Marshal(p.value)
}
