package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const upstreamOrders = `[
	{
		"created_at": "2024-03-05T14:22:01.123456",
		"total_cost": 500,
		"status": "succeeded",
		"order_number": "A1",
		"user_full_name": "Ivan",
		"full_address": "Main St",
		"code": {"code": "PROMO10"},
		"user": {"id": 1},
		"person": {"phone": "+7"},
		"comment": "ring twice",
		"address": {"street": "Main St"}
	},
	{
		"created_at": "2024-03-20T09:00:00.5",
		"total_cost": 50,
		"status": "accepted",
		"order_number": "A2",
		"user_full_name": "Olga",
		"full_address": "Second St",
		"code": null
	},
	{
		"created_at": "2024-04-02T10:00:00",
		"total_cost": 800,
		"status": "delivered",
		"order_number": "A3",
		"user_full_name": "Petr",
		"full_address": "Third St",
		"code": "SPRING"
	}
]`

func upstream(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOrderSource_Fetch(t *testing.T) {
	srv := upstream(t, http.StatusOK, upstreamOrders)

	orders, err := NewOrderSource(srv.URL, time.Second).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, "A1", orders[0].OrderNumber)
	assert.Equal(t, "PROMO10", orders[0].Code.Value())
	assert.False(t, orders[1].Code.Present())
	assert.Equal(t, "SPRING", orders[2].Code.Value())
	assert.JSONEq(t, `{"id": 1}`, string(orders[0].User))
}

func TestOrderSource_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: "oops"},
		{name: "not found", status: http.StatusNotFound, body: ""},
		{name: "not json", status: http.StatusOK, body: "<html>"},
		{name: "not a list", status: http.StatusOK, body: `{"detail": "x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := upstream(t, tt.status, tt.body)

			_, err := NewOrderSource(srv.URL, time.Second).Fetch(context.Background())
			assert.ErrorIs(t, err, ErrRemoteFetch)
		})
	}
}

func TestOrderSource_Unreachable(t *testing.T) {
	srv := upstream(t, http.StatusOK, "[]")
	srv.Close()

	_, err := NewOrderSource(srv.URL, time.Second).Fetch(context.Background())
	assert.ErrorIs(t, err, ErrRemoteFetch)
}
