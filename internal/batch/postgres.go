package batch

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"orderreport/internal/model"
)

// PostgresStore keeps batches as JSONB rows of the order_batches table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, key string, orders []model.Order) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if orders == nil {
		orders = []model.Order{}
	}

	data, err := json.Marshal(orders)
	if err != nil {
		return fmt.Errorf("encode batch: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO order_batches (key, orders, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET orders = EXCLUDED.orders, created_at = EXCLUDED.created_at
	`, key, string(data), time.Now())
	if err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, key string) ([]model.Order, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT orders FROM order_batches WHERE key = $1`, key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBatchNotFound
		}
		return nil, fmt.Errorf("get batch: %w", err)
	}

	var orders []model.Order
	if err := json.Unmarshal(data, &orders); err != nil {
		return nil, fmt.Errorf("decode batch: %w", err)
	}
	return orders, nil
}

func (s *PostgresStore) Purge(ctx context.Context, olderThan time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM order_batches WHERE created_at < $1`, olderThan)
	if err != nil {
		return 0, fmt.Errorf("delete batches: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}
