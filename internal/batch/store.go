// Package batch keeps normalized order batches between fetching and report
// generation, so one fetch can serve several reports.
package batch

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"

	"orderreport/internal/model"
)

var (
	ErrBatchNotFound = errors.New("batch not found")
	ErrInvalidKey    = errors.New("invalid batch key")
)

type Store interface {
	Save(ctx context.Context, key string, orders []model.Order) error
	Load(ctx context.Context, key string) ([]model.Order, error)
	// Purge removes batches saved before olderThan and reports how many went.
	Purge(ctx context.Context, olderThan time.Time) (int, error)
}

// NewKey returns a fresh key, unique per report request.
func NewKey() string {
	return uuid.NewString()
}

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

func validateKey(key string) error {
	if !keyPattern.MatchString(key) {
		return ErrInvalidKey
	}
	return nil
}
