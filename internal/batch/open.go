package batch

import (
	"context"
	"fmt"
	"time"

	"orderreport/internal/database"
)

const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

type Options struct {
	Driver        string
	Dir           string
	DatabaseURI   string
	RedisAddress  string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
}

// Open creates the store selected by opts.Driver. The returned func releases
// its connections.
func Open(ctx context.Context, opts Options) (Store, func(), error) {
	switch opts.Driver {
	case "", DriverFile:
		s, err := NewFileStore(opts.Dir)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil

	case DriverPostgres:
		db, err := database.NewDB(ctx, opts.DatabaseURI)
		if err != nil {
			return nil, nil, err
		}
		if err := database.InitSchema(ctx, db); err != nil {
			database.CloseDB(db)
			return nil, nil, err
		}
		return NewPostgresStore(db), func() { database.CloseDB(db) }, nil

	case DriverRedis:
		s, err := NewRedisStore(ctx, RedisOptions{
			Address:  opts.RedisAddress,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
			TTL:      opts.TTL,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown batch driver: %s", opts.Driver)
	}
}
