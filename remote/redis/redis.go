// Package redis fetches remote properties from a Redis hash.
//
// Every field of the hash is one property: HSET app:config server.port 8080.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/yacchi/kasane/format"
	"github.com/yacchi/kasane/remote"
)

// Config holds the connection settings used by Open.
type Config struct {
	// Addr is the host:port of the Redis server.
	Addr string `kasane:"addr"`

	// Password is optional.
	Password string `kasane:"password"`

	// DB is the database number.
	DB int `kasane:"db"`

	// Key is the hash holding the properties.
	Key string `kasane:"key"`
}

// DefaultConfig returns a configuration for a local server.
func DefaultConfig() Config {
	return Config{
		Addr: "localhost:6379",
		Key:  "kasane:properties",
	}
}

// Fetcher reads all fields of one hash.
type Fetcher struct {
	client redis.Cmdable
	key    string
	closer func() error
	logger *zap.Logger
}

// Ensure Fetcher implements remote.Fetcher.
var _ remote.Fetcher = (*Fetcher)(nil)

// New creates a fetcher reading key through client. The caller keeps
// ownership of client.
func New(client redis.Cmdable, key string) *Fetcher {
	return &Fetcher{client: client, key: key, logger: zap.NewNop()}
}

// Open connects to the server described by cfg and verifies the connection
// with PING. Close releases the connection.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (*Fetcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	logger.Info("redis connected",
		zap.String("component", "remote-redis"),
		zap.String("addr", cfg.Addr),
		zap.Int("db", cfg.DB),
		zap.String("key", cfg.Key),
	)

	return &Fetcher{
		client: client,
		key:    cfg.Key,
		closer: client.Close,
		logger: logger.With(zap.String("component", "remote-redis")),
	}, nil
}

// Key returns the hash key.
func (f *Fetcher) Key() string {
	return f.key
}

// Fetch implements remote.Fetcher. A missing hash yields an empty bag.
func (f *Fetcher) Fetch(ctx context.Context) (format.Bag, error) {
	fields, err := f.client.HGetAll(ctx, f.key).Result()
	if err != nil {
		return nil, fmt.Errorf("HGETALL %s: %w", f.key, err)
	}

	bag := make(format.Bag, len(fields))
	for k, v := range fields {
		bag[k] = v
	}
	return bag, nil
}

// Close closes the connection opened by Open. It is a no-op for fetchers
// created with New.
func (f *Fetcher) Close() error {
	if f.closer == nil {
		return nil
	}
	return f.closer()
}
