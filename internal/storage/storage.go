// Package storage persists serialized conversation logs. Each conversation
// occupies exactly one key whose value is overwritten wholesale.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/naomedical/translator/backend/internal/config"
)

var ErrNotFound = errors.New("key not found")

// Storage is a durable key/value store for serialized logs.
type Storage interface {
	// Load returns the value stored under key, or ErrNotFound.
	Load(ctx context.Context, key string) ([]byte, error)
	// Save replaces the value stored under key.
	Save(ctx context.Context, key string, data []byte) error
	Close() error
}

// Open builds the backend selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return NewMemoryStorage(), nil
	case config.DriverBolt:
		s, err := OpenBolt(cfg.BoltPath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverRedis:
		s, err := NewRedisStorage(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverPostgres:
		s, err := OpenPostgres(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
