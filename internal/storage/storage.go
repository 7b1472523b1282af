// internal/storage/storage.go
package storage

import (
	"context"
	"errors"
	"fmt"
)

var ErrKeyNotFound = errors.New("storage: key not found")

type Entry struct {
	Key   string
	Value []byte
}

type OpKind int

const (
	OpSet OpKind = iota
	OpDelete
)

// Op is a single write inside an Apply batch.
type Op struct {
	Kind  OpKind
	Key   string
	Value []byte
}

func SetOp(key string, value []byte) Op { return Op{Kind: OpSet, Key: key, Value: value} }

func DeleteOp(key string) Op { return Op{Kind: OpDelete, Key: key} }

// Store maps string keys to JSON documents.
type Store interface {
	// Get returns ErrKeyNotFound when key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete is a no-op for absent keys.
	Delete(ctx context.Context, key string) error
	// ScanPrefix returns every entry whose key starts with prefix, ordered by key.
	ScanPrefix(ctx context.Context, prefix string) ([]Entry, error)
	// Apply runs all ops or none of them.
	Apply(ctx context.Context, ops []Op) error
	Close() error
}

type Config struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// Open returns the backend named by cfg.Driver. An empty driver means memory.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemory(), nil
	case "sqlite":
		return NewSQLite(ctx, cfg.DSN)
	case "postgres":
		return NewPostgres(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.Driver)
	}
}
