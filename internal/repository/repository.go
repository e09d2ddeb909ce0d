// Package repository holds the client's durable key/value storage.
package repository

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("not found")
)

// Repository is string-keyed durable storage. Put writes all entries in a
// single step and Delete removes all keys in a single step.
type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, entries map[string]string) error
	Delete(ctx context.Context, keys ...string) error
}
