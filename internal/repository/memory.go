package repository

import (
	"context"
	"sync"
)

type memoryRepo struct {
	mu   sync.Mutex
	data map[string]string
}

func NewMemory() Repository {
	return &memoryRepo{data: map[string]string{}}
}

func (r *memoryRepo) Get(_ context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (r *memoryRepo) Put(_ context.Context, entries map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for k, v := range entries {
		r.data[k] = v
	}
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, keys ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, k := range keys {
		delete(r.data, k)
	}
	return nil
}
