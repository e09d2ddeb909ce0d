package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/ghaggin/students/internal/config"
	"github.com/natefinch/atomic"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	errStoreIsDir = errors.New("session file is a directory")
)

type jsonRepo struct {
	path string
	log  *zap.Logger

	mu   sync.Mutex
	data map[string]string
}

type JSONParams struct {
	fx.In

	Config *config.Config
	Log    *zap.Logger
}

// NewJSON returns a Repository persisted as a JSON object at the configured
// storage path. Every write replaces the file atomically.
func NewJSON(p JSONParams) (Repository, error) {
	return OpenJSON(p.Config.Storage.Path, p.Log)
}

func OpenJSON(path string, log *zap.Logger) (Repository, error) {
	r := &jsonRepo{
		path: path,
		log:  log,
		data: map[string]string{},
	}

	err := r.readfile()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		// only log, data will be empty and will overwrite on the next write
		r.log.Warn("failed reading json repo data file", zap.String("path", path), zap.Error(err))
		r.data = map[string]string{}
	}

	return r, nil
}

func (r *jsonRepo) readfile() error {
	finfo, err := os.Stat(r.path)
	if err != nil {
		return err
	}

	if finfo.IsDir() {
		return errStoreIsDir
	}

	f, err := os.Open(r.path)
	if err != nil {
		return err
	}
	defer f.Close()

	return json.NewDecoder(f).Decode(&r.data)
}

func (r *jsonRepo) writefile() error {
	err := os.MkdirAll(filepath.Dir(r.path), 0o700)
	if err != nil {
		return err
	}

	b, err := json.MarshalIndent(r.data, "", "  ")
	if err != nil {
		return err
	}

	err = atomic.WriteFile(r.path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	return os.Chmod(r.path, 0o600)
}

func (r *jsonRepo) Get(_ context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (r *jsonRepo) Put(_ context.Context, entries map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.snapshot()
	for k, v := range entries {
		r.data[k] = v
	}
	if err := r.writefile(); err != nil {
		r.data = prev
		return err
	}
	return nil
}

func (r *jsonRepo) Delete(_ context.Context, keys ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.snapshot()
	for _, k := range keys {
		delete(r.data, k)
	}
	if err := r.writefile(); err != nil {
		r.data = prev
		return err
	}
	return nil
}

func (r *jsonRepo) snapshot() map[string]string {
	m := make(map[string]string, len(r.data))
	for k, v := range r.data {
		m[k] = v
	}
	return m
}
