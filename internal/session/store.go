// Package session keeps the client's credential and identity in memory,
// mirrored to a durable repository.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ghaggin/students/internal/model"
	"github.com/ghaggin/students/internal/repository"
	"go.uber.org/zap"
)

// Durable storage keys. Both are written together and removed together.
const (
	TokenKey    = "authToken"
	IdentityKey = "currentUser"
)

type Store struct {
	repo repository.Repository
	log  *zap.Logger

	current model.Session
}

func NewStore(repo repository.Repository, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		repo: repo,
		log:  log,
	}
}

// Load replaces the in-memory session with the persisted one. A missing,
// partial or unreadable entry leaves the session empty and is not an error.
// Only storage failures are returned.
func (s *Store) Load(ctx context.Context) error {
	s.current = model.Session{}

	token, err := s.get(ctx, TokenKey)
	if err != nil {
		return err
	}
	rawIdentity, err := s.get(ctx, IdentityKey)
	if err != nil {
		return err
	}

	if token == "" || rawIdentity == "" {
		if token != "" || rawIdentity != "" {
			s.log.Debug("ignoring partial persisted session")
		}
		return nil
	}

	var identity model.Identity
	if err := json.Unmarshal([]byte(rawIdentity), &identity); err != nil {
		s.log.Warn("ignoring unreadable persisted identity", zap.Error(err))
		return nil
	}
	if identity.Username == "" {
		return nil
	}

	s.current = model.Session{Token: token, Identity: &identity}
	return nil
}

func (s *Store) get(ctx context.Context, key string) (string, error) {
	v, err := s.repo.Get(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load session %s: %w", key, err)
	}
	return v, nil
}

// Save persists token and identity in one write, then updates memory.
func (s *Store) Save(ctx context.Context, token string, identity model.Identity) error {
	if token == "" || identity.Username == "" {
		return errors.New("save session: token and username are required")
	}

	b, err := json.Marshal(identity)
	if err != nil {
		return err
	}

	err = s.repo.Put(ctx, map[string]string{
		TokenKey:    token,
		IdentityKey: string(b),
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	s.current = model.Session{Token: token, Identity: &identity}
	return nil
}

// Clear removes both entries. The in-memory session is emptied even when
// storage fails.
func (s *Store) Clear(ctx context.Context) error {
	s.current = model.Session{}

	err := s.repo.Delete(ctx, TokenKey, IdentityKey)
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *Store) Current() model.Session {
	cur := s.current
	if cur.Identity != nil {
		id := *cur.Identity
		cur.Identity = &id
	}
	return cur
}
