// Package session persists the auth token and the user profile between
// invocations.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/ams-studio/ams/pkg/models"
)

// Keys under which the session is stored.
const (
	TokenKey   = "authToken"
	ProfileKey = "userData"
)

// KV is a string key-value store. Get returns ok=false for a missing key.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Store reads and writes the two session keys on top of a KV.
type Store struct {
	kv KV
}

// New returns a Store backed by kv.
func New(kv KV) *Store {
	return &Store{kv: kv}
}

// Token returns the stored token verbatim, "" when absent.
func (s *Store) Token(ctx context.Context) (string, error) {
	v, ok, err := s.kv.Get(ctx, TokenKey)
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	if !ok {
		return "", nil
	}
	return v, nil
}

// SetToken stores token exactly as it will be sent in Authorization.
func (s *Store) SetToken(ctx context.Context, token string) error {
	if err := s.kv.Set(ctx, TokenKey, token); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

// Profile returns the stored profile. ok is false when none is stored or the
// stored value is not valid JSON.
func (s *Store) Profile(ctx context.Context) (models.Profile, bool, error) {
	v, ok, err := s.kv.Get(ctx, ProfileKey)
	if err != nil {
		return models.Profile{}, false, fmt.Errorf("read profile: %w", err)
	}
	if !ok || strings.TrimSpace(v) == "" {
		return models.Profile{}, false, nil
	}
	var p models.Profile
	if err := json.Unmarshal([]byte(v), &p); err != nil {
		return models.Profile{}, false, nil
	}
	return p, true, nil
}

// SetProfile replaces the stored profile.
func (s *Store) SetProfile(ctx context.Context, p models.Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := s.kv.Set(ctx, ProfileKey, string(data)); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	return nil
}

// Clear removes both keys. It attempts both deletes even if the first fails.
func (s *Store) Clear(ctx context.Context) error {
	errToken := s.kv.Delete(ctx, TokenKey)
	errProfile := s.kv.Delete(ctx, ProfileKey)
	if errToken != nil {
		return fmt.Errorf("clear token: %w", errToken)
	}
	if errProfile != nil {
		return fmt.Errorf("clear profile: %w", errProfile)
	}
	return nil
}

// Memory is an in-process KV, used by tests and the "memory" store driver.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
