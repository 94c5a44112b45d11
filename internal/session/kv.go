package session

import (
	"context"
	"errors"
	"sync"

	"github.com/templui/securefiles/internal/repository"
)

var ErrKeyNotFound = errors.New("session key not found")

// KV is the durable key/value storage a Store persists into.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	// SetAll writes every value or none.
	SetAll(ctx context.Context, values map[string]string) error
	// Delete removes keys; missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
}

// SQLKV stores entries in the session_entries table, scoped to a profile.
type SQLKV struct {
	repo    repository.EntryRepository
	profile string
}

func NewSQLKV(repo repository.EntryRepository, profile string) *SQLKV {
	return &SQLKV{repo: repo, profile: profile}
}

func (k *SQLKV) Get(ctx context.Context, key string) (string, error) {
	value, err := k.repo.Get(ctx, k.profile, key)
	if errors.Is(err, repository.ErrEntryNotFound) {
		return "", ErrKeyNotFound
	}
	return value, err
}

func (k *SQLKV) SetAll(ctx context.Context, values map[string]string) error {
	return k.repo.Put(ctx, k.profile, values)
}

func (k *SQLKV) Delete(ctx context.Context, keys ...string) error {
	return k.repo.Delete(ctx, k.profile, keys...)
}

// MemoryKV keeps entries for the lifetime of the process.
type MemoryKV struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string]string)}
}

func (k *MemoryKV) Get(_ context.Context, key string) (string, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	value, ok := k.values[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return value, nil
}

func (k *MemoryKV) SetAll(_ context.Context, values map[string]string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	for key, value := range values {
		k.values[key] = value
	}
	return nil
}

func (k *MemoryKV) Delete(_ context.Context, keys ...string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	for _, key := range keys {
		delete(k.values, key)
	}
	return nil
}
