package store

import (
	"context"
	"sync"

	"cybersafe/api/internal/prefs"
)

// MemoryKV is a process-local prefs.Store.
type MemoryKV struct {
	m sync.Map
}

func NewMemoryKV() *MemoryKV { return &MemoryKV{} }

func memKey(scope, key string) string { return scope + "\x00" + key }

func (s *MemoryKV) Get(_ context.Context, scope, key string) (string, error) {
	v, ok := s.m.Load(memKey(scope, key))
	if !ok {
		return "", prefs.ErrNotFound
	}
	return v.(string), nil
}

func (s *MemoryKV) Set(_ context.Context, scope, key, value string) error {
	s.m.Store(memKey(scope, key), value)
	return nil
}
