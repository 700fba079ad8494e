package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rustyeddy/slotbook/book"
	"github.com/rustyeddy/slotbook/sizer"
)

// Memory implements Store with an in-process map. Used for tests and
// ephemeral sessions; nothing survives the process.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (s *Memory) put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = data
	return nil
}

func (s *Memory) get(key string, v any) error {
	s.mu.RLock()
	data, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	return json.Unmarshal(data, v)
}

func (s *Memory) SaveBook(_ context.Context, key string, b *book.Book) error {
	return s.put(key, b)
}

func (s *Memory) LoadBook(_ context.Context, key string) (*book.Book, error) {
	var b book.Book
	if err := s.get(key, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Memory) SaveSizer(_ context.Context, in sizer.Inputs) error {
	return s.put(sizerKey, in)
}

func (s *Memory) LoadSizer(_ context.Context) (sizer.Inputs, error) {
	var in sizer.Inputs
	if err := s.get(sizerKey, &in); err != nil {
		return sizer.Inputs{}, err
	}
	return in, nil
}

func (s *Memory) Close() error { return nil }
