// Package memory implements an in-process storage.ExchangeStore.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tjfontaine/searchbot/internal/storage"
)

// Store is an in-memory implementation of ExchangeStore
type Store struct {
	mu        sync.RWMutex
	exchanges map[string]*storage.Exchange
}

var _ storage.ExchangeStore = (*Store)(nil)

// New creates a new in-memory store
func New() *Store {
	return &Store{
		exchanges: make(map[string]*storage.Exchange),
	}
}

func (s *Store) SaveExchange(ctx context.Context, ex *storage.Exchange) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.exchanges[ex.ID]; exists {
		return fmt.Errorf("exchange %s already exists", ex.ID)
	}

	if ex.CreatedAt.IsZero() {
		ex.CreatedAt = time.Now()
	}

	stored := *ex
	s.exchanges[ex.ID] = &stored
	return nil
}

func (s *Store) GetExchange(ctx context.Context, id string) (*storage.Exchange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ex, exists := s.exchanges[id]
	if !exists {
		return nil, fmt.Errorf("exchange %s: %w", id, storage.ErrNotFound)
	}

	out := *ex
	return &out, nil
}

func (s *Store) ListExchanges(ctx context.Context, limit, offset int) ([]*storage.Exchange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*storage.Exchange, 0, len(s.exchanges))
	for _, ex := range s.exchanges {
		out := *ex
		result = append(result, &out)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if limit <= 0 {
		limit = storage.DefaultListLimit
	}
	if offset < 0 {
		offset = 0
	}

	// Simple pagination
	if offset >= len(result) {
		return []*storage.Exchange{}, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}

	return result[offset:end], nil
}

func (s *Store) Close() error {
	return nil
}
