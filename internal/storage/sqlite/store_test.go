package sqlite

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/tjfontaine/searchbot/internal/storage"
)

func TestSQLiteStore_SaveAndGet(t *testing.T) {
	// Use in-memory SQLite with shared cache for testing
	store, err := New("file:memdb1?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer store.Close()

	ex := &storage.Exchange{
		ID:           "ex-1",
		Source:       storage.SourceHTTP,
		RequestID:    "req-1",
		Input:        "What is new in Go?",
		SearchOutput: "Go 1.25 shipped.",
		Output:       "Go 1.25 shipped. (2026-10-19 12:00:00)",
		InputTokens:  6,
		OutputTokens: 20,
		Duration:     1500 * time.Millisecond,
	}

	if err := store.SaveExchange(context.Background(), ex); err != nil {
		t.Fatalf("SaveExchange() error = %v", err)
	}
	if ex.CreatedAt.IsZero() {
		t.Error("SaveExchange() should set CreatedAt")
	}

	got, err := store.GetExchange(context.Background(), "ex-1")
	if err != nil {
		t.Fatalf("GetExchange() error = %v", err)
	}

	if got.Source != storage.SourceHTTP {
		t.Errorf("Source = %v, want %v", got.Source, storage.SourceHTTP)
	}
	if got.RequestID != ex.RequestID {
		t.Errorf("RequestID = %v, want %v", got.RequestID, ex.RequestID)
	}
	if got.SearchOutput != ex.SearchOutput || got.Output != ex.Output {
		t.Errorf("outputs = %q / %q", got.SearchOutput, got.Output)
	}
	if got.Duration != ex.Duration {
		t.Errorf("Duration = %v, want %v", got.Duration, ex.Duration)
	}
	if got.InputTokens != 6 || got.OutputTokens != 20 {
		t.Errorf("tokens = %d/%d", got.InputTokens, got.OutputTokens)
	}
}

func TestSQLiteStore_GetNotFound(t *testing.T) {
	store, err := New("file:memdb2?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer store.Close()

	_, err = store.GetExchange(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetExchange() error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStore_ListExchanges(t *testing.T) {
	store, err := New("file:memdb3?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer store.Close()

	base := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		ex := &storage.Exchange{
			ID:        fmt.Sprintf("ex-%d", i),
			Source:    storage.SourceCLI,
			Input:     fmt.Sprintf("question %d", i),
			Error:     "",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.SaveExchange(context.Background(), ex); err != nil {
			t.Fatalf("SaveExchange() error = %v", err)
		}
	}

	tests := []struct {
		name    string
		limit   int
		offset  int
		wantIDs []string
	}{
		{name: "newest first", limit: 2, offset: 0, wantIDs: []string{"ex-4", "ex-3"}},
		{name: "offset", limit: 2, offset: 3, wantIDs: []string{"ex-1", "ex-0"}},
		{name: "default limit", limit: 0, offset: 0, wantIDs: []string{"ex-4", "ex-3", "ex-2", "ex-1", "ex-0"}},
		{name: "past end", limit: 10, offset: 10, wantIDs: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.ListExchanges(context.Background(), tt.limit, tt.offset)
			if err != nil {
				t.Fatalf("ListExchanges() error = %v", err)
			}
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Errorf("[%d] ID = %s, want %s", i, got[i].ID, id)
				}
			}
		})
	}
}
