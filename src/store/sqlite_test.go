package store

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "kv_test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteGetAbsentKey(t *testing.T) {
	s := newTestSQLiteStore(t)
	_, ok, err := s.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Error("absent key must report ok=false")
	}
}

func TestSQLiteSetGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)

	if err := s.Set(ctx, KeyTrades, []byte(`[{"trade_id":"T1"}]`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	value, ok, err := s.Get(ctx, KeyTrades)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok || string(value) != `[{"trade_id":"T1"}]` {
		t.Errorf("round-trip mismatch: ok=%v value=%s", ok, value)
	}
}

func TestSQLiteSetReplacesValue(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLiteStore(t)

	if err := s.Set(ctx, KeyMarketPrices, []byte("first")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(ctx, KeyMarketPrices, []byte("second")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	value, _, err := s.Get(ctx, KeyMarketPrices)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(value) != "second" {
		t.Errorf("Set must replace wholesale, got %s", value)
	}
}
