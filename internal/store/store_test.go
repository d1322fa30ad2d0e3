package store_test

import (
	"sync"
	"testing"
	"time"

	"github.com/mickamy/redikv/internal/store"
)

func TestSetGet(t *testing.T) {
	s := store.New()
	s.Set("foo", store.Entry{Value: []byte("bar")})

	entry, ok := s.Get("foo", time.Now())
	if !ok {
		t.Fatalf("expected key to be present")
	}
	if string(entry.Value) != "bar" {
		t.Fatalf("got %q, want bar", entry.Value)
	}
}

func TestGetMissing(t *testing.T) {
	s := store.New()
	if _, ok := s.Get("nope", time.Now()); ok {
		t.Fatalf("expected key to be absent")
	}
}

func TestExpirationBoundary(t *testing.T) {
	s := store.New()
	now := time.Now()
	s.Set("k", store.Entry{Value: []byte("v"), Expiration: now})

	if _, ok := s.Get("k", now); ok {
		t.Fatalf("entry expiring exactly now must be treated as expired")
	}

	s.Set("k2", store.Entry{Value: []byte("v"), Expiration: now.Add(100 * time.Millisecond)})
	if _, ok := s.Get("k2", now.Add(50*time.Millisecond)); !ok {
		t.Fatalf("entry should still be live before its expiration")
	}
	if _, ok := s.Get("k2", now.Add(150*time.Millisecond)); ok {
		t.Fatalf("entry should be expired after its expiration")
	}
}

func TestSetOverwritesExpiration(t *testing.T) {
	s := store.New()
	now := time.Now()
	s.Set("k", store.Entry{Value: []byte("v1"), Expiration: now.Add(-time.Second)})
	s.Set("k", store.Entry{Value: []byte("v2")})

	entry, ok := s.Get("k", now)
	if !ok {
		t.Fatalf("overwritten entry should be live")
	}
	if string(entry.Value) != "v2" {
		t.Fatalf("got %q, want v2", entry.Value)
	}
}

func TestLiveKeysExcludesExpired(t *testing.T) {
	s := store.New()
	now := time.Now()
	s.Set("a", store.Entry{Value: []byte("1")})
	s.Set("b", store.Entry{Value: []byte("2"), Expiration: now.Add(-time.Second)})

	keys := s.LiveKeys(now)
	if len(keys) != 1 || keys[0] != "a" {
		t.Fatalf("got %v, want [a]", keys)
	}
}

func TestConcurrentAccessIsSerialized(t *testing.T) {
	s := store.New()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Set("k", store.Entry{Value: []byte{byte(i)}, Expiration: time.Now().Add(time.Hour)})
		}(i)
	}
	wg.Wait()

	entry, ok := s.Get("k", time.Now())
	if !ok {
		t.Fatalf("expected key to be present")
	}
	if !entry.HasExpiration() {
		t.Fatalf("value and expiration from the same write must travel together")
	}
}
