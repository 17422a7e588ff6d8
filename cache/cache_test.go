package cache

import (
	"testing"
	"time"
)

func TestInMemory_SetThenGet(t *testing.T) {
	c, err := NewInMemory(1000, 1<<20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Close()

	c.Set("current?q=Paris", []byte(`{"temp_c":12}`), time.Minute)
	c.Wait()

	got, ok := c.Get("current?q=Paris")
	if !ok {
		t.Fatalf("expected cached value")
	}
	if string(got) != `{"temp_c":12}` {
		t.Fatalf("unexpected value %q", got)
	}
}

func TestInMemory_ZeroTTLIsNotStored(t *testing.T) {
	c, err := NewInMemory(1000, 1<<20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Close()

	c.Set("k", []byte("v"), 0)
	c.Wait()

	if _, ok := c.Get("k"); ok {
		t.Fatalf("expected no value for zero ttl")
	}
}

func TestInMemory_MissingKey(t *testing.T) {
	c, err := NewInMemory(1000, 1<<20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Close()

	if _, ok := c.Get("nope"); ok {
		t.Fatalf("expected miss")
	}
}

func TestNewInMemory_InvalidConfig(t *testing.T) {
	if _, err := NewInMemory(0, 0); err == nil {
		t.Fatalf("expected error for zero counters")
	}
}
