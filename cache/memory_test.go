package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestMemory_SetGet(t *testing.T) {
	c := NewMemory("test", 10)

	c.Set("npm|left-pad", []byte(`{"versions":{}}`), time.Minute)

	got, ok := c.Get("npm|left-pad")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if string(got) != `{"versions":{}}` {
		t.Errorf("unexpected value: %s", got)
	}
}

func TestMemory_Miss(t *testing.T) {
	c := NewMemory("test", 10)

	if _, ok := c.Get("absent"); ok {
		t.Fatal("expected cache miss")
	}
}

func TestMemory_Expiry(t *testing.T) {
	c := NewMemory("test", 10)

	c.Set("k", []byte("v"), -time.Second)

	if _, ok := c.Get("k"); ok {
		t.Fatal("expected expired entry to miss")
	}
	if c.Len() != 0 {
		t.Errorf("expected expired entry evicted on read, len = %d", c.Len())
	}
}

func TestMemory_LRUEviction(t *testing.T) {
	c := NewMemory("test", 3)

	for i := 0; i < 4; i++ {
		c.Set(fmt.Sprintf("k%d", i), []byte("v"), time.Minute)
	}

	if c.Len() != 3 {
		t.Fatalf("expected 3 entries after eviction, got %d", c.Len())
	}
	if _, ok := c.Get("k0"); ok {
		t.Error("expected oldest entry evicted")
	}
	if _, ok := c.Get("k3"); !ok {
		t.Error("expected newest entry present")
	}
}

func TestMemory_CopyOnGet(t *testing.T) {
	c := NewMemory("test", 10)
	c.Set("k", []byte("abc"), time.Minute)

	got, _ := c.Get("k")
	got[0] = 'x'

	again, _ := c.Get("k")
	if string(again) != "abc" {
		t.Errorf("cached value mutated through returned slice: %s", again)
	}
}
