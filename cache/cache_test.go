package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/use-agent/crawlduel/models"
)

func TestKey_Deterministic(t *testing.T) {
	k1 := Key("https://example.com", []string{"lightweight", "ai"}, "")
	k2 := Key("https://example.com", []string{"lightweight", "ai"}, "")
	if k1 != k2 {
		t.Error("same inputs produced different keys")
	}
}

func TestKey_DistinguishesInputs(t *testing.T) {
	base := Key("https://example.com", nil, "")

	if Key("https://other.com", nil, "") == base {
		t.Error("different targets produced the same key")
	}
	if Key("https://example.com", []string{"ai"}, "") == base {
		t.Error("different strategy sets produced the same key")
	}
	if Key("https://example.com", nil, "article") == base {
		t.Error("different selectors produced the same key")
	}
}

func TestCache_SetGet(t *testing.T) {
	c := New(10)
	key := Key("https://example.com", nil, "")

	c.Set(key, &models.RaceReport{Success: true, Target: "https://example.com"})

	got, hit := c.Get(key, 60_000)
	if !hit {
		t.Fatal("expected cache hit")
	}
	if got.Target != "https://example.com" {
		t.Errorf("cached report target = %q", got.Target)
	}
}

func TestCache_MaxAgeZeroDisablesLookup(t *testing.T) {
	c := New(10)
	key := Key("https://example.com", nil, "")
	c.Set(key, &models.RaceReport{Success: true})

	if _, hit := c.Get(key, 0); hit {
		t.Error("maxAge 0 must bypass the cache")
	}
}

func TestCache_ExpiredEntryMisses(t *testing.T) {
	c := New(10)
	key := Key("https://example.com", nil, "")
	c.Set(key, &models.RaceReport{Success: true})

	time.Sleep(10 * time.Millisecond)
	if _, hit := c.Get(key, 1); hit {
		t.Error("entry older than maxAge must miss")
	}
}

func TestCache_GetReturnsCopy(t *testing.T) {
	c := New(10)
	key := Key("https://example.com", nil, "")
	c.Set(key, &models.RaceReport{Success: true})

	first, hit := c.Get(key, 60_000)
	if !hit {
		t.Fatal("expected cache hit")
	}
	first.CacheStatus = "hit"

	second, _ := c.Get(key, 60_000)
	if second.CacheStatus != "" {
		t.Error("mutating a returned report leaked into the stored copy")
	}
}

func TestCache_EvictsOldestWhenFull(t *testing.T) {
	c := New(3)

	for i := 0; i < 3; i++ {
		c.Set(fmt.Sprintf("key-%d", i), &models.RaceReport{Success: true})
		time.Sleep(2 * time.Millisecond) // distinct creation times
	}

	c.Set("key-3", &models.RaceReport{Success: true})

	if c.Len() != 3 {
		t.Fatalf("cache size = %d, want 3", c.Len())
	}
	if _, hit := c.Get("key-0", 60_000); hit {
		t.Error("oldest entry should have been evicted")
	}
	if _, hit := c.Get("key-3", 60_000); !hit {
		t.Error("newest entry should be present")
	}
}
