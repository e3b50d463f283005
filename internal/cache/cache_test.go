package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/factcheck/internal/model"
)

func TestKey(t *testing.T) {
	a := Key("search", "google", "ww2", "10")
	b := Key("search", "google", "ww2", "10")
	c := Key("search", "google", "ww2", "5")
	if a != b {
		t.Error("keys must be deterministic")
	}
	if a == c {
		t.Error("different parts must produce different keys")
	}
	if !strings.HasPrefix(a, "factcheck_v1_search_") {
		t.Errorf("unexpected prefix: %s", a)
	}
	if strings.ContainsAny(a, "/:") {
		t.Errorf("key must be file-name safe: %s", a)
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	if _, ok := c.Get("missing"); ok {
		t.Fatal("expected miss")
	}
	if err := c.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v, ok := c.Get("k"); !ok || string(v) != "v" {
		t.Errorf("expected hit, got %q %v", v, ok)
	}
	if c.Len() != 1 {
		t.Errorf("expected 1 item, got %d", c.Len())
	}
	_ = c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after delete")
	}
}

func TestDiskCache_Expiry(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if err := c.Set("k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v, ok := c.Get("k"); !ok || string(v) != "v" {
		t.Fatalf("expected hit, got %q %v", v, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Error("expected expired entry to miss")
	}
	if _, err := os.Stat(filepath.Join(dir, "k.cache")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed from disk")
	}
}

func TestLayeredCache_PromotesFromDisk(t *testing.T) {
	dir := t.TempDir()
	l := NewLayeredCache(time.Minute, dir, time.Hour)

	// Write only to disk, as a previous process would have
	if err := l.disk.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("disk set: %v", err)
	}
	if _, ok := l.memory.Get("k"); ok {
		t.Fatal("memory should start empty")
	}
	if v, ok := l.Get("k"); !ok || string(v) != "v" {
		t.Fatalf("expected layered hit, got %q %v", v, ok)
	}
	if _, ok := l.memory.Get("k"); !ok {
		t.Error("disk hit should be promoted to memory")
	}
	if err := l.Delete("missing"); err != nil {
		t.Errorf("deleting a missing key should not fail: %v", err)
	}
}

func TestJSONHelpers(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	in := []model.SearchResult{{Title: "t", URL: "https://example.com"}}
	if err := SetJSON(c, "k", in, 0); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}
	var out []model.SearchResult
	if !GetJSON(c, "k", &out) || len(out) != 1 || out[0].URL != in[0].URL {
		t.Errorf("GetJSON round trip failed: %+v", out)
	}

	_ = c.Set("bad", []byte("{not json"), 0)
	if GetJSON(c, "bad", &out) {
		t.Error("undecodable entry must be a miss")
	}
	if GetJSON(nil, "k", &out) {
		t.Error("nil cache must miss")
	}
	if err := SetJSON(nil, "k", in, 0); err != nil {
		t.Errorf("nil cache set should be a no-op: %v", err)
	}
}

func TestFromConfig(t *testing.T) {
	if FromConfig(model.CacheConfig{Enabled: false}) != nil {
		t.Error("disabled cache should be nil")
	}
	if _, ok := FromConfig(model.CacheConfig{Enabled: true}).(*MemoryCache); !ok {
		t.Error("expected memory cache without a dir")
	}
	if _, ok := FromConfig(model.CacheConfig{Enabled: true, Dir: t.TempDir()}).(*LayeredCache); !ok {
		t.Error("expected layered cache with a dir")
	}
}
