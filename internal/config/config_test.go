package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open(%s) error: %v", path, err)
	}
	return s
}

func TestMissingFileIsEmpty(t *testing.T) {
	s := tempStore(t)
	if v, ok := s.Get("anything"); ok || v != "" {
		t.Errorf("Get on empty store = %q, %v; want empty, false", v, ok)
	}
	if _, err := os.Stat(s.Path()); !os.IsNotExist(err) {
		t.Error("Open created the file before any Put")
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	s := tempStore(t)
	if err := s.Put("game.path", `C:\Games\Client`); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	if err := s.Put("theme", "dark"); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	// A second store over the same file sees the persisted values.
	again, err := Open(s.Path())
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	if v, ok := again.Get("game.path"); !ok || v != `C:\Games\Client` {
		t.Errorf("Get(game.path) = %q, %v; want persisted value", v, ok)
	}
	if v, _ := again.Get("theme"); v != "dark" {
		t.Errorf("Get(theme) = %q, want dark", v)
	}
}

func TestDelete(t *testing.T) {
	s := tempStore(t)
	s.Put("k", "v")
	if err := s.Delete("k"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, ok := s.Get("k"); ok {
		t.Error("key survived Delete")
	}
	if err := s.Delete("absent"); err != nil {
		t.Errorf("Delete of absent key error: %v", err)
	}
}

func TestEmptyPathStaysInMemory(t *testing.T) {
	s, err := Open("")
	if err != nil {
		t.Fatalf("Open(\"\") error: %v", err)
	}
	if err := s.Put("k", "v"); err != nil {
		t.Fatalf("Put on in-memory store error: %v", err)
	}
	if v, ok := s.Get("k"); !ok || v != "v" {
		t.Errorf("Get(k) = %q, %v; want v, true", v, ok)
	}
}

func TestCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); err == nil {
		t.Error("Open on corrupt file succeeded, want error")
	}
}

func TestTypedAccessors(t *testing.T) {
	s := tempStore(t)

	if got := s.GetBool("dark", true); !got {
		t.Error("GetBool default not honoured")
	}
	s.PutBool("dark", false)
	if got := s.GetBool("dark", true); got {
		t.Error("GetBool ignored stored false")
	}

	if got := s.GetInt("rounds", 4); got != 4 {
		t.Errorf("GetInt default = %d, want 4", got)
	}
	s.PutInt("rounds", 6)
	if got := s.GetInt("rounds", 4); got != 6 {
		t.Errorf("GetInt = %d, want 6", got)
	}

	if got := s.GetDuration("focus", 25*time.Minute); got != 25*time.Minute {
		t.Errorf("GetDuration default = %v, want 25m", got)
	}
	s.PutDuration("focus", 50*time.Minute)
	if got := s.GetDuration("focus", 25*time.Minute); got != 50*time.Minute {
		t.Errorf("GetDuration = %v, want 50m", got)
	}

	s.Put("focus", "not-a-duration")
	if got := s.GetDuration("focus", 25*time.Minute); got != 25*time.Minute {
		t.Errorf("GetDuration on malformed value = %v, want default", got)
	}
}
