package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	got, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	want := DefaultTuning()
	if got.BlendStrength != want.BlendStrength || got.MaxBones != want.MaxBones || got.Workers != want.Workers {
		t.Errorf("Load() = %+v, want defaults", got)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.toml")
	content := []byte("blend_strength = 0.5\nmax_bones = 64\nworkers = 2\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got.BlendStrength != 0.5 {
		t.Errorf("BlendStrength = %v, want 0.5", got.BlendStrength)
	}
	if got.MaxBones != 64 {
		t.Errorf("MaxBones = %d, want 64", got.MaxBones)
	}
	// Untouched fields keep their defaults.
	if got.MaxAppendages != DefaultTuning().MaxAppendages {
		t.Errorf("MaxAppendages = %d, want default", got.MaxAppendages)
	}
}

func TestLoad_RejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	if err := os.WriteFile(path, []byte("max_bones = {nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() accepted a malformed file")
	}
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.toml")
	if err := os.WriteFile(path, []byte("max_bones = 100\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan *Tuning, 4)
	w, err := NewWatcher(path, func(t *Tuning) { reloaded <- t })
	if err != nil {
		t.Fatalf("NewWatcher() error: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("max_bones = 128\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case tuning := <-reloaded:
		if tuning.MaxBones != 128 {
			t.Errorf("reloaded MaxBones = %d, want 128", tuning.MaxBones)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload within 5s")
	}
}

func TestWatcher_CloseIsTerminal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.toml")
	if err := os.WriteFile(path, []byte("workers = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(path, func(*Tuning) {})
	if err != nil {
		t.Fatalf("NewWatcher() error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if err := w.Close(); err == nil {
		t.Error("second Close() did not error")
	}
}
