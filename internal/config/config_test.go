package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHasSourceExt(t *testing.T) {
	cases := map[string]bool{
		"main.ember":  true,
		"main.txt":    false,
		"ember":       false,
		"a/b/c.ember": true,
	}
	for path, want := range cases {
		if got := HasSourceExt(path); got != want {
			t.Errorf("HasSourceExt(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestLoadProjectFileMissingReturnsZeroValue(t *testing.T) {
	cfg, err := LoadProjectFile(filepath.Join(t.TempDir(), "does_not_exist.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GC.HeapGrowFactor != 0 || cfg.Debug.StressGC {
		t.Errorf("expected zero-value config, got %#v", cfg)
	}
}

func TestLoadProjectFileDecodesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ember.yaml")
	content := []byte("gc:\n  heap_grow_factor: 3\n  initial_threshold_bytes: 2048\ndebug:\n  stress_gc: true\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	cfg, err := LoadProjectFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GC.HeapGrowFactor != 3 {
		t.Errorf("got HeapGrowFactor=%d, want 3", cfg.GC.HeapGrowFactor)
	}
	if cfg.GC.InitialThresholdBytes != 2048 {
		t.Errorf("got InitialThresholdBytes=%d, want 2048", cfg.GC.InitialThresholdBytes)
	}
	if !cfg.Debug.StressGC {
		t.Errorf("expected StressGC=true")
	}
}

func TestLoadProjectFileRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ember.yaml")
	if err := os.WriteFile(path, []byte("gc: [this is not a mapping"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if _, err := LoadProjectFile(path); err == nil {
		t.Errorf("expected a decode error for malformed YAML")
	}
}
