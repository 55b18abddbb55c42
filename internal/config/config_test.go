package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "esbmc.toml")
	content := `
solver = "smtlib"
word-width = 32
overflow-check = false
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Solver != "smtlib" {
		t.Fatalf("Solver = %q, want smtlib", cfg.Solver)
	}
	if cfg.WordWidth != 32 {
		t.Fatalf("WordWidth = %d, want 32", cfg.WordWidth)
	}
	if cfg.OverflowCheck {
		t.Fatalf("OverflowCheck should have been overridden to false")
	}
	// Untouched fields keep their Default() value.
	if !cfg.PointerCheck {
		t.Fatalf("PointerCheck should still default to true")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/esbmc.toml"); err == nil {
		t.Fatalf("expected an error for a missing config file")
	}
}
