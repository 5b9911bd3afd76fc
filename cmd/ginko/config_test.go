package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dhamidi/ginko/dts/diagnostics"
)

func TestLoadConfigWalksUpToFindGinkoToml(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "a", "b")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	toml := "include_dirs = [\"inc\"]\n\n[severity]\nNameTooLong = \"error\"\n"
	if err := os.WriteFile(filepath.Join(dir, ".ginko.toml"), []byte(toml), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := loadConfig(filepath.Join(sub, "file.dts"))
	if err != nil {
		t.Fatalf("loadConfig error = %v", err)
	}
	if len(cfg.IncludeDirs) != 1 || cfg.IncludeDirs[0] != "inc" {
		t.Fatalf("IncludeDirs = %v, want [inc]", cfg.IncludeDirs)
	}
	sm := cfg.severityOverrides()
	if sm[diagnostics.NameTooLong] != diagnostics.Error {
		t.Fatalf("severity override for NameTooLong = %v, want Error", sm[diagnostics.NameTooLong])
	}
}

func TestLoadConfigAbsentReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	cfg, err := loadConfig(filepath.Join(dir, "file.dts"))
	if err != nil {
		t.Fatalf("loadConfig error = %v", err)
	}
	if len(cfg.IncludeDirs) != 0 || len(cfg.Severity) != 0 {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestSeverityOverridesSkipsUnknownNames(t *testing.T) {
	cfg := &config{Severity: map[string]string{
		"NotARealCode": "error",
		"NameTooLong":  "not-a-real-severity",
	}}
	sm := cfg.severityOverrides()
	if len(sm) != 0 {
		t.Fatalf("severityOverrides = %v, want empty", sm)
	}
}
