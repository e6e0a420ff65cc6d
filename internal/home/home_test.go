package home

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("explicit path", func(t *testing.T) {
		d, err := New("/tmp/docr-test")
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if d.Path() != "/tmp/docr-test" {
			t.Errorf("Path() = %s", d.Path())
		}
	})

	t.Run("default path uses home dir", func(t *testing.T) {
		d, err := New("")
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if filepath.Base(d.Path()) != DefaultDirName {
			t.Errorf("expected default dir name, got %s", d.Path())
		}
	})
}

func TestEnsureExists(t *testing.T) {
	tmpDir := t.TempDir()
	d, err := New(filepath.Join(tmpDir, "home"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if d.Exists() {
		t.Error("home should not exist yet")
	}
	if err := d.EnsureExists(); err != nil {
		t.Fatalf("EnsureExists() error = %v", err)
	}
	if !d.Exists() {
		t.Error("home should exist")
	}
	for _, dir := range []string{d.OutputPath(), d.UploadsPath()} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("expected directory %s: %v", dir, err)
		}
	}
}

func TestConfigExists(t *testing.T) {
	tmpDir := t.TempDir()
	d, err := New(tmpDir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if d.ConfigExists() {
		t.Error("config should not exist yet")
	}
	if err := os.WriteFile(d.ConfigPath(), []byte("workers: 1\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if !d.ConfigExists() {
		t.Error("config should exist")
	}
}
