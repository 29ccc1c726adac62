package project

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/HoleCut/internal/model"
)

func TestSaveAndLoadAppConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := model.DefaultAppConfig()
	cfg.DefaultCompanionTitle = "MEP"
	cfg.DefaultFailurePolicy = model.PolicyFailFast
	cfg.DefaultScanWorkers = 4
	cfg.LogLevel = "debug"
	cfg.RecentProjects = []string{"/tmp/proj1.holecut", "/tmp/proj2.holecut"}

	if err := SaveAppConfig(path, cfg); err != nil {
		t.Fatalf("SaveAppConfig failed: %v", err)
	}

	loaded, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}

	if loaded.DefaultCompanionTitle != "MEP" {
		t.Errorf("expected DefaultCompanionTitle=MEP, got %s", loaded.DefaultCompanionTitle)
	}
	if loaded.DefaultFailurePolicy != model.PolicyFailFast {
		t.Errorf("expected fail-fast policy, got %s", loaded.DefaultFailurePolicy)
	}
	if loaded.DefaultScanWorkers != 4 {
		t.Errorf("expected DefaultScanWorkers=4, got %d", loaded.DefaultScanWorkers)
	}
	if loaded.LogLevel != "debug" {
		t.Errorf("expected LogLevel=debug, got %s", loaded.LogLevel)
	}
	if len(loaded.RecentProjects) != 2 {
		t.Errorf("expected 2 recent projects, got %d", len(loaded.RecentProjects))
	}
}

func TestLoadAppConfigMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent", "config.json")

	cfg, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}

	defaults := model.DefaultAppConfig()
	if cfg.DefaultTemplateName != defaults.DefaultTemplateName {
		t.Errorf("expected default template %q, got %q", defaults.DefaultTemplateName, cfg.DefaultTemplateName)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected log level info, got %s", cfg.LogLevel)
	}
}

func TestLoadAppConfigPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"default_scan_workers":8}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}
	if cfg.DefaultScanWorkers != 8 {
		t.Errorf("expected 8 workers, got %d", cfg.DefaultScanWorkers)
	}
	if cfg.DefaultCompanionTitle != model.DefaultSettings().CompanionTitle {
		t.Errorf("expected default companion title, got %q", cfg.DefaultCompanionTitle)
	}
}

func TestLoadAppConfigInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	if err := os.WriteFile(path, []byte("not valid json{{{"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadAppConfig(path)
	if err == nil {
		t.Fatal("expected error for invalid JSON, got nil")
	}
}

func TestSaveAppConfigCreatesDirectories(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "dir", "config.json")

	cfg := model.DefaultAppConfig()
	if err := SaveAppConfig(path, cfg); err != nil {
		t.Fatalf("SaveAppConfig should create parent dirs: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatal("config file was not created")
	}
}

func TestLoadAppConfigNilRecentProjects(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	data := []byte(`{"log_level":"warn","recent_projects":null}`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}
	if cfg.RecentProjects == nil {
		t.Error("RecentProjects should not be nil after loading")
	}
}

func TestAddRecentProject(t *testing.T) {
	cfg := model.DefaultAppConfig()
	for i := 0; i < 12; i++ {
		AddRecentProject(&cfg, fmt.Sprintf("/p/%d.holecut", i))
	}
	AddRecentProject(&cfg, "/p/5.holecut")

	if len(cfg.RecentProjects) != maxRecentProjects {
		t.Fatalf("expected %d recent projects, got %d", maxRecentProjects, len(cfg.RecentProjects))
	}
	if cfg.RecentProjects[0] != "/p/5.holecut" {
		t.Errorf("expected /p/5.holecut first, got %s", cfg.RecentProjects[0])
	}
	if cfg.RecentProjects[1] != "/p/11.holecut" {
		t.Errorf("expected /p/11.holecut second, got %s", cfg.RecentProjects[1])
	}
	seen := map[string]bool{}
	for _, p := range cfg.RecentProjects {
		if seen[p] {
			t.Errorf("duplicate entry %s", p)
		}
		seen[p] = true
	}
}
