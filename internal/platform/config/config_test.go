package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"huixue/internal/platform/config"
)

func TestNewReadsDotEnvFromDataDir(t *testing.T) {
	data := t.TempDir()
	t.Setenv("HUIXUE_API_KEY", "")
	t.Setenv("HUIXUE_STORE", "")
	if err := os.WriteFile(filepath.Join(data, ".env"), []byte("HUIXUE_API_KEY=sk-test\nHUIXUE_STORE=file\n"), 0o644); err != nil {
		t.Fatalf("write env: %v", err)
	}
	// godotenv never overrides variables that are already set.
	_ = os.Unsetenv("HUIXUE_API_KEY")
	_ = os.Unsetenv("HUIXUE_STORE")

	cfg, err := config.New(config.Flags{DataPath: data})
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.TutorAPIKey != "sk-test" || cfg.Store != config.StoreFile {
		t.Fatalf("expected values from .env, got key=%q store=%q", cfg.TutorAPIKey, cfg.Store)
	}
	if cfg.OfflineTutor() {
		t.Fatalf("configured key must enable the remote tutor")
	}
	if cfg.DBPath != filepath.Join(data, "huixue.db") {
		t.Fatalf("unexpected db path %s", cfg.DBPath)
	}
}

func TestNewRejectsUnknownStoreAndMissingDataPath(t *testing.T) {
	t.Setenv("HUIXUE_STORE", "")
	if _, err := config.New(config.Flags{}); err == nil {
		t.Fatalf("missing data path must fail")
	}
	if _, err := config.New(config.Flags{DataPath: t.TempDir(), Store: "redis"}); err == nil {
		t.Fatalf("unknown store must fail")
	}
}

func TestFlagsWinOverEnvironment(t *testing.T) {
	t.Setenv("HUIXUE_STORE", "file")
	t.Setenv("HUIXUE_LOG_LEVEL", "debug")
	cfg, err := config.New(config.Flags{DataPath: t.TempDir(), Store: "sqlite", LogLevel: "error"})
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.Store != config.StoreSQLite || cfg.LogLevel != "error" {
		t.Fatalf("flags must take precedence, got store=%s level=%s", cfg.Store, cfg.LogLevel)
	}
}
