package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"

	defaultBaseURL = "https://api.moonshot.cn/anthropic"
	defaultModel   = "kimi-k2.5"
)

type Config struct {
	DataPath    string
	DBPath      string
	ContentPath string
	LogPath     string
	LogLevel    string
	Store       string

	TutorAPIKey  string
	TutorBaseURL string
	TutorModel   string

	ExternalVideo bool
}

// Flags carries command-line values; empty fields fall through to the
// environment and then to defaults.
type Flags struct {
	DataPath      string
	ContentPath   string
	Store         string
	LogLevel      string
	ExternalVideo bool
}

func New(flags Flags) (Config, error) {
	dataPath := strings.TrimSpace(flags.DataPath)
	if dataPath == "" {
		return Config{}, fmt.Errorf("data path is required")
	}
	if err := loadDotEnv(".env", filepath.Join(dataPath, ".env")); err != nil {
		return Config{}, err
	}

	cfg := Config{
		DataPath:      dataPath,
		DBPath:        filepath.Join(dataPath, "huixue.db"),
		ContentPath:   firstNonEmpty(flags.ContentPath, os.Getenv("HUIXUE_CONTENT"), filepath.Join(dataPath, "courses")),
		LogPath:       filepath.Join(dataPath, "huixue.log"),
		LogLevel:      firstNonEmpty(flags.LogLevel, os.Getenv("HUIXUE_LOG_LEVEL"), "warn"),
		Store:         strings.ToLower(firstNonEmpty(flags.Store, os.Getenv("HUIXUE_STORE"), StoreSQLite)),
		TutorAPIKey:   os.Getenv("HUIXUE_API_KEY"),
		TutorBaseURL:  firstNonEmpty(os.Getenv("HUIXUE_API_BASE_URL"), defaultBaseURL),
		TutorModel:    firstNonEmpty(os.Getenv("HUIXUE_MODEL"), defaultModel),
		ExternalVideo: flags.ExternalVideo,
	}
	if cfg.Store != StoreFile && cfg.Store != StoreSQLite {
		return Config{}, fmt.Errorf("unknown progress store %q (want %s or %s)", cfg.Store, StoreFile, StoreSQLite)
	}
	return cfg, nil
}

// OfflineTutor reports whether the scripted tutor should stand in for the
// remote model.
func (c Config) OfflineTutor() bool {
	return strings.TrimSpace(c.TutorAPIKey) == ""
}

func loadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
