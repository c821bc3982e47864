package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"animerec/internal/validation"
)

// ColumnsConfig names the CSV header columns that carry each item field.
type ColumnsConfig struct {
	ID       string `yaml:"id" validate:"required"`
	Name     string `yaml:"name" validate:"required"`
	Category string `yaml:"category" validate:"required"`
	Rating   string `yaml:"rating" validate:"required"`
	Members  string `yaml:"members" validate:"required"`
}

// CatalogConfig locates and describes the catalog source.
type CatalogConfig struct {
	Path    string        `yaml:"path" validate:"required"`
	Columns ColumnsConfig `yaml:"columns"`
}

// RecommendConfig tunes query defaults.
type RecommendConfig struct {
	DefaultK int `yaml:"default_k" validate:"min=1"`
	TopN     int `yaml:"top_n" validate:"min=1"`
}

// HistoryConfig sizes the session history and optionally persists it.
type HistoryConfig struct {
	Capacity int    `yaml:"capacity" validate:"min=1"`
	File     string `yaml:"file,omitempty"`
}

// LogConfig configures the zerolog logger.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=trace debug info warn warning error fatal disabled off"`
	Format string `yaml:"format" validate:"oneof=json console"`
	File   string `yaml:"file,omitempty"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Catalog   CatalogConfig   `yaml:"catalog"`
	Recommend RecommendConfig `yaml:"recommend"`
	History   HistoryConfig   `yaml:"history"`
	Log       LogConfig       `yaml:"log"`
}

// Environment variables that override file values. A .env file in the
// working directory is loaded by main before config is read.
const (
	EnvCatalogPath = "ANIMEREC_CATALOG_PATH"
	EnvLogLevel    = "ANIMEREC_LOG_LEVEL"
	EnvLogFormat   = "ANIMEREC_LOG_FORMAT"
	EnvDefaultK    = "ANIMEREC_DEFAULT_K"
)

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			if err := finish(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := finish(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/animerec/config.yaml.
// If neither exists, it writes defaults to ~/.config/animerec/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	if err := finish(cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "animerec", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Catalog: CatalogConfig{
			Path:    "anime.csv",
			Columns: defaultColumns(),
		},
		Recommend: RecommendConfig{DefaultK: 5, TopN: 10},
		History:   HistoryConfig{Capacity: 50},
		Log:       LogConfig{Level: "info", Format: "console"},
	}
}

func defaultColumns() ColumnsConfig {
	return ColumnsConfig{
		ID:       "anime_id",
		Name:     "name",
		Category: "genre",
		Rating:   "rating",
		Members:  "members",
	}
}

// finish applies defaults, environment overrides and validation.
func finish(cfg *AppConfig) error {
	applyConfigDefaults(cfg)
	if err := applyEnv(cfg); err != nil {
		return err
	}
	return validation.Struct(cfg)
}

func applyConfigDefaults(cfg *AppConfig) {
	def := defaultColumns()
	cols := &cfg.Catalog.Columns
	if cols.ID == "" {
		cols.ID = def.ID
	}
	if cols.Name == "" {
		cols.Name = def.Name
	}
	if cols.Category == "" {
		cols.Category = def.Category
	}
	if cols.Rating == "" {
		cols.Rating = def.Rating
	}
	if cols.Members == "" {
		cols.Members = def.Members
	}
	if cfg.Catalog.Path == "" {
		cfg.Catalog.Path = "anime.csv"
	}
	if cfg.Recommend.DefaultK == 0 {
		cfg.Recommend.DefaultK = 5
	}
	if cfg.Recommend.TopN == 0 {
		cfg.Recommend.TopN = 10
	}
	if cfg.History.Capacity == 0 {
		cfg.History.Capacity = 50
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
}

func applyEnv(cfg *AppConfig) error {
	if v := os.Getenv(EnvCatalogPath); v != "" {
		cfg.Catalog.Path = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv(EnvDefaultK); v != "" {
		k, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvDefaultK, err)
		}
		cfg.Recommend.DefaultK = k
	}
	return nil
}
