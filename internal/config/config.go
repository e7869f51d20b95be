package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	UI       UIConfig       `mapstructure:"ui"`
	Media    MediaConfig    `mapstructure:"media"`
	Keys     KeyConfig      `mapstructure:"keys"`
	Log      LogConfig      `mapstructure:"log"`
}

type DatabaseConfig struct {
	Path        string        `mapstructure:"path"`
	Timeout     time.Duration `mapstructure:"timeout"`
	SearchIndex string        `mapstructure:"search_index"`
}

// CatalogConfig holds everything the catalog client and the search
// controller need. BaseURL and APIKey are injected, never global.
type CatalogConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	HTTPTimeout    time.Duration `mapstructure:"http_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
	MinQueryLength int           `mapstructure:"min_query_length"`
	Debounce       time.Duration `mapstructure:"debounce"`
	DetailCacheTTL time.Duration `mapstructure:"detail_cache_ttl"`
}

type UIConfig struct {
	Colors    UIColors     `mapstructure:"colors"`
	Detail    DetailConfig `mapstructure:"detail"`
	MaxRating int          `mapstructure:"max_rating"`
}

type UIColors struct {
	Primary    string `mapstructure:"primary"`
	Secondary  string `mapstructure:"secondary"`
	Accent     string `mapstructure:"accent"`
	Background string `mapstructure:"background"`
	Surface    string `mapstructure:"surface"`
	Text       string `mapstructure:"text"`
	Muted      string `mapstructure:"muted"`
	Error      string `mapstructure:"error"`
	Success    string `mapstructure:"success"`
}

type DetailConfig struct {
	WordWrapMaxWidth int `mapstructure:"word_wrap_max_width"`
	WordWrapMinWidth int `mapstructure:"word_wrap_min_width"`
}

type MediaConfig struct {
	Darwin        MediaPlayers `mapstructure:"darwin"`
	Linux         MediaPlayers `mapstructure:"linux"`
	Windows       MediaPlayers `mapstructure:"windows"`
	DefaultOpener string       `mapstructure:"default_opener"`
}

type MediaPlayers struct {
	Image []string `mapstructure:"image"`
}

type KeyConfig struct {
	Modifier string      `mapstructure:"modifier"`
	Bindings KeyBindings `mapstructure:"bindings"`
}

type KeyBindings struct {
	Quit    string `mapstructure:"quit"`
	Watched string `mapstructure:"watched"`
	Filter  string `mapstructure:"filter"`
	Delete  string `mapstructure:"delete"`
	Open    string `mapstructure:"open"`
	Poster  string `mapstructure:"poster"`
	Back    string `mapstructure:"back"`
	Help    string `mapstructure:"help"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".popcorn")

	return &Config{
		Database: DatabaseConfig{
			Path:        filepath.Join(dataDir, "popcorn.db"),
			Timeout:     1 * time.Second,
			SearchIndex: filepath.Join(dataDir, "watched.bleve"),
		},
		Catalog: CatalogConfig{
			BaseURL:        "https://www.omdbapi.com/",
			HTTPTimeout:    15 * time.Second,
			UserAgent:      "popcorn/1.0 (https://github.com/pders01/popcorn)",
			MinQueryLength: 3,
			Debounce:       300 * time.Millisecond,
			DetailCacheTTL: 10 * time.Minute,
		},
		UI: UIConfig{
			Colors: UIColors{
				Primary:    "#FF6B6B",
				Secondary:  "#4ECDC4",
				Accent:     "#95E1D3",
				Background: "#1A1A2E",
				Surface:    "#16213E",
				Text:       "#EAEAEA",
				Muted:      "#94A3B8",
				Error:      "#F87171",
				Success:    "#4ADE80",
			},
			Detail: DetailConfig{
				WordWrapMaxWidth: 100,
				WordWrapMinWidth: 40,
			},
			MaxRating: 10,
		},
		Media: MediaConfig{
			Darwin:        MediaPlayers{Image: []string{"preview", "open"}},
			Linux:         MediaPlayers{Image: []string{"sxiv", "feh", "eog", "xdg-open"}},
			Windows:       MediaPlayers{Image: []string{"start"}},
			DefaultOpener: getDefaultOpener(),
		},
		Keys: KeyConfig{
			Modifier: "ctrl",
			Bindings: KeyBindings{
				Quit:    "q",
				Watched: "w",
				Filter:  "f",
				Delete:  "x",
				Open:    "o",
				Poster:  "p",
				Back:    "esc",
				Help:    "?",
			},
		},
		Log: LogConfig{
			Level:      "off",
			Path:       filepath.Join(dataDir, "popcorn.log"),
			MaxSizeMB:  5,
			MaxBackups: 3,
		},
	}
}

func getDefaultOpener() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "linux":
		return "xdg-open"
	case "windows":
		return "start"
	default:
		return "open"
	}
}

func Load(configPath string) (*Config, error) {
	// A missing .env is the normal case.
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		homeDir, _ := os.UserHomeDir()
		configDir := filepath.Join(homeDir, ".config", "popcorn")

		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(configDir)
		v.AddConfigPath(".")
	}

	// Every key needs a default for AutomaticEnv to reach it during
	// Unmarshal; POPCORN_CATALOG_DEBOUNCE maps to catalog.debounce.
	setDefaults(v, "", settings(defaultConfig()))
	v.SetEnvPrefix("POPCORN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("catalog.api_key", "POPCORN_API_KEY", "OMDB_API_KEY"); err != nil {
		return nil, fmt.Errorf("binding api key env: %w", err)
	}
	if err := v.BindEnv("catalog.base_url", "POPCORN_BASE_URL"); err != nil {
		return nil, fmt.Errorf("binding base url env: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// Decoding onto the defaults keeps every key the file leaves out.
	config := defaultConfig()
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	expandPaths(config)

	return config, nil
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

func expandPaths(cfg *Config) {
	cfg.Database.Path = expandPath(cfg.Database.Path)
	cfg.Database.SearchIndex = expandPath(cfg.Database.SearchIndex)
	cfg.Log.Path = expandPath(cfg.Log.Path)
}

// setDefaults registers every leaf of m under prefix.
func setDefaults(v *viper.Viper, prefix string, m map[string]interface{}) {
	for k, val := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := val.(map[string]interface{}); ok {
			setDefaults(v, key, sub)
			continue
		}
		v.SetDefault(key, val)
	}
}

// settings lays config out the way the TOML file does.
func settings(config *Config) map[string]interface{} {
	// Durations are written as strings so the TOML stays readable.
	dbCfg := map[string]interface{}{
		"path":         config.Database.Path,
		"timeout":      config.Database.Timeout.String(),
		"search_index": config.Database.SearchIndex,
	}

	catalogCfg := map[string]interface{}{
		"base_url":         config.Catalog.BaseURL,
		"api_key":          config.Catalog.APIKey,
		"http_timeout":     config.Catalog.HTTPTimeout.String(),
		"user_agent":       config.Catalog.UserAgent,
		"min_query_length": config.Catalog.MinQueryLength,
		"debounce":         config.Catalog.Debounce.String(),
		"detail_cache_ttl": config.Catalog.DetailCacheTTL.String(),
	}

	c := config.UI.Colors
	uiCfg := map[string]interface{}{
		"max_rating": config.UI.MaxRating,
		"colors": map[string]interface{}{
			"primary":    c.Primary,
			"secondary":  c.Secondary,
			"accent":     c.Accent,
			"background": c.Background,
			"surface":    c.Surface,
			"text":       c.Text,
			"muted":      c.Muted,
			"error":      c.Error,
			"success":    c.Success,
		},
		"detail": map[string]interface{}{
			"word_wrap_max_width": config.UI.Detail.WordWrapMaxWidth,
			"word_wrap_min_width": config.UI.Detail.WordWrapMinWidth,
		},
	}

	mediaCfg := map[string]interface{}{
		"default_opener": config.Media.DefaultOpener,
		"darwin":         map[string]interface{}{"image": config.Media.Darwin.Image},
		"linux":          map[string]interface{}{"image": config.Media.Linux.Image},
		"windows":        map[string]interface{}{"image": config.Media.Windows.Image},
	}

	b := config.Keys.Bindings
	keysCfg := map[string]interface{}{
		"modifier": config.Keys.Modifier,
		"bindings": map[string]interface{}{
			"quit":    b.Quit,
			"watched": b.Watched,
			"filter":  b.Filter,
			"delete":  b.Delete,
			"open":    b.Open,
			"poster":  b.Poster,
			"back":    b.Back,
			"help":    b.Help,
		},
	}

	logCfg := map[string]interface{}{
		"level":       config.Log.Level,
		"path":        config.Log.Path,
		"max_size_mb": config.Log.MaxSizeMB,
		"max_backups": config.Log.MaxBackups,
	}

	return map[string]interface{}{
		"database": dbCfg,
		"catalog":  catalogCfg,
		"ui":       uiCfg,
		"media":    mediaCfg,
		"keys":     keysCfg,
		"log":      logCfg,
	}
}

func Save(config *Config, path string) error {
	v := viper.New()
	for section, values := range settings(config) {
		v.Set(section, values)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
