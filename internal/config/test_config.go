package config

import "time"

// TestConfig returns a config suitable for testing
func TestConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:    ":memory:",
			Timeout: 1 * time.Second,
		},
		Catalog: CatalogConfig{
			BaseURL:        "http://127.0.0.1:0/",
			APIKey:         "test-key",
			HTTPTimeout:    5 * time.Second,
			UserAgent:      "popcorn-test/1.0",
			MinQueryLength: 3,
			// Zero debounce makes SetQuery fetch immediately.
			Debounce:       0,
			DetailCacheTTL: 0,
		},
		UI:    defaultConfig().UI,
		Media: defaultConfig().Media,
		Keys:  defaultConfig().Keys,
		Log:   LogConfig{Level: "off"},
	}
}
