package media

import (
	_ "embed"
	"net/url"
	"path"
	"runtime"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed media_types.toml
var mediaTypesTOML []byte

type TypeConfig struct {
	Extensions  []string `toml:"extensions"`
	URLPatterns []string `toml:"url_patterns"`
}

type TypesConfig struct {
	Image     TypeConfig                `toml:"image"`
	Page      TypeConfig                `toml:"page"`
	Platforms map[string]PlatformConfig `toml:"platforms"`
}

type PlatformConfig struct {
	DefaultOpener string `toml:"default_opener"`
}

type TypeDetector struct {
	config *TypesConfig
}

func NewTypeDetector() (*TypeDetector, error) {
	var config TypesConfig
	if err := toml.Unmarshal(mediaTypesTOML, &config); err != nil {
		return nil, err
	}
	return &TypeDetector{config: &config}, nil
}

// DetectType classifies a link by extension first and URL pattern second.
func (d *TypeDetector) DetectType(link string) Type {
	lower := strings.ToLower(strings.TrimSpace(link))

	p := lower
	if u, err := url.Parse(lower); err == nil {
		p = u.Path
	}
	ext := strings.TrimPrefix(path.Ext(p), ".")

	if ext != "" {
		if slices.Contains(d.config.Image.Extensions, ext) {
			return TypeImage
		}
		if slices.Contains(d.config.Page.Extensions, ext) {
			return TypePage
		}
	}

	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		if matchesPattern(lower, d.config.Image.URLPatterns) {
			return TypeImage
		}
		if matchesPattern(lower, d.config.Page.URLPatterns) {
			return TypePage
		}
	}

	return TypeUnknown
}

func (d *TypeDetector) GetDefaultOpener() string {
	if pc, ok := d.config.Platforms[runtime.GOOS]; ok && pc.DefaultOpener != "" {
		return pc.DefaultOpener
	}
	if fallback, ok := d.config.Platforms["fallback"]; ok {
		return fallback.DefaultOpener
	}
	return "open"
}

func matchesPattern(link string, patterns []string) bool {
	for _, pattern := range patterns {
		if strings.Contains(link, pattern) {
			return true
		}
	}
	return false
}
