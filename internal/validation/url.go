package validation

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"
)

var (
	ErrEmptyURL     = errors.New("URL cannot be empty")
	ErrInvalidTitle = errors.New("invalid title id")
)

// CatalogURLValidator checks the base URL the catalog client talks to.
// The URL ends up carrying the API key, so plain http is only accepted for
// local hosts.
type CatalogURLValidator struct {
	AllowLocalhost bool
	AllowInsecure  bool
	MaxLength      int
}

func NewCatalogURLValidator() *CatalogURLValidator {
	return &CatalogURLValidator{MaxLength: 2048}
}

// NewPermissiveCatalogURLValidator accepts local test servers over http.
func NewPermissiveCatalogURLValidator() *CatalogURLValidator {
	return &CatalogURLValidator{
		AllowLocalhost: true,
		AllowInsecure:  true,
		MaxLength:      2048,
	}
}

// ValidateAndNormalize returns the base URL with a trailing slash on the
// path, ready to have query parameters attached.
func (v *CatalogURLValidator) ValidateAndNormalize(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", ErrEmptyURL
	}
	if v.MaxLength > 0 && len(input) > v.MaxLength {
		return "", fmt.Errorf("URL too long (max %d characters)", v.MaxLength)
	}
	if strings.ContainsAny(input, "<>\"'` ") {
		return "", fmt.Errorf("URL contains invalid characters")
	}

	u, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}

	switch u.Scheme {
	case "https":
	case "http":
		if !v.AllowInsecure {
			return "", fmt.Errorf("catalog URL must use https")
		}
	default:
		return "", fmt.Errorf("URL must use http or https protocol")
	}

	if u.Host == "" {
		return "", fmt.Errorf("URL must have a valid hostname")
	}
	if u.User != nil {
		return "", fmt.Errorf("credentials are not allowed in the catalog URL")
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return "", fmt.Errorf("catalog URL must not carry a query or fragment")
	}

	hostname := u.Hostname()
	if !v.AllowLocalhost && isLocalhost(hostname) {
		return "", fmt.Errorf("localhost URLs are not permitted")
	}
	if strings.Contains(u.Path, "..") {
		return "", fmt.Errorf("directory traversal patterns not allowed in URL path")
	}

	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String(), nil
}

func isLocalhost(hostname string) bool {
	if hostname == "localhost" || strings.HasSuffix(hostname, ".localhost") {
		return true
	}
	ip := net.ParseIP(hostname)
	return ip != nil && ip.IsLoopback()
}

var titleIDPattern = regexp.MustCompile(`^tt\d{7,}$`)

// ValidateTitleID accepts catalog identifiers of the form tt1234567.
func ValidateTitleID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if !titleIDPattern.MatchString(id) {
		return "", fmt.Errorf("%w: %q", ErrInvalidTitle, id)
	}
	return id, nil
}
