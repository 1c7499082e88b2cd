package gateway

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultMaxBodyBytes caps buffered request bodies
const DefaultMaxBodyBytes int64 = 10 << 20

// Config holds forwarder configuration
type Config struct {
	BackendURL   string  // Backend origin (e.g. http://localhost:8000)
	MaxBodyBytes int64   // Largest request body forwarded; larger bodies get 413
	Routes       []Route // Routing table; DefaultRoutes when empty
}

var (
	ErrNoRoutes      = errors.New("routes file defines no routes")
	ErrInvalidPrefix = errors.New("route prefix must start with /")
)

type routesFile struct {
	Routes []Route `yaml:"routes"`
}

// LoadRoutes reads a YAML routing table. An empty path returns DefaultRoutes.
func LoadRoutes(path string) ([]Route, error) {
	if path == "" {
		return DefaultRoutes(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read routes file: %w", err)
	}
	return ParseRoutes(data)
}

// ParseRoutes decodes and validates a YAML routing table
func ParseRoutes(data []byte) ([]Route, error) {
	var file routesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse routes file: %w", err)
	}
	if len(file.Routes) == 0 {
		return nil, ErrNoRoutes
	}
	for i, r := range file.Routes {
		if !strings.HasPrefix(r.Prefix, "/") {
			return nil, fmt.Errorf("route %d (%q): %w", i, r.Prefix, ErrInvalidPrefix)
		}
	}
	return file.Routes, nil
}

func (c *Config) backend() (*url.URL, error) {
	u, err := url.Parse(strings.TrimRight(c.BackendURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid backend URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid backend URL %q: scheme and host are required", c.BackendURL)
	}
	return u, nil
}
