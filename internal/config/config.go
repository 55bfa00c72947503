// Copyright (c) 2025-2026 Circle Seven Creative
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ServerHost string `env:"JEKYLL_ADMIN_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"JEKYLL_ADMIN_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"JEKYLL_ADMIN_ENV" envDefault:"development"`
	LogLevel   string `env:"JEKYLL_ADMIN_LOG_LEVEL" envDefault:"info"`
	DBPath     string `env:"JEKYLL_ADMIN_DB_PATH" envDefault:"./data/jekyll-admin.db"`

	// GitHub content repository configuration
	GitHubToken  string `env:"GITHUB_TOKEN"`
	GitHubOwner  string `env:"JEKYLL_ADMIN_GITHUB_OWNER,required"`
	GitHubRepo   string `env:"JEKYLL_ADMIN_GITHUB_REPO,required"`
	GitHubBranch string `env:"JEKYLL_ADMIN_GITHUB_BRANCH" envDefault:"main"`

	// Content directories inside the repository
	PostsDir string `env:"JEKYLL_ADMIN_POSTS_DIR" envDefault:"_posts"`
	PagesDir string `env:"JEKYLL_ADMIN_PAGES_DIR" envDefault:"_pages"`
	BinDir   string `env:"JEKYLL_ADMIN_BIN_DIR" envDefault:"_bin"`

	// Cache configuration
	RedisURL        string  `env:"JEKYLL_ADMIN_REDIS_URL"`                         // Optional Redis URL for distributed caching
	CachePrefix     string  `env:"JEKYLL_ADMIN_CACHE_PREFIX" envDefault:"jadmin:"` // Redis key prefix
	ListCacheTTL    int     `env:"JEKYLL_ADMIN_LIST_CACHE_TTL" envDefault:"3600"`  // Posts/pages list TTL in seconds
	DataCacheTTL    int     `env:"JEKYLL_ADMIN_DATA_CACHE_TTL" envDefault:"86400"` // Settings/taxonomy/menus TTL in seconds
	CacheMaxSize    int     `env:"JEKYLL_ADMIN_CACHE_MAX_SIZE" envDefault:"10000"` // Max memory cache entries
	GitHubRateLimit float64 `env:"JEKYLL_ADMIN_GITHUB_RATE_LIMIT" envDefault:"10"` // Outbound requests per second

	// CORS configuration for the admin UI
	AllowedOrigins []string `env:"JEKYLL_ADMIN_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// GitHubConfigured returns true if a GitHub token is available for mutations.
func (c Config) GitHubConfigured() bool {
	return c.GitHubToken != ""
}

// ListTTL returns the posts/pages list cache TTL as a duration.
func (c Config) ListTTL() time.Duration {
	return time.Duration(c.ListCacheTTL) * time.Second
}

// DataTTL returns the settings/taxonomy/menus cache TTL as a duration.
func (c Config) DataTTL() time.Duration {
	return time.Duration(c.DataCacheTTL) * time.Second
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.ListCacheTTL <= 0 {
		return nil, fmt.Errorf("JEKYLL_ADMIN_LIST_CACHE_TTL must be positive, got %d", cfg.ListCacheTTL)
	}
	if cfg.DataCacheTTL <= 0 {
		return nil, fmt.Errorf("JEKYLL_ADMIN_DATA_CACHE_TTL must be positive, got %d", cfg.DataCacheTTL)
	}
	if cfg.GitHubRateLimit <= 0 {
		return nil, fmt.Errorf("JEKYLL_ADMIN_GITHUB_RATE_LIMIT must be positive, got %v", cfg.GitHubRateLimit)
	}

	return cfg, nil
}
