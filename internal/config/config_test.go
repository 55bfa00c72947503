// Copyright (c) 2025-2026 Circle Seven Creative
// SPDX-License-Identifier: MIT

package config

import (
	"os"
	"testing"
	"time"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set %s: %v", key, err)
	}
}

func setRequired(t *testing.T) {
	t.Helper()
	setEnv(t, "JEKYLL_ADMIN_GITHUB_OWNER", "circleseven")
	setEnv(t, "JEKYLL_ADMIN_GITHUB_REPO", "circleseven-website")
}

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.ServerHost != "localhost" {
		t.Errorf("ServerHost = %q, want %q", cfg.ServerHost, "localhost")
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 8080)
	}
	if cfg.Env != "development" {
		t.Errorf("Env = %q, want %q", cfg.Env, "development")
	}
	if cfg.GitHubBranch != "main" {
		t.Errorf("GitHubBranch = %q, want %q", cfg.GitHubBranch, "main")
	}
	if cfg.PostsDir != "_posts" || cfg.PagesDir != "_pages" || cfg.BinDir != "_bin" {
		t.Errorf("content dirs = %q/%q/%q, want _posts/_pages/_bin", cfg.PostsDir, cfg.PagesDir, cfg.BinDir)
	}
	if cfg.ListTTL() != time.Hour {
		t.Errorf("ListTTL() = %v, want %v", cfg.ListTTL(), time.Hour)
	}
	if cfg.DataTTL() != 24*time.Hour {
		t.Errorf("DataTTL() = %v, want %v", cfg.DataTTL(), 24*time.Hour)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
		t.Errorf("AllowedOrigins = %v, want [*]", cfg.AllowedOrigins)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	os.Clearenv()
	setEnv(t, "JEKYLL_ADMIN_GITHUB_OWNER", "circleseven")

	if _, err := Load(); err == nil {
		t.Error("expected error when JEKYLL_ADMIN_GITHUB_REPO is missing")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Clearenv()
	setRequired(t)
	setEnv(t, "JEKYLL_ADMIN_SERVER_HOST", "0.0.0.0")
	setEnv(t, "JEKYLL_ADMIN_SERVER_PORT", "3000")
	setEnv(t, "JEKYLL_ADMIN_ENV", "production")
	setEnv(t, "GITHUB_TOKEN", "ghp_testtoken")
	setEnv(t, "JEKYLL_ADMIN_ALLOWED_ORIGINS", "https://admin.example.com,https://example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.ServerAddr() != "0.0.0.0:3000" {
		t.Errorf("ServerAddr() = %q, want %q", cfg.ServerAddr(), "0.0.0.0:3000")
	}
	if cfg.IsDevelopment() {
		t.Error("IsDevelopment() = true, want false")
	}
	if !cfg.GitHubConfigured() {
		t.Error("GitHubConfigured() = false, want true")
	}
	if len(cfg.AllowedOrigins) != 2 {
		t.Errorf("AllowedOrigins = %v, want two entries", cfg.AllowedOrigins)
	}
}

func TestLoad_InvalidTTL(t *testing.T) {
	os.Clearenv()
	setRequired(t)
	setEnv(t, "JEKYLL_ADMIN_LIST_CACHE_TTL", "0")

	if _, err := Load(); err == nil {
		t.Error("expected error for non-positive list cache TTL")
	}
}
