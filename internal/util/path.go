// Copyright (c) 2025-2026 Circle Seven Creative
// SPDX-License-Identifier: MIT

package util

import (
	"fmt"
	"path"
	"strings"
)

// SanitizeFilename rejects filenames carrying directory components so a
// request cannot address files outside its collection directory
// (e.g. "../_config.yml"). Returns the bare filename or an error.
func SanitizeFilename(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("invalid filename: empty")
	}
	if strings.ContainsAny(filename, "/\\") {
		return "", fmt.Errorf("invalid filename: %q contains path separators", filename)
	}
	safe := path.Base(path.Clean(filename))
	if safe == "." || safe == ".." || safe != filename {
		return "", fmt.Errorf("invalid filename: %q", filename)
	}
	return safe, nil
}

// ValidateRepoPath checks that a repository-relative path stays inside the
// given collection directory after cleaning. GitHub paths always use
// forward slashes regardless of platform.
func ValidateRepoPath(dir, repoPath string) error {
	cleaned := path.Clean(repoPath)
	if cleaned != dir && !strings.HasPrefix(cleaned, dir+"/") {
		return fmt.Errorf("path %q escapes directory %q", repoPath, dir)
	}
	if strings.Contains(cleaned, "..") {
		return fmt.Errorf("path %q contains traversal", repoPath)
	}
	return nil
}

// JoinRepoPath joins a collection directory and a filename into a
// repository-relative path, validating the result.
func JoinRepoPath(dir, filename string) (string, error) {
	safe, err := SanitizeFilename(filename)
	if err != nil {
		return "", err
	}
	joined := path.Join(dir, safe)
	if err := ValidateRepoPath(dir, joined); err != nil {
		return "", err
	}
	return joined, nil
}
