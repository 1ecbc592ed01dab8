package errors

import (
	"strings"
	"unicode"

	"github.com/bmatcuk/doublestar/v4"
)

// ValidatePath validates a path relative to a repository root.
// Sub-repository locations, file list entries and finding locations all use
// this form.
//
// Validation rules:
//   - Path cannot be empty (the root is addressed separately)
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No ".." segments
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path %q contains control characters", path)
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path %q must be relative", path)
	}

	for _, segment := range strings.Split(path, "/") {
		if segment == ".." {
			return New(ErrCodeInvalidPath, "path %q cannot contain '..' segments", path)
		}
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path %q cannot contain backslashes", path)
	}

	return nil
}

// ValidateGlob checks that pattern is a well-formed glob. Patterns support
// "**" for any number of directories.
func ValidateGlob(pattern string) error {
	if strings.TrimSpace(pattern) == "" {
		return New(ErrCodeInvalidPattern, "glob pattern cannot be empty")
	}
	if !doublestar.ValidatePattern(pattern) {
		return New(ErrCodeInvalidPattern, "invalid glob pattern: %q", pattern)
	}
	return nil
}

// ValidateGlobs validates every pattern and returns the first failure.
func ValidateGlobs(patterns []string) error {
	for _, p := range patterns {
		if err := ValidateGlob(p); err != nil {
			return err
		}
	}
	return nil
}
