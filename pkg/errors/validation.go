package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxBuildNameLength bounds saved build names.
const maxBuildNameLength = 128

// buildNameRegex matches names usable as file names, Redis keys and document ids.
var buildNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._ -]*$`)

// ValidateBuildName validates the name of a saved build.
// It rejects names that could be used for path traversal or key injection.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path separators or traversal sequences
//   - Maximum length of 128 characters
func ValidateBuildName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "build name cannot be empty")
	}

	if len(name) > maxBuildNameLength {
		return New(ErrCodeInvalidName, "build name too long (max %d characters)", maxBuildNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "build name contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\\",   // Backslash (Windows path)
		"\x00", // Null byte
	}
	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidName, "build name contains invalid characters: %q", pattern)
		}
	}

	if !buildNameRegex.MatchString(name) {
		return New(ErrCodeInvalidName, "invalid build name: %q", name)
	}
	return nil
}

// ValidatePath validates a build file path given on the command line.
// Only emptiness and embedded null bytes are rejected; the path may be absolute.
func ValidatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}
	if strings.ContainsRune(path, '\x00') {
		return New(ErrCodeInvalidInput, "path contains invalid characters")
	}
	return nil
}
