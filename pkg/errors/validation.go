package errors

import (
	"strings"
	"unicode"
)

// maxKeyLength bounds storage keys accepted by every backend.
const maxKeyLength = 256

// ValidateStorageKey validates the key under which the graph blob is stored.
// Keys end up as Redis keys, Mongo document ids and Badger keys, so the
// rules are conservative:
//   - No empty keys
//   - No control characters or null bytes
//   - No path traversal sequences (.., //, backslash)
//   - Maximum length of 256 characters
func ValidateStorageKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidKey, "storage key cannot be empty")
	}

	if len(key) > maxKeyLength {
		return New(ErrCodeInvalidKey, "storage key too long (max %d characters)", maxKeyLength)
	}

	for _, r := range key {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidKey, "storage key contains invalid control characters")
		}
	}

	for _, pattern := range []string{"..", "//", "\\"} {
		if strings.Contains(key, pattern) {
			return New(ErrCodeInvalidKey, "storage key contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateExportFilename validates a filename offered for download.
// It must be a simple basename ending in .json.
func ValidateExportFilename(filename string) error {
	if filename == "" {
		return New(ErrCodeInvalidInput, "export filename cannot be empty")
	}
	if strings.ContainsAny(filename, "/\\") {
		return New(ErrCodeInvalidInput, "export filename cannot contain path separators")
	}
	if strings.HasPrefix(filename, ".") {
		return New(ErrCodeInvalidInput, "export filename cannot be a hidden file")
	}
	if !strings.HasSuffix(strings.ToLower(filename), ".json") {
		return New(ErrCodeInvalidInput, "export filename must end in .json")
	}
	return nil
}
