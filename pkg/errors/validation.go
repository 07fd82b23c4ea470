package errors

import (
	"strings"
	"unicode"
)

// MaxNeedleLength bounds the substring a caller may search for.
const MaxNeedleLength = 256

// ValidateMaxDepth rejects depth bounds a traversal cannot honor.
// Zero is valid: every composite root then renders as the depth-limit marker.
func ValidateMaxDepth(depth int) error {
	if depth < 0 {
		return New(ErrCodeInvalidDepth, "max depth must be >= 0, got %d", depth)
	}
	return nil
}

// ValidateNeedle validates a search substring taken from a flag or an API
// request. The library search itself accepts any needle.
//
// Validation rules:
//   - Needle cannot be empty
//   - Maximum length of 256 bytes
//   - No control characters (a needle cannot match a single-line rendering
//     containing them anyway)
func ValidateNeedle(needle string) error {
	if needle == "" {
		return New(ErrCodeInvalidInput, "needle cannot be empty")
	}

	if len(needle) > MaxNeedleLength {
		return New(ErrCodeInvalidInput, "needle too long (max %d characters)", MaxNeedleLength)
	}

	for _, r := range needle {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "needle contains invalid control characters")
		}
	}

	return nil
}

// ValidatePath validates an output file path given on the command line.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

// ValidateURL validates a backend URL for one of the allowed schemes.
func ValidateURL(rawURL string, schemes ...string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	for _, s := range schemes {
		if strings.HasPrefix(rawURL, s+"://") {
			return nil
		}
	}

	return New(ErrCodeInvalidInput, "URL must use one of the schemes %s", strings.Join(schemes, ", "))
}
