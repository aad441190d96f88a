package errors

import (
	"math"
	"strings"
	"unicode"
)

// maxSearchLength bounds search terms accepted from the CLI and HTTP API.
const maxSearchLength = 256

// ValidateThreshold validates a minimum-value threshold.
// Thresholds must be finite and non-negative.
func ValidateThreshold(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidThreshold, "threshold must be a finite number")
	}
	if v < 0 {
		return New(ErrCodeInvalidThreshold, "threshold must not be negative (got %v)", v)
	}
	return nil
}

// ValidateSearchTerm validates a free-text search term.
// An empty term is valid and means "no search".
//
// The validation rules are intentionally conservative:
//   - Maximum length of 256 characters
//   - No control characters or null bytes
func ValidateSearchTerm(term string) error {
	if len(term) > maxSearchLength {
		return New(ErrCodeInvalidInput, "search term too long (max %d characters)", maxSearchLength)
	}
	for _, r := range term {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "search term contains invalid control characters")
		}
	}
	return nil
}

// ValidateUploadFilename validates the filename of an uploaded ledger table.
// It ensures the filename is a simple basename with a .csv extension.
func ValidateUploadFilename(filename string) error {
	if filename == "" {
		return New(ErrCodeInvalidPath, "upload filename cannot be empty")
	}

	// Must be a simple filename, not a path
	if strings.ContainsAny(filename, "/\\") {
		return New(ErrCodeInvalidPath, "upload filename cannot contain path separators")
	}

	if strings.HasPrefix(filename, ".") {
		return New(ErrCodeInvalidPath, "upload filename cannot be a hidden file")
	}

	if !strings.EqualFold(filename[max(0, len(filename)-4):], ".csv") {
		return New(ErrCodeInvalidPath, "upload must be a .csv file: %q", filename)
	}

	return nil
}

// ValidatePath validates a local input path for safety.
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
