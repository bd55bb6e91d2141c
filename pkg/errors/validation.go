package errors

import (
	"strings"
	"unicode"
)

// maxInputNameLen bounds a single human-readable input name.
const maxInputNameLen = 256

// ValidateInputName validates a human-readable model input name.
// Names end up in node labels and DOT output, so control characters and
// quotes are rejected.
func ValidateInputName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidInput, "input name cannot be empty")
	}
	if len(name) > maxInputNameLen {
		return New(ErrCodeInvalidInput, "input name too long (max %d characters)", maxInputNameLen)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "input name contains invalid control characters")
		}
	}
	if strings.ContainsAny(name, `"\`) {
		return New(ErrCodeInvalidInput, "input name contains quotes or backslashes: %q", name)
	}
	return nil
}

// ValidateInputNames validates every name in names.
func ValidateInputNames(names []string) error {
	for _, n := range names {
		if err := ValidateInputName(n); err != nil {
			return err
		}
	}
	return nil
}

// ValidatePath validates a local file path given on the command line or in a
// request. It rejects empty paths, null bytes and control characters.
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}
	if len(path) > 4096 {
		return New(ErrCodeInvalidInput, "path too long")
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "path contains invalid control characters")
		}
	}
	return nil
}
