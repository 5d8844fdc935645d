package errors

import (
	"net/url"
	"strings"
	"unicode"
)

// maxNameLength bounds document names and node ids.
const maxNameLength = 256

// ValidateDocumentName validates a mind map name before it becomes a store key.
//
// Names are free text, so the rules only reject what cannot round-trip:
//   - No empty or whitespace-only names
//   - No control characters or null bytes
//   - Maximum length of 256 characters
func ValidateDocumentName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeMissingInput, "mind map name cannot be empty")
	}

	if len(name) > maxNameLength {
		return New(ErrCodeInvalidInput, "mind map name too long (max %d characters)", maxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "mind map name contains invalid control characters")
		}
	}

	return nil
}

// ValidateNodeID validates a node or edge identifier supplied from outside.
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "id cannot be empty")
	}
	if len(id) > maxNameLength {
		return New(ErrCodeInvalidInput, "id too long (max %d characters)", maxNameLength)
	}
	if strings.ContainsFunc(id, func(r rune) bool { return unicode.IsSpace(r) || unicode.IsControl(r) }) {
		return New(ErrCodeInvalidInput, "id contains whitespace or control characters: %q", id)
	}
	return nil
}

// ValidateURL validates a resource or content link URL.
// It ensures the URL parses and has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid URL %q", rawURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	if u.Host == "" {
		return New(ErrCodeInvalidInput, "URL must have a host")
	}

	return nil
}

// ValidateRating validates a resource rating (1-5 stars).
func ValidateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return New(ErrCodeInvalidInput, "rating must be between 1 and 5, got %d", rating)
	}
	return nil
}
