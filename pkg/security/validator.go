package security

import (
	"errors"
	"strings"
	"unicode"
)

const (
	// MaxIdentifierLength defines the maximum allowed length for entity identifiers
	MaxIdentifierLength = 64
)

// ValidateIdentifier checks that an entity identifier taken from a request
// path is safe to use in a lookup.
func ValidateIdentifier(id string) error {
	if id == "" {
		return errors.New("identifier is empty")
	}

	if len(id) > MaxIdentifierLength {
		return errors.New("identifier too long")
	}

	for _, char := range id {
		if !isValidIdentifierChar(char) {
			return errors.New("identifier contains invalid characters")
		}
	}

	return nil
}

// isValidIdentifierChar checks if a character may appear in an identifier
func isValidIdentifierChar(char rune) bool {
	return char < unicode.MaxASCII &&
		(unicode.IsLetter(char) || unicode.IsDigit(char) || char == '-' || char == '_')
}

// EscapeLike escapes LIKE wildcards so the value matches literally.
// Callers must pair the pattern with ESCAPE '\'.
func EscapeLike(value string) string {
	if value == "" {
		return ""
	}

	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, "%", `\%`)
	value = strings.ReplaceAll(value, "_", `\_`)

	return value
}
