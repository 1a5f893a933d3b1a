// Package contentid validates and normalizes ctt:// content identifiers.
package contentid

import (
	"regexp"
	"strings"
)

// Scheme is the URL prefix recognized for content-addressed navigation.
const Scheme = "ctt://"

// Length is the number of hex characters in a SHA-256 content identifier.
const Length = 64

const invalidFormat = "Invalid content hash format"

var hexDigest = regexp.MustCompile(`^[a-f0-9]{64}$`)

// ID is a validated, lowercase, 64-character hex content identifier.
type ID string

// String returns the identifier as plain hex.
func (id ID) String() string { return string(id) }

// Short returns the first 8 characters, used for download file names.
func (id ID) Short() string {
	if len(id) < 8 {
		return string(id)
	}
	return string(id[:8])
}

// URL returns the ctt:// form of the identifier.
func (id ID) URL() string { return Scheme + string(id) }

// ValidationError reports a malformed identifier. It is an expected
// outcome of user input, not an exceptional condition.
type ValidationError struct {
	Input   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Parse strips an optional ctt:// prefix and leading slashes, trims
// whitespace and lowercases the remainder. It succeeds iff what is left is
// exactly 64 hex characters.
func Parse(input string) (ID, error) {
	s := strings.TrimSpace(input)
	if hasScheme(s) {
		s = s[len(Scheme):]
	}
	s = strings.TrimLeft(s, "/")
	s = strings.ToLower(strings.TrimSpace(s))

	if !hexDigest.MatchString(s) {
		return "", &ValidationError{Input: input, Message: invalidFormat}
	}
	return ID(s), nil
}

// MustParse is like Parse but panics on invalid input. Intended for tests
// and constants.
func MustParse(input string) ID {
	id, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return id
}

// IsSchemeURL reports whether raw starts exactly with the ctt:// prefix.
// Navigation interception only fires for these URLs.
func IsSchemeURL(raw string) bool {
	return strings.HasPrefix(raw, Scheme)
}

func hasScheme(s string) bool {
	return len(s) >= len(Scheme) && strings.EqualFold(s[:len(Scheme)], Scheme)
}

// Validation is the result shape returned to surfaces asking whether a URL
// names valid content.
type Validation struct {
	Valid bool   `json:"valid"`
	Hash  ID     `json:"hash,omitempty"`
	Error string `json:"error,omitempty"`
}

// Validate runs Parse and folds the outcome into a Validation value.
func Validate(input string) Validation {
	id, err := Parse(input)
	if err != nil {
		return Validation{Valid: false, Error: err.Error()}
	}
	return Validation{Valid: true, Hash: id}
}
