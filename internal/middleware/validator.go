package middleware

import (
	"fmt"
	"regexp"
	"strings"
)

// Input validation and sanitization utilities

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,32}$`)

// ValidateUsername checks the username format before it reaches the identity
// service.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}
	if !usernamePattern.MatchString(username) {
		return fmt.Errorf("invalid username format (alphanumeric, dash, underscore, 3-32 chars)")
	}
	return nil
}

// MaxSymptomsLen bounds the free-text symptom field; anything longer is a
// paste mistake, not a description.
const MaxSymptomsLen = 10000

func ValidateSymptomsLength(symptoms string) error {
	if len(symptoms) > MaxSymptomsLen {
		return fmt.Errorf("symptoms text too long (max %d bytes)", MaxSymptomsLen)
	}
	return nil
}

// SanitizeString removes null bytes and control characters from free text.
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")

	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}
