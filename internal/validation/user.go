package validation

import (
	"errors"
	"net/mail"
	"strings"
	"unicode/utf8"
)

func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)

	if trimmed == "" {
		return errors.New("name is required")
	}
	if utf8.RuneCountInString(trimmed) > 100 {
		return errors.New("name is too long (max 100 characters)")
	}

	return nil
}

// ValidateEmail checks length (RFC 5321) and syntax (RFC 5322).
func ValidateEmail(email string) error {
	if email == "" {
		return errors.New("email address is required")
	}
	if len(email) > 254 {
		return errors.New("email address is too long (max 254 characters)")
	}

	if _, err := mail.ParseAddress(email); err != nil {
		return errors.New("invalid email address format")
	}

	return nil
}
