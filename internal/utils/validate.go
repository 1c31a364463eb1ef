package utils

import (
	"errors"
	"regexp"
	"strings"
)

const (
	UsernameMinLength = 7
	UsernameMaxLength = 20
	PasswordMinLength = 6
	PasswordMaxLength = 128
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	alphanumRegex = regexp.MustCompile(`^[a-z0-9]+$`)
)

// ValidateUsername enforces the username policy: 7-20 characters, no spaces,
// lowercase letters and digits only.
func ValidateUsername(username string) error {
	if len(username) < UsernameMinLength || len(username) > UsernameMaxLength {
		return errors.New("Username must be between 7 and 20 characters")
	}
	if strings.Contains(username, " ") {
		return errors.New("Username cannot contain spaces")
	}
	if username != strings.ToLower(username) {
		return errors.New("Username must be lowercase")
	}
	if !alphanumRegex.MatchString(username) {
		return errors.New("Username can only contain letters and numbers")
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < PasswordMinLength {
		return errors.New("Password must be at least 6 characters")
	}
	if len(password) > PasswordMaxLength {
		return errors.New("Password too long")
	}
	return nil
}

func ValidateEmail(email string) error {
	if len(email) > 120 || !emailRegex.MatchString(email) {
		return errors.New("Invalid email format")
	}
	return nil
}
