package util

import (
	"fmt"
	"net/mail"
	"strings"
)

// MinPasswordLen is the minimum accepted password length at signup.
const MinPasswordLen = 6

// ValidateEmail checks basic address syntax and length.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is empty")
	}
	if len(email) > 255 {
		return fmt.Errorf("email too long")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidatePassword enforces the minimum length.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLen)
	}
	return nil
}

// ValidateFullName checks the display name is present and of sane length.
func ValidateFullName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("full name is empty")
	}
	if len(name) > 128 {
		return fmt.Errorf("full name too long, max 128 characters")
	}
	return nil
}
