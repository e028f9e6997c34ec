package auth

import (
	"errors"
	"unicode/utf8"
)

// MinPasswordLength is the shortest password the forms accept.
const MinPasswordLength = 6

var (
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrPasswordTooShort = errors.New("password too short")
)

// ValidatePasswordChange checks a new password and its confirmation.
// Mismatch is reported before length.
func ValidatePasswordChange(password, confirm string) error {
	if password != confirm {
		return ErrPasswordMismatch
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

func passwordMessage(err error) string {
	switch {
	case errors.Is(err, ErrPasswordMismatch):
		return "As senhas não coincidem."
	case errors.Is(err, ErrPasswordTooShort):
		return "A senha deve ter pelo menos 6 caracteres."
	default:
		return ""
	}
}
