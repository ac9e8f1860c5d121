package validator

import (
	"errors"
	"net/mail"
	"strings"
)

// Email checks that email is a bare address with a dotted domain.
func Email(email string) error {
	if email == "" {
		return errors.New("is required")
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return errors.New("invalid email format")
	}

	parts := strings.Split(email, "@")
	if len(parts) != 2 || !strings.Contains(parts[1], ".") || strings.HasSuffix(parts[1], ".") {
		return errors.New("invalid email domain")
	}

	return nil
}
