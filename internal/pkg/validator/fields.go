package validator

import (
	"errors"
	"strings"
	"unicode/utf8"
)

const (
	maxUsernameLength = 50
	minPasswordLength = 6
	maxNameLength     = 100
	maxContentLength  = 5000
)

func Username(username string) error {
	if strings.TrimSpace(username) == "" {
		return errors.New("is required")
	}
	if utf8.RuneCountInString(username) > maxUsernameLength {
		return errors.New("must be at most 50 characters")
	}
	if strings.ContainsAny(username, " \t\r\n") {
		return errors.New("must not contain whitespace")
	}
	return nil
}

func Password(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return errors.New("must be at least 6 characters")
	}
	// bcrypt ignores everything past 72 bytes.
	if len(password) > 72 {
		return errors.New("must be at most 72 bytes")
	}
	return nil
}

func OrganizationName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("is required")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return errors.New("must be at most 100 characters")
	}
	return nil
}

// QuestionContent rejects blank and oversized question bodies.
func QuestionContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return errors.New("must not be empty")
	}
	if utf8.RuneCountInString(content) > maxContentLength {
		return errors.New("must be at most 5000 characters")
	}
	return nil
}
