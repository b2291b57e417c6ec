package services

import "strings"

// MinPasswordLength is the only password strength rule this service enforces.
const MinPasswordLength = 6

const (
	msgFieldsRequired   = "Please fill in all fields"
	msgPasswordMismatch = "Passwords do not match"
	msgPasswordTooShort = "Password should be at least 6 characters"
)

// validateRegistration checks the registration form, returning one message per
// failed rule.
func validateRegistration(name, email, password, passwordConfirm string) []string {
	var messages []string

	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" ||
		password == "" || passwordConfirm == "" {
		messages = append(messages, msgFieldsRequired)
	}

	return append(messages, validatePasswordPair(password, passwordConfirm)...)
}

// validatePasswordReset checks the password-entry form used by completeReset.
func validatePasswordReset(password, passwordConfirm string) []string {
	var messages []string

	if password == "" || passwordConfirm == "" {
		messages = append(messages, msgFieldsRequired)
	}

	return append(messages, validatePasswordPair(password, passwordConfirm)...)
}

func validatePasswordPair(password, passwordConfirm string) []string {
	var messages []string

	if password != passwordConfirm {
		messages = append(messages, msgPasswordMismatch)
	}

	if len(password) < MinPasswordLength {
		messages = append(messages, msgPasswordTooShort)
	}

	return messages
}
