package password

import (
	"strings"
	"unicode"

	dErrors "taskhive/pkg/domain-errors"
)

const specials = `!@#$%^&*(),.?":{}|<>`

// Validate enforces the password strength policy: at least 8 characters with
// an uppercase letter, a lowercase letter, a digit, and a special character.
// Returns a validation domain error naming the first unmet requirement.
func Validate(password string) error {
	if len(password) < 8 {
		return dErrors.New(dErrors.CodeValidation, "password must be at least 8 characters long")
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	switch {
	case !hasUpper:
		return dErrors.New(dErrors.CodeValidation, "password must contain at least one uppercase letter")
	case !hasLower:
		return dErrors.New(dErrors.CodeValidation, "password must contain at least one lowercase letter")
	case !hasDigit:
		return dErrors.New(dErrors.CodeValidation, "password must contain at least one number")
	case !strings.ContainsAny(password, specials):
		return dErrors.New(dErrors.CodeValidation, "password must contain at least one special character")
	}
	return nil
}
