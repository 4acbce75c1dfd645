package biopass

import "strings"

// MinPasswordLength is rule one of the strength policy.
const MinPasswordLength = 8

const passwordSpecials = `!@#$%^&*(),.?":{}|<>`

// ValidatePasswordStrength checks the password against the platform rules
// in fixed order: length, uppercase, lowercase, digit, special character.
// The first unmet rule is the one reported; all five must hold to pass.
func ValidatePasswordStrength(password string) error {
	if len(password) < MinPasswordLength {
		return WeakPassword("password must be at least 8 characters long")
	}

	if !strings.ContainsFunc(password, func(r rune) bool { return r >= 'A' && r <= 'Z' }) {
		return WeakPassword("password must contain at least one uppercase letter")
	}

	if !strings.ContainsFunc(password, func(r rune) bool { return r >= 'a' && r <= 'z' }) {
		return WeakPassword("password must contain at least one lowercase letter")
	}

	if !strings.ContainsFunc(password, func(r rune) bool { return r >= '0' && r <= '9' }) {
		return WeakPassword("password must contain at least one number")
	}

	if !strings.ContainsAny(password, passwordSpecials) {
		return WeakPassword("password must contain at least one special character")
	}

	return nil
}
