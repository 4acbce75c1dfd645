package biopass

import (
	"github.com/goliatone/go-errors"
)

// Text codes form the closed, machine-readable error vocabulary surfaced to
// clients. Controllers and the auth gate map on these and on error
// categories, never on message strings.
const (
	TextCodeInvalidCredentials = "INVALID_CREDENTIALS"
	TextCodeAccessRestricted   = "ACCESS_RESTRICTED"
	TextCodeAccountDisabled    = "ACCOUNT_DISABLED"
	TextCodeNoPasswordSet      = "NO_PASSWORD_SET"
	TextCodeUserNotFound       = "USER_NOT_FOUND"
	TextCodeTypeNotAllowed     = "TYPE_NOT_ALLOWED"
	TextCodeInvalidResetToken  = "INVALID_OR_EXPIRED_TOKEN"
	TextCodeWeakPassword       = "WEAK_PASSWORD"
	TextCodeWrongPassword      = "WRONG_CURRENT_PASSWORD"
	TextCodeEmailError         = "EMAIL_SEND_FAILED"
	TextCodeTokenExpired       = "TOKEN_EXPIRED"
	TextCodeInvalidToken       = "INVALID_TOKEN"
	TextCodeUnauthorized       = "UNAUTHORIZED"
	TextCodeConfigError        = "CONFIGURATION_ERROR"
	TextCodeLogoutFailed       = "LOGOUT_FAILED"
	TextCodeMissingParameters  = "MISSING_PARAMETERS"
	TextCodePasswordMismatch   = "PASSWORD_MISMATCH"
	TextCodeDuplicateRecord    = "DUPLICATE_RECORD"
)

// ErrInvalidCredentials covers both unknown email and wrong password at
// login, so the response does not reveal which one failed.
var ErrInvalidCredentials = errors.New("invalid email or password", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeInvalidCredentials)

// ErrAccessRestricted rejects person types outside the system-access
// allow-list (employee, coordinator, inspector).
var ErrAccessRestricted = errors.New("account type has no system access", errors.CategoryAuthz).
	WithCode(errors.CodeForbidden).
	WithTextCode(TextCodeAccessRestricted)

// ErrAccountDisabled rejects employees whose employment record is inactive.
var ErrAccountDisabled = errors.New("employee account is disabled", errors.CategoryAuthz).
	WithCode(errors.CodeForbidden).
	WithTextCode(TextCodeAccountDisabled)

// ErrNoPasswordSet means the person has neither a password hash nor a
// temporary password configured.
var ErrNoPasswordSet = errors.New("account has no password configured", errors.CategoryAuthz).
	WithCode(errors.CodeForbidden).
	WithTextCode(TextCodeNoPasswordSet)

// ErrUserNotFound is the recovery-flow miss. The recovery routes answer 400
// here, matching the platform's historical behavior; see DESIGN.md on the
// existence-leak question.
var ErrUserNotFound = errors.New("no account registered for that email", errors.CategoryBadInput).
	WithCode(errors.CodeBadRequest).
	WithTextCode(TextCodeUserNotFound)

// ErrTypeNotAllowed rejects recovery requests for person types without
// system access.
var ErrTypeNotAllowed = errors.New("account type cannot reset its password", errors.CategoryBadInput).
	WithCode(errors.CodeBadRequest).
	WithTextCode(TextCodeTypeNotAllowed)

// ErrInvalidResetToken is returned for non-matching, spent and expired
// reset codes alike.
var ErrInvalidResetToken = errors.New("reset code is invalid, expired or already used", errors.CategoryValidation).
	WithCode(errors.CodeBadRequest).
	WithTextCode(TextCodeInvalidResetToken)

// ErrWrongCurrentPassword rejects a change-password attempt whose current
// password check failed.
var ErrWrongCurrentPassword = errors.New("current password is incorrect", errors.CategoryAuth).
	WithCode(errors.CodeBadRequest).
	WithTextCode(TextCodeWrongPassword)

// ErrEmailSendFailed signals outbound delivery failure. The reset code stays
// persisted and redeemable; callers may simply retry the request.
var ErrEmailSendFailed = errors.New("could not send the reset email", errors.CategoryOperation).
	WithCode(errors.CodeBadRequest).
	WithTextCode(TextCodeEmailError)

// ErrTokenExpired rejects session tokens past their expiry.
var ErrTokenExpired = errors.New("session token expired", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeTokenExpired)

// ErrTokenMalformed rejects tokens with a bad signature, wrong algorithm or
// broken structure.
var ErrTokenMalformed = errors.New("session token invalid", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeInvalidToken)

// ErrMissingSigningKey is a deployment fault, not a request fault.
var ErrMissingSigningKey = errors.New("token signing key is not configured", errors.CategoryInternal).
	WithCode(errors.CodeInternal).
	WithTextCode(TextCodeConfigError)

// ErrLogoutFailed wraps unexpected store failures during logout so callers
// see a stable taxonomy instead of raw driver errors.
var ErrLogoutFailed = errors.New("error while recording logout", errors.CategoryInternal).
	WithCode(errors.CodeInternal).
	WithTextCode(TextCodeLogoutFailed)

// ErrMismatchedHashAndPassword is the low-level bcrypt mismatch signal.
var ErrMismatchedHashAndPassword = errors.New("hashed password does not match", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeInvalidCredentials)

// ErrNoEmptyString rejects hashing an empty password.
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryValidation).
	WithCode(errors.CodeBadRequest).
	WithTextCode(TextCodeWeakPassword)

// WeakPassword builds the policy violation for the first unmet strength
// rule. The reason is the caller-facing message.
func WeakPassword(reason string) *errors.Error {
	return errors.New(reason, errors.CategoryValidation).
		WithCode(errors.CodeBadRequest).
		WithTextCode(TextCodeWeakPassword)
}

// StatusCode resolves the HTTP status for a domain error. Unclassified
// errors fall back to 500.
func StatusCode(err error) int {
	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.Code > 0 {
		return richErr.Code
	}
	return errors.CodeInternal
}

// ClientCode resolves the machine-readable error code for a domain error.
func ClientCode(err error) string {
	var richErr *errors.Error
	if errors.As(err, &richErr) && richErr.TextCode != "" {
		return richErr.TextCode
	}
	return "INTERNAL_SERVER_ERROR"
}
