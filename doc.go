// Package biopass implements the credential and access-authorization core of
// the biometric access-control administration platform: password login with
// temporary-password fallback, signed session tokens, password recovery via
// emailed reset codes, and web-session accounting against the access log.
//
// Credential lifecycle:
//   - Persons are provisioned with a single-use temporary password. First
//     login with it (or any login before a password reset) reports
//     RequiresPasswordChange so the frontend can force a change.
//   - ForgotPasswordHandler issues a 6-digit reset code valid for 30 minutes;
//     ResetPasswordHandler swaps the credential and burns the code in one
//     transaction. ChangePasswordHandler covers the authenticated path. All
//     three share the same VerifyCredential and ValidatePasswordStrength
//     primitives so the rules cannot drift between flows.
//
// Session accounting:
//   - Login opens an AccessLogEntry; SessionRecorder closes it at logout and
//     records the session duration. Tokens themselves stay stateless: logout
//     closes the audit record, it does not revoke the token.
//
// HTTP:
//   - RegisterAuthRoutes mounts the REST surface on a Fiber router, and
//     middleware/authgate guards protected routes, resolving the acting
//     person into the request context.
package biopass
