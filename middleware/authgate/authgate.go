package authgate

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
)

// DefaultContextKey is where the resolved principal is stored in request locals.
const DefaultContextKey = "principal"

var (
	ErrMissingToken = errors.New("authentication token not provided", errors.CategoryAuth).
			WithCode(fiber.StatusUnauthorized).
			WithTextCode("MISSING_TOKEN")
	ErrMalformedHeader = errors.New("authorization header format must be: <scheme> <token>", errors.CategoryAuth).
				WithCode(fiber.StatusUnauthorized).
				WithTextCode("MALFORMED_AUTHORIZATION_HEADER")
)

// Verifier checks a raw bearer token and returns the subject identity.
// This mirrors the TokenService.VerifyToken method from the root package
// so the middleware does not import it.
type Verifier interface {
	VerifyToken(raw string) (int64, error)
}

// Resolver loads the request principal for a verified identity.
// This mirrors the PrincipalProvider from the root package.
type Resolver interface {
	ResolvePrincipal(ctx context.Context, personID int64) (*Principal, error)
}

// Principal is the authenticated identity attached to the request context.
type Principal struct {
	ID              int64  `json:"id"`
	FullName        string `json:"full_name"`
	Email           string `json:"email"`
	Type            string `json:"type"`
	UnitID          int64  `json:"unit_id"`
	PermissionLevel int    `json:"permission_level"`
}

type Config struct {
	// Filter skips the middleware when it returns true.
	Filter func(*fiber.Ctx) bool
	// Verifier is required.
	Verifier Verifier
	// Resolver is required.
	Resolver Resolver
	// ErrorHandler renders authentication failures. Defaults to a JSON handler.
	ErrorHandler func(*fiber.Ctx, error) error
	// AuthScheme is the expected header scheme. Defaults to "Bearer".
	AuthScheme string
	// ContextKey is the locals key for the principal. Defaults to DefaultContextKey.
	ContextKey string
}

func New(config ...Config) fiber.Handler {
	cfg := getDefaultConfig(config...)

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		raw, err := TokenFromHeader(c.Get(fiber.HeaderAuthorization), cfg.AuthScheme)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		personID, err := cfg.Verifier.VerifyToken(raw)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		principal, err := cfg.Resolver.ResolvePrincipal(c.UserContext(), personID)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		c.Locals(cfg.ContextKey, principal)
		c.SetUserContext(WithPrincipal(c.UserContext(), principal))

		return c.Next()
	}
}

// PrincipalFrom retrieves the principal stored by the middleware, using the
// default context key.
func PrincipalFrom(c *fiber.Ctx) (*Principal, bool) {
	principal, ok := c.Locals(DefaultContextKey).(*Principal)
	return principal, ok
}

// TokenFromHeader extracts the raw token from an Authorization header value.
// The header must contain exactly two space separated parts, the first being
// the literal auth scheme.
func TokenFromHeader(header, authScheme string) (string, error) {
	if header == "" {
		return "", ErrMissingToken
	}

	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != authScheme || parts[1] == "" {
		return "", ErrMalformedHeader
	}

	return parts[1], nil
}

func getDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Verifier == nil {
		panic("AUTHGATE: middleware configuration: Verifier is required.")
	}

	if cfg.Resolver == nil {
		panic("AUTHGATE: middleware configuration: Resolver is required.")
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = DefaultContextKey
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = defaultErrorHandler
	}

	return cfg
}

func defaultErrorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusUnauthorized
	code := "UNAUTHORIZED"
	message := "invalid or expired token"

	var rich *errors.Error
	if errors.As(err, &rich) {
		if rich.Code != 0 {
			status = rich.Code
		}
		if rich.TextCode != "" {
			code = rich.TextCode
		}
		if rich.Message != "" {
			message = rich.Message
		}
	}

	return c.Status(status).JSON(fiber.Map{
		"error":   code,
		"message": message,
	})
}
