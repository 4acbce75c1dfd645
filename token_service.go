package biopass

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// DefaultTokenTTL is the fixed session token validity.
const DefaultTokenTTL = 8 * time.Hour

// SessionClaims is the signed session payload. The token carries only the
// person id; everything else about the principal is resolved per request.
type SessionClaims struct {
	jwt.RegisteredClaims
	PersonID int64 `json:"id"`
}

// TokenService mints and validates HS256 session tokens.
type TokenService struct {
	signingKey []byte
	ttl        time.Duration
	issuer     string
	audience   jwt.ClaimStrings
	logger     Logger
	nowFn      func() time.Time
}

// NewTokenService creates a TokenService from config. A zero or negative
// GetTokenExpiration falls back to the fixed 8 hour validity.
func NewTokenService(cfg Config, logger Logger) *TokenService {
	if logger == nil {
		logger = defLogger{}
	}

	ttl := DefaultTokenTTL
	if cfg.GetTokenExpiration() > 0 {
		ttl = time.Duration(cfg.GetTokenExpiration()) * time.Hour
	}

	return &TokenService{
		signingKey: []byte(cfg.GetSigningKey()),
		ttl:        ttl,
		issuer:     cfg.GetIssuer(),
		audience:   cfg.GetAudience(),
		logger:     logger,
		nowFn:      time.Now,
	}
}

// WithNowFunc overrides the clock, used by tests to mint expired tokens.
func (ts *TokenService) WithNowFunc(nowFn func() time.Time) *TokenService {
	ts.nowFn = defaultNow(nowFn)
	return ts
}

// Generate mints a session token for the given person. An unset signing key
// is a deployment fault and surfaces as ErrMissingSigningKey.
func (ts *TokenService) Generate(personID int64) (string, error) {
	if len(ts.signingKey) == 0 {
		return "", ErrMissingSigningKey
	}

	now := ts.nowFn()
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    ts.issuer,
			Subject:   strconv.FormatInt(personID, 10),
			Audience:  ts.audience,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.ttl)),
		},
		PersonID: personID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign session token")
	}

	return signed, nil
}

// Validate parses and verifies a raw token, returning its claims. Expiry and
// malformed/invalid-signature failures map to the two stable auth errors.
func (ts *TokenService) Validate(raw string) (*SessionClaims, error) {
	if len(ts.signingKey) == 0 {
		return nil, ErrMissingSigningKey
	}

	parserOptions := make([]jwt.ParserOption, 0, 2)
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}
	if len(ts.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(ts.audience...))
	}

	token, err := jwt.ParseWithClaims(raw, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("token validate encountered unexpected signing method: %v", t.Header["alg"])
			return nil, ErrTokenMalformed
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		ts.logger.Error("token validate could not decode claims")
		return nil, ErrTokenMalformed
	}

	return claims, nil
}

// VerifyToken validates the raw token and returns the person id it asserts.
// This is the narrow primitive the authorization gate consumes.
func (ts *TokenService) VerifyToken(raw string) (int64, error) {
	claims, err := ts.Validate(raw)
	if err != nil {
		return 0, err
	}
	return claims.PersonID, nil
}
