package biopass

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHashCost is the bcrypt cost factor used everywhere a credential
// is written.
const PasswordHashCost = 10

// HashPassword will generate a password hash
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), PasswordHashCost)
	return string(h), err
}

// ComparePasswordAndHash will validate the given cleartext
// password matches the hashed password
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		return err
	}
	return nil
}

// VerifyCredential is the single credential predicate shared by login,
// change-password and reset-password. Empty strings mean the field is unset.
// The temporary password wins when it matches, even if a primary hash is
// also set.
func VerifyCredential(candidate, hash, temp string) error {
	if hash == "" && temp == "" {
		return ErrNoPasswordSet
	}

	if temp != "" && MatchesTemporaryPassword(candidate, temp) {
		return nil
	}

	if hash != "" {
		if err := ComparePasswordAndHash(candidate, hash); err == nil {
			return nil
		}
	}

	return ErrInvalidCredentials
}

// MatchesTemporaryPassword compares in constant time. Temporary passwords
// are single-use and short-lived but still secrets.
func MatchesTemporaryPassword(candidate, temp string) bool {
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(temp)) == 1
}

// Character sets for generated passwords leave out glyphs that read
// ambiguously in a welcome email (1/l/I, 0/O).
const (
	tempPasswordUpper   = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	tempPasswordLower   = "abcdefghjkmnpqrstuvwxyz"
	tempPasswordDigits  = "23456789"
	tempPasswordSymbols = "!@#$%&*"
	tempPasswordLength  = 12
)

// GenerateTemporaryPassword produces the single-use credential issued at
// person creation. Output always satisfies ValidatePasswordStrength.
func GenerateTemporaryPassword() (string, error) {
	all := tempPasswordUpper + tempPasswordLower + tempPasswordDigits + tempPasswordSymbols

	chars := make([]byte, 0, tempPasswordLength)
	for _, set := range []string{tempPasswordUpper, tempPasswordLower, tempPasswordDigits, tempPasswordSymbols} {
		c, err := randomChar(set)
		if err != nil {
			return "", err
		}
		chars = append(chars, c)
	}

	for len(chars) < tempPasswordLength {
		c, err := randomChar(all)
		if err != nil {
			return "", err
		}
		chars = append(chars, c)
	}

	// Fisher-Yates so the guaranteed classes don't sit at fixed positions.
	for i := len(chars) - 1; i > 0; i-- {
		j, err := randomInt(i + 1)
		if err != nil {
			return "", err
		}
		chars[i], chars[j] = chars[j], chars[i]
	}

	return string(chars), nil
}

func randomChar(set string) (byte, error) {
	i, err := randomInt(len(set))
	if err != nil {
		return 0, err
	}
	return set[i], nil
}

func randomInt(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}
