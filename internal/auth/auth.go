// internal/auth/auth.go
//
// Identities for remote guessers.
//   - Passwords are stored as bcrypt hashes.
//   - Tokens are HS256 JWTs carrying the player id ("sub") and name.

package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidToken is returned for tokens that fail parsing or validation.
	ErrInvalidToken = errors.New("auth: invalid token")
	// ErrBadCredentials is returned when a password does not match.
	ErrBadCredentials = errors.New("auth: invalid name or password")
)

// Claims identify a player.
type Claims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer builds an issuer. ttl <= 0 defaults to 14 days.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = 14 * 24 * time.Hour
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a signed token for the player and its expiry.
func (i *Issuer) Issue(playerID, name string) (string, time.Time, error) {
	now := i.now()
	exp := now.Add(i.ttl)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   playerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	ss, err := t.SignedString(i.secret)
	return ss, exp, err
}

// Parse validates a token and returns its claims.
func (i *Issuer) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	t, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now))
	if err != nil || !t.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// HashPassword returns a bcrypt hash of pw.
func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

// CheckPassword compares pw against a bcrypt hash.
func CheckPassword(hash, pw string) error {
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) != nil {
		return ErrBadCredentials
	}
	return nil
}

// ValidateRegistration enforces basic name/password rules.
func ValidateRegistration(name, pw string) error {
	name = strings.TrimSpace(name)
	if len(name) < 3 || len(name) > 24 {
		return errors.New("auth: name must be 3-24 chars")
	}
	for _, r := range name {
		if !(r == '_' || r == '-' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return errors.New("auth: name may use letters, digits, '-' and '_' only")
		}
	}
	if len(pw) < 8 || len(pw) > 72 {
		return errors.New("auth: password must be 8-72 chars")
	}
	return nil
}

// BearerToken extracts the token from an "Authorization: Bearer ..." value.
func BearerToken(header string) string {
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
