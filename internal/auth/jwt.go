package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrBadCredentials is returned when the login pair does not match.
var ErrBadCredentials = errors.New("invalid username or password")

// Claims represents the admin token payload.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Gate checks the fixed admin credential pair and issues session tokens.
// Tokens are never persisted; every page load re-authenticates.
type Gate struct {
	username   string
	password   string
	issuer     string
	signingKey string
	ttl        time.Duration
}

// NewGate builds a gate around the configured credential pair.
func NewGate(username, password, issuer, signingKey string, ttl time.Duration) *Gate {
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &Gate{username: username, password: password, issuer: issuer, signingKey: signingKey, ttl: ttl}
}

// Login compares the pair as opaque strings, as the source does, and on
// success returns a signed HS256 admin token with its expiry.
func (g *Gate) Login(username, password string) (string, time.Time, error) {
	if username != g.username || password != g.password {
		return "", time.Time{}, ErrBadCredentials
	}
	exp := time.Now().Add(g.ttl)
	claims := Claims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    g.issuer,
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(g.signingKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return token, exp, nil
}

// Parse validates a token and returns its claims.
func (g *Gate) Parse(tokenStr string) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(g.signingKey), nil
	})
	if err != nil {
		return Claims{}, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Claims{}, errors.New("invalid token")
	}
	if g.issuer != "" && claims.Issuer != g.issuer {
		return Claims{}, errors.New("issuer mismatch")
	}
	if claims.Role != "admin" {
		return Claims{}, errors.New("not an admin token")
	}
	return *claims, nil
}
