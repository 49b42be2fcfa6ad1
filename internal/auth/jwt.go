package auth

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token lifetimes. Access tokens are short-lived on purpose; the client silently
// refreshes them using the long-lived refresh token cookie.
const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrWrongType    = errors.New("wrong token type")
)

// Keys holds the signing secrets for both token kinds. Access and refresh tokens
// are signed with different secrets so a leaked refresh secret cannot mint
// access tokens and vice versa.
type Keys struct {
	AccessSecret  []byte
	RefreshSecret []byte
}

// LoadKeys reads both secrets from the environment. Both must be present.
func LoadKeys() (Keys, error) {
	access := os.Getenv("JWT_SECRET")
	refresh := os.Getenv("JWT_REFRESH_SECRET")
	if access == "" || refresh == "" {
		return Keys{}, errors.New("JWT_SECRET and JWT_REFRESH_SECRET must be set")
	}
	return Keys{AccessSecret: []byte(access), RefreshSecret: []byte(refresh)}, nil
}

// GenerateAccessToken creates a short-lived JWT for the given subject.
// The subject is either a numeric user id (buyers) or "seller_<email>".
func (k Keys) GenerateAccessToken(subject string) (string, error) {
	return k.generate(subject, "access", AccessTokenTTL, k.AccessSecret)
}

// GenerateRefreshToken creates the long-lived counterpart. Each refresh token
// carries a unique jti so individual tokens can be told apart in logs.
func (k Keys) GenerateRefreshToken(subject string) (string, error) {
	return k.generate(subject, "refresh", RefreshTokenTTL, k.RefreshSecret)
}

// GenerateSellerToken creates a long-lived access-type token for the seller
// session. The admin panel has no refresh flow, so the token itself must last
// as long as the cookie does.
func (k Keys) GenerateSellerToken(subject string) (string, error) {
	return k.generate(subject, "access", RefreshTokenTTL, k.AccessSecret)
}

func (k Keys) generate(subject, tokenType string, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  subject,
		"type": tokenType,
		"jti":  uuid.NewString(),
		"exp":  now.Add(ttl).Unix(),
		"iat":  now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateAccessToken parses an access token and returns its subject.
func (k Keys) ValidateAccessToken(tokenString string) (string, error) {
	return k.validate(tokenString, "access", k.AccessSecret)
}

// ValidateRefreshToken parses a refresh token and returns its subject.
func (k Keys) ValidateRefreshToken(tokenString string) (string, error) {
	return k.validate(tokenString, "refresh", k.RefreshSecret)
}

func (k Keys) validate(tokenString, wantType string, secret []byte) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Reject anything not signed with our HMAC algorithm.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}
	if t, _ := claims["type"].(string); t != wantType {
		return "", ErrWrongType
	}
	subject, ok := claims["sub"].(string)
	if !ok {
		return "", ErrInvalidToken
	}
	return subject, nil
}
