// Package auth verifies the bearer tokens that identify storefront callers.
// Tokens are issued elsewhere; this service only checks the HS256 signature
// and reads the identity out of the claims.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"storefront/internal/domain"
)

// Claims is the token payload.
type Claims struct {
	UserID string   `json:"user_id"`
	Email  string   `json:"email"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

// Sign issues an HS256 token for user valid for ttl.
func Sign(secret []byte, user domain.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Roles:  user.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Parse validates token and returns the caller it identifies. Role names
// are upper-cased and a leading "ROLE_" is dropped.
func Parse(secret []byte, token string) (domain.User, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(tok *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return domain.User{}, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return domain.User{}, jwt.ErrTokenInvalidClaims
	}

	userID := claims.UserID
	if userID == "" {
		userID = claims.Subject
	}
	if userID == "" {
		return domain.User{}, errors.New("token has no user id")
	}

	roles := make([]string, 0, len(claims.Roles))
	for _, r := range claims.Roles {
		r = strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(r)), "ROLE_")
		if r != "" {
			roles = append(roles, r)
		}
	}
	return domain.User{ID: userID, Email: claims.Email, Roles: roles}, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", fmt.Errorf("authorization header must be a bearer token")
	}
	return strings.TrimSpace(token), nil
}
