package utils

import (
	"errors"
	"fmt"
	"time"

	"mindease/models"

	"github.com/golang-jwt/jwt"
	"github.com/spf13/cast"
)

// AccessClaims are the identity claims the backend embeds in its access tokens.
type AccessClaims struct {
	UserID    string
	Username  string
	Email     string
	Role      models.Role
	ExpiresAt time.Time
}

var ErrTokenExpired = errors.New("access token expired")

// ReadAccessClaims extracts identity claims from a backend access token.
// With a secret the HS256 signature is verified; without one the token is
// only decoded, since the backend remains the authority on every call.
func ReadAccessClaims(tokenString, secret string) (*AccessClaims, error) {
	claims := jwt.MapClaims{}
	if secret != "" {
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil {
			var vErr *jwt.ValidationError
			if errors.As(err, &vErr) && vErr.Errors&jwt.ValidationErrorExpired != 0 {
				return nil, ErrTokenExpired
			}
			return nil, fmt.Errorf("invalid access token: %w", err)
		}
		if !token.Valid {
			return nil, errors.New("invalid access token")
		}
	} else {
		if _, _, err := new(jwt.Parser).ParseUnverified(tokenString, claims); err != nil {
			return nil, fmt.Errorf("malformed access token: %w", err)
		}
	}

	out := &AccessClaims{
		UserID:   cast.ToString(claims["user_id"]),
		Username: cast.ToString(claims["username"]),
		Email:    cast.ToString(claims["email"]),
		Role:     models.Role(cast.ToString(claims["role"])),
	}
	if out.UserID == "" {
		out.UserID = cast.ToString(claims["id"])
	}
	if exp, ok := claims["exp"]; ok {
		out.ExpiresAt = time.Unix(cast.ToInt64(exp), 0)
		if secret == "" && time.Now().After(out.ExpiresAt) {
			return nil, ErrTokenExpired
		}
	}
	if out.UserID == "" {
		return nil, errors.New("access token does not carry a user id")
	}
	return out, nil
}
