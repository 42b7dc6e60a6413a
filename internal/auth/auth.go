package auth

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const ContextUserKey contextKey = "auth_user"

// User is the authenticated caller attached to the request context.
type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// Claims represents JWT token claims
type Claims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrUserInactive = errors.New("user is inactive")
	ErrUserNotFound = errors.New("user not found")
)

func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, ContextUserKey, u)
}

func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(ContextUserKey).(*User)
	return u, ok && u != nil
}
