package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bookshop/internal/apperr"

	"github.com/gin-gonic/gin"
)

const CookieName = "session"

// Identity is the verified caller of one request.
type Identity struct {
	UserID    uint
	SessionID string
}

// Authenticator decides who is making a request.
type Authenticator interface {
	Authenticate(c *gin.Context) (Identity, error)
}

// UserLookup reports whether a user row still exists.
type UserLookup interface {
	UserExists(ctx context.Context, id uint) (bool, error)
}

// SessionAuthenticator accepts a session token from the session cookie or a Bearer
// header, checks it against Redis and makes sure the user behind it still exists.
type SessionAuthenticator struct {
	sessions *Sessions
	users    UserLookup
}

func NewSessionAuthenticator(sessions *Sessions, users UserLookup) *SessionAuthenticator {
	return &SessionAuthenticator{sessions: sessions, users: users}
}

func (a *SessionAuthenticator) Authenticate(c *gin.Context) (Identity, error) {
	token := TokenFromRequest(c)
	if token == "" {
		return Identity{}, apperr.AuthRequired()
	}
	claims, err := a.sessions.Parse(token)
	if err != nil {
		return Identity{}, apperr.Wrap(err, apperr.AuthenticationRequired, "Authentication Required")
	}
	ctx := c.Request.Context()
	userID, err := a.sessions.Resolve(ctx, claims.SessionID)
	if errors.Is(err, ErrNoSession) {
		return Identity{}, apperr.AuthRequired()
	}
	if err != nil {
		return Identity{}, err
	}
	if userID != claims.UserID {
		return Identity{}, apperr.AuthRequired()
	}
	ok, err := a.users.UserExists(ctx, userID)
	if err != nil {
		return Identity{}, fmt.Errorf("check session user: %w", err)
	}
	if !ok {
		return Identity{}, apperr.StaleSession()
	}
	return Identity{UserID: userID, SessionID: claims.SessionID}, nil
}

// TokenFromRequest prefers the session cookie and falls back to a Bearer header.
func TokenFromRequest(c *gin.Context) string {
	if v, err := c.Cookie(CookieName); err == nil && v != "" {
		return v
	}
	h := c.GetHeader("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}
