package auth

import (
	"net/http"

	"bookshop/internal/apperr"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// RequireAuth rejects the request unless a resolves an Identity, which is then
// available to handlers through IdentityFrom.
func RequireAuth(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := a.Authenticate(c)
		if err != nil {
			apperr.Abort(c, err)
			return
		}
		SetIdentity(c, id)
		c.Next()
	}
}

func SetIdentity(c *gin.Context, id Identity) {
	c.Set(identityKey, id)
}

func IdentityFrom(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

// SetSessionCookie hands token to the client as an HTTP-only cookie.
func SetSessionCookie(c *gin.Context, s *Sessions, token string, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, int(s.TTL().Seconds()), "/", "", secure, true)
}

func ClearSessionCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", secure, true)
}
