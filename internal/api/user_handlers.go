package api

import (
	"net/http"

	"bookshop/internal/apperr"
	"bookshop/internal/auth"
	"bookshop/internal/db"

	"github.com/gin-gonic/gin"
)

type LoginRequest struct {
	Username *string `json:"username" binding:"required"`
	Password *string `json:"password" binding:"required"`
}

const invalidCredentials = "Authentication Required: invalid username or password"

// POST /login
func LoginHandler(store *db.Store, sessions *auth.Sessions, secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := bindJSON(c, &req); err != nil {
			apperr.Abort(c, err)
			return
		}
		ctx := c.Request.Context()
		u, err := store.FindUserByUsername(ctx, *req.Username)
		if apperr.Is(err, apperr.NotFound) || (err == nil && !u.Authenticate(*req.Password)) {
			apperr.Abort(c, apperr.New(apperr.AuthenticationRequired, invalidCredentials))
			return
		}
		if err != nil {
			apperr.Abort(c, err)
			return
		}
		token, err := sessions.Create(ctx, u.ID)
		if err != nil {
			apperr.Abort(c, err)
			return
		}
		auth.SetSessionCookie(c, sessions, token, secureCookie)
		c.JSON(http.StatusOK, u)
	}
}

// DELETE /logout  [login]
func LogoutHandler(sessions *auth.Sessions, secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := auth.IdentityFrom(c)
		if err := sessions.Revoke(c.Request.Context(), id.SessionID); err != nil {
			apperr.Abort(c, err)
			return
		}
		auth.ClearSessionCookie(c, secureCookie)
		c.Status(http.StatusNoContent)
	}
}

// GET /check_session  [login]
func CheckSessionHandler(store *db.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := auth.IdentityFrom(c)
		u, err := store.GetUser(c.Request.Context(), id.UserID)
		if apperr.Is(err, apperr.NotFound) {
			err = apperr.StaleSession()
		}
		if err != nil {
			apperr.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, u)
	}
}
