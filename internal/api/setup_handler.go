package api

import (
	"context"
	"net/http"

	"bookshop/internal/apperr"
	"bookshop/internal/auth"
	"bookshop/internal/db"
	"bookshop/internal/user"

	"github.com/gin-gonic/gin"
)

const roleErrorMessage = `Bad Request: Invalid value for "role". Expected "seller" or "customer".`

type SignupRequest struct {
	Username             *string `json:"username" binding:"required"`
	Email                *string `json:"email" binding:"required"`
	Password             *string `json:"password" binding:"required"`
	PasswordConfirmation *string `json:"password_confirmation" binding:"required"`
	ProfilePicture       *string `json:"profile_picture"`
	Role                 *string `json:"role"`
}

// createAccount validates req and persists the new user with its role inside tx.
func createAccount(ctx context.Context, tx *db.Store, req SignupRequest) (*user.User, error) {
	if *req.Password != *req.PasswordConfirmation {
		return nil, apperr.New(apperr.Validation, "Passwords do not match")
	}
	roleName := string(user.RoleCustomer)
	if req.Role != nil {
		roleName = *req.Role
	}
	if !user.ValidRole(roleName) {
		return nil, apperr.New(apperr.Validation, roleErrorMessage)
	}
	role, err := tx.FindRole(ctx, user.RoleName(roleName))
	if err != nil {
		if apperr.Is(err, apperr.NotFound) {
			return nil, apperr.New(apperr.Validation, roleErrorMessage)
		}
		return nil, err
	}

	u := &user.User{
		Username:       *req.Username,
		Email:          *req.Email,
		ProfilePicture: req.ProfilePicture,
		Roles:          []user.Role{*role},
	}
	if err := u.SetPassword(*req.Password); err != nil {
		return nil, err
	}
	if err := tx.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func bindAndCreateAccount(c *gin.Context, store *db.Store) (*user.User, error) {
	var req SignupRequest
	if err := bindJSON(c, &req); err != nil {
		return nil, err
	}
	var u *user.User
	ctx := c.Request.Context()
	err := store.Tx(ctx, func(tx *db.Store) error {
		var err error
		u, err = createAccount(ctx, tx, req)
		return err
	})
	return u, err
}

// POST /signup
func SignupHandler(store *db.Store, sessions *auth.Sessions, secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := bindAndCreateAccount(c, store)
		if err != nil {
			apperr.Abort(c, err)
			return
		}
		token, err := sessions.Create(c.Request.Context(), u.ID)
		if err != nil {
			apperr.Abort(c, err)
			return
		}
		auth.SetSessionCookie(c, sessions, token, secureCookie)
		c.JSON(http.StatusCreated, u)
	}
}
