package api

import (
	"net/http"

	"bookshop/internal/apperr"
	"bookshop/internal/auth"
	"bookshop/internal/db"
	"bookshop/internal/user"

	"github.com/gin-gonic/gin"
)

// GET /users
func ListUsersHandler(store *db.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := parsePage(c)
		if err != nil {
			apperr.Abort(c, err)
			return
		}
		users, err := store.ListUsers(c.Request.Context(), page)
		if err != nil {
			apperr.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, users)
	}
}

// POST /users  [login]
// Creates an account the same way signup does. Unlike signup it does not switch the
// caller's session to the new account: a logged-in user creating another account stays
// logged in as themselves.
func CreateUserHandler(store *db.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := bindAndCreateAccount(c, store)
		if err != nil {
			apperr.Abort(c, err)
			return
		}
		c.JSON(http.StatusCreated, u)
	}
}

// GET /users/:id  [login]
// An unknown id answers like a failed login check.
func GetUserByIdHandler(store *db.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := parseID(c, "User")
		if err != nil {
			apperr.Abort(c, apperr.AuthRequired())
			return
		}
		u, err := store.GetUser(c.Request.Context(), userID)
		if apperr.Is(err, apperr.NotFound) {
			err = apperr.AuthRequired()
		}
		if err != nil {
			apperr.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, u)
	}
}

// PATCH /users/:id  [login; self when enforceOwnership]
func UpdateUserByIdHandler(store *db.Store, enforceOwnership bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := auth.IdentityFrom(c)
		userID, err := parseID(c, "User")
		if err != nil {
			apperr.Abort(c, apperr.AuthRequired())
			return
		}

		var u *user.User
		ctx := c.Request.Context()
		err = store.Tx(ctx, func(tx *db.Store) error {
			var err error
			u, err = tx.GetUser(ctx, userID)
			if apperr.Is(err, apperr.NotFound) {
				return apperr.AuthRequired()
			}
			if err != nil {
				return err
			}
			if enforceOwnership && u.ID != id.UserID {
				return apperr.New(apperr.Forbidden, "You may only edit your own account.")
			}
			body, err := decodeObject(c)
			if err != nil {
				return err
			}
			fields, err := userPatch.apply(body)
			if err != nil {
				return err
			}
			return tx.UpdateUser(ctx, u, fields)
		})
		if err != nil {
			apperr.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, u)
	}
}
