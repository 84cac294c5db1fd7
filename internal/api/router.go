package api

import (
	"log/slog"
	"net/http"

	"bookshop/internal/apperr"
	"bookshop/internal/auth"
	"bookshop/internal/config"
	"bookshop/internal/db"
	"bookshop/internal/logging"

	"github.com/gin-gonic/gin"
)

// Deps is everything the HTTP layer needs; nothing is reached through globals.
type Deps struct {
	Config   *config.Config
	Store    *db.Store
	Sessions *auth.Sessions
	Auth     auth.Authenticator
	Logger   *slog.Logger
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	if d.Logger != nil {
		r.Use(logging.Middleware(d.Logger))
	}
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		apperr.Abort(c, apperr.Newf(apperr.Unknown, "panic: %v", recovered))
	}))
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, apperr.Body{Error: "Not Found", Message: "No route for " + c.Request.URL.Path})
	})

	cfg := d.Config
	store := d.Store
	secure := cfg.Server.CookieSecure
	owner := cfg.Auth.EnforceOwnership
	login := auth.RequireAuth(d.Auth)

	group := r.Group(cfg.Server.Subpath)
	{
		group.GET("/health", healthHandler)

		// Session
		group.POST("/signup", SignupHandler(store, d.Sessions, secure))
		group.POST("/login", LoginHandler(store, d.Sessions, secure))
		group.DELETE("/logout", login, LogoutHandler(d.Sessions, secure))
		group.GET("/check_session", login, CheckSessionHandler(store))

		// Users
		group.GET("/users", ListUsersHandler(store))
		group.POST("/users", login, CreateUserHandler(store))
		group.GET("/users/:id", login, GetUserByIdHandler(store))
		group.PATCH("/users/:id", login, UpdateUserByIdHandler(store, owner))

		// Books
		group.GET("/books", ListBooksHandler(store))
		group.POST("/books", login, CreateBookHandler(store))
		group.GET("/books/:id", GetBookHandler(store))
		group.PATCH("/books/:id", login, UpdateBookHandler(store, owner))

		// Reviews
		group.GET("/reviews", ListReviewsHandler(store))
		group.POST("/reviews", login, CreateReviewHandler(store))
		group.GET("/reviews/:id", GetReviewHandler(store))
		group.PATCH("/reviews/:id", login, UpdateReviewHandler(store, owner))
	}
	return r
}
