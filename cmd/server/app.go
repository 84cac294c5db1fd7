package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"bookshop/internal/api"
	"bookshop/internal/auth"
	"bookshop/internal/config"
	"bookshop/internal/db"
	"bookshop/internal/logging"
	redisdb "bookshop/internal/redis"

	"github.com/gin-gonic/gin"
	pkgerrors "github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// app assembles the server. Constructors run lazily; the http.Server invoke pulls the whole graph.
func app(cfg *config.Config) fx.Option {
	return fx.Options(
		fx.Supply(cfg),
		fx.Provide(
			newLogger,
			newDatabase,
			newRedis,
			newSessions,
			db.NewStore,
			newAuthenticator,
			newRouter,
			newHTTPServer,
		),
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger}
		}),
		fx.Invoke(func(*http.Server) {}),
	)
}

func newLogger(cfg *config.Config) (*slog.Logger, error) {
	logger, err := logging.New(cfg)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return logger, nil
}

func newDatabase(lc fx.Lifecycle, cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	conn, err := db.Open(cfg, logger)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "db open")
	}
	if err := db.Migrate(context.Background(), conn); err != nil {
		return nil, pkgerrors.Wrap(err, "db migrate")
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})
	return conn, nil
}

func newRedis(lc fx.Lifecycle, cfg *config.Config) (*redis.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rdb, err := redisdb.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error { return rdb.Close() },
	})
	return rdb, nil
}

func newSessions(cfg *config.Config, rdb *redis.Client) *auth.Sessions {
	return auth.NewSessions(rdb, cfg.Server.SessionSecret, cfg.Session.TTL)
}

func newAuthenticator(sessions *auth.Sessions, store *db.Store) auth.Authenticator {
	return auth.NewSessionAuthenticator(sessions, store)
}

func newRouter(cfg *config.Config, store *db.Store, sessions *auth.Sessions, authn auth.Authenticator, logger *slog.Logger) *gin.Engine {
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	return api.SetupRouter(api.Deps{
		Config:   cfg,
		Store:    store,
		Sessions: sessions,
		Auth:     authn,
		Logger:   logger,
	})
}

func newHTTPServer(lc fx.Lifecycle, shutdowner fx.Shutdowner, cfg *config.Config, router *gin.Engine, logger *slog.Logger) *http.Server {
	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return pkgerrors.Wrapf(err, "listen on %s", srv.Addr)
			}
			logger.Info("Starting HTTP server", slog.String("addr", srv.Addr), slog.String("subpath", cfg.Server.Subpath))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("HTTP server stopped", slog.Any("error", err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
			defer cancel()
			logger.Info("Shutting down HTTP server")
			return pkgerrors.WithStack(srv.Shutdown(shutdownCtx))
		},
	})
	return srv
}
