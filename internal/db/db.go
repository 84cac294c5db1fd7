package db

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"bookshop/internal/book"
	"bookshop/internal/config"
	"bookshop/internal/user"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Open connects to the database named by cfg.Database. TranslateError is always on so
// constraint failures surface as gorm sentinel errors instead of driver strings.
func Open(cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.Database.DSN)
	case "sqlite":
		dialector = sqlite.Open(sqliteDSN(cfg.Database.DSN))
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
	return gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         newSlogLogger(logger, cfg.Log.Level == "debug"),
	})
}

// sqlite enforces foreign keys only when asked to
func sqliteDSN(dsn string) string {
	if dsn == "" {
		dsn = "app.db"
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_foreign_keys=on"
	}
	return dsn + "?_foreign_keys=on"
}

// Migrate creates or updates every table and seeds the fixed role set.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(&user.Role{}, &user.User{}, &book.Book{}, &book.Review{}); err != nil {
		return err
	}
	return SeedRoles(ctx, db)
}

// SeedRoles inserts any role from user.RoleNames that is not yet present.
func SeedRoles(ctx context.Context, db *gorm.DB) error {
	for _, name := range user.RoleNames {
		role := user.Role{Name: name}
		if err := db.WithContext(ctx).Where(user.Role{Name: name}).FirstOrCreate(&role).Error; err != nil {
			return fmt.Errorf("seed role %s: %w", name, err)
		}
	}
	return nil
}
