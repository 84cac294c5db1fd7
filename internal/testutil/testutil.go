// Package testutil opens throwaway SQLite and Redis backends for tests.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"bookshop/internal/db"
	"bookshop/internal/user"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	// keep hashing fast in tests
	user.Cost = bcrypt.MinCost
}

// NewDB returns a migrated in-memory SQLite database private to the calling test.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
	}
	if err := db.Migrate(context.Background(), conn); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// a shared-cache memory database lives as long as one connection is open
	sqlDB.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}

// NewRedis starts an in-process Redis server and returns a client for it.
func NewRedis(t testing.TB) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, mr
}

// SeedUser inserts a customer with the given credentials.
func SeedUser(t testing.TB, conn *gorm.DB, username, password string) user.User {
	t.Helper()
	u := user.User{Username: username, Email: username + "@example.com"}
	if err := u.SetPassword(password); err != nil {
		t.Fatalf("hash password: %v", err)
	}
	var role user.Role
	if err := conn.Where("name = ?", user.RoleCustomer).First(&role).Error; err != nil {
		t.Fatalf("load role: %v", err)
	}
	u.Roles = []user.Role{role}
	if err := conn.Create(&u).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return u
}
