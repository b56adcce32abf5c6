// Package testutil provides an in-memory database for package tests.
package testutil

import (
	"testing"

	"chanboard/internal/db"
	"chanboard/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns a migrated in-memory SQLite database with foreign keys on.
// The pool holds a single connection so every query sees the same memory
// database; callers must not query outside a transaction they hold open.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return gdb
}

// Fixture is a minimal forum: two users, one channel and two posts.
type Fixture struct {
	Alice   models.User
	Bob     models.User
	Admin   models.User
	Channel models.Channel
	Post    models.Post
	Other   models.Post
}

// Seed inserts a Fixture.
func Seed(t testing.TB, gdb *gorm.DB) *Fixture {
	t.Helper()

	f := &Fixture{
		Alice: models.User{Username: "alice", Password: "x"},
		Bob:   models.User{Username: "bob", Password: "x"},
		Admin: models.User{Username: "admin", Password: "x", IsAdmin: true},
	}
	for _, u := range []*models.User{&f.Alice, &f.Bob, &f.Admin} {
		if err := gdb.Create(u).Error; err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}

	f.Channel = models.Channel{Name: "golang", Description: "gophers", CreatedBy: &f.Alice.ID}
	if err := gdb.Create(&f.Channel).Error; err != nil {
		t.Fatalf("seed channel: %v", err)
	}

	f.Post = models.Post{ChannelID: f.Channel.ID, UserID: f.Alice.ID, Title: "hello", Content: "first"}
	f.Other = models.Post{ChannelID: f.Channel.ID, UserID: f.Bob.ID, Title: "other", Content: "second"}
	for _, p := range []*models.Post{&f.Post, &f.Other} {
		if err := gdb.Create(p).Error; err != nil {
			t.Fatalf("seed post: %v", err)
		}
	}
	return f
}
