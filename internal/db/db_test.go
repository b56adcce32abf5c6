package db

import (
	"path/filepath"
	"testing"

	"chanboard/internal/config"
	"chanboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestOpenSQLiteAndSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forum.db")
	gdb, err := Open(config.DatabaseConfig{Driver: "sqlite", SQLitePath: path})
	require.NoError(t, err)

	require.NoError(t, Seed(gdb, "root", "s3cret"))
	// second run is a no-op
	require.NoError(t, Seed(gdb, "root", "s3cret"))

	var users []models.User
	require.NoError(t, gdb.Find(&users).Error)
	require.Len(t, users, 1)
	assert.True(t, users[0].IsAdmin)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(users[0].Password), []byte("s3cret")))

	var channels []models.Channel
	require.NoError(t, gdb.Find(&channels).Error)
	require.Len(t, channels, 1)
	assert.Equal(t, "general", channels[0].Name)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}
