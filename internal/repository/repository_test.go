package repository

import (
	"context"
	"testing"

	"chanboard/internal/models"
	"chanboard/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newRepo(t *testing.T) (*Repository, *gorm.DB, *testutil.Fixture) {
	t.Helper()
	gdb := testutil.NewDB(t)
	return New(gdb), gdb, testutil.Seed(t, gdb)
}

func mustReply(t *testing.T, repo *Repository, postID uint, parent *models.Reply, author uint, content string) *models.Reply {
	t.Helper()
	var parentID *uint
	if parent != nil {
		parentID = &parent.ID
	}
	r, err := repo.CreateReply(context.Background(), postID, parentID, author, content)
	require.NoError(t, err)
	return r
}

func count(t *testing.T, gdb *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, gdb.Model(model).Where(query, args...).Count(&n).Error)
	return n
}
