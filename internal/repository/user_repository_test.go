package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pongping/internal/model"
)

func newTestRepo(t *testing.T) *UserRepository {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "nested", "users.db"))
	require.NoError(t, err)
	repo := NewUserRepository(db)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func strPtr(s string) *string { return &s }

func TestUpsertUserIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	u := model.User{ID: 42, Username: strPtr("alice"), FirstName: "Alice"}
	require.NoError(t, repo.UpsertUser(ctx, u))
	require.NoError(t, repo.UpsertUser(ctx, u))

	n, err := repo.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestUpsertUserOverwritesProfile(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	require.NoError(t, repo.UpsertUser(ctx, model.User{ID: 7, Username: strPtr("old"), FirstName: "Old"}))
	require.NoError(t, repo.UpsertUser(ctx, model.User{ID: 7, FirstName: "New", LastName: strPtr("Name")}))

	got, err := repo.FindByID(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "New", got.FirstName)
	assert.Nil(t, got.Username)
	require.NotNil(t, got.LastName)
	assert.Equal(t, "Name", *got.LastName)
}

func TestNewDBRejectsEmptyDSN(t *testing.T) {
	_, err := NewDB("")
	require.Error(t, err)
}
