package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkpost/inkpost/internal/model"
	"github.com/inkpost/inkpost/internal/repository"
)

func TestStore_RejectsMissingOwner(t *testing.T) {
	ctx := context.Background()
	store := New()
	now := time.Now().UTC()

	err := store.CreateSession(ctx, &model.Session{ID: "s1", UserID: "ghost", TokenDigest: "d1", CreatedAt: now})
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	err = store.CreatePost(ctx, &model.Post{ID: "p1", UserID: "ghost", Title: "t", Body: "b", CreatedAt: now, UpdatedAt: now})
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	posts, err := store.ListPosts(ctx)
	require.NoError(t, err)
	assert.Empty(t, posts)
	assert.Equal(t, 0, store.SessionCount("ghost"))
}

func TestStore_DeletedOwnerCannotWrite(t *testing.T) {
	ctx := context.Background()
	store := New()
	now := time.Now().UTC()

	require.NoError(t, store.CreateUser(ctx, &model.User{ID: "u1", EmailAddress: "a@x.com", PasswordDigest: "x"}))
	require.NoError(t, store.CreateSession(ctx, &model.Session{ID: "s1", UserID: "u1", TokenDigest: "d1", CreatedAt: now}))

	digests, err := store.DeleteUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"d1"}, digests)

	err = store.CreatePost(ctx, &model.Post{ID: "p1", UserID: "u1", Title: "t", Body: "b", CreatedAt: now, UpdatedAt: now})
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}
