package service

import (
	"context"
	"time"

	"github.com/inkpost/inkpost/internal/model"
)

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// DeleteUser removes the user with their sessions and posts, returning
	// the token digests of the removed sessions.
	DeleteUser(ctx context.Context, id string) ([]string, error)
}

// SessionStore persists sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, session *model.Session) error
	GetSessionUserByDigest(ctx context.Context, digest string) (*model.CurrentUser, error)
	DeleteSession(ctx context.Context, id string) error
}

// PostStore persists posts.
type PostStore interface {
	CreatePost(ctx context.Context, post *model.Post) error
	GetPostByID(ctx context.Context, id string) (*model.Post, error)
	ListPosts(ctx context.Context) ([]*model.Post, error)
	UpdatePost(ctx context.Context, post *model.Post) error
	DeletePost(ctx context.Context, id string) error
}

// SessionCache is a read-through cache of resolved sessions keyed by token digest.
// GetSession returns (nil, nil) on a miss, including for a revoked digest.
// SetSession must not overwrite an existing key, and RevokeSessions must
// keep later SetSession calls for the same digests from taking effect.
type SessionCache interface {
	GetSession(ctx context.Context, digest string) (*model.CurrentUser, error)
	SetSession(ctx context.Context, digest string, user *model.CurrentUser, ttl time.Duration) error
	RevokeSessions(ctx context.Context, digests ...string) error
}

type noopSessionCache struct{}

func (noopSessionCache) GetSession(context.Context, string) (*model.CurrentUser, error) {
	return nil, nil
}

func (noopSessionCache) SetSession(context.Context, string, *model.CurrentUser, time.Duration) error {
	return nil
}

func (noopSessionCache) RevokeSessions(context.Context, ...string) error {
	return nil
}
