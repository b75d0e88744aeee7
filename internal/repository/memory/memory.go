// Package memory is an in-process implementation of the repository methods.
// It backs unit tests that exercise services and handlers without PostgreSQL,
// and mirrors the repository's errors and cascade behaviour.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/inkpost/inkpost/internal/model"
	"github.com/inkpost/inkpost/internal/repository"
)

// Store holds users, sessions and posts in maps guarded by one mutex.
type Store struct {
	mu       sync.RWMutex
	users    map[string]model.User
	sessions map[string]model.Session
	posts    map[string]model.Post
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		users:    make(map[string]model.User),
		sessions: make(map[string]model.Session),
		posts:    make(map[string]model.Post),
	}
}

// CreateUser stores a user. Email uniqueness is case-insensitive.
func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if model.NormalizeEmail(u.EmailAddress) == model.NormalizeEmail(user.EmailAddress) {
			return repository.ErrEmailExists
		}
	}
	s.users[user.ID] = *user
	return nil
}

// GetUserByID returns a copy of the user.
func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}

// GetUserByEmail returns a copy of the user with the given address.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if model.NormalizeEmail(u.EmailAddress) == model.NormalizeEmail(email) {
			return &u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

// DeleteUser removes the user, their sessions and their posts.
func (s *Store) DeleteUser(ctx context.Context, id string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return nil, repository.ErrUserNotFound
	}

	digests := make([]string, 0)
	for sid, sess := range s.sessions {
		if sess.UserID == id {
			digests = append(digests, sess.TokenDigest)
			delete(s.sessions, sid)
		}
	}
	for pid, p := range s.posts {
		if p.UserID == id {
			delete(s.posts, pid)
		}
	}
	delete(s.users, id)

	return digests, nil
}

// CreateSession stores a session. The owner must exist.
func (s *Store) CreateSession(ctx context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[session.UserID]; !ok {
		return repository.ErrUserNotFound
	}
	s.sessions[session.ID] = *session
	return nil
}

// GetSessionUserByDigest resolves a token digest to the session's owner.
func (s *Store) GetSessionUserByDigest(ctx context.Context, digest string) (*model.CurrentUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sess := range s.sessions {
		if sess.TokenDigest != digest {
			continue
		}
		u, ok := s.users[sess.UserID]
		if !ok {
			break
		}
		return &model.CurrentUser{
			ID:            u.ID,
			EmailAddress:  u.EmailAddress,
			SessionID:     sess.ID,
			SessionDigest: digest,
		}, nil
	}
	return nil, repository.ErrSessionNotFound
}

// DeleteSession removes a session by ID.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return repository.ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

// SessionCount returns how many sessions the user has.
func (s *Store) SessionCount(userID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, sess := range s.sessions {
		if sess.UserID == userID {
			n++
		}
	}
	return n
}

// CreatePost stores a post. The owner must exist.
func (s *Store) CreatePost(ctx context.Context, post *model.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[post.UserID]; !ok {
		return repository.ErrUserNotFound
	}
	s.posts[post.ID] = *post
	return nil
}

// GetPostByID returns a copy of the post.
func (s *Store) GetPostByID(ctx context.Context, id string) (*model.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[id]
	if !ok {
		return nil, repository.ErrPostNotFound
	}
	return &p, nil
}

// ListPosts returns every post ordered by creation time, then ID.
func (s *Store) ListPosts(ctx context.Context) ([]*model.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	posts := make([]*model.Post, 0, len(s.posts))
	for _, p := range s.posts {
		p := p
		posts = append(posts, &p)
	}
	sort.Slice(posts, func(i, j int) bool {
		if posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].ID < posts[j].ID
		}
		return posts[i].CreatedAt.Before(posts[j].CreatedAt)
	})
	return posts, nil
}

// UpdatePost replaces the mutable fields of an existing post.
func (s *Store) UpdatePost(ctx context.Context, post *model.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.posts[post.ID]
	if !ok {
		return repository.ErrPostNotFound
	}
	existing.Title = post.Title
	existing.Body = post.Body
	existing.Published = post.Published
	existing.UpdatedAt = post.UpdatedAt
	s.posts[post.ID] = existing
	return nil
}

// DeletePost removes a post.
func (s *Store) DeletePost(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return repository.ErrPostNotFound
	}
	delete(s.posts, id)
	return nil
}
