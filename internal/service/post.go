package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/inkpost/inkpost/internal/auth"
	"github.com/inkpost/inkpost/internal/metrics"
	"github.com/inkpost/inkpost/internal/model"
	"github.com/inkpost/inkpost/internal/repository"
)

// PostInput carries the allow-listed post fields a client may set.
// A nil field is left unchanged on update and zero on create.
type PostInput struct {
	Title     *string
	Body      *string
	Published *bool
}

// PostService handles the post lifecycle.
type PostService struct {
	posts   PostStore
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewPostService creates a new PostService.
func NewPostService(posts PostStore, logger *slog.Logger, recorder metrics.Recorder) *PostService {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &PostService{posts: posts, logger: logger, metrics: recorder}
}

// List returns every post, oldest first.
func (s *PostService) List(ctx context.Context) ([]*model.Post, error) {
	return s.posts.ListPosts(ctx)
}

// Get retrieves a post by ID.
func (s *PostService) Get(ctx context.Context, id string) (*model.Post, error) {
	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return post, nil
}

// Authorize loads the post and applies the ownership gate for op.
// NotFound is checked before the gate.
func (s *PostService) Authorize(ctx context.Context, user *model.CurrentUser, id string, op auth.Operation) (*model.Post, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if auth.Authorize(user, post, op) != auth.Allow {
		s.metrics.IncAuthorizationDenied()
		s.logger.Info("authorization denied",
			"post_id", post.ID,
			"user_id", userID(user),
			"operation", string(op),
		)
		return nil, ErrNotAuthorized
	}

	return post, nil
}

// Create persists a new post owned by user.
func (s *PostService) Create(ctx context.Context, user *model.CurrentUser, input PostInput) (*model.Post, error) {
	if user == nil {
		return nil, ErrUnauthenticated
	}

	now := time.Now().UTC()
	post := &model.Post{
		ID:        ulid.Make().String(),
		UserID:    user.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyPostInput(post, input)

	if verr := validatePost(post); verr != nil {
		return nil, verr
	}

	if err := s.posts.CreatePost(ctx, post); err != nil {
		// The owner was deleted after the session resolved.
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	s.metrics.IncPostCreated()

	return post, nil
}

// Update applies input to the post if user owns it.
// Changes are validated on a copy, so a failure persists nothing.
func (s *PostService) Update(ctx context.Context, user *model.CurrentUser, id string, input PostInput) (*model.Post, error) {
	current, err := s.Authorize(ctx, user, id, auth.OpUpdate)
	if err != nil {
		return nil, err
	}

	updated := *current
	applyPostInput(&updated, input)

	if verr := validatePost(&updated); verr != nil {
		return nil, verr
	}

	updated.UpdatedAt = time.Now().UTC()

	if err := s.posts.UpdatePost(ctx, &updated); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	s.metrics.IncPostUpdated()

	return &updated, nil
}

// Destroy deletes the post if user owns it.
func (s *PostService) Destroy(ctx context.Context, user *model.CurrentUser, id string) error {
	post, err := s.Authorize(ctx, user, id, auth.OpDestroy)
	if err != nil {
		return err
	}

	if err := s.posts.DeletePost(ctx, post.ID); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return ErrPostNotFound
		}
		return fmt.Errorf("failed to delete post: %w", err)
	}

	s.metrics.IncPostDeleted()

	return nil
}

func applyPostInput(post *model.Post, input PostInput) {
	if input.Title != nil {
		post.Title = *input.Title
	}
	if input.Body != nil {
		post.Body = *input.Body
	}
	if input.Published != nil {
		post.Published = *input.Published
	}
}

func userID(user *model.CurrentUser) string {
	if user == nil {
		return ""
	}
	return user.ID
}
