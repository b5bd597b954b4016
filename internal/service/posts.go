package service

import (
	"context"
	"errors"

	"microblog/internal/model"
	"microblog/internal/repository"
)

// Pagination bounds for listing posts.
const (
	DefaultListLimit = 10
	maxListLimit     = 100
)

// PostService defines operations over posts.
type PostService interface {
	// Create stores a new post owned by authorID.
	Create(ctx context.Context, authorID int64, title, content string) (*model.Post, error)
	// Get returns a single post by id; no authentication required.
	Get(ctx context.Context, id int64) (*model.Post, error)
	// List returns up to limit posts ordered by descending id.
	List(ctx context.Context, limit, offset int64) ([]model.Post, error)
	// Update applies a partial update if userID owns the post.
	Update(ctx context.Context, userID, id int64, patch model.PostPatch) (*model.Post, error)
	// Delete removes the post if userID owns it.
	Delete(ctx context.Context, userID, id int64) error
}

type PostServiceImpl struct {
	repo repository.PostRepository
}

// NewPostService constructs PostService.
func NewPostService(repo repository.PostRepository) *PostServiceImpl {
	return &PostServiceImpl{repo: repo}
}

// Create validates input and stores the post with the caller as author.
func (s *PostServiceImpl) Create(ctx context.Context, authorID int64, title, content string) (*model.Post, error) {
	if title == "" || content == "" {
		return nil, errors.New("validation: empty title/content")
	}
	p := &model.Post{Title: title, Content: content, AuthorID: authorID}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Get fetches a single post by id.
func (s *PostServiceImpl) Get(ctx context.Context, id int64) (*model.Post, error) {
	return s.repo.GetByID(ctx, id)
}

// List clamps pagination parameters and delegates to the repository. An
// empty page is a success.
func (s *PostServiceImpl) List(ctx context.Context, limit, offset int64) ([]model.Post, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}

// Update delegates the ownership-guarded partial update to the repository.
func (s *PostServiceImpl) Update(ctx context.Context, userID, id int64, patch model.PostPatch) (*model.Post, error) {
	return s.repo.UpdateOwned(ctx, id, userID, patch)
}

// Delete delegates the ownership-guarded removal to the repository.
func (s *PostServiceImpl) Delete(ctx context.Context, userID, id int64) error {
	return s.repo.DeleteOwned(ctx, id, userID)
}
