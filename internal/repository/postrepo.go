package repository

import (
	"context"

	"microblog/internal/model"
)

// PostRepository provides access to posts, including the transactional
// ownership guard for mutations.
type PostRepository interface {
	// Create inserts a new post and fills ID, CreatedAt and UpdatedAt.
	Create(ctx context.Context, p *model.Post) error

	// GetByID returns a single post by ID.
	GetByID(ctx context.Context, id int64) (*model.Post, error)

	// List returns up to limit posts ordered by descending id, skipping
	// offset rows. An empty result is not an error.
	List(ctx context.Context, limit, offset int64) ([]model.Post, error)

	// UpdateOwned applies a partial update if authorID owns the post,
	// refreshing updated_at unconditionally. Ownership is checked and the
	// mutation applied inside one transaction with the row locked.
	UpdateOwned(ctx context.Context, id, authorID int64, patch model.PostPatch) (*model.Post, error)

	// DeleteOwned removes the post if authorID owns it, under the same
	// transactional guard as UpdateOwned.
	DeleteOwned(ctx context.Context, id, authorID int64) error
}
