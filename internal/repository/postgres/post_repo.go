package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"microblog/internal/errs"
	"microblog/internal/model"
)

// PostRepo implements PostRepository using PostgreSQL.
type PostRepo struct{ db *DB }

// NewPostRepo constructs a post repository.
func NewPostRepo(db *DB) *PostRepo { return &PostRepo{db: db} }

const postColumns = `id, title, content, author_id, created_at, updated_at`

// Create inserts a new post row.
func (r *PostRepo) Create(ctx context.Context, p *model.Post) error {
	const q = `
INSERT INTO posts (title, content, author_id)
VALUES ($1, $2, $3)
RETURNING id, created_at, updated_at`
	return r.db.Pool.QueryRow(ctx, q, p.Title, p.Content, p.AuthorID).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

// GetByID returns a single post by id.
func (r *PostRepo) GetByID(ctx context.Context, id int64) (*model.Post, error) {
	const q = `
SELECT ` + postColumns + `
FROM posts WHERE id=$1`
	return scanPost(r.db.Pool.QueryRow(ctx, q, id))
}

// List returns posts ordered by descending id with limit/offset pagination.
func (r *PostRepo) List(ctx context.Context, limit, offset int64) ([]model.Post, error) {
	const q = `
SELECT ` + postColumns + `
FROM posts ORDER BY id DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.Pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Post{}
	for rows.Next() {
		var p model.Post
		if err = rows.Scan(&p.ID, &p.Title, &p.Content, &p.AuthorID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpdateOwned applies a partial update after verifying ownership. The
// ownership read locks the row (FOR UPDATE) so no concurrent transaction can
// mutate or delete it between the check and the write.
func (r *PostRepo) UpdateOwned(
	ctx context.Context, id, authorID int64, patch model.PostPatch,
) (p *model.Post, err error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			p, err = nil, e
		}
	}()

	if err = ownershipCheck(ctx, tx, id, authorID); err != nil {
		return nil, err
	}

	const upd = `
UPDATE posts
SET title=COALESCE($2, title), content=COALESCE($3, content), updated_at=now()
WHERE id=$1
RETURNING ` + postColumns
	p, err = scanPost(tx.QueryRow(ctx, upd, id, patch.Title, patch.Content))
	if err != nil {
		return nil, err
	}
	return p, nil
}

// DeleteOwned removes the post after verifying ownership, under the same
// row lock as UpdateOwned.
func (r *PostRepo) DeleteOwned(ctx context.Context, id, authorID int64) (err error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = e
		}
	}()

	if err = ownershipCheck(ctx, tx, id, authorID); err != nil {
		return err
	}

	if _, err = tx.Exec(ctx, `DELETE FROM posts WHERE id=$1`, id); err != nil {
		return err
	}
	return nil
}

// ownershipCheck reads the row's author under a row lock. Existence is
// confirmed before ownership, so ErrNotFound and ErrForbidden stay distinct.
func ownershipCheck(ctx context.Context, tx pgx.Tx, id, authorID int64) error {
	const sel = `SELECT author_id FROM posts WHERE id=$1 FOR UPDATE`
	var owner int64
	if err := tx.QueryRow(ctx, sel, id).Scan(&owner); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errs.ErrNotFound
		}
		return err
	}
	if owner != authorID {
		return errs.ErrForbidden
	}
	return nil
}

func scanPost(row pgx.Row) (*model.Post, error) {
	var p model.Post
	if err := row.Scan(&p.ID, &p.Title, &p.Content, &p.AuthorID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
