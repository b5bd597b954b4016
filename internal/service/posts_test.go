package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"microblog/internal/errs"
	"microblog/internal/model"
	"microblog/internal/repository"
)

type fakePosts struct {
	byID   map[int64]*model.Post
	nextID int64
}

var _ repository.PostRepository = (*fakePosts)(nil)

func (f *fakePosts) Create(_ context.Context, p *model.Post) error {
	if f.byID == nil {
		f.byID = map[int64]*model.Post{}
	}
	f.nextID++
	p.ID = f.nextID
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cpy := *p
	f.byID[p.ID] = &cpy
	return nil
}

func (f *fakePosts) GetByID(_ context.Context, id int64) (*model.Post, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (f *fakePosts) List(_ context.Context, limit, offset int64) ([]model.Post, error) {
	ids := make([]int64, 0, len(f.byID))
	for id := range f.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })

	out := []model.Post{}
	for i, id := range ids {
		if int64(i) < offset {
			continue
		}
		if int64(len(out)) == limit {
			break
		}
		out = append(out, *f.byID[id])
	}
	return out, nil
}

func (f *fakePosts) UpdateOwned(_ context.Context, id, authorID int64, patch model.PostPatch) (*model.Post, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	if p.AuthorID != authorID {
		return nil, errs.ErrForbidden
	}
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Content != nil {
		p.Content = *patch.Content
	}
	p.UpdatedAt = p.UpdatedAt.Add(time.Millisecond)
	c := *p
	return &c, nil
}

func (f *fakePosts) DeleteOwned(_ context.Context, id, authorID int64) error {
	p, ok := f.byID[id]
	if !ok {
		return errs.ErrNotFound
	}
	if p.AuthorID != authorID {
		return errs.ErrForbidden
	}
	delete(f.byID, id)
	return nil
}

func TestPosts_CreateAndRoundTrip(t *testing.T) {
	t.Parallel()
	s := NewPostService(&fakePosts{})

	if _, err := s.Create(context.Background(), 1, "", "C"); err == nil {
		t.Fatalf("want validation error on empty title")
	}

	created, err := s.Create(context.Background(), 1, "T", "C")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := s.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "T" || got.Content != "C" || got.AuthorID != 1 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestPosts_List_ClampsAndOrders(t *testing.T) {
	t.Parallel()
	repo := &fakePosts{}
	s := NewPostService(repo)

	for i := 0; i < 5; i++ {
		if _, err := s.Create(context.Background(), 1, "t", "c"); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	out, err := s.List(context.Background(), 2, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(out) != 2 || out[0].ID != 5 || out[1].ID != 4 {
		t.Fatalf("want ids [5 4], got %+v", out)
	}

	// limit <= 0 falls back to the default
	out, err = s.List(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("List default: %v", err)
	}
	if len(out) != 5 {
		t.Fatalf("want all 5 posts, got %d", len(out))
	}

	// offset past the end is an empty success
	out, err = s.List(context.Background(), 10, 100)
	if err != nil || len(out) != 0 {
		t.Fatalf("want empty page, got %v / %v", out, err)
	}
}

func TestPosts_UpdateAndDelete_GuardOutcomes(t *testing.T) {
	t.Parallel()
	repo := &fakePosts{}
	s := NewPostService(repo)

	created, err := s.Create(context.Background(), 1, "T", "C")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	hack := "hack"
	if _, err := s.Update(context.Background(), 2, created.ID, model.PostPatch{Content: &hack}); !errors.Is(err, errs.ErrForbidden) {
		t.Fatalf("want ErrForbidden for non-owner, got %v", err)
	}
	still, _ := s.Get(context.Background(), created.ID)
	if still.Content != "C" {
		t.Fatalf("content mutated by forbidden update: %q", still.Content)
	}

	if err := s.Delete(context.Background(), 2, created.ID); !errors.Is(err, errs.ErrForbidden) {
		t.Fatalf("want ErrForbidden on delete, got %v", err)
	}

	neu := "new"
	updated, err := s.Update(context.Background(), 1, created.ID, model.PostPatch{Content: &neu})
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if updated.Title != "T" || updated.Content != "new" {
		t.Fatalf("partial update broke title: %+v", updated)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Fatalf("updated_at not refreshed")
	}

	if err := s.Delete(context.Background(), 1, created.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, err := s.Get(context.Background(), created.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("want ErrNotFound after delete, got %v", err)
	}
}
