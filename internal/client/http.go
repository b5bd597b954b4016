package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"microblog/internal/errs"
	"microblog/internal/model"
)

// httpBackend speaks the JSON/HTTP API.
type httpBackend struct {
	baseURL string
	hc      *http.Client
}

func newHTTPBackend(addr string) *httpBackend {
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	return &httpBackend{
		baseURL: strings.TrimRight(addr, "/"),
		hc:      &http.Client{},
	}
}

func (b *httpBackend) Close() error { return nil }

// Wire shapes mirror the server's JSON API.
type wireUser struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

type wirePost struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	AuthorID  int64  `json:"author_id"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type wireAuth struct {
	Token string   `json:"token"`
	User  wireUser `json:"user"`
}

func (u wireUser) toModel() (model.User, error) {
	created, err := time.Parse(time.RFC3339, u.CreatedAt)
	if err != nil {
		return model.User{}, fmt.Errorf("%w: bad created_at %q", errs.ErrUnexpected, u.CreatedAt)
	}
	return model.User{ID: u.ID, Username: u.Username, Email: u.Email, CreatedAt: created}, nil
}

func (p wirePost) toModel() (model.Post, error) {
	created, err := time.Parse(time.RFC3339, p.CreatedAt)
	if err != nil {
		return model.Post{}, fmt.Errorf("%w: bad created_at %q", errs.ErrUnexpected, p.CreatedAt)
	}
	updated, err := time.Parse(time.RFC3339, p.UpdatedAt)
	if err != nil {
		return model.Post{}, fmt.Errorf("%w: bad updated_at %q", errs.ErrUnexpected, p.UpdatedAt)
	}
	return model.Post{ID: p.ID, Title: p.Title, Content: p.Content, AuthorID: p.AuthorID,
		CreatedAt: created, UpdatedAt: updated}, nil
}

// do runs one request and decodes a success body into out (skipped when out
// is nil). Non-2xx statuses are mapped through mapStatus; connection-level
// failures become ErrTransport.
func (b *httpBackend) do(ctx context.Context, method, path, token string, in, out any, mapStatus func(int) error) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%w: encode request: %v", errs.ErrUnexpected, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", errs.ErrUnexpected, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := b.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return mapStatus(resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", errs.ErrUnexpected, err)
	}
	return nil
}

// Status mapping tables, one per operation group.

func mapRegisterStatus(code int) error {
	switch code {
	case http.StatusBadRequest:
		return errs.ErrInvalidRegistration
	case http.StatusConflict:
		return errs.ErrAlreadyExists
	default:
		return fmt.Errorf("%w: http %d", errs.ErrUnexpected, code)
	}
}

func mapLoginStatus(code int) error {
	switch code {
	case http.StatusUnauthorized:
		return errs.ErrInvalidCredentials
	case http.StatusNotFound:
		return errs.ErrUserNotFound
	default:
		return fmt.Errorf("%w: http %d", errs.ErrUnexpected, code)
	}
}

func mapPostStatus(code int) error {
	switch code {
	case http.StatusNotFound:
		return errs.ErrNotFound
	case http.StatusForbidden:
		return errs.ErrForbidden
	case http.StatusUnauthorized:
		return errs.ErrSessionInvalid
	default:
		return fmt.Errorf("%w: http %d", errs.ErrUnexpected, code)
	}
}

func (b *httpBackend) Register(ctx context.Context, username, email, password string) (model.AuthResult, error) {
	in := map[string]string{"username": username, "email": email, "password": password}
	var out wireAuth
	if err := b.do(ctx, http.MethodPost, "/api/auth/register", "", in, &out, mapRegisterStatus); err != nil {
		return model.AuthResult{}, err
	}
	u, err := out.User.toModel()
	if err != nil {
		return model.AuthResult{}, err
	}
	return model.AuthResult{Token: out.Token, User: u}, nil
}

func (b *httpBackend) Login(ctx context.Context, username, password string) (model.AuthResult, error) {
	in := map[string]string{"username": username, "password": password}
	var out wireAuth
	if err := b.do(ctx, http.MethodPost, "/api/auth/login", "", in, &out, mapLoginStatus); err != nil {
		return model.AuthResult{}, err
	}
	u, err := out.User.toModel()
	if err != nil {
		return model.AuthResult{}, err
	}
	return model.AuthResult{Token: out.Token, User: u}, nil
}

func (b *httpBackend) CreatePost(ctx context.Context, token, title, content string) (model.Post, error) {
	in := map[string]string{"title": title, "content": content}
	var out wirePost
	if err := b.do(ctx, http.MethodPost, "/api/posts", token, in, &out, mapPostStatus); err != nil {
		return model.Post{}, err
	}
	return out.toModel()
}

func (b *httpBackend) GetPost(ctx context.Context, id int64) (model.Post, error) {
	var out wirePost
	if err := b.do(ctx, http.MethodGet, fmt.Sprintf("/api/posts/%d", id), "", nil, &out, mapPostStatus); err != nil {
		return model.Post{}, err
	}
	return out.toModel()
}

func (b *httpBackend) ListPosts(ctx context.Context, limit, offset int64) ([]model.Post, error) {
	path := fmt.Sprintf("/api/posts?limit=%d&offset=%d", limit, offset)
	var out []wirePost
	if err := b.do(ctx, http.MethodGet, path, "", nil, &out, mapPostStatus); err != nil {
		return nil, err
	}
	posts := make([]model.Post, 0, len(out))
	for _, wp := range out {
		p, err := wp.toModel()
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, nil
}

func (b *httpBackend) UpdatePost(ctx context.Context, token string, id int64, patch model.PostPatch) (model.Post, error) {
	in := map[string]*string{}
	if patch.Title != nil {
		in["title"] = patch.Title
	}
	if patch.Content != nil {
		in["content"] = patch.Content
	}
	var out wirePost
	if err := b.do(ctx, http.MethodPut, fmt.Sprintf("/api/posts/%d", id), token, in, &out, mapPostStatus); err != nil {
		return model.Post{}, err
	}
	return out.toModel()
}

func (b *httpBackend) DeletePost(ctx context.Context, token string, id int64) error {
	return b.do(ctx, http.MethodDelete, fmt.Sprintf("/api/posts/%d", id), token, nil, nil, mapPostStatus)
}
