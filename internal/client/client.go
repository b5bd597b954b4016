// Package client provides a transport-agnostic API client for the blog
// server. The same operations run over JSON/HTTP or gRPC; both backends
// translate their wire failures into the shared domain error set, so callers
// switch transports without changing error handling.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"microblog/internal/errs"
	"microblog/internal/model"
)

// Transport selects the wire protocol.
type Transport string

const (
	TransportHTTP Transport = "http"
	TransportGRPC Transport = "grpc"
)

// defaultTimeout bounds a single call when the caller's context carries no
// deadline of its own.
const defaultTimeout = 30 * time.Second

// backend is a protocol-specific implementation of the blog API.
type backend interface {
	Close() error
	Register(ctx context.Context, username, email, password string) (model.AuthResult, error)
	Login(ctx context.Context, username, password string) (model.AuthResult, error)
	CreatePost(ctx context.Context, token, title, content string) (model.Post, error)
	GetPost(ctx context.Context, id int64) (model.Post, error)
	ListPosts(ctx context.Context, limit, offset int64) ([]model.Post, error)
	UpdatePost(ctx context.Context, token string, id int64, patch model.PostPatch) (model.Post, error)
	DeletePost(ctx context.Context, token string, id int64) error
}

// Client is the transport-agnostic API client. It caches the session token
// from the last successful Register or Login and attaches it to mutating
// calls.
type Client struct {
	backend backend
	token   string
}

// New constructs a client for the given transport and server address.
func New(transport Transport, addr string) (*Client, error) {
	switch transport {
	case TransportHTTP:
		return &Client{backend: newHTTPBackend(addr)}, nil
	case TransportGRPC:
		be, err := newGRPCBackend(addr)
		if err != nil {
			return nil, err
		}
		return &Client{backend: be}, nil
	default:
		return nil, fmt.Errorf("unknown transport %q", transport)
	}
}

// newWithBackend is the injection point for tests.
func newWithBackend(be backend) *Client { return &Client{backend: be} }

// Token returns the cached session token, empty when no session is active.
func (c *Client) Token() string { return c.token }

// SetToken installs a previously persisted session token.
func (c *Client) SetToken(token string) { c.token = token }

// Close releases backend resources.
func (c *Client) Close() error { return c.backend.Close() }

func withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, defaultTimeout)
}

// Register creates an account and caches the returned session token.
func (c *Client) Register(ctx context.Context, username, email, password string) (model.AuthResult, error) {
	ctx, cancel := withDeadline(ctx)
	defer cancel()

	res, err := c.backend.Register(ctx, username, email, password)
	if err != nil {
		return model.AuthResult{}, err
	}
	c.token = res.Token
	if res.ExpiresAt.IsZero() {
		res.ExpiresAt = tokenExpiry(res.Token)
	}
	return res, nil
}

// Login authenticates and caches the returned session token.
func (c *Client) Login(ctx context.Context, username, password string) (model.AuthResult, error) {
	ctx, cancel := withDeadline(ctx)
	defer cancel()

	res, err := c.backend.Login(ctx, username, password)
	if err != nil {
		return model.AuthResult{}, err
	}
	c.token = res.Token
	if res.ExpiresAt.IsZero() {
		res.ExpiresAt = tokenExpiry(res.Token)
	}
	return res, nil
}

// tokenExpiry reads the exp claim without verifying the signature; the
// client only needs it to know when the persisted session goes stale.
func tokenExpiry(tok string) time.Time {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tok, &claims); err != nil || claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}

// CreatePost creates a post owned by the current session user. Fails with
// ErrSessionMissing before any wire call when no token is cached.
func (c *Client) CreatePost(ctx context.Context, title, content string) (model.Post, error) {
	if c.token == "" {
		return model.Post{}, errs.ErrSessionMissing
	}
	ctx, cancel := withDeadline(ctx)
	defer cancel()
	return c.backend.CreatePost(ctx, c.token, title, content)
}

// GetPost fetches a single post. No session required.
func (c *Client) GetPost(ctx context.Context, id int64) (model.Post, error) {
	ctx, cancel := withDeadline(ctx)
	defer cancel()
	return c.backend.GetPost(ctx, id)
}

// ListPosts fetches a page of posts, newest first. No session required.
func (c *Client) ListPosts(ctx context.Context, limit, offset int64) ([]model.Post, error) {
	ctx, cancel := withDeadline(ctx)
	defer cancel()
	return c.backend.ListPosts(ctx, limit, offset)
}

// UpdatePost applies a partial update to an owned post. Fails with
// ErrSessionMissing before any wire call when no token is cached.
func (c *Client) UpdatePost(ctx context.Context, id int64, patch model.PostPatch) (model.Post, error) {
	if c.token == "" {
		return model.Post{}, errs.ErrSessionMissing
	}
	ctx, cancel := withDeadline(ctx)
	defer cancel()
	return c.backend.UpdatePost(ctx, c.token, id, patch)
}

// DeletePost removes an owned post. Fails with ErrSessionMissing before any
// wire call when no token is cached.
func (c *Client) DeletePost(ctx context.Context, id int64) error {
	if c.token == "" {
		return errs.ErrSessionMissing
	}
	ctx, cancel := withDeadline(ctx)
	defer cancel()
	return c.backend.DeletePost(ctx, c.token, id)
}
