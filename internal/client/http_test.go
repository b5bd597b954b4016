package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"microblog/internal/errs"
	"microblog/internal/model"
)

func TestHTTPBackend_RegisterAndCreate(t *testing.T) {
	t.Parallel()

	var gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/register":
			require.Equal(t, http.MethodPost, r.Method)
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "alice", body["username"])
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"token":"tok","user":{"id":1,"username":"alice","email":"a@example.com","created_at":"2025-03-01T10:00:00Z"}}`))
		case "/api/posts":
			gotAuth = r.Header.Get("Authorization")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":2,"title":"t","content":"c","author_id":1,"created_at":"2025-03-01T10:00:00Z","updated_at":"2025-03-01T10:00:00Z"}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer ts.Close()

	c := newWithBackend(newHTTPBackend(ts.URL))
	res, err := c.Register(context.Background(), "alice", "a@example.com", "longenough")
	require.NoError(t, err)
	require.Equal(t, "tok", res.Token)
	require.Equal(t, "alice", res.User.Username)

	p, err := c.CreatePost(context.Background(), "t", "c")
	require.NoError(t, err)
	require.Equal(t, int64(2), p.ID)
	require.Equal(t, "Bearer tok", gotAuth)
}

func TestHTTPBackend_StatusMapping(t *testing.T) {
	t.Parallel()

	status := make(chan int, 1)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(<-status)
		_, _ = w.Write([]byte(`{"error":"x"}`))
	}))
	defer ts.Close()

	be := newHTTPBackend(ts.URL)
	ctx := context.Background()

	status <- http.StatusConflict
	_, err := be.Register(ctx, "u", "e@example.com", "longenough")
	require.ErrorIs(t, err, errs.ErrAlreadyExists)

	status <- http.StatusBadRequest
	_, err = be.Register(ctx, "u", "e@example.com", "longenough")
	require.ErrorIs(t, err, errs.ErrInvalidRegistration)

	status <- http.StatusUnauthorized
	_, err = be.Login(ctx, "u", "p")
	require.ErrorIs(t, err, errs.ErrInvalidCredentials)

	status <- http.StatusNotFound
	_, err = be.Login(ctx, "ghost", "p")
	require.ErrorIs(t, err, errs.ErrUserNotFound)

	status <- http.StatusNotFound
	_, err = be.GetPost(ctx, 404)
	require.ErrorIs(t, err, errs.ErrNotFound)

	status <- http.StatusForbidden
	_, err = be.UpdatePost(ctx, "tok", 1, model.PostPatch{})
	require.ErrorIs(t, err, errs.ErrForbidden)

	status <- http.StatusUnauthorized
	err = be.DeletePost(ctx, "stale", 1)
	require.ErrorIs(t, err, errs.ErrSessionInvalid)

	status <- http.StatusTeapot
	_, err = be.GetPost(ctx, 1)
	require.ErrorIs(t, err, errs.ErrUnexpected)
}

func TestHTTPBackend_ConnectionFailureIsTransport(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // nothing listens anymore

	be := newHTTPBackend(ts.URL)
	_, err := be.GetPost(context.Background(), 1)
	require.ErrorIs(t, err, errs.ErrTransport)
}

func TestHTTPBackend_PatchOmitsAbsentFields(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]*string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, hasTitle := body["title"]
		require.False(t, hasTitle, "absent title must not be sent")
		require.NotNil(t, body["content"])
		_, _ = w.Write([]byte(`{"id":1,"title":"kept","content":"new","author_id":1,"created_at":"2025-03-01T10:00:00Z","updated_at":"2025-03-01T11:00:00Z"}`))
	}))
	defer ts.Close()

	content := "new"
	be := newHTTPBackend(ts.URL)
	p, err := be.UpdatePost(context.Background(), "tok", 1, model.PostPatch{Content: &content})
	require.NoError(t, err)
	require.Equal(t, "kept", p.Title)
}
