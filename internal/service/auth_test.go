package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"microblog/internal/errs"
	"microblog/internal/model"
	"microblog/internal/repository"
	"microblog/internal/token"
)

type fakeUsers struct {
	byName map[string]*model.User
	nextID int64

	createErr error
	getErr    error
}

var _ repository.UserRepository = (*fakeUsers)(nil)

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.byName == nil {
		f.byName = map[string]*model.User{}
	}
	if _, exists := f.byName[u.Username]; exists {
		return errs.ErrAlreadyExists
	}
	f.nextID++
	u.ID = f.nextID
	u.CreatedAt = time.Now()
	cpy := *u
	f.byName[u.Username] = &cpy
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	for _, u := range f.byName {
		if u.ID == id {
			c := *u
			return &c, nil
		}
	}
	return nil, errs.ErrUserNotFound
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byName[username]
	if !ok {
		return nil, errs.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func newAuth(users *fakeUsers) *AuthServiceImpl {
	return NewAuthService(users, token.NewService([]byte("test-key"), 24*time.Hour))
}

func TestAuth_Register_Validation(t *testing.T) {
	t.Parallel()
	s := newAuth(&fakeUsers{})

	cases := []struct {
		name                      string
		username, email, password string
	}{
		{"empty username", "", "a@x.com", "password1"},
		{"short username", "ab", "a@x.com", "password1"},
		{"bad email", "alice", "not-an-email", "password1"},
		{"short password", "alice", "a@x.com", "short"},
		{"non-alphanum username", "al ice", "a@x.com", "password1"},
	}
	for _, tc := range cases {
		if _, err := s.Register(context.Background(), tc.username, tc.email, tc.password); !errors.Is(err, errs.ErrInvalidRegistration) {
			t.Fatalf("%s: want ErrInvalidRegistration, got %v", tc.name, err)
		}
	}
}

func TestAuth_Register_OKAndDuplicate(t *testing.T) {
	t.Parallel()
	users := &fakeUsers{byName: map[string]*model.User{}}
	s := newAuth(users)

	res, err := s.Register(context.Background(), "alice", "alice@x.com", "secret123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if res.Token == "" || res.User.ID == 0 {
		t.Fatalf("bad result: %+v", res)
	}
	if res.User.PasswordHash == "secret123" {
		t.Fatalf("password stored in plaintext")
	}

	if _, err := s.Register(context.Background(), "alice", "other@x.com", "secret123"); !errors.Is(err, errs.ErrAlreadyExists) {
		t.Fatalf("want ErrAlreadyExists, got %v", err)
	}
}

func TestAuth_Register_ValidationNeverReachesStorage(t *testing.T) {
	t.Parallel()
	users := &fakeUsers{createErr: errors.New("storage must not be called")}
	s := newAuth(users)

	if _, err := s.Register(context.Background(), "x", "bad", "p"); !errors.Is(err, errs.ErrInvalidRegistration) {
		t.Fatalf("want ErrInvalidRegistration, got %v", err)
	}
}

func TestAuth_Login(t *testing.T) {
	t.Parallel()
	users := &fakeUsers{byName: map[string]*model.User{}}
	s := newAuth(users)

	if _, err := s.Register(context.Background(), "alice", "alice@x.com", "secret123"); err != nil {
		t.Fatalf("seed register: %v", err)
	}

	if _, err := s.Login(context.Background(), "nobody", "secret123"); !errors.Is(err, errs.ErrUserNotFound) {
		t.Fatalf("want ErrUserNotFound, got %v", err)
	}

	if _, err := s.Login(context.Background(), "alice", "wrongpass"); !errors.Is(err, errs.ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials, got %v", err)
	}

	res, err := s.Login(context.Background(), "alice", "secret123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Token == "" || res.User.Username != "alice" {
		t.Fatalf("bad result: %+v", res)
	}
	if time.Until(res.ExpiresAt) <= 0 {
		t.Fatalf("token already expired: %v", res.ExpiresAt)
	}
}

func TestAuth_Login_TokenCarriesIdentity(t *testing.T) {
	t.Parallel()
	users := &fakeUsers{byName: map[string]*model.User{}}
	tokens := token.NewService([]byte("test-key"), time.Hour)
	s := NewAuthService(users, tokens)

	reg, err := s.Register(context.Background(), "alice", "alice@x.com", "secret123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	id, err := tokens.Verify(reg.Token)
	if err != nil {
		t.Fatalf("verify issued token: %v", err)
	}
	if id.UserID != reg.User.ID || id.Username != "alice" {
		t.Fatalf("claims mismatch: %+v vs user %+v", id, reg.User)
	}
}
