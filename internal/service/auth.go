// Package service contains application services for authentication and posts.
package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	pkgcrypto "microblog/internal/crypto"
	"microblog/internal/errs"
	"microblog/internal/model"
	"microblog/internal/repository"
	"microblog/internal/token"
)

// AuthService defines registration and login.
type AuthService interface {
	// Register creates a new user and issues a session token.
	Register(ctx context.Context, username, email, password string) (model.AuthResult, error)
	// Login authenticates an existing user and issues a session token.
	Login(ctx context.Context, username, password string) (model.AuthResult, error)
}

// registration is validated at the boundary so malformed input never reaches
// the storage layer.
type registration struct {
	Username string `validate:"required,min=3,max=32,alphanum"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8,max=128"`
}

type AuthServiceImpl struct {
	users    repository.UserRepository
	tokens   *token.Service
	validate *validator.Validate
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, tokens *token.Service) *AuthServiceImpl {
	return &AuthServiceImpl{
		users:    users,
		tokens:   tokens,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Register validates input, hashes the password and creates the account.
func (s *AuthServiceImpl) Register(ctx context.Context, username, email, password string) (model.AuthResult, error) {
	in := registration{Username: username, Email: email, Password: password}
	if err := s.validate.Struct(in); err != nil {
		return model.AuthResult{}, fmt.Errorf("%w: %v", errs.ErrInvalidRegistration, err)
	}

	hash, err := pkgcrypto.HashPassword(password)
	if err != nil {
		return model.AuthResult{}, err
	}

	u := &model.User{Username: username, Email: email, PasswordHash: hash}
	if err := s.users.Create(ctx, u); err != nil {
		return model.AuthResult{}, err
	}
	return s.issue(*u)
}

// Login looks up the user and verifies the password. A missing user and a
// wrong password surface as distinct errors.
func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (model.AuthResult, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return model.AuthResult{}, err
	}

	ok, err := pkgcrypto.VerifyPassword(password, u.PasswordHash)
	if err != nil {
		return model.AuthResult{}, err
	}
	if !ok {
		return model.AuthResult{}, errs.ErrInvalidCredentials
	}
	return s.issue(*u)
}

func (s *AuthServiceImpl) issue(u model.User) (model.AuthResult, error) {
	tok, exp, err := s.tokens.Issue(u.ID, u.Username)
	if err != nil {
		return model.AuthResult{}, err
	}
	return model.AuthResult{Token: tok, ExpiresAt: exp, User: u}, nil
}
