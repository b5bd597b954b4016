// Package grpcserver exposes the blog gRPC API handlers.
package grpcserver

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	pb "microblog/gen/go/blog/v1"
	"microblog/internal/convert"
	"microblog/internal/errs"
	"microblog/internal/service"
	"microblog/internal/token"
)

// Server wires services into gRPC handlers.
type Server struct {
	pb.UnimplementedBlogServiceServer
	auth   service.AuthService
	posts  service.PostService
	tokens *token.Service
}

// New constructs a gRPC server with injected services.
func New(auth service.AuthService, posts service.PostService, tokens *token.Service) *Server {
	return &Server{auth: auth, posts: posts, tokens: tokens}
}

// --- Auth ---

// Register creates a new user account and returns a session token.
func (s *Server) Register(ctx context.Context, req *pb.RegisterRequest) (*pb.RegisterResponse, error) {
	res, err := s.auth.Register(ctx, req.GetUsername(), req.GetEmail(), req.GetPassword())
	if err != nil {
		return nil, statusFromErr(err)
	}
	return &pb.RegisterResponse{Token: res.Token, User: convert.ToProtoUser(res.User)}, nil
}

// Login authenticates a user and returns a session token.
func (s *Server) Login(ctx context.Context, req *pb.LoginRequest) (*pb.LoginResponse, error) {
	res, err := s.auth.Login(ctx, req.GetUsername(), req.GetPassword())
	if err != nil {
		return nil, statusFromErr(err)
	}
	return &pb.LoginResponse{Token: res.Token, User: convert.ToProtoUser(res.User)}, nil
}

// --- Posts ---

// CreatePost creates a post owned by the authenticated user.
func (s *Server) CreatePost(ctx context.Context, req *pb.CreatePostRequest) (*pb.CreatePostResponse, error) {
	ident, err := s.identityFromCtx(ctx)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "no auth")
	}
	p, err := s.posts.Create(ctx, ident.UserID, req.GetTitle(), req.GetContent())
	if err != nil {
		return nil, statusFromErr(err)
	}
	return &pb.CreatePostResponse{Post: convert.ToProtoPost(*p)}, nil
}

// GetPost returns a single post by id. No authentication required.
func (s *Server) GetPost(ctx context.Context, req *pb.GetPostRequest) (*pb.GetPostResponse, error) {
	p, err := s.posts.Get(ctx, req.GetId())
	if err != nil {
		return nil, statusFromErr(err)
	}
	return &pb.GetPostResponse{Post: convert.ToProtoPost(*p)}, nil
}

// ListPosts returns a page of posts, newest first. No authentication required.
func (s *Server) ListPosts(ctx context.Context, req *pb.ListPostsRequest) (*pb.ListPostsResponse, error) {
	ps, err := s.posts.List(ctx, req.GetLimit(), req.GetOffset())
	if err != nil {
		return nil, statusFromErr(err)
	}
	return &pb.ListPostsResponse{Posts: convert.ToProtoPosts(ps)}, nil
}

// UpdatePost applies a partial update to a post owned by the caller.
func (s *Server) UpdatePost(ctx context.Context, req *pb.UpdatePostRequest) (*pb.UpdatePostResponse, error) {
	ident, err := s.identityFromCtx(ctx)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "no auth")
	}
	p, err := s.posts.Update(ctx, ident.UserID, req.GetId(), convert.FromProtoPatch(req))
	if err != nil {
		return nil, statusFromErr(err)
	}
	return &pb.UpdatePostResponse{Post: convert.ToProtoPost(*p)}, nil
}

// DeletePost removes a post owned by the caller.
func (s *Server) DeletePost(ctx context.Context, req *pb.DeletePostRequest) (*pb.DeletePostResponse, error) {
	ident, err := s.identityFromCtx(ctx)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "no auth")
	}
	if err := s.posts.Delete(ctx, ident.UserID, req.GetId()); err != nil {
		return nil, statusFromErr(err)
	}
	return &pb.DeletePostResponse{}, nil
}

// statusFromErr maps domain errors onto gRPC status codes. Anything
// unrecognized becomes an opaque Internal.
func statusFromErr(err error) error {
	switch {
	case errors.Is(err, errs.ErrAlreadyExists):
		return status.Error(codes.AlreadyExists, "already exists")
	case errors.Is(err, errs.ErrInvalidRegistration):
		return status.Errorf(codes.InvalidArgument, "%v", err)
	case errors.Is(err, errs.ErrUserNotFound), errors.Is(err, errs.ErrNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, errs.ErrInvalidCredentials):
		return status.Error(codes.Unauthenticated, "bad credentials")
	case errors.Is(err, errs.ErrForbidden):
		return status.Error(codes.PermissionDenied, "not the author")
	default:
		return status.Error(codes.Internal, "internal")
	}
}

// identityFromCtx extracts "authorization: Bearer <JWT>" metadata and
// verifies the session token.
func (s *Server) identityFromCtx(ctx context.Context) (token.Identity, error) {
	tok, err := bearerTokenFromMD(ctx)
	if err != nil {
		return token.Identity{}, err
	}
	return s.tokens.Verify(tok)
}

func bearerTokenFromMD(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", errors.New("no metadata")
	}
	for _, v := range md.Get("authorization") {
		v = strings.TrimSpace(v)
		if len(v) >= 7 && strings.EqualFold(v[:7], "bearer ") {
			t := strings.TrimSpace(v[7:])
			if t != "" {
				return t, nil
			}
		}
	}
	return "", errors.New("no bearer token")
}
