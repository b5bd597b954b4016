package client

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	pb "microblog/gen/go/blog/v1"
	"microblog/internal/convert"
	"microblog/internal/errs"
	"microblog/internal/model"
)

// grpcBackend speaks the binary RPC API.
type grpcBackend struct {
	conn   *grpc.ClientConn
	client pb.BlogServiceClient
}

func newGRPCBackend(addr string) (*grpcBackend, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrTransport, err)
	}
	return &grpcBackend{conn: conn, client: pb.NewBlogServiceClient(conn)}, nil
}

func (b *grpcBackend) Close() error { return b.conn.Close() }

func withBearer(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
}

// Code mapping tables, one per operation group. Connection-level failures
// collapse into ErrTransport regardless of the operation.

func mapTransportErr(err error) (error, bool) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return errs.ErrTransport, true
	}
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled:
		return errs.ErrTransport, true
	}
	return nil, false
}

func mapRegisterErr(err error) error {
	if terr, ok := mapTransportErr(err); ok {
		return terr
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("%w: %v", errs.ErrUnexpected, err)
	}
	switch st.Code() {
	case codes.AlreadyExists:
		return errs.ErrAlreadyExists
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", errs.ErrInvalidRegistration, st.Message())
	default:
		return fmt.Errorf("%w: %s", errs.ErrUnexpected, st.Code())
	}
}

func mapLoginErr(err error) error {
	if terr, ok := mapTransportErr(err); ok {
		return terr
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("%w: %v", errs.ErrUnexpected, err)
	}
	switch st.Code() {
	case codes.Unauthenticated:
		return errs.ErrInvalidCredentials
	case codes.NotFound:
		return errs.ErrUserNotFound
	default:
		return fmt.Errorf("%w: %s", errs.ErrUnexpected, st.Code())
	}
}

func mapPostErr(err error) error {
	if terr, ok := mapTransportErr(err); ok {
		return terr
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("%w: %v", errs.ErrUnexpected, err)
	}
	switch st.Code() {
	case codes.NotFound:
		return errs.ErrNotFound
	case codes.PermissionDenied:
		return errs.ErrForbidden
	case codes.Unauthenticated:
		return errs.ErrSessionInvalid
	default:
		return fmt.Errorf("%w: %s", errs.ErrUnexpected, st.Code())
	}
}

func (b *grpcBackend) Register(ctx context.Context, username, email, password string) (model.AuthResult, error) {
	resp, err := b.client.Register(ctx, &pb.RegisterRequest{Username: username, Email: email, Password: password})
	if err != nil {
		return model.AuthResult{}, mapRegisterErr(err)
	}
	u, err := convert.FromProtoUser(resp.GetUser())
	if err != nil {
		return model.AuthResult{}, fmt.Errorf("%w: %v", errs.ErrUnexpected, err)
	}
	return model.AuthResult{Token: resp.GetToken(), User: u}, nil
}

func (b *grpcBackend) Login(ctx context.Context, username, password string) (model.AuthResult, error) {
	resp, err := b.client.Login(ctx, &pb.LoginRequest{Username: username, Password: password})
	if err != nil {
		return model.AuthResult{}, mapLoginErr(err)
	}
	u, err := convert.FromProtoUser(resp.GetUser())
	if err != nil {
		return model.AuthResult{}, fmt.Errorf("%w: %v", errs.ErrUnexpected, err)
	}
	return model.AuthResult{Token: resp.GetToken(), User: u}, nil
}

func (b *grpcBackend) CreatePost(ctx context.Context, token, title, content string) (model.Post, error) {
	resp, err := b.client.CreatePost(withBearer(ctx, token), &pb.CreatePostRequest{Title: title, Content: content})
	if err != nil {
		return model.Post{}, mapPostErr(err)
	}
	p, err := convert.FromProtoPost(resp.GetPost())
	if err != nil {
		return model.Post{}, fmt.Errorf("%w: %v", errs.ErrUnexpected, err)
	}
	return p, nil
}

func (b *grpcBackend) GetPost(ctx context.Context, id int64) (model.Post, error) {
	resp, err := b.client.GetPost(ctx, &pb.GetPostRequest{Id: id})
	if err != nil {
		return model.Post{}, mapPostErr(err)
	}
	p, err := convert.FromProtoPost(resp.GetPost())
	if err != nil {
		return model.Post{}, fmt.Errorf("%w: %v", errs.ErrUnexpected, err)
	}
	return p, nil
}

func (b *grpcBackend) ListPosts(ctx context.Context, limit, offset int64) ([]model.Post, error) {
	resp, err := b.client.ListPosts(ctx, &pb.ListPostsRequest{Limit: limit, Offset: offset})
	if err != nil {
		return nil, mapPostErr(err)
	}
	ps, err := convert.FromProtoPosts(resp.GetPosts())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrUnexpected, err)
	}
	return ps, nil
}

func (b *grpcBackend) UpdatePost(ctx context.Context, token string, id int64, patch model.PostPatch) (model.Post, error) {
	resp, err := b.client.UpdatePost(withBearer(ctx, token), convert.ToProtoPatch(id, patch))
	if err != nil {
		return model.Post{}, mapPostErr(err)
	}
	p, err := convert.FromProtoPost(resp.GetPost())
	if err != nil {
		return model.Post{}, fmt.Errorf("%w: %v", errs.ErrUnexpected, err)
	}
	return p, nil
}

func (b *grpcBackend) DeletePost(ctx context.Context, token string, id int64) error {
	if _, err := b.client.DeletePost(withBearer(ctx, token), &pb.DeletePostRequest{Id: id}); err != nil {
		return mapPostErr(err)
	}
	return nil
}
