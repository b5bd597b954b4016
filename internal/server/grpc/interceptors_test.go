package grpcserver

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestLoggingUnary_PassesThrough(t *testing.T) {
	t.Parallel()

	ic := LoggingUnary(zap.NewNop())
	info := &grpc.UnaryServerInfo{FullMethod: "/blog.v1.BlogService/GetPost"}

	resp, err := ic(context.Background(), "req", info, func(ctx context.Context, req any) (any, error) {
		return "resp", nil
	})
	if err != nil || resp != "resp" {
		t.Fatalf("ok path: resp=%v err=%v", resp, err)
	}

	wantErr := errors.New("boom")
	_, err = ic(context.Background(), "req", info, func(ctx context.Context, req any) (any, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("error must pass through unchanged, got %v", err)
	}
}

func TestRecoverUnary_ConvertsPanic(t *testing.T) {
	t.Parallel()

	ic := RecoverUnary(zap.NewNop())
	info := &grpc.UnaryServerInfo{FullMethod: "/blog.v1.BlogService/CreatePost"}

	_, err := ic(context.Background(), "req", info, func(ctx context.Context, req any) (any, error) {
		panic("unexpected")
	})
	if status.Code(err) != codes.Internal {
		t.Fatalf("want Internal after panic, got %v", err)
	}
}
