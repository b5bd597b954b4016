package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"microblog/internal/errs"
)

func TestGRPCErrorMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		fn   func(error) error
		in   error
		want error
	}{
		{"register conflict", mapRegisterErr, status.Error(codes.AlreadyExists, "exists"), errs.ErrAlreadyExists},
		{"register invalid", mapRegisterErr, status.Error(codes.InvalidArgument, "short"), errs.ErrInvalidRegistration},
		{"register internal", mapRegisterErr, status.Error(codes.Internal, "internal"), errs.ErrUnexpected},
		{"login bad creds", mapLoginErr, status.Error(codes.Unauthenticated, "bad"), errs.ErrInvalidCredentials},
		{"login no user", mapLoginErr, status.Error(codes.NotFound, "missing"), errs.ErrUserNotFound},
		{"post not found", mapPostErr, status.Error(codes.NotFound, "missing"), errs.ErrNotFound},
		{"post forbidden", mapPostErr, status.Error(codes.PermissionDenied, "nope"), errs.ErrForbidden},
		{"post stale session", mapPostErr, status.Error(codes.Unauthenticated, "no auth"), errs.ErrSessionInvalid},
		{"post internal", mapPostErr, status.Error(codes.Internal, "internal"), errs.ErrUnexpected},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.ErrorIs(t, tc.fn(tc.in), tc.want)
		})
	}
}

func TestGRPCTransportFailures(t *testing.T) {
	t.Parallel()

	for _, fn := range []func(error) error{mapRegisterErr, mapLoginErr, mapPostErr} {
		require.ErrorIs(t, fn(status.Error(codes.Unavailable, "down")), errs.ErrTransport)
		require.ErrorIs(t, fn(status.Error(codes.DeadlineExceeded, "slow")), errs.ErrTransport)
		require.ErrorIs(t, fn(context.Canceled), errs.ErrTransport)
		require.ErrorIs(t, fn(context.DeadlineExceeded), errs.ErrTransport)
	}
}
