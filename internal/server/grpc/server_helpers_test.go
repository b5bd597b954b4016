package grpcserver

import (
	"context"
	"testing"
	"time"

	"google.golang.org/grpc/metadata"

	"microblog/internal/token"
)

// ctxWithAuth builds the context a handler sees after the transport has
// delivered the metadata; only for calling server methods directly.
func ctxWithAuth(tok string) context.Context {
	md := metadata.New(map[string]string{
		"authorization": "Bearer " + tok,
	})
	return metadata.NewIncomingContext(context.Background(), md)
}

// authedCtx attaches bearer metadata on the client side of a connection so
// it crosses the wire on real calls.
func authedCtx(tok string) context.Context {
	return metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+tok)
}

func Test_bearerTokenFromMD_OkAndErrors(t *testing.T) {
	t.Parallel()

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer abc.def.ghi"))
	got, err := bearerTokenFromMD(ctx)
	if err != nil || got != "abc.def.ghi" {
		t.Fatalf("ok: got=%q err=%v", got, err)
	}

	ctx = metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Basic foo"))
	if _, err := bearerTokenFromMD(ctx); err == nil {
		t.Fatalf("want error on non-bearer")
	}

	ctx = metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer   "))
	if _, err := bearerTokenFromMD(ctx); err == nil {
		t.Fatalf("want error on empty token")
	}

	if _, err := bearerTokenFromMD(context.Background()); err == nil {
		t.Fatalf("want error on no metadata")
	}
}

func Test_identityFromCtx_Valid(t *testing.T) {
	t.Parallel()

	tokens := token.NewService([]byte("secret"), time.Hour)
	s := &Server{tokens: tokens}

	tok, _, err := tokens.Issue(7, "bob")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	ident, err := s.identityFromCtx(ctxWithAuth(tok))
	if err != nil {
		t.Fatalf("identityFromCtx: %v", err)
	}
	if ident.UserID != 7 || ident.Username != "bob" {
		t.Fatalf("identity mismatch: %+v", ident)
	}
}

func Test_identityFromCtx_NoMetadata(t *testing.T) {
	t.Parallel()

	s := &Server{tokens: token.NewService([]byte("secret"), time.Hour)}
	if _, err := s.identityFromCtx(context.Background()); err == nil {
		t.Fatalf("want error on missing metadata")
	}
}

func Test_identityFromCtx_Expired(t *testing.T) {
	t.Parallel()

	expired := token.NewService([]byte("secret"), -2*time.Hour)
	tok, _, err := expired.Issue(7, "bob")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	s := &Server{tokens: token.NewService([]byte("secret"), time.Hour)}
	if _, err := s.identityFromCtx(ctxWithAuth(tok)); err == nil {
		t.Fatalf("want error on expired token")
	}
}

func Test_identityFromCtx_WrongKey(t *testing.T) {
	t.Parallel()

	other := token.NewService([]byte("other-secret"), time.Hour)
	tok, _, err := other.Issue(7, "bob")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	s := &Server{tokens: token.NewService([]byte("secret"), time.Hour)}
	if _, err := s.identityFromCtx(ctxWithAuth(tok)); err == nil {
		t.Fatalf("want error on wrong key")
	}
}
