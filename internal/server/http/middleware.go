package httpserver

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"microblog/internal/token"
)

type ctxKey string

const identityKey ctxKey = "blog.identity"

func withIdentity(ctx context.Context, ident token.Identity) context.Context {
	return context.WithValue(ctx, identityKey, ident)
}

// identityFromCtx fetches the authenticated identity stored by the auth
// middleware.
func identityFromCtx(ctx context.Context) (token.Identity, bool) {
	ident, ok := ctx.Value(identityKey).(token.Identity)
	return ident, ok
}

// authMiddleware extracts "Authorization: Bearer <JWT>" and verifies the
// session token. Requests without a valid token never reach the handler.
func authMiddleware(tokens *token.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				respondError(w, http.StatusUnauthorized, "authorization token required")
				return
			}
			ident, err := tokens.Verify(raw)
			if err != nil {
				respondDomainErr(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), ident)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	v := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(v) >= 7 && strings.EqualFold(v[:7], "bearer ") {
		if t := strings.TrimSpace(v[7:]); t != "" {
			return t, true
		}
	}
	return "", false
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs one line per request. Payloads are never logged,
// only request metadata.
func loggingMiddleware(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID, _ := uuid.NewV4()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			log.Info("http",
				zap.String("req_id", reqID.String()),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("dur", time.Since(start)),
				zap.String("remote", r.RemoteAddr),
			)
		})
	}
}
