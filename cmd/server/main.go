// Command blog-server starts the blog HTTP and gRPC servers.
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/jackc/pgx/v5/pgxpool"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	pb "microblog/gen/go/blog/v1"
	"microblog/internal/config"
	"microblog/internal/migrate"
	"microblog/internal/repository/postgres"
	grpcserver "microblog/internal/server/grpc"
	httpserver "microblog/internal/server/http"
	"microblog/internal/service"
	"microblog/internal/token"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main loads configuration, runs migrations, and serves the API over both
// transports until interrupted.
func main() {
	cfg := config.Load()

	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("httpAddr", cfg.HTTPAddr),
		zap.String("grpcAddr", cfg.GRPCAddr),
	)

	if len(cfg.JWTKey) == 0 {
		logger.Fatal("missing jwt signing key (JWT_KEY)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migrate.Up(ctx, cfg.DatabaseDSN); err != nil {
		logger.Fatal("migrate up", zap.Error(err))
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("pgxpool.New", zap.Error(err))
	}
	defer pool.Close()

	// Repositories
	db := &postgres.DB{Pool: pool}
	userRepo := postgres.NewUserRepo(db)
	postRepo := postgres.NewPostRepo(db)

	// Services
	tokens := token.NewService(cfg.JWTKey, cfg.TokenTTL)
	authSvc := service.NewAuthService(userRepo, tokens)
	postSvc := service.NewPostService(postRepo)

	// gRPC server with interceptors
	gs := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			grpcserver.RecoverUnary(logger),
			grpcserver.LoggingUnary(logger),
		),
	)
	pb.RegisterBlogServiceServer(gs, grpcserver.New(authSvc, postSvc, tokens))
	healthpb.RegisterHealthServer(gs, health.NewServer())
	reflection.Register(gs)

	hs := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httpserver.New(authSvc, postSvc, tokens, logger).Router(),
	}

	errCh := make(chan error, 2)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		logger.Fatal("listen grpc", zap.Error(err))
	}
	go func() {
		logger.Info("grpc listening", zap.String("addr", cfg.GRPCAddr))
		errCh <- gs.Serve(lis)
	}()
	go func() {
		logger.Info("http listening", zap.String("addr", cfg.HTTPAddr))
		if err := hs.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = hs.Shutdown(shutdownCtx)

		done := make(chan struct{})
		go func() {
			gs.GracefulStop()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			gs.Stop()
		}
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}
