package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"resto-system/config"
	"resto-system/internal/database"
	"resto-system/internal/events"
	"resto-system/internal/gateway"
	"resto-system/internal/health"
	"resto-system/internal/logger"
	"resto-system/internal/observability"
	"resto-system/internal/services/inventory"
	"resto-system/internal/services/pos"
)

const (
	shutdownTimeout     = 10 * time.Second
	healthCheckInterval = 15 * time.Second
)

func main() {
	cfg := config.LoadConfig()

	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, zl *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.Telemetry)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	db, err := database.NewConnection(cfg.DB.DSN)
	if err != nil {
		return err
	}
	if cfg.DB.MigrateOnStart {
		if err := database.Migrate(db); err != nil {
			return err
		}
		zl.Info("database migrated")
	}

	var publisher events.Publisher = events.NopPublisher{}
	var redisClient *redis.Client
	if rdb, err := config.NewRedisClient(ctx, cfg.Redis); err != nil {
		zl.Warn("redis unavailable, domain events disabled", zap.Error(err))
	} else {
		redisClient = rdb
		defer redisClient.Close()
		publisher = events.NewRedisPublisher(redisClient)
	}

	coord := database.NewCoordinator(db)
	catalog := database.GormCatalog{}
	ledger := inventory.NewLedger(coord, catalog, publisher, zl)
	posService := pos.NewService(coord, catalog, ledger, publisher, zl, pos.Options{
		StrictRelease: cfg.POS.StrictRelease,
	})
	checker := health.NewChecker(db, redisClient, zl)

	router, err := gateway.NewRouter(gateway.Deps{
		POS:         posService,
		Inventory:   ledger,
		Health:      checker,
		Log:         zl,
		JWTSecret:   []byte(cfg.Auth.JWTSecret),
		RateLimit:   cfg.Server.RateLimit,
		ServiceName: cfg.Telemetry.ServiceName,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	grpcServer := grpc.NewServer()
	healthpb.RegisterHealthServer(grpcServer, checker.GRPCServer())
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", ":"+cfg.Server.GRPCPort)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		zl.Info("HTTP API listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		zl.Info("gRPC health service listening", zap.String("addr", lis.Addr().String()))
		return grpcServer.Serve(lis)
	})

	g.Go(func() error {
		checker.Watch(ctx, healthCheckInterval)
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		zl.Info("shutting down")

		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		grpcServer.GracefulStop()
		return httpServer.Shutdown(sctx)
	})

	return g.Wait()
}
