package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/joseph-ayodele/nanopore-tracker/internal/app"
	"github.com/joseph-ayodele/nanopore-tracker/internal/async"
	"github.com/joseph-ayodele/nanopore-tracker/internal/common"
	"github.com/joseph-ayodele/nanopore-tracker/internal/ingest"
	"github.com/joseph-ayodele/nanopore-tracker/internal/server"
)

func main() {
	cfg := common.LoadConfig()
	logger := app.NewLogger(cfg.Log, os.Stdout)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", cfg.Server.GRPCAddr, "error", err)
		os.Exit(1)
	}
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(server.UnaryInterceptor(logger)))
	server.RegisterTrackerService(grpcServer, a.TrackerServer())

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(server.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)

	var queue *async.ProcessorQueue
	if len(cfg.Watch.Dirs) > 0 {
		queue = async.NewProcessorQueue(func(ctx context.Context, job async.Job) error {
			ctx = common.WithRequestID(ctx, job.TraceID)
			_, err := a.Ingest.IngestFile(ctx, job.Path, job.Priority)
			return err
		}, logger,
			async.WithWorkers(cfg.Watch.Workers),
			async.WithQueueSize(cfg.Watch.QueueSize),
			async.WithProcessTimeout(3*time.Minute),
		)
		if err := watch(ctx, cfg.Watch, queue, logger); err != nil {
			logger.Error("failed to start watcher", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("nanopore-tracker listening", "addr", cfg.Server.GRPCAddr, "watch_dirs", cfg.Watch.Dirs)
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC serve error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	healthServer.Shutdown()
	grpcServer.GracefulStop()
	if queue != nil {
		sctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		queue.Shutdown(sctx)
		cancel()
	}
}

// watch feeds files that appear under the inbox directories into the queue.
func watch(ctx context.Context, cfg common.WatchConfig, queue async.Queue, logger *slog.Logger) error {
	events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       cfg.Dirs,
		InitialScan: true,
		Debounce:    cfg.Debounce,
		Buffer:      cfg.QueueSize,
	}, logger)
	if err != nil {
		return err
	}
	go func() {
		for err := range errs {
			logger.Warn("watcher error", "error", err)
		}
	}()
	go func() {
		for path := range events {
			_, rid := common.EnsureRequestID(context.Background())
			job := async.Job{Path: path, SubmittedAt: time.Now().UTC(), TraceID: rid}
			if err := queue.Enqueue(ctx, job); err != nil {
				logger.Warn("enqueue failed", "path", path, "error", err)
			}
		}
	}()
	return nil
}
