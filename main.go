package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nsqio/go-nsq"

	"gurucool/api/internal/app"
	"gurucool/api/internal/config"
	"gurucool/api/internal/logger"
	"gurucool/api/internal/sweeper"
	"gurucool/api/internal/worker"
)

func main() {
	// Structured logger with correlation-id enrichment from context
	handler := logger.NewContextHandler(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(slog.New(handler))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer deps.DB.Close()
	defer deps.Embedder.Close()
	defer deps.Generator.Close()

	a, err := app.New(cfg, deps.DB, deps.NSQProducer, deps.Embedder, deps.Generator, slog.Default())
	if err != nil {
		slog.Error("failed to assemble app", "error", err)
		os.Exit(1)
	}

	// Session expiry
	go a.Sessions.Run(ctx, cfg.SessionTTL)

	// Stale document sweeper
	if cfg.EnableSweeper {
		sw := sweeper.New(cfg.DataPath, cfg.SweepInterval, cfg.SweepRetention)
		go sw.Run(ctx)
	}

	// Build worker
	if cfg.EnableBuildWorker {
		consumer, err := nsq.NewConsumer(worker.TopicBuild, "backend", nsq.NewConfig())
		if err != nil {
			slog.Error("failed to create NSQ build consumer", "error", err)
			os.Exit(1)
		}
		consumer.AddHandler(a.BuildConsumer)
		if err := consumer.ConnectToNSQLookupd(cfg.NSQLookupd); err != nil {
			slog.Error("failed to connect to NSQLookupd", "error", err)
		} else {
			slog.Info("NSQ build consumer connected", "topic", worker.TopicBuild)
		}
		defer consumer.Stop()
	}

	if !cfg.EnableAPI {
		slog.Info("API disabled, running worker only")
		<-ctx.Done()
		return
	}

	if err := a.Run(ctx, cfg.ServerPort); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
