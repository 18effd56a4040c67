package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"gurucool/api/features/ask"
	"gurucool/api/features/assignment"
	"gurucool/api/features/embeddings"
	"gurucool/api/features/job"
	"gurucool/api/features/quiz"
	"gurucool/api/features/registry"
	"gurucool/api/features/stats"
	"gurucool/api/internal/config"
	"gurucool/api/internal/embedcache"
	"gurucool/api/internal/generate"
	"gurucool/api/internal/ingest"
	"gurucool/api/internal/middleware"
	"gurucool/api/internal/retrieval"
	"gurucool/api/internal/session"
	"gurucool/api/internal/worker"
)

// TaskPublisher is the slice of the NSQ producer the app hands to features.
type TaskPublisher interface {
	Publish(topic string, body []byte) error
}

// Embedder covers both cache building and query-time retrieval.
type Embedder interface {
	Embed(ctx context.Context, input string) ([]float32, error)
}

type App struct {
	Handler       http.Handler
	Cache         *embedcache.Store
	Sessions      *session.Store
	BuildConsumer *worker.BuildConsumer
}

func New(
	cfg *config.Config,
	db *sql.DB,
	taskPub TaskPublisher,
	embedder Embedder,
	generator generate.Generator,
	logger *slog.Logger,
) (*App, error) {

	// Feature: Registry
	registryRepo := registry.NewPostgresRepo(db)
	registryService := registry.NewService(registryRepo)
	registryHandler := registry.NewHandler(registryService)

	// Embedding cache, fed by the registry for source resolution
	ingestor := ingest.New(http.DefaultClient)
	cache := embedcache.NewStore(cfg.CachePath, cfg.DataPath, embedder, ingestor, registryService).
		WithChunking(cfg.ChunkSize, cfg.ChunkOverlap)

	// Feature: Embeddings
	embeddingsService := embeddings.NewService(cache, taskPub)
	embeddingsHandler := embeddings.NewHandler(embeddingsService)

	// Feature: Job
	jobRepo := job.NewPostgresRepo(db)
	jobService := job.NewService(jobRepo, taskPub)
	jobHandler := job.NewHandler(jobService)

	// Feature: Stats
	statsHandler := stats.NewHandler(registryRepo, jobRepo, cache)

	// Retrieval
	queryLogger, err := retrieval.NewFileQueryLogger(cfg.QueryLogPath)
	if err != nil {
		slog.Warn("failed to create query logger, falling back to stdout", "error", err)
		queryLogger = retrieval.NewQueryLogger(os.Stdout)
	}
	retrievalService := retrieval.NewService(embedder, queryLogger)

	// Generation
	genService := generate.NewService(generator)
	sessions := session.NewStore(cfg.SessionTTL)

	// Feature: Ask
	askService := ask.NewService(cache, retrievalService, genService, sessions, retrieval.DefaultTopK)
	askHandler := ask.NewHandler(askService)

	// Feature: Quiz
	quizHandler := quiz.NewHandler(quiz.NewService(cache, genService))

	// Feature: Assignment
	assignmentHandler := assignment.NewHandler(assignment.NewService(cache, genService))

	// Middleware: CORS
	enableCORS := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+middleware.HeaderAPIKey)

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next(w, r)
		}
	}

	requireKey := middleware.RequireAPIKey(cfg.APIKey)
	guard := func(next http.HandlerFunc) http.Handler {
		return middleware.CorrelationID(requireKey(enableCORS(next)))
	}

	// Routes
	mux := http.NewServeMux()

	mux.Handle("POST /documents", guard(registryHandler.Register))
	mux.Handle("GET /documents", guard(registryHandler.List))
	mux.Handle("DELETE /documents/{id}", guard(registryHandler.Delete))

	mux.Handle("POST /embeddings", guard(embeddingsHandler.Build))
	mux.Handle("DELETE /embeddings/{lecture}", guard(embeddingsHandler.Invalidate))

	mux.Handle("POST /ask", guard(askHandler.Ask))
	mux.Handle("POST /quiz", guard(quizHandler.Questions))
	mux.Handle("POST /quiz/mcq", guard(quizHandler.MCQs))
	mux.Handle("POST /assignment", guard(assignmentHandler.Questions))

	mux.Handle("GET /jobs/failed", guard(jobHandler.List))
	mux.Handle("POST /jobs/{id}/retry", guard(jobHandler.Retry))

	mux.Handle("GET /stats", guard(statsHandler.GetStats))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	buildConsumer := worker.NewBuildConsumer(cache, jobRepo, registryService)

	return &App{
		Handler:       mux,
		Cache:         cache,
		Sessions:      sessions,
		BuildConsumer: buildConsumer,
	}, nil
}

func (a *App) Run(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: a.Handler,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server...")
		if err := srv.Shutdown(context.Background()); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("server starting", "port", port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
