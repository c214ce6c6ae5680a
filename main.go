package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
)

type App struct {
	cfg    Config
	store  *Store
	tokens *Tokens
}

func NewApp(cfg Config, store *Store, tokens *Tokens) *App {
	return &App{
		cfg:    cfg,
		store:  store,
		tokens: tokens,
	}
}

func (a *App) routes() http.Handler {
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("GET /health", a.Health)
	mux.HandleFunc("POST /auth/register", a.Register)
	mux.HandleFunc("POST /auth/login", a.Login)
	mux.HandleFunc("POST /auth/logout", a.Logout)

	// Protected routes
	mux.HandleFunc("GET /auth/me", a.requireAuth(a.Me))
	mux.HandleFunc("GET /posts", a.requireAuth(a.ListPosts))
	mux.HandleFunc("POST /posts", a.requireAuth(a.CreatePost))
	mux.HandleFunc("POST /posts/save-draft", a.requireAuth(a.SaveDraft))
	mux.HandleFunc("POST /posts/publish", a.requireAuth(a.Publish))
	mux.HandleFunc("GET /posts/{id}", a.requireAuth(a.GetPost))
	mux.HandleFunc("PUT /posts/{id}", a.requireAuth(a.UpdatePost))
	mux.HandleFunc("DELETE /posts/{id}", a.requireAuth(a.DeletePost))

	return mux
}

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	godotenv.Load()

	cfg, err := loadConfig(os.LookupEnv)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := NewStore(cfg.DatabaseDSN)
	defer store.Close()

	key, err := store.signingKey(ctx, cfg.TokenSecret)
	if err != nil {
		slog.Error("loading signing key", "error", err)
		os.Exit(1)
	}

	app := NewApp(cfg, store, NewTokens(key))

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      app.routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
	slog.Info("server stopped")
}
