package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kraig-tester/Simple-blog-website/internal/auth"
	"github.com/kraig-tester/Simple-blog-website/internal/config"
	"github.com/kraig-tester/Simple-blog-website/internal/db"
	"github.com/kraig-tester/Simple-blog-website/internal/log"
	"github.com/kraig-tester/Simple-blog-website/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Error.Fatalf("config: %v", err)
	}
	ctx := context.Background()

	store, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error.Fatalf("database: %v", err)
	}
	defer store.Close()

	if n, err := store.CleanupExpiredSessions(ctx); err != nil {
		log.Warn.Printf("session cleanup: %v", err)
	} else if n > 0 {
		log.Info.Printf("Removed %d expired sessions", n)
	}

	var sessions auth.SessionStore = store
	if cfg.SessionBackend == config.SessionBackendRedis {
		rdb, err := auth.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Error.Fatalf("redis connect: %v", err)
		}
		defer rdb.Close()
		sessions = auth.NewRedisSessionStore(rdb)
	}
	log.Info.Printf("Sessions stored in %s", cfg.SessionBackend)

	authManager := auth.NewManager(store, sessions, auth.Options{
		SignKey:     cfg.SignKey,
		TTL:         cfg.SessionTTL,
		AdminEmails: cfg.AdminEmails,
	})

	srv, err := server.New(store, authManager, server.Options{IsDev: cfg.IsDev})
	if err != nil {
		log.Error.Fatalf("templates: %v", err)
	}

	httpServer := &http.Server{
		Addr:         cfg.Port,
		Handler:      srv.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info.Printf("Server running at http://%s%s", cfg.Addr, cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error.Fatalf("server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info.Print("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error.Printf("shutdown: %v", err)
	}
}
