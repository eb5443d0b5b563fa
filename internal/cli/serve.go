package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	api "github.com/test-pad/testpad/internal/api/http"
	"github.com/test-pad/testpad/internal/auth"
	"github.com/test-pad/testpad/internal/checkpoint"
	"github.com/test-pad/testpad/internal/config"
	"github.com/test-pad/testpad/internal/db"
	"github.com/test-pad/testpad/internal/eventlog"
	"github.com/test-pad/testpad/internal/quiz"
	"github.com/test-pad/testpad/internal/storage"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath)
		},
	}
}

func runServer(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	dbh, err := db.Open(openCtx, db.Driver(cfg.DB.Driver), cfg.DB.DSN)
	if err != nil {
		return err
	}
	defer dbh.Close()

	events := eventlog.NewRepo(dbh)
	store := quiz.NewSQLStore(dbh, events)
	authSvc := auth.NewAuthService(cfg.Auth.HMACSecret)

	// Attempt progress lives in redis when configured so restarts and
	// horizontal scaling keep timers intact; memory otherwise.
	ttl := config.TTLDuration(cfg.Checkpoint.TTL, 24*time.Hour)
	var checkpoints checkpoint.Store
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		checkpoints = checkpoint.NewRedisStore(rdb, ttl)
	} else {
		checkpoints = checkpoint.NewMemoryStore(ttl)
	}

	blobs, err := storage.NewFSStore(cfg.Blob.BasePath)
	if err != nil {
		return err
	}

	handler := api.NewRouter(api.RouterDeps{
		Store:       store,
		Auth:        authSvc,
		DB:          dbh,
		Checkpoints: checkpoints,
		Blobs:       blobs,
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("testpad listening on %s (db=%s)", cfg.Server.Addr, cfg.DB.Driver)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
