package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"files-manager/internal/server"
)

func main() {
	cfg, err := server.LoadConfig()
	if err != nil {
		// Logger is not configured yet; write the one line by hand.
		os.Stderr.WriteString("config error: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := server.NewLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat == "json")

	// Store handles are opened once and shared by every request. Both
	// connect in the background: a store that is still down at startup is
	// reported by /status rather than blocking the process.
	kv := server.NewRedisStore(cfg.RedisAddr, cfg.StoreTimeout)
	defer func() { _ = kv.Close() }()

	store, err := server.NewMongoStore(cfg.MongoURI, cfg.MongoDatabase, cfg.StoreTimeout)
	if err != nil {
		log.Error("mongo setup failed", nil, err)
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = store.Close(ctx)
	}()

	// Give the stores a moment to come up so the first requests do not
	// race the handshakes, but do not refuse to start without them.
	readyCtx, cancelReady := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelReady()
	if err := kv.WaitReady(readyCtx); err != nil {
		log.Warn("redis not ready at startup", map[string]any{"addr": cfg.RedisAddr})
	}
	if err := store.WaitReady(readyCtx); err != nil {
		log.Warn("mongo not ready at startup", map[string]any{"uri": cfg.MongoURI})
	}

	srv := server.New(cfg, kv, store, log)

	// Start the HTTP server in a background goroutine so we can listen
	// for OS signals while it runs.
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutting down", map[string]any{"signal": sig.String()})
		// Give the server 5 seconds to finish in-flight requests.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("shutdown failed", nil, err)
			os.Exit(1)
		}
		log.Info("shutdown complete", nil)
	case err := <-errCh:
		if err != nil {
			log.Error("server error", nil, err)
			os.Exit(1)
		}
	}
}
