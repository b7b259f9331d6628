package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blog/internal/app"
	"blog/internal/auth"
	"blog/internal/db"
	httpx "blog/internal/http"
	"blog/internal/store"
)

func main() {
	cfg, err := app.LoadConfig(os.Args[1:])
	app.Must(err)
	log := app.NewLogger(os.Stderr, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, dialect, err := db.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	app.Must(err)
	defer conn.Close()
	app.Must(db.Migrate(ctx, conn, dialect))

	s := store.New(conn, dialect, store.WithLogger(log), store.WithSlowQueryThreshold(cfg.SlowQuery))
	am := auth.NewManager(s, cfg.SessionLifetime, log)
	if n, err := am.PurgeExpired(ctx); err != nil {
		log.Warn("purge expired sessions", "error", err)
	} else if n > 0 {
		log.Info("purged expired sessions", "count", n)
	}

	srv, err := httpx.NewServer(s, am, cfg, log)
	app.Must(err)

	hs := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       time.Minute,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := hs.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown", "error", err)
		}
	}()

	log.Info("listening", "addr", cfg.Addr, "driver", dialect.Name)
	if err := hs.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		app.Must(err)
	}
	log.Info("stopped")
}
