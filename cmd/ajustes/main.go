package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/ajustes/internal/app"
	"github.com/dropDatabas3/ajustes/internal/config"
	httpx "github.com/dropDatabas3/ajustes/internal/http"
	"github.com/dropDatabas3/ajustes/internal/observability/logger"
)

// Intervalo del job de limpieza de tokens de verificación vencidos.
const verifyGCEvery = time.Hour

func main() {
	_ = godotenv.Load(".env")

	var configPath string
	flag.StringVar(&configPath, "config", "", "ruta del YAML de configuración (opcional)")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}
	defer a.Close()
	defer func() { _ = logger.Sync() }()

	appLog := logger.L().With(logger.Component("main"))
	srv := httpx.NewServer(cfg.Server.Addr, a.Router)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		appLog.Info("http server listening", logger.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Sweep de rollback tokens vencidos
	g.Go(func() error {
		return a.Sweeper.Run(gctx)
	})

	// Limpieza periódica de tokens de verificación de email
	g.Go(func() error {
		ticker := time.NewTicker(verifyGCEvery)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if n, err := a.VerifyGC(gctx); err != nil {
					appLog.Warn("verification token cleanup failed", logger.Err(err))
				} else if n > 0 {
					appLog.Info("verification tokens cleaned", logger.Count(n))
				}
			}
		}
	})

	// Shutdown ordenado cuando llega la señal
	g.Go(func() error {
		<-gctx.Done()
		appLog.Info("shutting down")
		return httpx.Shutdown(srv, 10*time.Second)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		appLog.Error("exited with error", logger.Err(err))
	}
}
