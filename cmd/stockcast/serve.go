package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/stockcast/internal/api"
	"github.com/andresuchdata/stockcast/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the prediction HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "port",
				Usage:   "Listen on `PORT`",
				EnvVars: []string{"SERVER_PORT"},
			},
		},
		Action: func(c *cli.Context) error {
			cfg := config.Load()
			if c.IsSet("port") {
				cfg.Server.Port = c.String("port")
			}
			return serve(c.Context, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	svc, cleanup, err := buildService(ctx, cfg, cfg.Database.Enabled, cfg.Storage.Enabled, time.Now)
	if err != nil {
		return err
	}
	defer cleanup()

	router := api.NewRouter(&api.Services{PredictionService: svc}, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-quit:
	case <-ctx.Done():
	}
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Info().Msg("Server exiting")
	return nil
}
