// Package main runs the MoringaConnect data layer as a long-lived daemon:
// it rehydrates the persisted session, starts the persistence mirror and the
// scheduled listing refresher, and optionally serves Prometheus metrics.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/machoraatuti/moringaconnect/internal/app"
	"github.com/machoraatuti/moringaconnect/internal/app/metrics"
	"github.com/machoraatuti/moringaconnect/internal/config"
	"github.com/machoraatuti/moringaconnect/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	flag.Parse()

	if v := os.Getenv("MORINGA_CONFIG"); v != "" && *configPath == "" {
		*configPath = v
	}

	log := logger.NewDefault("moringaconnect")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Error("failed to load configuration")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Error("failed to build data layer")
		os.Exit(1)
	}

	if err := application.Start(ctx); err != nil {
		log.WithError(err).Error("failed to start data layer")
		os.Exit(1)
	}

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		metricsServer = &http.Server{
			Addr:         cfg.MetricsAddr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		}
		go func() {
			log.WithField("addr", cfg.MetricsAddr).Info("metrics listening")
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.WithError(err).Error("metrics server error")
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("metrics server shutdown error")
		}
	}

	if err := application.Stop(shutdownCtx); err != nil {
		log.WithError(err).Error("data layer stop error")
		os.Exit(1)
	}
}
