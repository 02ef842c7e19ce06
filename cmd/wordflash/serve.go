package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/vytor/wordflash/internal/api"
	"github.com/vytor/wordflash/internal/digest"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/worker"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the due digest",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
}

func serve() error {
	log := logger.Default()

	log.Info("===========================================")
	log.Info("WordFlash Server Starting")
	log.Info("===========================================")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_driver=%s", cfg.DBDriver)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("study_set_size=%d", cfg.StudySetSize)
	log.Debug("review_ratio=%.2f", cfg.ReviewRatio)
	log.Debug("review_retry_attempts=%d", cfg.ReviewRetryAttempts)
	log.Debug("digest_interval=%v", cfg.DigestInterval)
	log.Debug("digest_worker_count=%d", cfg.DigestWorkerCount)
	log.Debug("digest_queue_size=%d", cfg.DigestQueueSize)

	st, err := openStore(cfg)
	if err != nil {
		log.Error("failed to open store: %v", err)
		return err
	}
	defer st.Close()

	cards := st.service(cfg)
	var pinger api.Pinger
	if st.database != nil {
		pinger = st.database
	}
	srv := api.NewServer(cards, pinger, cfg.StudySetSize, cfg.ReviewRatio)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	digestPool := worker.NewPool(cfg.DigestWorkerCount, cfg.DigestQueueSize)
	digestPool.Start(ctx)
	scheduler := digest.New(cards, digestPool, cfg.DigestInterval, nil)
	if err := scheduler.Start(ctx); err != nil {
		digestPool.Stop()
		return err
	}

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-stop:
		log.Info("received signal %v, initiating graceful shutdown", sig)
	case runErr = <-serverErr:
		log.Error("HTTP server error: %v", runErr)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("stopping digest scheduler")
	scheduler.Stop()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Debug("stopping digest pool")
	cancel()
	digestPool.Stop()

	log.Info("===========================================")
	log.Info("WordFlash Server Stopped")
	log.Info("===========================================")
	return runErr
}
