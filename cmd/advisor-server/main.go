package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"routine-advisor/internal/config"
	"routine-advisor/internal/logging"
	"routine-advisor/internal/server"
)

func main() {
	cfg := config.Load()
	log, err := logging.New(cfg.Log, os.Stdout)
	if err != nil {
		logrus.WithError(err).Fatal("failed to set up logging")
	}

	s, err := server.NewServer(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to create server")
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.WithError(err).Error("graceful shutdown failed")
		}
	}()

	log.WithField("addr", addr).Info("advisor gateway listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("server error")
	}
}
