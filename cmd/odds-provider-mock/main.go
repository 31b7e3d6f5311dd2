package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/playmoney-sportsbook/internal/providermock"
	"github.com/radieske/playmoney-sportsbook/internal/shared/config"
	"github.com/radieske/playmoney-sportsbook/internal/shared/logger"
	"github.com/radieske/playmoney-sportsbook/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	seed := time.Now().UnixNano()
	if v, err := strconv.ParseInt(os.Getenv("MOCK_SEED"), 10, 64); err == nil {
		seed = v
	}

	metrics.Register(providermock.RequestsServed)

	catalog := providermock.NewCatalog(time.Now(), seed, 5)
	s := providermock.NewServer(catalog, os.Getenv("MOCK_API_KEY"), log)

	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, nil, log)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("odds provider mock running",
			zap.String("addr", srv.Addr),
			zap.Strings("sports", providermock.Sports()),
			zap.Int64("seed", seed),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("public server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
}
