package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/playmoney-sportsbook/internal/api"
	"github.com/radieske/playmoney-sportsbook/internal/bets"
	"github.com/radieske/playmoney-sportsbook/internal/betslip"
	"github.com/radieske/playmoney-sportsbook/internal/board"
	"github.com/radieske/playmoney-sportsbook/internal/domain"
	"github.com/radieske/playmoney-sportsbook/internal/oddsfeed"
	"github.com/radieske/playmoney-sportsbook/internal/publisher"
	"github.com/radieske/playmoney-sportsbook/internal/session"
	"github.com/radieske/playmoney-sportsbook/internal/settlement"
	"github.com/radieske/playmoney-sportsbook/internal/shared/cache"
	"github.com/radieske/playmoney-sportsbook/internal/shared/config"
	"github.com/radieske/playmoney-sportsbook/internal/shared/db"
	"github.com/radieske/playmoney-sportsbook/internal/shared/kafka"
	"github.com/radieske/playmoney-sportsbook/internal/shared/logger"
	"github.com/radieske/playmoney-sportsbook/internal/shared/metrics"
	"github.com/radieske/playmoney-sportsbook/internal/simulator"
	"github.com/radieske/playmoney-sportsbook/internal/store"
	"github.com/radieske/playmoney-sportsbook/internal/wallet"
)

// betEvents junta os dois lados publicados (colocação e liquidação)
type betEvents interface {
	betslip.EventPublisher
	settlement.EventPublisher
}

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.Register(
		oddsfeed.FetchErrors,
		wallet.BalanceGauge,
		simulator.ActiveChanges,
		settlement.BetsSettled,
		api.RequestsTotal,
		api.WSConnections,
	)

	// Redis é opcional: cache do board e Pub/Sub dos ticks
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb, err = cache.ConnectRedis(ctx, cfg.RedisAddr)
		if err != nil {
			log.Fatal("redis", zap.Error(err))
		}
		defer rdb.Close()
	}

	kv, pg, closeStore, err := openStore(ctx, cfg, rdb)
	if err != nil {
		log.Fatal("store", zap.String("backend", cfg.StoreBackend), zap.Error(err))
	}
	defer closeStore()
	log.Info("state store ready", zap.String("backend", cfg.StoreBackend))

	ledger, err := wallet.Open(ctx, kv, log, cfg.StartingBalance)
	if err != nil {
		log.Fatal("wallet", zap.Error(err))
	}
	betStore, err := bets.Open(ctx, kv, log)
	if err != nil {
		log.Fatal("bets", zap.Error(err))
	}

	var pub betEvents = publisher.Nop{}
	if cfg.KafkaBrokers != "" {
		kp := publisher.NewKafkaPublisher(
			kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetPlaced),
			kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetSettled),
			log,
		)
		defer kp.Close()
		pub = kp
	}

	sess := session.NewLocal()
	feed := oddsfeed.New(oddsfeed.Options{
		BaseURL: cfg.OddsAPIURL,
		APIKey:  cfg.OddsAPIKey,
		Sports:  cfg.OddsSports,
		Timeout: cfg.OddsTimeout,
	}, log)
	if cfg.OddsAPIKey == "" {
		log.Warn("ODDS_API_KEY not set; provider requests will likely fail")
	}

	b := board.New()
	hub := api.NewHub(func(*http.Request) bool { return true }, log)

	// com Redis os ticks passam pelo Pub/Sub; sem ele vão direto ao hub
	var out simulator.Broadcaster = hub
	if rdb != nil {
		out = publisher.NewRedisBroadcaster(rdb, cfg.RedisPubSubChannel)
		api.StartRedisSubscriber(ctx, rdb, cfg.RedisPubSubChannel, hub, log)
	}
	sim := simulator.New(b, log, simulator.Options{}, out)

	refresher := &board.Refresher{
		Board:    b,
		Fetcher:  feed,
		Interval: cfg.RefreshInterval,
		Log:      log,
		OnRefresh: func(ctx context.Context, _ []domain.Game) {
			sim.Start(ctx)
		},
	}
	if rdb != nil {
		gc := board.NewRedisCache(rdb, cfg.OddsCacheTTL)
		refresher.Cache = gc
		if games, ok, err := gc.Games(ctx); err != nil {
			log.Warn("games cache read failed", zap.Error(err))
		} else if ok {
			b.Replace(games)
			sim.Start(ctx)
			log.Info("board warmed from cache", zap.Int("count", len(games)))
		}
	}

	engine := settlement.New(feed, betStore, ledger, pub, cfg.SettlementInterval, log)

	go refresher.Run(ctx)
	go engine.Start(ctx)

	health := func(ctx context.Context) error {
		if rdb != nil {
			if err := rdb.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
		}
		if pg != nil {
			if err := pg.PingContext(ctx); err != nil {
				return fmt.Errorf("postgres: %w", err)
			}
		}
		return ledger.Verify()
	}
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, health, log)

	a := &api.API{
		Board:   b,
		Changes: sim,
		Session: sess,
		Slip:    betslip.NewManager(sess, ledger, betStore, pub, log),
		Bets:    betStore,
		Wallet:  ledger,
		Hub:     hub,
		Log:     log,
	}
	apiSrv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:           a.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("sportsbook listening", zap.String("addr", apiSrv.Addr))
		if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("api", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	sim.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = apiSrv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
}

// openStore escolhe o backend de persistência de carteira e apostas
func openStore(ctx context.Context, cfg config.Config, rdb *redis.Client) (store.Store, *sql.DB, func(), error) {
	nop := func() {}
	switch cfg.StoreBackend {
	case "file", "":
		return store.NewFile(cfg.StoreDir), nil, nop, nil
	case "redis":
		if rdb == nil {
			return nil, nil, nop, errors.New("STORE_BACKEND=redis requires REDIS_ADDR")
		}
		return store.NewRedis(rdb), nil, nop, nil
	case "postgres":
		pg, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, nop, err
		}
		st := store.NewPostgres(pg)
		if err := st.EnsureSchema(ctx); err != nil {
			_ = pg.Close()
			return nil, nil, nop, err
		}
		return st, pg, func() { _ = pg.Close() }, nil
	case "badger":
		bs, err := store.OpenBadger(filepath.Join(cfg.StoreDir, "badger"))
		if err != nil {
			return nil, nil, nop, err
		}
		return bs, nil, func() { _ = bs.Close() }, nil
	}
	return nil, nil, nop, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}
