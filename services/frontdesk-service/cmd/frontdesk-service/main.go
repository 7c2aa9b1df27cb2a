package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/md-rashed-zaman/frontdesk/libs/config"
	"github.com/md-rashed-zaman/frontdesk/libs/db"
	"github.com/md-rashed-zaman/frontdesk/libs/httpx"
	"github.com/md-rashed-zaman/frontdesk/libs/kafkax"
	otelx "github.com/md-rashed-zaman/frontdesk/libs/otel"
	"github.com/md-rashed-zaman/frontdesk/libs/runtime"
	"github.com/md-rashed-zaman/frontdesk/services/frontdesk-service/internal/handlers"
	"github.com/md-rashed-zaman/frontdesk/services/frontdesk-service/internal/outbox"
	"github.com/md-rashed-zaman/frontdesk/services/frontdesk-service/internal/reservations"
	"github.com/md-rashed-zaman/frontdesk/services/frontdesk-service/internal/storage"
)

type settings struct {
	service        string
	port           string
	databaseURL    string
	kafkaBrokers   string
	redisAddr      string
	redisDB        int
	redisPassword  string
	rateLimit      int
	rateFailOpen   bool
	defaultSpan    int
	seedRooms      string
	bodyLimit      int64
	requestTimeout time.Duration
	outboxPoll     time.Duration
	corsOrigins    []string
}

func loadSettings() (settings, error) {
	s := settings{
		service:       config.String("SERVICE_NAME", "frontdesk-service"),
		databaseURL:   config.String("DATABASE_URL", ""),
		kafkaBrokers:  config.String("KAFKA_BROKERS", ""),
		redisAddr:     config.String("REDIS_ADDR", ""),
		redisPassword: config.String("REDIS_PASSWORD", ""),
		seedRooms:     config.String("SEED_ROOMS", storage.DefaultSeedRooms),
		corsOrigins:   config.List("CORS_ALLOWED_ORIGINS"),
	}

	var err error
	if s.port, err = config.Port("PORT", "8080"); err != nil {
		return s, err
	}
	if s.redisDB, err = config.Int("REDIS_DB", 0, 0, 15); err != nil {
		return s, err
	}
	if s.rateLimit, err = config.Int("RATE_LIMIT_PER_MINUTE", 600, 1, 1_000_000); err != nil {
		return s, err
	}
	if s.rateFailOpen, err = config.Bool("RATE_LIMIT_FAIL_OPEN", true); err != nil {
		return s, err
	}
	if s.defaultSpan, err = config.Int("TIMELINE_DEFAULT_SPAN_DAYS", 14, 1, 366); err != nil {
		return s, err
	}
	bodyKB, err := config.Int("HTTP_BODY_LIMIT_KB", 64, 1, 10_240)
	if err != nil {
		return s, err
	}
	s.bodyLimit = int64(bodyKB) << 10
	if s.requestTimeout, err = config.Duration("HTTP_REQUEST_TIMEOUT", 10*time.Second); err != nil {
		return s, err
	}
	if s.outboxPoll, err = config.Duration("OUTBOX_POLL_INTERVAL", 2*time.Second); err != nil {
		return s, err
	}
	return s, nil
}

func main() {
	logger := runtime.NewLogger(config.String("SERVICE_NAME", "frontdesk-service"), config.String("LOG_LEVEL", "info"))
	cfg, err := loadSettings()
	if err != nil {
		logger.Error("invalid configuration", "err", err)
		panic(err)
	}

	ctx, stop := runtime.SignalContext(context.Background())
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(cfg.service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	var (
		store  reservations.Store
		checks []runtime.ReadyCheck
	)
	if cfg.databaseURL != "" {
		pool, err := db.Open(ctx, cfg.databaseURL, db.Options{})
		if err != nil {
			logger.Error("db connection failed", "err", err)
			panic(err)
		}
		defer pool.Close()

		outboxRepo := outbox.NewRepository()
		store = storage.NewPostgres(pool, outboxRepo)
		checks = append(checks, runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)})

		publisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
			Brokers:   cfg.kafkaBrokers,
			PollEvery: cfg.outboxPoll,
			BatchSize: 50,
		})
		go publisher.Run(ctx)
		if cfg.kafkaBrokers != "" {
			checks = append(checks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(cfg.kafkaBrokers)})
		}
		logger.Info("using postgres store")
	} else {
		rooms, err := storage.ParseSeedRooms(cfg.seedRooms)
		if err != nil {
			logger.Error("invalid SEED_ROOMS", "err", err)
			panic(err)
		}
		store = storage.NewMemory(rooms, nil)
		logger.Warn("DATABASE_URL not set; using in-memory store", "rooms", len(rooms))
	}

	var rateLimitMW httpx.Middleware
	if cfg.redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.redisAddr,
			Password: cfg.redisPassword,
			DB:       cfg.redisDB,
		})
		defer func() { _ = rdb.Close() }()

		rl := httpx.NewRedisRateLimiter(rdb, cfg.rateLimit, time.Minute, config.String("RATE_LIMIT_PREFIX", "frontdesk:rl"))
		rateLimitMW = rl.Middleware(logger, cfg.rateFailOpen)
		checks = append(checks, runtime.ReadyCheck{Name: "redis", Check: httpx.RedisReadyCheck(rdb)})
		logger.Info("rate limiting enabled (redis)", "per_minute", cfg.rateLimit, "redis_addr", cfg.redisAddr)
	} else {
		rateLimitMW = httpx.NewRateLimiter(cfg.rateLimit, time.Minute).Middleware()
		logger.Info("rate limiting enabled (in-memory)", "per_minute", cfg.rateLimit)
	}

	svc := reservations.NewService(store, logger)
	mux := runtime.NewBaseMuxWithReady(checks...)
	handlers.NewFrontDeskHandler(svc, logger, cfg.defaultSpan).Register(mux)

	srv := &http.Server{
		Addr:              ":" + cfg.port,
		Handler:           buildHandler(mux, logger, cfg, rateLimitMW),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}

func buildHandler(mux http.Handler, logger *slog.Logger, cfg settings, rateLimitMW httpx.Middleware) http.Handler {
	h := httpx.Chain(mux,
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins: cfg.corsOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", httpx.RequestIDHeader},
			MaxAge:         10 * time.Minute,
		}),
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithBodyLimit(cfg.bodyLimit),
		httpx.WithTimeout(cfg.requestTimeout),
		rateLimitMW,
	)
	return otelhttp.NewHandler(h, fmt.Sprintf("%s.http", cfg.service))
}
