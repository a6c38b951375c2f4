package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/grafamedia/keuangan-bot/internal/admin"
	"github.com/grafamedia/keuangan-bot/internal/apperrors"
	"github.com/grafamedia/keuangan-bot/internal/chart"
	"github.com/grafamedia/keuangan-bot/internal/dedupe"
	"github.com/grafamedia/keuangan-bot/internal/dispatcher"
	"github.com/grafamedia/keuangan-bot/internal/gateway/telegram"
	"github.com/grafamedia/keuangan-bot/internal/health"
	"github.com/grafamedia/keuangan-bot/internal/ledger"
	"github.com/grafamedia/keuangan-bot/internal/lifecycle"
	"github.com/grafamedia/keuangan-bot/internal/msglog"
	"github.com/grafamedia/keuangan-bot/internal/outbox"
	"github.com/grafamedia/keuangan-bot/internal/ratelimit"
	"github.com/grafamedia/keuangan-bot/internal/registration"
	"github.com/grafamedia/keuangan-bot/internal/report"
	"github.com/grafamedia/keuangan-bot/internal/session"
	"github.com/grafamedia/keuangan-bot/internal/usercache"
	"github.com/grafamedia/keuangan-bot/pkg/config"
	"github.com/grafamedia/keuangan-bot/pkg/graceful"
	"github.com/grafamedia/keuangan-bot/pkg/logger"
	pkgredis "github.com/grafamedia/keuangan-bot/pkg/redis"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, v, err := config.Load()
	if err != nil {
		slog.Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	log := logger.New(*cfg)
	slog.SetDefault(log)
	defer logger.Flush(2 * time.Second)

	config.Watch(v, log)

	log.Info("starting keuangan bot",
		slog.String("env", cfg.AppEnv),
		slog.String("storage", cfg.Storage.Driver),
		slog.String("bot_mode", cfg.Bot.Mode))

	store, err := ledger.New(ctx, cfg.Storage, log)
	if err != nil {
		log.Error("open ledger store", slog.Any("error", err))
		os.Exit(1)
	}

	checker := health.NewChecker(log)
	checker.AddCheck("store", health.NewStoreChecker(store))

	var (
		redisClient    *pkgredis.Client
		sessions       session.Store          = session.NewMemoryStore()
		users          registration.UserStore = store
		dispatcherOpts []dispatcher.Option
	)
	if cfg.Redis.Enabled {
		redisClient, err = pkgredis.New(ctx, cfg.Redis)
		if err != nil {
			log.Error("connect redis", slog.Any("error", err))
			os.Exit(1)
		}
		redisSessions := session.NewRedisStore(redisClient.Client, log, cfg.Session.TTL)
		sessions = redisSessions
		users = usercache.NewCachedUserStore(store, usercache.NewCache(redisClient.Client, cfg.Session.TTL), log)
		checker.AddCheck("redis", health.NewRedisChecker(redisClient.Client))
		dispatcherOpts = append(dispatcherOpts, dispatcher.WithSenderLocker(redisSessions))
	}

	go session.NewCleaner(sessions, log, cfg.Session.TTL, cfg.Session.CleanupInterval).Run(ctx)

	var recorderOpts []msglog.Option
	if cfg.Audit.Enabled {
		recorderOpts = append(recorderOpts,
			msglog.WithFile(cfg.Audit.Path, cfg.Audit.MaxSizeMB, cfg.Audit.MaxBackups, cfg.Audit.MaxAgeDays))
	}
	recorder := msglog.NewRecorder(store, log, recorderOpts...)

	gate := registration.NewMachine(users, sessions, log)
	reports := report.NewAggregator(store, log)
	errs := apperrors.NewHandler(log, cfg.Sentry.Enabled)

	if cfg.Chart.Enabled {
		dispatcherOpts = append(dispatcherOpts, dispatcher.WithChartRenderer(chart.NewQuickChart(cfg.Chart, log)))
	}
	disp := dispatcher.New(store, gate, reports, recorder, errs, log, dispatcherOpts...)

	var gatewayOpts []telegram.Option
	if redisClient != nil {
		gatewayOpts = append(gatewayOpts, telegram.WithDeduper(dedupe.NewRedisDeduper(redisClient.Client, log)))
	} else {
		gatewayOpts = append(gatewayOpts, telegram.WithDeduper(dedupe.NewMemoryDeduper()))
	}
	if cfg.RateLimit.Enabled {
		var limiter ratelimit.Limiter
		if redisClient != nil {
			limiter = ratelimit.NewRedisLimiter(redisClient.Client, log)
		} else {
			memLimiter := ratelimit.NewMemoryLimiter(log)
			go ratelimit.NewCleaner(memLimiter, cfg.RateLimit.Window, 2*cfg.RateLimit.Window, log).Run(ctx)
			limiter = memLimiter
		}
		gatewayOpts = append(gatewayOpts, telegram.WithRateLimit(limiter, cfg.RateLimit.PerSender, cfg.RateLimit.Window))
	}

	var mirror *outbox.Publisher
	if cfg.Outbox.Enabled {
		mirror, err = outbox.NewPublisher(cfg.Outbox.URL, cfg.Outbox.Exchange, cfg.Outbox.Queue, log)
		if err != nil {
			// outbound mirroring is best effort, keep running without it
			log.Warn("outbox unavailable", slog.Any("error", err))
			mirror = nil
		} else {
			gatewayOpts = append(gatewayOpts, telegram.WithOutboxMirror(mirror))
		}
	}

	gw, err := telegram.New(cfg.Bot, cfg.Server.Port, disp, log, gatewayOpts...)
	if err != nil {
		log.Error("init telegram gateway", slog.Any("error", err))
		os.Exit(1)
	}
	checker.AddCheck("telegram", health.NewTelegramChecker(gw.Bot()))

	adminSrv := admin.NewServer(store, checker, cfg.Audit.Path, log)
	httpSrv := graceful.NewServer(log, &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      adminSrv.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}, cfg.Server.ShutdownTimeout)

	// In webhook mode telebot owns the listen port, so the admin server
	// only runs alongside long polling.
	if cfg.Bot.Mode != "webhook" {
		go func() {
			if err := httpSrv.ListenAndServe(ctx); err != nil {
				log.Error("admin server", slog.Any("error", err))
			}
		}()
	}

	go gw.Start()
	log.Info("bot is running")

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdown := lifecycle.NewShutdown(log)
	shutdown.Register("telegram", func(context.Context) error {
		gw.Stop()
		return nil
	})
	shutdown.Register("store", func(context.Context) error {
		return store.Close()
	})
	if redisClient != nil {
		shutdown.Register("redis", func(context.Context) error {
			return redisClient.Close()
		})
	}
	if mirror != nil {
		shutdown.Register("outbox", func(context.Context) error {
			return mirror.Close()
		})
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := shutdown.Execute(shutdownCtx); err != nil {
		log.Error("shutdown incomplete", slog.Any("error", err))
	}
	log.Info("bot stopped")
}
