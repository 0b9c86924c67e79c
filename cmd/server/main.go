package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/churchbilling/migrations"
	"github.com/dmitrymomot/churchbilling/pkg/billing"
	"github.com/dmitrymomot/churchbilling/pkg/clientip"
	"github.com/dmitrymomot/churchbilling/pkg/config"
	"github.com/dmitrymomot/churchbilling/pkg/email"
	"github.com/dmitrymomot/churchbilling/pkg/httpserver"
	"github.com/dmitrymomot/churchbilling/pkg/logger"
	"github.com/dmitrymomot/churchbilling/pkg/pg"
	"github.com/dmitrymomot/churchbilling/pkg/ratelimiter"
	"github.com/dmitrymomot/churchbilling/pkg/redis"
	"github.com/dmitrymomot/churchbilling/pkg/requestid"
	"github.com/dmitrymomot/churchbilling/svc/billingstore"
	"github.com/dmitrymomot/churchbilling/svc/dedup"
	"github.com/dmitrymomot/churchbilling/svc/notify"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Billing server stopped with error", logger.Error(err))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		logCfg    logger.Config
		pgCfg     pg.Config
		redisCfg  redis.Config
		httpCfg   httpserver.Config
		notifyCfg notify.Config
		appCfg    appConfig
	)
	if err := errors.Join(
		config.Load(&logCfg),
		config.Load(&pgCfg),
		config.Load(&redisCfg),
		config.Load(&httpCfg),
		config.Load(&notifyCfg),
		config.Load(&appCfg),
	); err != nil {
		return err
	}

	log, err := logger.NewFromConfig(logCfg, logger.WithContextExtractors(
		requestid.LoggerExtractor(),
		clientip.LoggerExtractor(),
	))
	if err != nil {
		return err
	}
	logger.SetAsDefault(log)

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if pgCfg.AutoMigrate {
		if err := pg.Migrate(ctx, pool, migrations.FS, pgCfg, log); err != nil {
			return err
		}
	}

	checks := []httpserver.Check{{Name: "postgres", Fn: pg.Healthcheck(pool)}}

	store := billingstore.New(pool)
	svcOpts := []billing.ServiceOption{
		billing.WithLogger(log.With(logger.Component("billing"))),
		billing.WithNotifyTimeout(appCfg.NotifyTimeout),
	}

	if appCfg.Dedup {
		if redisCfg.Enabled() {
			rdb, err := redis.Connect(ctx, redisCfg)
			if err != nil {
				return err
			}
			defer func() { _ = rdb.Close() }()
			checks = append(checks, httpserver.Check{Name: "redis", Fn: redis.Healthcheck(rdb)})
			svcOpts = append(svcOpts, billing.WithClaimStore(dedup.NewRedisStore(rdb), appCfg.ClaimTTL))
		} else {
			claims := billingstore.NewClaimStore(pool)
			go purgeClaims(ctx, claims, appCfg.ClaimPurgeInterval, log)
			svcOpts = append(svcOpts, billing.WithClaimStore(claims, appCfg.ClaimTTL))
		}
	}

	mailer, err := newMailer(notifyCfg)
	if err != nil {
		return err
	}

	owners := billing.NewOwnerResolver(store, store, store)
	dispatcher := billing.NewDispatcher(mailer, owners,
		billing.WithDispatcherLogger(log.With(logger.Component("notify"))),
	)
	svc := billing.NewService(store, dispatcher, svcOpts...)

	webhook := billing.NewWebhookHandler(svc,
		billing.WithAccessToken(appCfg.WebhookToken),
		billing.WithWebhookLogger(log.With(logger.Component("webhook"))),
	)
	if appCfg.WebhookToken == "" {
		log.WarnContext(ctx, "BILLING_WEBHOOK_TOKEN is empty, webhook requests are not authenticated")
	}

	proxies, err := clientip.ParsePrefixes(appCfg.TrustedProxies)
	if err != nil {
		return err
	}
	clients := clientip.NewResolver(proxies)

	allowed, err := clientip.ParsePrefixes(appCfg.WebhookAllowedIPs)
	if err != nil {
		return err
	}
	webhookMiddlewares := []func(http.Handler) http.Handler{clients.Allowlist(allowed)}

	if appCfg.WebhookRateLimit > 0 {
		limits := ratelimiter.NewMemoryStore()
		defer limits.Close()
		bucket, err := ratelimiter.NewBucket(limits, ratelimiter.PerMinute(appCfg.WebhookRateLimit))
		if err != nil {
			return err
		}
		webhookMiddlewares = append(webhookMiddlewares, ratelimiter.Middleware(bucket, clients.GetIP,
			ratelimiter.WithLimitedHandler(http.HandlerFunc(rateLimited)),
			ratelimiter.WithMiddlewareLogger(log),
		))
	}

	r := chi.NewRouter()
	r.Use(requestid.Middleware, clients.Middleware, middleware.Recoverer)
	r.Get("/health/live", httpserver.LivenessHandler())
	r.Get("/health/ready", httpserver.ReadinessHandler(log, appCfg.ReadinessTimeout, checks...))
	r.With(webhookMiddlewares...).Method(http.MethodPost, appCfg.WebhookPath, webhook)

	srv := httpserver.New(httpCfg,
		httpserver.WithLogger(log),
		httpserver.WithShutdownHook("notifications", svc.Wait),
	)

	log.InfoContext(ctx, "Billing server starting",
		slog.String("addr", httpCfg.Addr),
		slog.String("webhook_path", appCfg.WebhookPath),
		slog.String("notify_mode", notifyCfg.Mode),
	)
	return srv.Run(ctx, r)
}

func newMailer(cfg notify.Config) (billing.Mailer, error) {
	if cfg.Mode != notify.ModeEmail {
		return notify.New(cfg, nil)
	}

	var emailCfg email.Config
	if err := config.Load(&emailCfg); err != nil {
		return nil, err
	}
	sender, err := email.New(emailCfg)
	if err != nil {
		return nil, err
	}
	return notify.New(cfg, sender, notify.WithSupportEmail(emailCfg.SupportEmail))
}

// purgeClaims deletes expired notification claims until ctx is done.
func purgeClaims(ctx context.Context, claims *billingstore.ClaimStore, every time.Duration, log *slog.Logger) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := claims.Purge(ctx)
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					log.WarnContext(ctx, "Failed to purge notification claims", logger.Error(err))
				}
				continue
			}
			if n > 0 {
				log.DebugContext(ctx, "Purged notification claims", slog.Int64("count", n))
			}
		}
	}
}

func rateLimited(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(`{"received":false,"error":"rate_limited"}` + "\n"))
}
