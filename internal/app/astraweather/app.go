package astraweather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/astraweather/internal/cache"
	"github.com/magabrotheeeer/astraweather/internal/config"
	"github.com/magabrotheeeer/astraweather/internal/http/middlewarectx"
	"github.com/magabrotheeeer/astraweather/internal/lib/jwt"
	"github.com/magabrotheeeer/astraweather/internal/lib/sl"
	"github.com/magabrotheeeer/astraweather/internal/metrics"
	"github.com/magabrotheeeer/astraweather/internal/migrations"
	"github.com/magabrotheeeer/astraweather/internal/openweather"
	"github.com/magabrotheeeer/astraweather/internal/paypal"
	"github.com/magabrotheeeer/astraweather/internal/rabbitmq"
	authservice "github.com/magabrotheeeer/astraweather/internal/services/auth"
	locationservice "github.com/magabrotheeeer/astraweather/internal/services/location"
	subservice "github.com/magabrotheeeer/astraweather/internal/services/subscription"
	supportservice "github.com/magabrotheeeer/astraweather/internal/services/support"
	userservice "github.com/magabrotheeeer/astraweather/internal/services/user"
	weatherservice "github.com/magabrotheeeer/astraweather/internal/services/weather"
	"github.com/magabrotheeeer/astraweather/internal/storage/repository"
	"github.com/magabrotheeeer/astraweather/internal/subscription"
)

// App HTTP API со всеми открытыми соединениями.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New подключается к хранилищам и брокеру, накатывает миграции и собирает роутер.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		db.DB.Close()
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		db.DB.Close()
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		db.DB.Close()
		_ = cacheRedis.Close()
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		db.DB.Close()
		_ = cacheRedis.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	if cfg.PayPal.SkipWebhookVerification {
		logger.Warn("paypal webhook signature verification is disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	paypalClient := paypal.NewClient(cfg.PayPal.APIBaseURL, cfg.PayPal.ClientID, cfg.PayPal.ClientSecret, cfg.PayPal.Timeout)
	weatherClient := openweather.NewClient(cfg.OpenWeather.BaseURL, cfg.OpenWeather.APIKey, cfg.OpenWeather.Timeout)
	publisher := rabbitmq.NewPublisher(ch)

	reconciler := subscription.NewReconciler(logger, paypalClient, db, metrics.NewWebhookMetrics(registry), subscription.Config{
		WebhookID:        cfg.PayPal.WebhookID,
		SkipVerification: cfg.PayPal.SkipWebhookVerification,
	})

	deps := Deps{
		Tokens:    jwtMaker,
		Users:     db,
		Auth:      authservice.NewAuthService(db, jwtMaker),
		User:      userservice.NewUserService(db),
		Locations: locationservice.NewLocationService(db),
		Subscription: subservice.NewSubscriptionService(logger, db, paypalClient, subservice.CheckoutConfig{
			BrandName: cfg.PayPal.BrandName,
			AppURL:    cfg.PayPal.AppURL,
		}),
		Reconciler:        reconciler,
		Support:           supportservice.NewSupportService(logger, db, publisher),
		Weather:           weatherservice.NewWeatherService(logger, weatherClient, cacheRedis, cfg.OpenWeather.CacheTTL),
		Limiter:           middlewarectx.NewRateLimiter(cfg.RateLimit, cfg.RateBurst),
		Metrics:           registry,
		EnableTestWebhook: cfg.PayPal.EnableTestWebhook && cfg.Env != config.EnvProd,
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, deps)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
		conn:   conn,
		ch:     ch,
	}, nil
}

// Run запускает сервер и останавливает его при отмене ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Error("failed to close redis", sl.Err(err))
	}
	if err := a.db.DB.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
}
