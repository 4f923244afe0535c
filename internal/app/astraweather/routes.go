// Package astraweather собирает HTTP API: маршруты, middleware и зависимости.
package astraweather

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/astraweather/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/astraweather/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/astraweather/internal/http/handlers/health"
	"github.com/magabrotheeeer/astraweather/internal/http/handlers/location/remove"
	"github.com/magabrotheeeer/astraweather/internal/http/handlers/location/save"
	"github.com/magabrotheeeer/astraweather/internal/http/handlers/location/setdefault"
	"github.com/magabrotheeeer/astraweather/internal/http/handlers/paypal/createsubscription"
	"github.com/magabrotheeeer/astraweather/internal/http/handlers/paypal/testwebhook"
	"github.com/magabrotheeeer/astraweather/internal/http/handlers/paypal/webhook"
	"github.com/magabrotheeeer/astraweather/internal/http/handlers/subscription/status"
	"github.com/magabrotheeeer/astraweather/internal/http/handlers/support/adminlist"
	"github.com/magabrotheeeer/astraweather/internal/http/handlers/support/respond"
	"github.com/magabrotheeeer/astraweather/internal/http/handlers/support/send"
	"github.com/magabrotheeeer/astraweather/internal/http/handlers/support/urgent"
	"github.com/magabrotheeeer/astraweather/internal/http/handlers/user/me"
	"github.com/magabrotheeeer/astraweather/internal/http/handlers/user/preferences"
	"github.com/magabrotheeeer/astraweather/internal/http/handlers/weather/forecast"
	"github.com/magabrotheeeer/astraweather/internal/http/handlers/weather/geocode"
	"github.com/magabrotheeeer/astraweather/internal/http/handlers/weather/insights"
	"github.com/magabrotheeeer/astraweather/internal/http/middlewarectx"
	"github.com/magabrotheeeer/astraweather/internal/models"
	"github.com/magabrotheeeer/astraweather/internal/subscription"

	locationlist "github.com/magabrotheeeer/astraweather/internal/http/handlers/location/list"
	supportlist "github.com/magabrotheeeer/astraweather/internal/http/handlers/support/list"
	authservice "github.com/magabrotheeeer/astraweather/internal/services/auth"
	locationservice "github.com/magabrotheeeer/astraweather/internal/services/location"
	subservice "github.com/magabrotheeeer/astraweather/internal/services/subscription"
	supportservice "github.com/magabrotheeeer/astraweather/internal/services/support"
	userservice "github.com/magabrotheeeer/astraweather/internal/services/user"
	weatherservice "github.com/magabrotheeeer/astraweather/internal/services/weather"
)

// Deps зависимости, из которых собираются обработчики.
type Deps struct {
	Tokens       middlewarectx.TokenParser
	Users        middlewarectx.UserGetter
	Auth         *authservice.AuthService
	User         *userservice.UserService
	Locations    *locationservice.LocationService
	Subscription *subservice.SubscriptionService
	Reconciler   *subscription.Reconciler
	Support      *supportservice.SupportService
	Weather      *weatherservice.WeatherService
	Limiter      *middlewarectx.RateLimiter
	Metrics      prometheus.Gatherer
	// EnableTestWebhook регистрирует /paypal/test-webhook.
	EnableTestWebhook bool
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, d Deps) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Get("/health", health.New(logger).ServeHTTP)
		r.Post("/auth/register", register.New(logger, d.Auth).ServeHTTP)
		r.Post("/auth/login", login.New(logger, d.Auth).ServeHTTP)
		r.Post("/paypal/webhook", webhook.New(logger, d.Reconciler).ServeHTTP)
		if d.EnableTestWebhook {
			r.Post("/paypal/test-webhook", testwebhook.New(logger, d.Subscription).ServeHTTP)
		}

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(d.Tokens, logger))

			r.Get("/me", me.New(logger, d.User).ServeHTTP)
			r.Patch("/me/preferences", preferences.New(logger, d.User).ServeHTTP)

			r.Get("/locations", locationlist.New(logger, d.Locations).ServeHTTP)
			r.Post("/locations", save.New(logger, d.Locations).ServeHTTP)
			r.Delete("/locations/{id}", remove.New(logger, d.Locations).ServeHTTP)
			r.Put("/locations/{id}/default", setdefault.New(logger, d.Locations).ServeHTTP)

			r.Post("/paypal/create-subscription", createsubscription.New(logger, d.Subscription).ServeHTTP)
			r.Get("/subscription", status.New(logger, d.Subscription).ServeHTTP)

			r.Get("/weather", forecast.New(logger, d.Weather).ServeHTTP)
			r.Get("/weather/location", geocode.New(logger, d.Weather).ServeHTTP)

			r.Get("/support/messages", supportlist.New(logger, d.Support).ServeHTTP)
			r.With(middlewarectx.RateLimitMiddleware(logger, d.Limiter)).
				Post("/support/messages", send.New(logger, d.Support).ServeHTTP)

			// Только для премиум-подписчиков
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.PremiumMiddleware(logger, d.Users))
				r.Get("/weather/insights", insights.New(logger, d.Weather).ServeHTTP)
				r.Post("/support/urgent", urgent.New(logger, d.Support).ServeHTTP)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(middlewarectx.RequireRole(logger, models.RoleAdmin))
				r.Get("/support/messages", adminlist.New(logger, d.Support).ServeHTTP)
				r.Post("/support/respond", respond.New(logger, d.Support).ServeHTTP)
			})
		})
	})

	if d.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Metrics, promhttp.HandlerOpts{}))
	} else {
		r.Handle("/metrics", promhttp.Handler())
	}
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
