package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/astraweather/internal/http/response"
	"github.com/magabrotheeeer/astraweather/internal/lib/sl"
	"github.com/magabrotheeeer/astraweather/internal/models"
	"github.com/magabrotheeeer/astraweather/internal/storage/repository"
)

// UserGetter читает запись пользователя.
type UserGetter interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// PremiumMiddleware пропускает только пользователей с действующей подпиской.
// Доступ вычисляется по статусу и окончанию подписки, а не по флагу isPremium.
func PremiumMiddleware(log *slog.Logger, users UserGetter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.PremiumMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			userUID, ok := UserUIDFrom(r.Context())
			if !ok {
				log.Error("user identification missing")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("user identification missing"))
				return
			}

			user, err := users.GetUser(r.Context(), userUID)
			if errors.Is(err, repository.ErrUserNotFound) {
				w.WriteHeader(http.StatusNotFound)
				render.JSON(w, r, response.Error("User not found"))
				return
			}
			if err != nil {
				log.Error("failed to get user", sl.Err(err))
				w.WriteHeader(http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal service error"))
				return
			}

			if !user.Entitled(time.Now()) {
				log.Info("premium access denied", slog.String("user_uid", userUID))
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Error("premium subscription required"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
