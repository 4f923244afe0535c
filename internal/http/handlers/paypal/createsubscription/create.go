// Package createsubscription оформляет подписку PayPal для текущего пользователя.
package createsubscription

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/astraweather/internal/http/middlewarectx"
	"github.com/magabrotheeeer/astraweather/internal/http/response"
	"github.com/magabrotheeeer/astraweather/internal/lib/sl"
	"github.com/magabrotheeeer/astraweather/internal/paypal"
	services "github.com/magabrotheeeer/astraweather/internal/services/subscription"
	"github.com/magabrotheeeer/astraweather/internal/storage/repository"
)

// Request тело запроса оформления подписки.
type Request struct {
	PlanID string `json:"planId"`
	UserID string `json:"userId"`
}

// Service создаёт подписку у провайдера.
type Service interface {
	Checkout(ctx context.Context, callerUID, userUID, planID string) (*paypal.Subscription, error)
}

// Handler обрабатывает POST /paypal/create-subscription.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Оформить подписку PayPal
// @Description Создаёт подписку по плану и возвращает объект PayPal со ссылкой approve.
// @Tags PayPal
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request true "План и пользователь"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Нет planId или userId"
// @Failure 403 {object} response.ErrorResponse "Чужой userId"
// @Failure 500 {object} response.ErrorResponse "Ошибка PayPal"
// @Router /paypal/create-subscription [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.paypal.createsubscription"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	callerUID, ok := middlewarectx.UserUIDFrom(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	sub, err := h.service.Checkout(r.Context(), callerUID, req.UserID, req.PlanID)
	if err != nil {
		var apiErr *paypal.APIError
		switch {
		case errors.Is(err, services.ErrMissingFields):
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(services.ErrMissingFields.Error()))
		case errors.Is(err, services.ErrForbidden):
			log.Warn("checkout for another user rejected", slog.String("caller_uid", callerUID))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("forbidden"))
		case errors.Is(err, repository.ErrUserNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
		case errors.As(err, &apiErr) && apiErr.Message != "":
			log.Error("paypal rejected subscription", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(apiErr.Message))
		default:
			log.Error("failed to create subscription", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to create subscription"))
		}
		return
	}

	render.JSON(w, r, response.StatusOKWithData(sub))
}
