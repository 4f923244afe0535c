// Package testwebhook активирует подписку без PayPal. Маршрут регистрируется
// только вне продакшена при включённом paypal.enable_test_webhook.
package testwebhook

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/astraweather/internal/http/response"
	"github.com/magabrotheeeer/astraweather/internal/lib/sl"
	services "github.com/magabrotheeeer/astraweather/internal/services/subscription"
	"github.com/magabrotheeeer/astraweather/internal/storage/repository"
)

// Request пользователь, которому включается премиум.
type Request struct {
	UserID string `json:"userId"`
}

// Service применяет активацию.
type Service interface {
	SimulateActivation(ctx context.Context, userUID string) error
}

// Handler обрабатывает POST /paypal/test-webhook.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.paypal.testwebhook"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	err := h.service.SimulateActivation(r.Context(), req.UserID)
	switch {
	case errors.Is(err, services.ErrMissingFields):
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("userId is required"))
		return
	case errors.Is(err, repository.ErrUserNotFound):
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("user not found"))
		return
	case err != nil:
		log.Error("failed to simulate activation", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to activate subscription"))
		return
	}

	log.Warn("premium activated by test webhook", slog.String("user_uid", req.UserID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"received": true,
		"userId":   req.UserID,
	}))
}
