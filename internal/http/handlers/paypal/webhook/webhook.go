// Package webhook принимает события подписок PayPal.
//
// Ответы следуют контракту провайдера: {"received":true} при успехе и
// {"error":"..."} при ошибке, без общей обёртки status/data.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/astraweather/internal/lib/sl"
	"github.com/magabrotheeeer/astraweather/internal/paypal"
	"github.com/magabrotheeeer/astraweather/internal/subscription"
)

const maxBodyBytes = 1 << 20

// Reconciler применяет событие к записи пользователя.
type Reconciler interface {
	Handle(ctx context.Context, t paypal.Transmission, body []byte) error
}

// Handler обрабатывает POST /paypal/webhook.
type Handler struct {
	log        *slog.Logger
	reconciler Reconciler
}

// New создаёт Handler.
func New(log *slog.Logger, reconciler Reconciler) *Handler {
	return &Handler{log: log, reconciler: reconciler}
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	w.WriteHeader(code)
	render.JSON(w, r, map[string]string{"error": msg})
}

// ServeHTTP godoc
// @Summary Вебхук PayPal
// @Description Проверяет подпись доставки и применяет событие BILLING.SUBSCRIPTION.*.
// @Tags PayPal
// @Accept json
// @Produce json
// @Success 200 {object} map[string]bool
// @Failure 400 {object} map[string]string "Некорректное событие"
// @Failure 401 {object} map[string]string "Неверная подпись"
// @Failure 500 {object} map[string]string "Ошибка обработки"
// @Router /paypal/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.paypal.webhook"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		writeError(w, r, http.StatusBadRequest, "Invalid webhook payload")
		return
	}
	if !json.Valid(body) {
		log.Warn("webhook body is not valid json")
		writeError(w, r, http.StatusBadRequest, "Invalid webhook payload")
		return
	}

	err = h.reconciler.Handle(r.Context(), paypal.TransmissionFromHeaders(r.Header), body)
	switch {
	case err == nil:
		render.JSON(w, r, map[string]bool{"received": true})
	case errors.Is(err, subscription.ErrInvalidSignature):
		writeError(w, r, http.StatusUnauthorized, "Invalid webhook signature")
	case errors.Is(err, subscription.ErrMalformedEvent):
		writeError(w, r, http.StatusBadRequest, "Invalid webhook payload")
	default:
		log.Error("webhook processing failed", sl.Err(err))
		writeError(w, r, http.StatusInternalServerError, "Webhook processing failed")
	}
}
