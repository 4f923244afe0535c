// Package send принимает сообщения пользователя в чат поддержки.
package send

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/astraweather/internal/http/middlewarectx"
	"github.com/magabrotheeeer/astraweather/internal/http/response"
	"github.com/magabrotheeeer/astraweather/internal/lib/sl"
	"github.com/magabrotheeeer/astraweather/internal/models"
	services "github.com/magabrotheeeer/astraweather/internal/services/support"
	"github.com/magabrotheeeer/astraweather/internal/storage/repository"
)

// Request сообщение пользователя. Timestamp необязателен.
type Request struct {
	Message   string     `json:"message"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// Service сохраняет сообщение.
type Service interface {
	Send(ctx context.Context, userUID, text string, ts *time.Time) (*models.SupportMessage, error)
}

// Handler обрабатывает POST /support/messages.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Написать в поддержку
// @Tags Support
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request true "Сообщение"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Пустое сообщение"
// @Failure 429 {object} response.ErrorResponse "Слишком много запросов"
// @Router /support/messages [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.support.send"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	uid, ok := middlewarectx.UserUIDFrom(r.Context())
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

	msg, err := h.service.Send(r.Context(), uid, req.Message, req.Timestamp)
	switch {
	case errors.Is(err, services.ErrEmptyMessage):
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error(services.ErrEmptyMessage.Error()))
		return
	case errors.Is(err, repository.ErrUserNotFound):
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("user not found"))
		return
	case err != nil:
		log.Error("failed to store support message", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to send message"))
		return
	}

	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": msg,
	}))
}
