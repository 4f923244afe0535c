// Package respond сохраняет ответ администратора на сообщение пользователя.
package respond

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
	"github.com/magabrotheeeer/astraweather/internal/models"
	services "github.com/magabrotheeeer/astraweather/internal/services/support"
	"github.com/magabrotheeeer/astraweather/internal/storage/repository"
)

// Request ответ на сообщение messageId пользователя userId.
type Request struct {
	MessageID string `json:"messageId"`
	UserID    string `json:"userId"`
	Response  string `json:"response"`
}

// Service сохраняет ответ.
type Service interface {
	Respond(ctx context.Context, adminUID, messageID, userUID, response string) (*models.SupportMessage, error)
}

// Handler обрабатывает POST /admin/support/respond.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Ответ поддержки
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request true "Ответ"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse "Сообщение не найдено"
// @Router /admin/support/respond [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.support.respond"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	adminUID, ok := middlewarectx.UserUIDFrom(r.Context())
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

	reply, err := h.service.Respond(r.Context(), adminUID, req.MessageID, req.UserID, req.Response)
	switch {
	case errors.Is(err, services.ErrMissingFields):
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error(services.ErrMissingFields.Error()))
		return
	case errors.Is(err, repository.ErrMessageNotFound):
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("message not found"))
		return
	case err != nil:
		log.Error("failed to store support reply", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to send response"))
		return
	}

	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": reply,
	}))
}
