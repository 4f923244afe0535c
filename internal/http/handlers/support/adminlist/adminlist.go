// Package adminlist отдаёт администратору все сообщения поддержки.
package adminlist

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/astraweather/internal/http/response"
	"github.com/magabrotheeeer/astraweather/internal/lib/sl"
	"github.com/magabrotheeeer/astraweather/internal/models"
)

// Service читает все сообщения постранично.
type Service interface {
	AdminList(ctx context.Context, limit, offset int) ([]models.SupportMessage, error)
}

// Handler обрабатывает GET /admin/support/messages.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Все сообщения поддержки
// @Description Новые первыми. Доступно только администраторам.
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Router /admin/support/messages [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.support.adminlist"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit, err := intParam(r, "limit")
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid limit"))
		return
	}
	offset, err := intParam(r, "offset")
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid offset"))
		return
	}

	messages, err := h.service.AdminList(r.Context(), limit, offset)
	if err != nil {
		log.Error("failed to list support messages", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list messages"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"messages": messages,
	}))
}

func intParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
