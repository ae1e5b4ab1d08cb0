// Package list реализует HTTP-обработчик списка уведомлений пользователя.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/sstepanets/plan-manager/internal/http/middlewarectx"
	"github.com/sstepanets/plan-manager/internal/http/response"
	"github.com/sstepanets/plan-manager/internal/lib/sl"
	"github.com/sstepanets/plan-manager/internal/models"
)

// Service описывает интерфейс сервиса уведомлений.
type Service interface {
	List(ctx context.Context, userUID string) ([]*models.Alert, error)
}

// Handler управляет HTTP-запросами на список уведомлений.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary List alerts
// @Description Returns the caller's alerts, newest first.
// @Tags Alerts
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response "Alert list"
// @Failure 401 {object} response.ErrorResponse "Missing or invalid token"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /alerts [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.alert.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("missing user uid in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	alerts, err := h.service.List(r.Context(), userUID)
	if err != nil {
		log.Error("failed to list alerts", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list alerts"))
		return
	}

	log.Info("alerts listed", slog.Int("count", len(alerts)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"alerts": alerts,
	}))
}
