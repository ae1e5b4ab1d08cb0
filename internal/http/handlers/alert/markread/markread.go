// Package markread реализует HTTP-обработчик отметки уведомления прочитанным.
package markread

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/sstepanets/plan-manager/internal/http/middlewarectx"
	"github.com/sstepanets/plan-manager/internal/http/response"
	"github.com/sstepanets/plan-manager/internal/lib/sl"
	alertsservice "github.com/sstepanets/plan-manager/internal/services/alerts"
)

// Service описывает интерфейс сервиса уведомлений.
type Service interface {
	MarkRead(ctx context.Context, alertID int, userUID string) error
}

// Handler управляет HTTP-запросами на отметку уведомлений.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Mark alert as read
// @Description Marks one of the caller's alerts as read.
// @Tags Alerts
// @Security BearerAuth
// @Produce json
// @Param id path int true "Alert ID"
// @Success 200 {object} response.Response "Marked"
// @Failure 400 {object} response.ErrorResponse "Invalid id"
// @Failure 401 {object} response.ErrorResponse "Missing or invalid token"
// @Failure 404 {object} response.ErrorResponse "Alert not found"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /alerts/{id}/read [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.alert.markread"
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

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		log.Error("invalid alert id", slog.String("raw", chi.URLParam(r, "id")))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid alert id"))
		return
	}

	if err := h.service.MarkRead(r.Context(), id, userUID); err != nil {
		if errors.Is(err, alertsservice.ErrAlertNotFound) {
			log.Error("alert not found", slog.Int("alert_id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("alert not found"))
			return
		}
		log.Error("failed to mark alert as read", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not mark alert as read"))
		return
	}

	log.Info("alert marked as read", slog.Int("alert_id", id))
	render.JSON(w, r, response.OK())
}
