// Package myplan реализует HTTP-обработчик просмотра текущей подписки.
package myplan

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/sstepanets/plan-manager/internal/http/middlewarectx"
	"github.com/sstepanets/plan-manager/internal/http/response"
	"github.com/sstepanets/plan-manager/internal/lib/sl"
	"github.com/sstepanets/plan-manager/internal/services/lifecycle"
)

// Service описывает интерфейс бизнес-логики просмотра подписки.
type Service interface {
	MyPlan(ctx context.Context, userUID string) (*lifecycle.PlanInfo, error)
}

// Handler управляет HTTP-запросами на просмотр текущего плана.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Get current plan
// @Description Returns the caller's active subscription and its plan, or has_plan=false.
// @Tags Subscriptions
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response "Current plan info"
// @Failure 401 {object} response.ErrorResponse "Missing or invalid token"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /my-plan [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.myplan"
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

	info, err := h.service.MyPlan(r.Context(), userUID)
	if err != nil {
		log.Error("failed to get current plan", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not get current plan"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"has_plan":     info.HasPlan,
		"subscription": info.Subscription,
		"plan":         info.Plan,
	}))
}
