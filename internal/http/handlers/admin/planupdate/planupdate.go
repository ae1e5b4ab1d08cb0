// Package planupdate реализует административный HTTP-обработчик обновления плана.
package planupdate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/sstepanets/plan-manager/internal/http/middlewarectx"
	"github.com/sstepanets/plan-manager/internal/http/response"
	"github.com/sstepanets/plan-manager/internal/lib/sl"
	"github.com/sstepanets/plan-manager/internal/models"
	plansservice "github.com/sstepanets/plan-manager/internal/services/plans"
)

// Service описывает интерфейс управления каталогом планов.
type Service interface {
	Update(ctx context.Context, adminUID string, id int, req models.DummyPlan, meta models.RequestMeta) (*models.Plan, error)
}

// Handler управляет HTTP-запросами на обновление планов.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Update a plan
// @Description Updates an existing plan in the catalog. Admin only.
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Plan ID"
// @Param request body models.DummyPlan true "Plan data"
// @Success 200 {object} response.Response "Updated plan"
// @Failure 400 {object} response.ErrorResponse "Invalid JSON or id"
// @Failure 401 {object} response.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} response.ErrorResponse "Not an admin"
// @Failure 404 {object} response.ErrorResponse "Plan not found"
// @Failure 422 {object} response.ErrorResponse "Validation error"
// @Failure 500 {object} response.ErrorResponse "Server error"
// @Router /admin/plans/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.planupdate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	adminUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || adminUID == "" {
		log.Error("missing user uid in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		log.Error("invalid plan id", slog.String("raw", chi.URLParam(r, "id")))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid plan id"))
		return
	}

	var req models.DummyPlan
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	meta := models.RequestMeta{IPAddress: r.RemoteAddr, UserAgent: r.UserAgent()}
	plan, err := h.service.Update(r.Context(), adminUID, id, req, meta)
	if err != nil {
		if errors.Is(err, plansservice.ErrPlanNotFound) {
			log.Error("plan not found", slog.Int("plan_id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("plan not found"))
			return
		}
		log.Error("failed to update plan", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update plan"))
		return
	}

	log.Info("plan updated", slog.Int("plan_id", plan.ID), slog.String("admin_uid", adminUID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"plan": plan,
	}))
}
