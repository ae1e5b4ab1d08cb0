// Package plans содержит бизнес-логику каталога тарифных планов,
// включая кеширование и административное управление.
package plans

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/sstepanets/plan-manager/internal/lib/sl"
	"github.com/sstepanets/plan-manager/internal/models"
	"github.com/sstepanets/plan-manager/internal/storage/repository"
)

// ErrPlanNotFound возвращается, когда запрошенный план отсутствует.
var ErrPlanNotFound = errors.New("plan not found")

const activePlansCacheKey = "plans:active"

// Repository определяет методы хранилища, используемые каталогом.
type Repository interface {
	ListActivePlans(ctx context.Context) ([]*models.Plan, error)
	GetPlan(ctx context.Context, id int) (*models.Plan, error)
	CreatePlan(ctx context.Context, plan models.Plan) (int, error)
	UpdatePlan(ctx context.Context, plan models.Plan) error
	RecordAudit(ctx context.Context, entry models.AuditEntry) error
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// TxManager выполняет функцию внутри одной транзакции хранилища.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service реализует каталог планов с кешированием.
type Service struct {
	repo  Repository
	cache Cache
	tx    TxManager
	log   *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, cache Cache, tx TxManager, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		tx:    tx,
		log:   log,
	}
}

// List возвращает активные планы, используя кеш или репозиторий.
func (s *Service) List(ctx context.Context) ([]*models.Plan, error) {
	var cached []*models.Plan
	found, err := s.cache.Get(activePlansCacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read plans from cache", sl.Err(err))
	}
	if found {
		return cached, nil
	}

	result, err := s.repo.ListActivePlans(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(activePlansCacheKey, result, time.Hour); err != nil {
		s.log.Warn("failed to cache plans", sl.Err(err))
	}
	return result, nil
}

// Get возвращает план по ID, используя кеш или репозиторий.
func (s *Service) Get(ctx context.Context, id int) (*models.Plan, error) {
	cacheKey := fmt.Sprintf("plan:%d", id)

	var cached *models.Plan
	found, err := s.cache.Get(cacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read plan from cache", sl.Err(err))
	}
	if found {
		return cached, nil
	}

	plan, err := s.repo.GetPlan(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	if err := s.cache.Set(cacheKey, plan, time.Hour); err != nil {
		s.log.Warn("failed to cache plan", slog.String("key", cacheKey), sl.Err(err))
	}
	return plan, nil
}

// Create создает новый план от имени администратора, пишет аудит
// и инвалидирует кеш каталога.
func (s *Service) Create(ctx context.Context, adminUID string, req models.DummyPlan, meta models.RequestMeta) (*models.Plan, error) {
	plan := models.Plan{
		Name:           req.Name,
		Description:    req.Description,
		MonthlyPrice:   req.MonthlyPrice,
		MonthlyQuotaGB: req.MonthlyQuotaGB,
		IsActive:       req.IsActive,
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		newID, err := s.repo.CreatePlan(ctx, plan)
		if err != nil {
			return err
		}
		plan.ID = newID

		return s.repo.RecordAudit(ctx, models.AuditEntry{
			UserUID:   adminUID,
			Action:    models.ActionPlanCreated,
			TableName: "plans",
			RecordID:  strconv.Itoa(newID),
			NewValues: map[string]any{
				"name":             plan.Name,
				"monthly_price":    plan.MonthlyPrice,
				"monthly_quota_gb": plan.MonthlyQuotaGB,
			},
			IPAddress: meta.IPAddress,
			UserAgent: meta.UserAgent,
		})
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(plan.ID)
	s.log.Info("plan created", slog.Int("plan_id", plan.ID))
	return &plan, nil
}

// Update обновляет план от имени администратора, пишет аудит со снимками
// старых и новых значений и инвалидирует кеш.
func (s *Service) Update(ctx context.Context, adminUID string, id int, req models.DummyPlan, meta models.RequestMeta) (*models.Plan, error) {
	plan := models.Plan{
		ID:             id,
		Name:           req.Name,
		Description:    req.Description,
		MonthlyPrice:   req.MonthlyPrice,
		MonthlyQuotaGB: req.MonthlyQuotaGB,
		IsActive:       req.IsActive,
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		old, err := s.repo.GetPlan(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrPlanNotFound
			}
			return err
		}

		if err := s.repo.UpdatePlan(ctx, plan); err != nil {
			return err
		}

		return s.repo.RecordAudit(ctx, models.AuditEntry{
			UserUID:   adminUID,
			Action:    models.ActionPlanUpdated,
			TableName: "plans",
			RecordID:  strconv.Itoa(id),
			OldValues: map[string]any{
				"name":             old.Name,
				"monthly_price":    old.MonthlyPrice,
				"monthly_quota_gb": old.MonthlyQuotaGB,
				"is_active":        old.IsActive,
			},
			NewValues: map[string]any{
				"name":             plan.Name,
				"monthly_price":    plan.MonthlyPrice,
				"monthly_quota_gb": plan.MonthlyQuotaGB,
				"is_active":        plan.IsActive,
			},
			IPAddress: meta.IPAddress,
			UserAgent: meta.UserAgent,
		})
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(id)
	s.log.Info("plan updated", slog.Int("plan_id", id))
	return &plan, nil
}

func (s *Service) invalidate(planID int) {
	if err := s.cache.Invalidate(activePlansCacheKey); err != nil {
		s.log.Warn("failed to invalidate plans cache", sl.Err(err))
	}
	cacheKey := fmt.Sprintf("plan:%d", planID)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to invalidate plan cache", slog.String("key", cacheKey), sl.Err(err))
	}
}
