// Package lifecycle содержит бизнес-логику жизненного цикла подписки:
// покупку плана, отмену и выдачу текущего плана пользователя.
//
// Каждая мутация выполняется как одна атомарная единица: изменения
// подписок, запись аудита и оповещение либо сохраняются все вместе,
// либо не сохраняются вовсе.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/sstepanets/plan-manager/internal/metrics"
	"github.com/sstepanets/plan-manager/internal/models"
	"github.com/sstepanets/plan-manager/internal/storage/repository"
)

// Ошибки бизнес-уровня; транспортный слой переводит их в HTTP-статусы.
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrPlanNotFound         = errors.New("plan not found")
	ErrNoActiveSubscription = errors.New("no active subscription found")
	// ErrPurchaseConflict возвращается при гонке двух одновременных
	// покупок одного пользователя; операцию можно повторить.
	ErrPurchaseConflict = errors.New("concurrent purchase conflict")
)

// Repository определяет методы хранилища, используемые жизненным циклом.
type Repository interface {
	// GetUser возвращает пользователя по UID.
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	// GetPlan возвращает тарифный план по ID.
	GetPlan(ctx context.Context, id int) (*models.Plan, error)
	// FindActiveSubscription возвращает активную подписку пользователя.
	FindActiveSubscription(ctx context.Context, userUID string) (*models.Subscription, error)
	// CreateSubscription добавляет новую подписку и возвращает её ID.
	CreateSubscription(ctx context.Context, sub models.Subscription) (int, error)
	// CancelSubscription переводит подписку в статус cancelled.
	CancelSubscription(ctx context.Context, id int, endDate time.Time) error
	// CreateAlert добавляет оповещение пользователя.
	CreateAlert(ctx context.Context, alert models.Alert) (int, error)
	// RecordAudit добавляет запись журнала аудита.
	RecordAudit(ctx context.Context, entry models.AuditEntry) error
}

// TxManager выполняет функцию внутри одной транзакции хранилища.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// PlanInfo — текущий план пользователя. HasPlan false, если активной
// подписки нет; тогда Subscription и Plan равны nil.
type PlanInfo struct {
	HasPlan      bool                 `json:"has_plan"`
	Subscription *models.Subscription `json:"subscription,omitempty"`
	Plan         *models.Plan         `json:"plan,omitempty"`
}

// Service реализует операции жизненного цикла подписки.
type Service struct {
	repo Repository
	tx   TxManager
	log  *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, tx TxManager, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		tx:   tx,
		log:  log,
	}
}

// today обрезает время до даты: подписки оперируют датами, не моментами.
func today() time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour)
}

// Purchase оформляет пользователю подписку на план. Существующая
// активная подписка отменяется в той же транзакции: смена плана
// моделируется как отмена плюс покупка. Повторная покупка текущего
// плана допустима и перезапускает подписку.
func (s *Service) Purchase(ctx context.Context, userUID string, planID int, meta models.RequestMeta) (*models.Subscription, *models.Plan, error) {
	if _, err := s.repo.GetUser(ctx, userUID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}
	plan, err := s.repo.GetPlan(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrPlanNotFound
		}
		return nil, nil, err
	}

	startDate := today()
	newSub := models.Subscription{
		UserUID:   userUID,
		PlanID:    plan.ID,
		Status:    models.StatusActive,
		StartDate: startDate,
		EndDate:   nil,
		PricePaid: plan.MonthlyPrice,
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.repo.FindActiveSubscription(ctx, userUID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if existing != nil {
			if err := s.repo.CancelSubscription(ctx, existing.ID, startDate); err != nil {
				return err
			}
		}

		newID, err := s.repo.CreateSubscription(ctx, newSub)
		if err != nil {
			return err
		}
		newSub.ID = newID

		return s.repo.RecordAudit(ctx, models.AuditEntry{
			UserUID:   userUID,
			Action:    models.ActionPlanPurchased,
			TableName: "subscriptions",
			RecordID:  strconv.Itoa(newID),
			NewValues: map[string]any{
				"plan_id":    plan.ID,
				"price_paid": plan.MonthlyPrice,
			},
			IPAddress: meta.IPAddress,
			UserAgent: meta.UserAgent,
		})
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, nil, ErrPurchaseConflict
		}
		return nil, nil, err
	}

	s.log.Info("plan purchased",
		slog.String("user_uid", userUID),
		slog.Int("plan_id", plan.ID),
		slog.Int("subscription_id", newSub.ID))
	metrics.PlanPurchasesTotal.Inc()

	return &newSub, plan, nil
}

// Cancel отменяет активную подписку пользователя, создает оповещение
// о дате окончания доступа и пишет запись аудита.
func (s *Service) Cancel(ctx context.Context, userUID string, meta models.RequestMeta) (*models.Subscription, error) {
	if _, err := s.repo.GetUser(ctx, userUID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	endDate := today()
	var cancelled *models.Subscription

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		sub, err := s.repo.FindActiveSubscription(ctx, userUID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNoActiveSubscription
			}
			return err
		}

		plan, err := s.repo.GetPlan(ctx, sub.PlanID)
		if err != nil {
			return err
		}

		if err := s.repo.CancelSubscription(ctx, sub.ID, endDate); err != nil {
			return err
		}
		sub.Status = models.StatusCancelled
		sub.EndDate = &endDate

		subID := sub.ID
		_, err = s.repo.CreateAlert(ctx, models.Alert{
			UserUID:        userUID,
			SubscriptionID: &subID,
			Type:           models.AlertTypeSystem,
			Message: fmt.Sprintf(
				"Plan Cancelled: Your %s plan has been cancelled. You will continue to have access until %s.",
				plan.Name, endDate.Format("2006-01-02")),
		})
		if err != nil {
			return err
		}

		if err := s.repo.RecordAudit(ctx, models.AuditEntry{
			UserUID:   userUID,
			Action:    models.ActionPlanCancelled,
			TableName: "subscriptions",
			RecordID:  strconv.Itoa(sub.ID),
			OldValues: map[string]any{"status": models.StatusActive},
			NewValues: map[string]any{
				"status":   models.StatusCancelled,
				"end_date": endDate.Format("2006-01-02"),
			},
			IPAddress: meta.IPAddress,
			UserAgent: meta.UserAgent,
		}); err != nil {
			return err
		}

		cancelled = sub
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("plan cancelled",
		slog.String("user_uid", userUID),
		slog.Int("subscription_id", cancelled.ID))
	metrics.PlanCancellationsTotal.Inc()

	return cancelled, nil
}

// MyPlan возвращает активную подписку пользователя вместе с планом.
func (s *Service) MyPlan(ctx context.Context, userUID string) (*PlanInfo, error) {
	sub, err := s.repo.FindActiveSubscription(ctx, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &PlanInfo{HasPlan: false}, nil
		}
		return nil, err
	}

	plan, err := s.repo.GetPlan(ctx, sub.PlanID)
	if err != nil {
		return nil, err
	}

	return &PlanInfo{
		HasPlan:      true,
		Subscription: sub,
		Plan:         plan,
	}, nil
}
