// Package sweep реализует периодический сканер подписок, истекающих
// через заданное число дней. Сканер только читает подписки и пишет
// оповещения: статусы подписок он никогда не меняет.
package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sstepanets/plan-manager/internal/lib/sl"
	"github.com/sstepanets/plan-manager/internal/metrics"
	"github.com/sstepanets/plan-manager/internal/models"
	"github.com/sstepanets/plan-manager/internal/rabbitmq"
)

// Repository определяет методы хранилища, используемые сканером.
type Repository interface {
	FindSubscriptionsExpiringOn(ctx context.Context, day time.Time, limit int) ([]*models.ExpiringSubscription, error)
	AlertExists(ctx context.Context, userUID, alertType string, subscriptionID int) (bool, error)
	CreateAlert(ctx context.Context, alert models.Alert) (int, error)
}

// Publisher публикует сообщение для отправителя писем.
type Publisher interface {
	Publish(routingKey string, message any) error
}

// Service реализует сканирование истекающих подписок.
type Service struct {
	repo        Repository
	pub         Publisher
	log         *slog.Logger
	horizonDays int
	batchLimit  int
}

// New создает новый экземпляр Service. horizonDays — за сколько дней до
// окончания подписки создается оповещение, batchLimit ограничивает один проход.
func New(repo Repository, pub Publisher, log *slog.Logger, horizonDays, batchLimit int) *Service {
	return &Service{
		repo:        repo,
		pub:         pub,
		log:         log,
		horizonDays: horizonDays,
		batchLimit:  batchLimit,
	}
}

// ScanExpiringSoon находит активные подписки, истекающие ровно через
// horizonDays дней, и создает по одному оповещению plan_expiry на подписку.
// Повторный запуск без изменений состояния не создает новых оповещений:
// дедупликация идет по ключу (пользователь, тип, подписка). Возвращает
// количество созданных оповещений.
func (s *Service) ScanExpiringSoon(ctx context.Context) (int, error) {
	const op = "sweep.ScanExpiringSoon"

	targetDate := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, s.horizonDays)

	expiring, err := s.repo.FindSubscriptionsExpiringOn(ctx, targetDate, s.batchLimit)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if len(expiring) == 0 {
		s.log.Info("no expiring subscriptions found")
		return 0, nil
	}
	s.log.Info("found expiring subscriptions", slog.Int("count", len(expiring)))

	var created int
	for _, es := range expiring {
		exists, err := s.repo.AlertExists(ctx, es.UserUID, models.AlertTypePlanExpiry, es.SubscriptionID)
		if err != nil {
			return created, fmt.Errorf("%s: %w", op, err)
		}
		if exists {
			continue
		}

		subID := es.SubscriptionID
		_, err = s.repo.CreateAlert(ctx, models.Alert{
			UserUID:        es.UserUID,
			SubscriptionID: &subID,
			Type:           models.AlertTypePlanExpiry,
			Message: fmt.Sprintf(
				"Plan Expiring Soon: Your %s plan will expire on %s. Please renew to continue service.",
				es.PlanName, es.EndDate.Format("2006-01-02")),
		})
		if err != nil {
			return created, fmt.Errorf("%s: %w", op, err)
		}
		created++
		metrics.ExpiryAlertsTotal.Inc()

		if s.pub != nil {
			if err := s.pub.Publish(rabbitmq.RoutingKeyExpiring, es); err != nil {
				s.log.Error("failed to publish message", sl.Err(err))
			}
		}
	}

	s.log.Info("expiry sweep finished", slog.Int("alerts_created", created))
	return created, nil
}

// Run запускает сканер сразу и далее с заданным интервалом до отмены контекста.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	if _, err := s.ScanExpiringSoon(ctx); err != nil {
		s.log.Error("expiry sweep failed", sl.Err(err))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.ScanExpiringSoon(ctx); err != nil {
				s.log.Error("expiry sweep failed", sl.Err(err))
			}
		case <-ctx.Done():
			return
		}
	}
}
