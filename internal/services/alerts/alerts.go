// Package alerts содержит бизнес-логику работы с оповещениями пользователя.
package alerts

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sstepanets/plan-manager/internal/models"
	"github.com/sstepanets/plan-manager/internal/storage/repository"
)

// ErrAlertNotFound возвращается, когда оповещение отсутствует
// или принадлежит другому пользователю.
var ErrAlertNotFound = errors.New("alert not found")

// Repository определяет методы хранилища, используемые сервисом.
type Repository interface {
	ListAlertsForUser(ctx context.Context, userUID string) ([]*models.Alert, error)
	MarkAlertRead(ctx context.Context, id int, userUID string) error
}

// Service реализует операции над оповещениями.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

// List возвращает оповещения пользователя, новые первыми.
func (s *Service) List(ctx context.Context, userUID string) ([]*models.Alert, error) {
	return s.repo.ListAlertsForUser(ctx, userUID)
}

// MarkRead помечает оповещение пользователя прочитанным.
func (s *Service) MarkRead(ctx context.Context, alertID int, userUID string) error {
	err := s.repo.MarkAlertRead(ctx, alertID, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAlertNotFound
		}
		return err
	}
	s.log.Info("alert marked as read",
		slog.Int("alert_id", alertID),
		slog.String("user_uid", userUID))
	return nil
}
