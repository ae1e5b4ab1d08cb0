package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sstepanets/plan-manager/internal/models"
)

// CreateSubscription вставляет новую запись подписки и возвращает её ID.
// Инвариант "одна активная подписка на пользователя" обеспечивается
// частичным уникальным индексом; его нарушение возвращается как ErrConflict,
// и вызывающая сторона может повторить операцию.
func (s *Storage) CreateSubscription(ctx context.Context, sub models.Subscription) (int, error) {
	const op = "storage.CreateSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO subscriptions (user_uid, plan_id, status, start_date, end_date, price_paid)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id`
	var newID int
	err := s.conn(ctx).QueryRowContext(ctx, query,
		sub.UserUID, sub.PlanID, sub.Status, sub.StartDate, sub.EndDate, sub.PricePaid).Scan(&newID)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%s: %w", op, ErrConflict)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// FindActiveSubscription возвращает активную подписку пользователя.
// Если активной подписки нет, возвращает ErrNotFound.
func (s *Storage) FindActiveSubscription(ctx context.Context, userUID string) (*models.Subscription, error) {
	const op = "storage.FindActiveSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, plan_id, status, start_date, end_date, price_paid
			  FROM subscriptions
			  WHERE user_uid = $1
			    AND status = $2`
	var sub models.Subscription
	var endDate sql.NullTime
	row := s.conn(ctx).QueryRowContext(ctx, query, userUID, models.StatusActive)
	if err := row.Scan(&sub.ID, &sub.UserUID, &sub.PlanID, &sub.Status,
		&sub.StartDate, &endDate, &sub.PricePaid); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if endDate.Valid {
		sub.EndDate = &endDate.Time
	}
	return &sub, nil
}

// GetSubscription возвращает подписку по её ID.
func (s *Storage) GetSubscription(ctx context.Context, id int) (*models.Subscription, error) {
	const op = "storage.GetSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, plan_id, status, start_date, end_date, price_paid
			  FROM subscriptions
			  WHERE id = $1`
	var sub models.Subscription
	var endDate sql.NullTime
	row := s.conn(ctx).QueryRowContext(ctx, query, id)
	if err := row.Scan(&sub.ID, &sub.UserUID, &sub.PlanID, &sub.Status,
		&sub.StartDate, &endDate, &sub.PricePaid); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if endDate.Valid {
		sub.EndDate = &endDate.Time
	}
	return &sub, nil
}

// CancelSubscription переводит подписку в статус cancelled и фиксирует
// дату окончания доступа.
func (s *Storage) CancelSubscription(ctx context.Context, id int, endDate time.Time) error {
	const op = "storage.CancelSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions
			  SET status = $1, end_date = $2
			  WHERE id = $3`
	result, err := s.conn(ctx).ExecContext(ctx, query, models.StatusCancelled, endDate, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// FindSubscriptionsExpiringOn находит активные подписки, у которых дата
// окончания совпадает с заданной. Выборка ограничена limit, чтобы один
// проход сканера не разрастался на большом наборе подписок.
func (s *Storage) FindSubscriptionsExpiringOn(ctx context.Context, day time.Time, limit int) ([]*models.ExpiringSubscription, error) {
	const op = "storage.FindSubscriptionsExpiringOn"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT
			      s.id,
			      s.user_uid,
			      u.name,
			      u.email,
			      p.name,
			      s.end_date
			  FROM subscriptions s
			  JOIN users u ON s.user_uid = u.uid
			  JOIN plans p ON s.plan_id = p.id
			  WHERE s.status = $1
			    AND s.end_date = $2::date
			  ORDER BY s.id
			  LIMIT $3`
	rows, err := s.conn(ctx).QueryContext(ctx, query, models.StatusActive, day, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.ExpiringSubscription
	for rows.Next() {
		var es models.ExpiringSubscription
		if err = rows.Scan(&es.SubscriptionID, &es.UserUID, &es.Username,
			&es.Email, &es.PlanName, &es.EndDate); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &es)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
