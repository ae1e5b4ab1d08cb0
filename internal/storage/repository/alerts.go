package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sstepanets/plan-manager/internal/models"
)

// CreateAlert вставляет новое непрочитанное оповещение и возвращает его ID.
func (s *Storage) CreateAlert(ctx context.Context, alert models.Alert) (int, error) {
	const op = "storage.CreateAlert"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO alerts (user_uid, subscription_id, type, message, is_read)
			  VALUES ($1, $2, $3, $4, false)
			  RETURNING id`
	var newID int
	err := s.conn(ctx).QueryRowContext(ctx, query,
		alert.UserUID, alert.SubscriptionID, alert.Type, alert.Message).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// AlertExists проверяет, есть ли у пользователя оповещение данного типа
// для данной подписки. Ключ (user_uid, type, subscription_id) — структурная
// замена проверки подстроки в тексте сообщения: сканер не создаёт
// повторных оповещений при многократных запусках.
func (s *Storage) AlertExists(ctx context.Context, userUID, alertType string, subscriptionID int) (bool, error) {
	const op = "storage.AlertExists"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT EXISTS (
			      SELECT 1 FROM alerts
			      WHERE user_uid = $1
			        AND type = $2
			        AND subscription_id = $3
			  )`
	var exists bool
	err := s.conn(ctx).QueryRowContext(ctx, query, userUID, alertType, subscriptionID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// ListAlertsForUser возвращает оповещения пользователя, новые первыми.
func (s *Storage) ListAlertsForUser(ctx context.Context, userUID string) ([]*models.Alert, error) {
	const op = "storage.ListAlertsForUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, subscription_id, type, message, is_read, created_at
			  FROM alerts
			  WHERE user_uid = $1
			  ORDER BY created_at DESC, id DESC`
	rows, err := s.conn(ctx).QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Alert
	for rows.Next() {
		var a models.Alert
		var subscriptionID sql.NullInt64
		if err := rows.Scan(&a.ID, &a.UserUID, &subscriptionID, &a.Type,
			&a.Message, &a.IsRead, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if subscriptionID.Valid {
			id := int(subscriptionID.Int64)
			a.SubscriptionID = &id
		}
		result = append(result, &a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// MarkAlertRead помечает оповещение прочитанным. Оповещение должно
// принадлежать пользователю, иначе возвращается ErrNotFound.
func (s *Storage) MarkAlertRead(ctx context.Context, id int, userUID string) error {
	const op = "storage.MarkAlertRead"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE alerts
			  SET is_read = true
			  WHERE id = $1
			    AND user_uid = $2`
	result, err := s.conn(ctx).ExecContext(ctx, query, id, userUID)
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
