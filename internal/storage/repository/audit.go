package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sstepanets/plan-manager/internal/models"
)

// RecordAudit добавляет одну неизменяемую запись журнала аудита.
// Снимки старых и новых значений сериализуются в JSONB и могут
// отсутствовать. Ошибка записи не проглатывается: внутри WithinTx она
// откатывает и бизнес-мутацию, частью которой является аудит.
func (s *Storage) RecordAudit(ctx context.Context, entry models.AuditEntry) error {
	const op = "storage.RecordAudit"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var oldValues, newValues []byte
	var err error
	if entry.OldValues != nil {
		if oldValues, err = json.Marshal(entry.OldValues); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	if entry.NewValues != nil {
		if newValues, err = json.Marshal(entry.NewValues); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	query := `INSERT INTO audit_logs (user_uid, action, table_name, record_id,
			      old_values, new_values, ip_address, user_agent)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = s.conn(ctx).ExecContext(ctx, query,
		entry.UserUID, entry.Action, entry.TableName, entry.RecordID,
		oldValues, newValues, entry.IPAddress, entry.UserAgent)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
