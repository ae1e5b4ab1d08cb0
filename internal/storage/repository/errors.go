package repository

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound возвращается, когда запрошенная запись отсутствует.
var ErrNotFound = errors.New("record not found")

// ErrConflict возвращается при нарушении уникального ограничения,
// в частности частичного индекса "одна активная подписка на пользователя"
// при гонке двух одновременных покупок.
var ErrConflict = errors.New("record conflicts with existing one")

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
