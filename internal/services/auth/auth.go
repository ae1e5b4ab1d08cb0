// Package auth содержит логику регистрации и входа пользователей.
package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/sstepanets/plan-manager/internal/lib/jwt"
	"github.com/sstepanets/plan-manager/internal/lib/password"
	"github.com/sstepanets/plan-manager/internal/models"
	"github.com/sstepanets/plan-manager/internal/storage/repository"
)

var (
	// ErrEmailTaken возвращается при регистрации на занятый email.
	ErrEmailTaken = errors.New("user with this email already exists")
	// ErrInvalidCredentials возвращается при неверном email или пароле.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Repository описывает контракт для работы с пользователями в базе данных.
type Repository interface {
	// RegisterUser сохраняет нового пользователя.
	RegisterUser(ctx context.Context, user models.User) error
	// GetUserByEmail возвращает пользователя по email или ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// RecordAudit добавляет запись журнала аудита.
	RecordAudit(ctx context.Context, entry models.AuditEntry) error
}

// TxManager выполняет функцию внутри одной транзакции хранилища.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service отвечает за регистрацию, авторизацию и выдачу JWT.
type Service struct {
	repo     Repository
	tx       TxManager
	jwtMaker jwt.Maker
	log      *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, tx TxManager, jwtMaker jwt.Maker, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		tx:       tx,
		jwtMaker: jwtMaker,
		log:      log,
	}
}

// Signup создает нового пользователя с хэшированием пароля и ролью "user".
// Создание пользователя и запись аудита выполняются в одной транзакции.
func (s *Service) Signup(ctx context.Context, req models.DummySignup, meta models.RequestMeta) (*models.User, error) {
	hashed, err := password.GetHash(req.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		UID:          uuid.New().String(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hashed,
		Role:         "user",
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.RegisterUser(ctx, user); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return ErrEmailTaken
			}
			return err
		}
		return s.repo.RecordAudit(ctx, models.AuditEntry{
			UserUID:   user.UID,
			Action:    models.ActionUserSignup,
			TableName: "users",
			RecordID:  user.UID,
			NewValues: map[string]any{"email": user.Email, "name": user.Name},
			IPAddress: meta.IPAddress,
			UserAgent: meta.UserAgent,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("user registered", slog.String("user_uid", user.UID))
	return &user, nil
}

// Login проверяет пароль пользователя, пишет запись аудита и генерирует JWT.
func (s *Service) Login(ctx context.Context, req models.DummyLogin, meta models.RequestMeta) (string, *models.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if err := password.CompareHash(user.PasswordHash, req.Password); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	if err := s.repo.RecordAudit(ctx, models.AuditEntry{
		UserUID:   user.UID,
		Action:    models.ActionUserLogin,
		TableName: "users",
		RecordID:  user.UID,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	}); err != nil {
		return "", nil, err
	}

	token, err := s.jwtMaker.GenerateToken(user.UID, user.Email, user.Role)
	if err != nil {
		return "", nil, err
	}

	s.log.Info("user logged in", slog.String("user_uid", user.UID))
	return token, user, nil
}
