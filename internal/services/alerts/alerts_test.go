package alerts

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/sstepanets/plan-manager/internal/models"
	"github.com/sstepanets/plan-manager/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) ListAlertsForUser(ctx context.Context, userUID string) ([]*models.Alert, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Alert), args.Error(1)
}
func (m *RepoMock) MarkAlertRead(ctx context.Context, id int, userUID string) error {
	return m.Called(ctx, id, userUID).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestService_List(t *testing.T) {
	repo := new(RepoMock)
	svc := New(repo, newNoopLogger())

	want := []*models.Alert{
		{ID: 2, UserUID: "uid-1", Type: models.AlertTypePlanExpiry, Message: "expiring"},
		{ID: 1, UserUID: "uid-1", Type: models.AlertTypeSystem, Message: "cancelled"},
	}
	repo.On("ListAlertsForUser", mock.Anything, "uid-1").Return(want, nil).Once()

	got, err := svc.List(context.Background(), "uid-1")
	assert.NoError(t, err)
	assert.Equal(t, want, got)

	repo.AssertExpectations(t)
}

func TestService_MarkRead(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo := new(RepoMock)
		svc := New(repo, newNoopLogger())

		repo.On("MarkAlertRead", mock.Anything, 3, "uid-1").Return(nil).Once()

		assert.NoError(t, svc.MarkRead(context.Background(), 3, "uid-1"))
		repo.AssertExpectations(t)
	})

	t.Run("not found or foreign alert", func(t *testing.T) {
		repo := new(RepoMock)
		svc := New(repo, newNoopLogger())

		repo.On("MarkAlertRead", mock.Anything, 3, "uid-2").
			Return(repository.ErrNotFound).Once()

		assert.ErrorIs(t, svc.MarkRead(context.Background(), 3, "uid-2"), ErrAlertNotFound)
		repo.AssertExpectations(t)
	})
}
