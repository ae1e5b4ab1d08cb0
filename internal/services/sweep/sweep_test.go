package sweep

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/sstepanets/plan-manager/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) FindSubscriptionsExpiringOn(ctx context.Context, day time.Time, limit int) ([]*models.ExpiringSubscription, error) {
	args := m.Called(ctx, day, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ExpiringSubscription), args.Error(1)
}
func (m *RepoMock) AlertExists(ctx context.Context, userUID, alertType string, subscriptionID int) (bool, error) {
	args := m.Called(ctx, userUID, alertType, subscriptionID)
	return args.Bool(0), args.Error(1)
}
func (m *RepoMock) CreateAlert(ctx context.Context, alert models.Alert) (int, error) {
	args := m.Called(ctx, alert)
	return args.Int(0), args.Error(1)
}

type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) Publish(routingKey string, message any) error {
	return m.Called(routingKey, message).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestService_ScanExpiringSoon(t *testing.T) {
	endDate := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, 2)
	basic := &models.ExpiringSubscription{
		SubscriptionID: 7,
		UserUID:        "uid-1",
		Username:       "alice",
		Email:          "alice@example.com",
		PlanName:       "Basic",
		EndDate:        endDate,
	}
	pro := &models.ExpiringSubscription{
		SubscriptionID: 8,
		UserUID:        "uid-2",
		Username:       "bob",
		Email:          "bob@example.com",
		PlanName:       "Pro",
		EndDate:        endDate,
	}

	tests := []struct {
		name        string
		setupMocks  func(r *RepoMock, p *PublisherMock)
		wantCreated int
		wantErr     bool
	}{
		{
			name: "creates alert per expiring subscription",
			setupMocks: func(r *RepoMock, p *PublisherMock) {
				r.On("FindSubscriptionsExpiringOn", mock.Anything, endDate, 500).
					Return([]*models.ExpiringSubscription{basic, pro}, nil).Once()
				r.On("AlertExists", mock.Anything, "uid-1", models.AlertTypePlanExpiry, 7).
					Return(false, nil).Once()
				r.On("AlertExists", mock.Anything, "uid-2", models.AlertTypePlanExpiry, 8).
					Return(false, nil).Once()
				r.On("CreateAlert", mock.Anything, mock.MatchedBy(func(a models.Alert) bool {
					return a.UserUID == "uid-1" &&
						a.Type == models.AlertTypePlanExpiry &&
						a.SubscriptionID != nil && *a.SubscriptionID == 7 &&
						strings.Contains(a.Message, "Plan Expiring Soon") &&
						strings.Contains(a.Message, "Basic") &&
						strings.Contains(a.Message, endDate.Format("2006-01-02"))
				})).Return(1, nil).Once()
				r.On("CreateAlert", mock.Anything, mock.MatchedBy(func(a models.Alert) bool {
					return a.UserUID == "uid-2" && *a.SubscriptionID == 8
				})).Return(2, nil).Once()
				p.On("Publish", "expiring", basic).Return(nil).Once()
				p.On("Publish", "expiring", pro).Return(nil).Once()
			},
			wantCreated: 2,
		},
		{
			name: "second run is idempotent",
			setupMocks: func(r *RepoMock, _ *PublisherMock) {
				r.On("FindSubscriptionsExpiringOn", mock.Anything, endDate, 500).
					Return([]*models.ExpiringSubscription{basic, pro}, nil).Once()
				r.On("AlertExists", mock.Anything, "uid-1", models.AlertTypePlanExpiry, 7).
					Return(true, nil).Once()
				r.On("AlertExists", mock.Anything, "uid-2", models.AlertTypePlanExpiry, 8).
					Return(true, nil).Once()
			},
			wantCreated: 0,
		},
		{
			name: "nothing expiring",
			setupMocks: func(r *RepoMock, _ *PublisherMock) {
				r.On("FindSubscriptionsExpiringOn", mock.Anything, endDate, 500).
					Return([]*models.ExpiringSubscription{}, nil).Once()
			},
			wantCreated: 0,
		},
		{
			name: "storage error is returned",
			setupMocks: func(r *RepoMock, _ *PublisherMock) {
				r.On("FindSubscriptionsExpiringOn", mock.Anything, endDate, 500).
					Return(nil, errors.New("connection refused")).Once()
			},
			wantErr: true,
		},
		{
			name: "publish failure does not fail the sweep",
			setupMocks: func(r *RepoMock, p *PublisherMock) {
				r.On("FindSubscriptionsExpiringOn", mock.Anything, endDate, 500).
					Return([]*models.ExpiringSubscription{basic}, nil).Once()
				r.On("AlertExists", mock.Anything, "uid-1", models.AlertTypePlanExpiry, 7).
					Return(false, nil).Once()
				r.On("CreateAlert", mock.Anything, mock.Anything).Return(1, nil).Once()
				p.On("Publish", "expiring", basic).Return(errors.New("broker down")).Once()
			},
			wantCreated: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			pub := new(PublisherMock)
			svc := New(repo, pub, newNoopLogger(), 2, 500)

			tt.setupMocks(repo, pub)

			created, err := svc.ScanExpiringSoon(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantCreated, created)
			}

			repo.AssertExpectations(t)
			pub.AssertExpectations(t)
		})
	}
}

func TestService_ScanExpiringSoon_WithoutPublisher(t *testing.T) {
	endDate := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, 2)
	repo := new(RepoMock)
	svc := New(repo, nil, newNoopLogger(), 2, 500)

	repo.On("FindSubscriptionsExpiringOn", mock.Anything, endDate, 500).
		Return([]*models.ExpiringSubscription{{
			SubscriptionID: 7,
			UserUID:        "uid-1",
			PlanName:       "Basic",
			EndDate:        endDate,
		}}, nil).Once()
	repo.On("AlertExists", mock.Anything, "uid-1", models.AlertTypePlanExpiry, 7).
		Return(false, nil).Once()
	repo.On("CreateAlert", mock.Anything, mock.Anything).Return(1, nil).Once()

	created, err := svc.ScanExpiringSoon(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, created)

	repo.AssertExpectations(t)
}
