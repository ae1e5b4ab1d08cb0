package purchase

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/sstepanets/plan-manager/internal/http/middlewarectx"
	"github.com/sstepanets/plan-manager/internal/models"
	"github.com/sstepanets/plan-manager/internal/services/lifecycle"
)

// MockService реализует интерфейс purchase.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Purchase(ctx context.Context, userUID string, planID int, meta models.RequestMeta) (*models.Subscription, *models.Plan, error) {
	args := m.Called(ctx, userUID, planID, meta)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.Subscription), args.Get(1).(*models.Plan), args.Error(2)
}

func TestPurchaseHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		body           string
		userUID        string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:    "успешная покупка плана",
			body:    `{"plan_id":3}`,
			userUID: "uid-1",
			setupMock: func(m *MockService) {
				sub := &models.Subscription{ID: 42, UserUID: "uid-1", PlanID: 3, Status: models.StatusActive}
				plan := &models.Plan{ID: 3, Name: "Pro", MonthlyPrice: 29.99}
				m.On("Purchase", mock.Anything, "uid-1", 3, mock.Anything).Return(sub, plan, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"OK"`,
		},
		{
			name:           "отсутствует пользователь в контексте",
			body:           `{"plan_id":3}`,
			userUID:        "",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"unauthorized"`,
		},
		{
			name:           "невалидный JSON",
			body:           `{plan_id}`,
			userUID:        "uid-1",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"invalid request body"`,
		},
		{
			name:           "отсутствует plan_id",
			body:           `{}`,
			userUID:        "uid-1",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `"status":"Error"`,
		},
		{
			name:    "план не найден",
			body:    `{"plan_id":99}`,
			userUID: "uid-1",
			setupMock: func(m *MockService) {
				m.On("Purchase", mock.Anything, "uid-1", 99, mock.Anything).
					Return(nil, nil, lifecycle.ErrPlanNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"error":"plan not found"`,
		},
		{
			name:    "конфликт одновременных покупок",
			body:    `{"plan_id":3}`,
			userUID: "uid-1",
			setupMock: func(m *MockService) {
				m.On("Purchase", mock.Anything, "uid-1", 3, mock.Anything).
					Return(nil, nil, lifecycle.ErrPurchaseConflict)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `"error":"another purchase is in progress, retry"`,
		},
		{
			name:    "внутренняя ошибка сервиса",
			body:    `{"plan_id":3}`,
			userUID: "uid-1",
			setupMock: func(m *MockService) {
				m.On("Purchase", mock.Anything, "uid-1", 3, mock.Anything).
					Return(nil, nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"could not purchase plan"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/purchase-plan", strings.NewReader(tt.body))
			if tt.userUID != "" {
				req = req.WithContext(context.WithValue(req.Context(), middlewarectx.UserUID, tt.userUID))
			}

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
