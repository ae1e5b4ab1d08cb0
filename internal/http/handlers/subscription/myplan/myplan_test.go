package myplan

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

// MockService реализует интерфейс myplan.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) MyPlan(ctx context.Context, userUID string) (*lifecycle.PlanInfo, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lifecycle.PlanInfo), args.Error(1)
}

func TestMyPlanHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		userUID        string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:    "есть активная подписка",
			userUID: "uid-1",
			setupMock: func(m *MockService) {
				info := &lifecycle.PlanInfo{
					HasPlan:      true,
					Subscription: &models.Subscription{ID: 7, UserUID: "uid-1", PlanID: 3, Status: models.StatusActive},
					Plan:         &models.Plan{ID: 3, Name: "Pro"},
				}
				m.On("MyPlan", mock.Anything, "uid-1").Return(info, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"has_plan":true`,
		},
		{
			name:    "нет активной подписки",
			userUID: "uid-1",
			setupMock: func(m *MockService) {
				m.On("MyPlan", mock.Anything, "uid-1").Return(&lifecycle.PlanInfo{HasPlan: false}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"has_plan":false`,
		},
		{
			name:           "отсутствует пользователь в контексте",
			userUID:        "",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"unauthorized"`,
		},
		{
			name:    "внутренняя ошибка сервиса",
			userUID: "uid-1",
			setupMock: func(m *MockService) {
				m.On("MyPlan", mock.Anything, "uid-1").Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"could not get current plan"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodGet, "/my-plan", nil)
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
