package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ummahtube/internal/models"
	"ummahtube/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockNotificationRepository is a mock of the NotificationRepository interface
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

func (m *MockNotificationRepository) GetByID(ctx context.Context, id uint) (*models.Notification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Notification), args.Error(1)
}

func (m *MockNotificationRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Notification, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]*models.Notification), args.Error(1)
}

func (m *MockNotificationRepository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, id, userID uint) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockNotificationRepository) MarkAllRead(ctx context.Context, userID uint) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func newNotificationTestServer(repo *MockNotificationRepository) *Server {
	return &Server{
		notificationService: service.NewNotificationService(repo, new(MockUserRepository), nil, nil),
	}
}

func TestGetNotifications(t *testing.T) {
	mockRepo := new(MockNotificationRepository)
	s := newNotificationTestServer(mockRepo)

	mockRepo.On("ListByUser", mock.Anything, uint(1), 20, 0).
		Return([]*models.Notification{
			{ID: 1, Message: "fan_one liked your video"},
			{ID: 2, Message: "fan_two commented on your video"},
		}, nil).Once()

	app := authedApp(1)
	app.Get("/notifications", s.GetNotifications)

	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var notifications []models.Notification
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&notifications))
	assert.Len(t, notifications, 2)
	mockRepo.AssertExpectations(t)
}

func TestGetUnreadNotificationCount(t *testing.T) {
	mockRepo := new(MockNotificationRepository)
	s := newNotificationTestServer(mockRepo)

	mockRepo.On("CountUnread", mock.Anything, uint(1)).Return(int64(4), nil).Once()

	app := authedApp(1)
	app.Get("/notifications/unread-count", s.GetUnreadNotificationCount)

	req := httptest.NewRequest(http.MethodGet, "/notifications/unread-count", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]int64
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, int64(4), body["count"])
	mockRepo.AssertExpectations(t)
}

func TestMarkNotificationRead(t *testing.T) {
	t.Run("Owned", func(t *testing.T) {
		mockRepo := new(MockNotificationRepository)
		s := newNotificationTestServer(mockRepo)

		mockRepo.On("MarkRead", mock.Anything, uint(3), uint(1)).Return(nil).Once()

		app := authedApp(1)
		app.Post("/notifications/:id/read", s.MarkNotificationRead)

		req := httptest.NewRequest(http.MethodPost, "/notifications/3/read", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Not Owned", func(t *testing.T) {
		mockRepo := new(MockNotificationRepository)
		s := newNotificationTestServer(mockRepo)

		mockRepo.On("MarkRead", mock.Anything, uint(3), uint(1)).
			Return(models.NewNotFoundError("Notification", 3)).Once()

		app := authedApp(1)
		app.Post("/notifications/:id/read", s.MarkNotificationRead)

		req := httptest.NewRequest(http.MethodPost, "/notifications/3/read", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		mockRepo.AssertExpectations(t)
	})
}

func TestMarkAllNotificationsRead(t *testing.T) {
	mockRepo := new(MockNotificationRepository)
	s := newNotificationTestServer(mockRepo)

	mockRepo.On("MarkAllRead", mock.Anything, uint(1)).Return(nil).Once()

	app := authedApp(1)
	app.Post("/notifications/read-all", s.MarkAllNotificationsRead)

	req := httptest.NewRequest(http.MethodPost, "/notifications/read-all", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	mockRepo.AssertExpectations(t)
}
