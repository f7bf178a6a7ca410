package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"ummahtube/internal/featureflags"
	"ummahtube/internal/models"
	"ummahtube/internal/notifications"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type publisherStub struct {
	publishUserFn func(ctx context.Context, userID uint, payload string) error
}

func (s *publisherStub) PublishUser(ctx context.Context, userID uint, payload string) error {
	return s.publishUserFn(ctx, userID, payload)
}

func TestNotificationService_NotifyLike(t *testing.T) {
	t.Parallel()

	video := &models.Video{ID: 10, UserID: 2, Title: "Surah Rahman"}

	t.Run("persists and publishes to the owner", func(t *testing.T) {
		t.Parallel()
		repo := noopNotificationRepo()
		var created *models.Notification
		repo.createFn = func(_ context.Context, n *models.Notification) error {
			n.ID = 77
			created = n
			return nil
		}

		userRepo := noopUserRepo()
		userRepo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Username: "fan_one"}, nil
		}

		var publishedTo uint
		var published string
		publisher := &publisherStub{publishUserFn: func(_ context.Context, userID uint, payload string) error {
			publishedTo = userID
			published = payload
			return nil
		}}

		svc := NewNotificationService(repo, userRepo, publisher, nil)
		svc.NotifyLike(context.Background(), 1, video)

		require.NotNil(t, created)
		assert.Equal(t, uint(2), created.UserID)
		assert.Equal(t, uint(1), created.ActorID)
		assert.Equal(t, uint(10), created.VideoID)
		assert.Equal(t, models.NotificationTypeLike, created.Type)
		assert.Contains(t, created.Message, "fan_one")
		assert.Contains(t, created.Message, "Surah Rahman")

		assert.Equal(t, uint(2), publishedTo)
		var payload map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(published), &payload))
		assert.Equal(t, float64(77), payload["id"])
		assert.Equal(t, string(models.NotificationTypeLike), payload["type"])
		assert.Equal(t, "fan_one", payload["actor_username"])
		assert.Equal(t, float64(10), payload["video_id"])
	})

	t.Run("self-like is silent", func(t *testing.T) {
		t.Parallel()
		repo := noopNotificationRepo()
		repo.createFn = func(_ context.Context, _ *models.Notification) error {
			t.Error("self-like must not persist a notification")
			return nil
		}

		svc := NewNotificationService(repo, noopUserRepo(), nil, nil)
		svc.NotifyLike(context.Background(), 2, video)
	})

	t.Run("disabled flag is silent", func(t *testing.T) {
		t.Parallel()
		repo := noopNotificationRepo()
		repo.createFn = func(_ context.Context, _ *models.Notification) error {
			t.Error("disabled flag must not persist a notification")
			return nil
		}

		flags := featureflags.NewManager("notifications=off")
		svc := NewNotificationService(repo, noopUserRepo(), nil, flags)
		svc.NotifyLike(context.Background(), 1, video)
	})

	t.Run("typed-nil notifier still persists without panicking", func(t *testing.T) {
		t.Parallel()
		repo := noopNotificationRepo()
		var created *models.Notification
		repo.createFn = func(_ context.Context, n *models.Notification) error {
			created = n
			return nil
		}

		userRepo := noopUserRepo()
		userRepo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Username: "fan_one"}, nil
		}

		// When Redis is down the server still wires a nil *Notifier into the
		// publisher interface, which a plain nil check cannot detect.
		svc := NewNotificationService(repo, userRepo, (*notifications.Notifier)(nil), nil)
		require.NotPanics(t, func() {
			svc.NotifyLike(context.Background(), 1, video)
		})
		require.NotNil(t, created)
		assert.Equal(t, uint(2), created.UserID)
	})

	t.Run("actor lookup failure is swallowed", func(t *testing.T) {
		t.Parallel()
		repo := noopNotificationRepo()
		repo.createFn = func(_ context.Context, _ *models.Notification) error {
			t.Error("unknown actor must not persist a notification")
			return nil
		}

		userRepo := noopUserRepo()
		userRepo.getByIDFn = func(_ context.Context, _ uint) (*models.User, error) {
			return nil, errors.New("connection reset")
		}

		svc := NewNotificationService(repo, userRepo, nil, nil)
		svc.NotifyLike(context.Background(), 1, video)
	})
}

func TestNotificationService_NotifyComment_Type(t *testing.T) {
	t.Parallel()

	repo := noopNotificationRepo()
	var created *models.Notification
	repo.createFn = func(_ context.Context, n *models.Notification) error {
		created = n
		return nil
	}

	svc := NewNotificationService(repo, noopUserRepo(), nil, nil)
	svc.NotifyComment(context.Background(), 1, &models.Video{ID: 10, UserID: 2, Title: "Hadith of the day"})

	require.NotNil(t, created)
	assert.Equal(t, models.NotificationTypeComment, created.Type)
	assert.Contains(t, created.Message, "commented")
}

func TestNotificationService_ReadOperations(t *testing.T) {
	t.Parallel()

	repo := noopNotificationRepo()
	repo.listByUserFn = func(_ context.Context, userID uint, limit, offset int) ([]*models.Notification, error) {
		assert.Equal(t, uint(1), userID)
		assert.Equal(t, 20, limit)
		assert.Equal(t, 0, offset)
		return []*models.Notification{{ID: 1}, {ID: 2}}, nil
	}
	repo.countUnreadFn = func(_ context.Context, _ uint) (int64, error) { return 2, nil }
	var marked, markedAll bool
	repo.markReadFn = func(_ context.Context, id, userID uint) error {
		marked = true
		assert.Equal(t, uint(1), id)
		assert.Equal(t, uint(1), userID)
		return nil
	}
	repo.markAllReadFn = func(_ context.Context, _ uint) error {
		markedAll = true
		return nil
	}

	svc := NewNotificationService(repo, noopUserRepo(), nil, nil)
	ctx := context.Background()

	notifications, err := svc.ListNotifications(ctx, 1, 20, 0)
	require.NoError(t, err)
	assert.Len(t, notifications, 2)

	count, err := svc.CountUnread(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	require.NoError(t, svc.MarkRead(ctx, 1, 1))
	require.NoError(t, svc.MarkAllRead(ctx, 1))
	assert.True(t, marked)
	assert.True(t, markedAll)
}
